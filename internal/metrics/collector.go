// Package metrics records per-session lesson telemetry and writes it as JSON.
package metrics

import (
	"runtime"
	"time"

	"github.com/google/uuid"
)

// Counter names recorded per step.
const (
	Attempts      = "attempts"
	Accepted      = "accepted"
	Rejected      = "rejected"
	CaptureErrors = "capture_errors"
	WrongPairs    = "wrong_pairs"
	Pairs         = "pairs"
	Tiles         = "tiles"
	Resets        = "resets"
	Plays         = "plays"
)

// StageMetrics holds metrics for one visit to a step.
type StageMetrics struct {
	Name       string           `json:"name"`
	Kind       string           `json:"kind"`
	Visit      int              `json:"visit"`
	StartTime  time.Time        `json:"start_time"`
	EndTime    time.Time        `json:"end_time"`
	DurationMs int64            `json:"duration_ms"`
	Passed     bool             `json:"passed"`
	Counters   map[string]int64 `json:"counters,omitempty"`
}

// SessionMetrics holds all metrics for one lesson session.
type SessionMetrics struct {
	RunID       string                 `json:"run_id"`
	Timestamp   time.Time              `json:"timestamp"`
	LessonID    string                 `json:"lesson_id"`
	Language    string                 `json:"language"`
	Config      map[string]interface{} `json:"config"`
	Stages      []*StageMetrics        `json:"stages"`
	Totals      *TotalMetrics          `json:"totals"`
	Environment *EnvironmentInfo       `json:"environment"`
}

// TotalMetrics holds aggregate metrics.
type TotalMetrics struct {
	DurationMs      int64            `json:"duration_ms"`
	StepsVisited    int              `json:"steps_visited"`
	StepsPassed     int              `json:"steps_passed"`
	LessonCompleted bool             `json:"lesson_completed"`
	Counters        map[string]int64 `json:"counters"`
	Accuracy        float64          `json:"accuracy"`
}

// EnvironmentInfo holds system environment details.
type EnvironmentInfo struct {
	GoVersion string `json:"go_version"`
	GOOS      string `json:"goos"`
	GOARCH    string `json:"goarch"`
	NumCPU    int    `json:"num_cpu"`
}

// Collector collects metrics during a session. A nil *Collector is valid
// and records nothing.
type Collector struct {
	runID     string
	startTime time.Time
	lessonID  string
	language  string
	config    map[string]interface{}
	stages    []*StageMetrics
	active    *StageMetrics
	visits    map[string]int
	completed bool
	now       func() time.Time
}

// NewCollector creates a collector for lessonID.
func NewCollector(lessonID string) *Collector {
	return &Collector{
		runID:     uuid.NewString(),
		startTime: time.Now(),
		lessonID:  lessonID,
		config:    make(map[string]interface{}),
		visits:    make(map[string]int),
		now:       time.Now,
	}
}

// SetConfig stores a configuration value for the run.
func (c *Collector) SetConfig(key string, value interface{}) {
	if c == nil {
		return
	}
	c.config[key] = value
}

// SetLanguage records the language being played. The last value wins.
func (c *Collector) SetLanguage(code string) {
	if c == nil {
		return
	}
	c.language = code
}

// StartStage ends any active stage and starts timing a visit to step name.
func (c *Collector) StartStage(name, kind string) {
	if c == nil {
		return
	}
	c.EndStage(false)
	c.visits[name]++
	c.active = &StageMetrics{
		Name:      name,
		Kind:      kind,
		Visit:     c.visits[name],
		StartTime: c.now(),
		Counters:  make(map[string]int64),
	}
	c.stages = append(c.stages, c.active)
}

// EndStage completes the active stage. passed records whether its gate was
// open when the learner left it.
func (c *Collector) EndStage(passed bool) {
	if c == nil || c.active == nil {
		return
	}
	c.active.EndTime = c.now()
	c.active.DurationMs = c.active.EndTime.Sub(c.active.StartTime).Milliseconds()
	c.active.Passed = passed
	c.active = nil
}

// IncrementCounter increments a counter for the active stage.
func (c *Collector) IncrementCounter(name string, delta int64) {
	if c == nil || c.active == nil {
		return
	}
	c.active.Counters[name] += delta
}

// MarkCompleted records that the lesson reached its completed state.
func (c *Collector) MarkCompleted() {
	if c == nil {
		return
	}
	c.completed = true
}

// Finalize ends the active stage and builds the session report.
func (c *Collector) Finalize() *SessionMetrics {
	if c == nil {
		return nil
	}
	c.EndStage(false)

	totals := &TotalMetrics{
		DurationMs:      c.now().Sub(c.startTime).Milliseconds(),
		StepsVisited:    len(c.stages),
		LessonCompleted: c.completed,
		Counters:        make(map[string]int64),
	}
	for _, s := range c.stages {
		if s.Passed {
			totals.StepsPassed++
		}
		for k, v := range s.Counters {
			totals.Counters[k] += v
		}
	}
	if n := totals.Counters[Accepted] + totals.Counters[Rejected]; n > 0 {
		totals.Accuracy = float64(totals.Counters[Accepted]) / float64(n)
	}

	return &SessionMetrics{
		RunID:     c.runID,
		Timestamp: c.startTime,
		LessonID:  c.lessonID,
		Language:  c.language,
		Config:    c.config,
		Stages:    c.stages,
		Totals:    totals,
		Environment: &EnvironmentInfo{
			GoVersion: runtime.Version(),
			GOOS:      runtime.GOOS,
			GOARCH:    runtime.GOARCH,
			NumCPU:    runtime.NumCPU(),
		},
	}
}

// GetRunID returns the run identifier.
func (c *Collector) GetRunID() string {
	if c == nil {
		return ""
	}
	return c.runID
}

// Stage returns the active stage, or nil.
func (c *Collector) Stage() *StageMetrics {
	if c == nil {
		return nil
	}
	return c.active
}
