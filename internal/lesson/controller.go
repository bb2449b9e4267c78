// Package lesson drives a lesson through its steps: it mounts one activity
// per step, tracks that activity's progress and gates navigation on it.
package lesson

import (
	"errors"
	"math/rand"
	"time"

	"github.com/pterm/pterm"

	"lingoland/internal/logging"
	"lingoland/internal/loop"
	"lingoland/internal/metrics"
	"lingoland/internal/schema"
	"lingoland/internal/speech"
)

// Navigation refusals. State is left untouched when one is returned.
var (
	ErrGateClosed      = errors.New("current step is not finished")
	ErrFirstStep       = errors.New("already at the first step")
	ErrLastStep        = errors.New("already at the last step")
	ErrNotLastStep     = errors.New("lesson can only be completed from the last step")
	ErrCompleted       = errors.New("lesson is completed")
	ErrUnknownLanguage = errors.New("unknown language")
	ErrUnknownName     = errors.New("unknown name")
	ErrNoScheduler     = errors.New("controller needs a scheduler")
)

// DefaultName is used when the lesson offers no names.
const DefaultName = "Alex"

// Options wires a controller to the capabilities it drives. Speaker,
// Recognizer, Logger and Metrics may be nil. Scheduler is required: wrong
// flashes and capture events are delivered through it.
type Options struct {
	Speaker     speech.Speaker
	Recognizer  speech.Recognizer
	Scheduler   loop.Scheduler
	Logger      *pterm.Logger
	Metrics     *metrics.Collector
	Rand        *rand.Rand
	WrongFlash  time.Duration
	WrongRevert time.Duration
	Name        string

	// OnChange is called after every state change the UI should redraw for.
	OnChange func()
}

// Controller owns the step index, the mounted activity and its progress
// counters. All methods must be called from the loop goroutine.
type Controller struct {
	lesson *schema.Lesson
	lang   schema.Language
	name   string
	names  []string

	index     int
	completed bool
	activity  Activity
	gen       int // bumped on every mount; stale activity callbacks compare it
	done      int
	total     int

	opts Options
	log  *pterm.Logger
}

// New mounts the first step of lesson in language.
func New(lesson *schema.Lesson, language string, opts Options) (*Controller, error) {
	lang, err := lookupLanguage(language)
	if err != nil {
		return nil, err
	}
	if lesson == nil || lesson.Len() == 0 {
		return nil, errors.New("lesson has no steps")
	}
	if opts.Scheduler == nil {
		return nil, ErrNoScheduler
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	c := &Controller{
		lesson: lesson,
		lang:   lang,
		names:  lessonNames(lesson),
		opts:   opts,
		log:    logging.OrDiscard(opts.Logger),
	}

	switch {
	case opts.Name != "":
		if !c.knownName(opts.Name) {
			return nil, ErrUnknownName
		}
		c.name = opts.Name
	case len(c.names) > 0:
		c.name = c.names[0]
	default:
		c.name = DefaultName
	}

	c.opts.Metrics.SetLanguage(string(lang.Code))
	c.log.Info("lesson start", c.log.Args("lesson", lesson.ID, "language", string(lang.Code), "steps", lesson.Len()))
	c.enter()
	return c, nil
}

func lookupLanguage(code string) (schema.Language, error) {
	lang, ok := schema.LookupLanguage(code)
	if !ok {
		return schema.Language{}, ErrUnknownLanguage
	}
	for _, c := range schema.SupportedLanguages {
		if c == lang.Code {
			return lang, nil
		}
	}
	return schema.Language{}, ErrUnknownLanguage
}

// lessonNames collects the selectable names of every build step in order.
func lessonNames(l *schema.Lesson) []string {
	var names []string
	seen := make(map[string]bool)
	for _, s := range l.Steps {
		if b, ok := s.(*schema.BuildStep); ok {
			for _, n := range b.Names {
				if !seen[n] {
					seen[n] = true
					names = append(names, n)
				}
			}
		}
	}
	return names
}

func (c *Controller) knownName(name string) bool {
	if name == "" {
		return false
	}
	if len(c.names) == 0 {
		return true
	}
	for _, n := range c.names {
		if n == name {
			return true
		}
	}
	return false
}

// Lesson returns the lesson being played.
func (c *Controller) Lesson() *schema.Lesson { return c.lesson }

// Language returns the current language.
func (c *Controller) Language() schema.Language { return c.lang }

// Name returns the learner's chosen name.
func (c *Controller) Name() string { return c.name }

// Names returns the names the learner may choose from.
func (c *Controller) Names() []string { return c.names }

// Index returns the current step index.
func (c *Controller) Index() int { return c.index }

// Len returns the number of steps.
func (c *Controller) Len() int { return c.lesson.Len() }

// Step returns the current step.
func (c *Controller) Step() schema.Step { return c.lesson.Steps[c.index] }

// Activity returns the mounted activity, or nil in the completed state.
func (c *Controller) Activity() Activity { return c.activity }

// Completed reports whether the lesson is showing its completed state.
func (c *Controller) Completed() bool { return c.completed }

// Progress returns the mounted activity's reported counters.
func (c *Controller) Progress() (done, total int) { return c.done, c.total }

// CanAdvance reports whether the current step's gate is open. Assessment
// steps have no verifiable completion and are always open.
func (c *Controller) CanAdvance() bool {
	if c.completed || c.activity == nil {
		return false
	}
	if c.activity.Kind() == schema.KindAssessment {
		return true
	}
	return c.done >= c.total
}

// CanPrev reports whether Prev is allowed.
func (c *Controller) CanPrev() bool {
	return !c.completed && c.index > 0
}

// CanNext reports whether Next is allowed.
func (c *Controller) CanNext() bool {
	return c.CanAdvance() && c.index < c.Len()-1
}

// CanComplete reports whether Complete is allowed.
func (c *Controller) CanComplete() bool {
	return c.CanAdvance() && c.index == c.Len()-1
}

// Next moves to the following step once the current one is finished.
func (c *Controller) Next() error {
	switch {
	case c.completed:
		return ErrCompleted
	case c.index >= c.Len()-1:
		return ErrLastStep
	case !c.CanAdvance():
		return ErrGateClosed
	}
	c.opts.Metrics.EndStage(true)
	c.index++
	c.enter()
	return nil
}

// Prev moves to the previous step. Progress on the step being left is
// discarded.
func (c *Controller) Prev() error {
	switch {
	case c.completed:
		return ErrCompleted
	case c.index == 0:
		return ErrFirstStep
	}
	c.opts.Metrics.EndStage(c.CanAdvance())
	c.index--
	c.enter()
	return nil
}

// Complete finishes the lesson from the last step.
func (c *Controller) Complete() error {
	switch {
	case c.completed:
		return ErrCompleted
	case c.index != c.Len()-1:
		return ErrNotLastStep
	case !c.CanAdvance():
		return ErrGateClosed
	}
	c.opts.Metrics.EndStage(true)
	c.opts.Metrics.MarkCompleted()
	c.unmount()
	c.completed = true
	c.log.Info("lesson completed", c.log.Args("lesson", c.lesson.ID, "language", string(c.lang.Code)))
	c.changed()
	return nil
}

// Review leaves the completed state and shows the current step again with
// fresh progress.
func (c *Controller) Review() error {
	if !c.completed {
		return nil
	}
	c.completed = false
	c.enter()
	return nil
}

// SetLanguage switches language and restarts the current step.
func (c *Controller) SetLanguage(code string) error {
	lang, err := lookupLanguage(code)
	if err != nil {
		return err
	}
	c.lang = lang
	c.opts.Metrics.SetLanguage(string(lang.Code))
	c.log.Info("language changed", c.log.Args("language", string(lang.Code)))
	if c.completed {
		c.changed()
		return nil
	}
	c.opts.Metrics.EndStage(c.CanAdvance())
	c.enter()
	return nil
}

// SetName changes the learner's name. Steps whose content contains the
// name restart.
func (c *Controller) SetName(name string) error {
	if !c.knownName(name) {
		return ErrUnknownName
	}
	if name == c.name {
		return nil
	}
	c.name = name
	c.log.Debug("name changed", c.log.Args("name", name))

	if c.completed || c.activity == nil {
		c.changed()
		return nil
	}
	switch a := c.activity.(type) {
	case *BuildActivity:
		// The builder rebuilds its banks and reports zero progress itself.
		return a.setName(name)
	case *ConversationActivity, *FillBlankActivity, *AssessmentActivity:
		c.enter()
	default:
		c.changed()
	}
	return nil
}

// Exit tears down the mounted activity and stops playback.
func (c *Controller) Exit() {
	if !c.completed {
		c.opts.Metrics.EndStage(c.CanAdvance())
	}
	c.unmount()
	c.log.Info("lesson exit", c.log.Args("lesson", c.lesson.ID, "step", c.index))
}

// enter resets progress and mounts a fresh activity for the current step.
func (c *Controller) enter() {
	c.unmount()

	step := c.Step()
	c.gen++
	c.done, c.total = 0, 0

	gen := c.gen
	v := &env{
		lesson:      c.lesson,
		lang:        c.lang,
		name:        c.name,
		names:       c.names,
		speaker:     c.opts.Speaker,
		recognizer:  c.opts.Recognizer,
		sched:       c.opts.Scheduler,
		rand:        c.opts.Rand,
		wrongFlash:  c.opts.WrongFlash,
		wrongRevert: c.opts.WrongRevert,
		log:         c.log,
		metrics:     c.opts.Metrics,
		report: func(done, total int) {
			if gen != c.gen {
				return
			}
			c.done, c.total = done, total
		},
		changed: func() {
			if gen != c.gen {
				return
			}
			c.changed()
		},
	}

	c.opts.Metrics.StartStage(step.ID(), step.Kind().String())
	c.activity = mount(step, v)
	c.log.Info("step enter", c.log.Args(
		"step", step.ID(),
		"index", c.index,
		"kind", step.Kind().String(),
		"language", string(c.lang.Code),
	))
	c.changed()
}

// unmount closes the activity's engines, cancelling their timers and
// capture sessions, and stops playback.
func (c *Controller) unmount() {
	if c.activity != nil {
		c.activity.close()
		c.activity = nil
	}
	c.gen++
	if c.opts.Speaker != nil {
		c.opts.Speaker.Cancel()
	}
}

func (c *Controller) changed() {
	if c.opts.OnChange != nil {
		c.opts.OnChange()
	}
}
