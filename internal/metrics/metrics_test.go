package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeClock advances by step on every read.
func fakeClock(step time.Duration) func() time.Time {
	t := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector("lesson-01")
	c.now = fakeClock(100 * time.Millisecond)

	if c.GetRunID() == "" {
		t.Error("Expected non-empty run ID")
	}

	c.SetConfig("name", "Alex")
	c.SetLanguage("es")

	c.StartStage("step-3", "pronounce")
	c.IncrementCounter(Attempts, 3)
	c.IncrementCounter(Rejected, 2)
	c.IncrementCounter(Accepted, 1)
	c.EndStage(true)

	// Counters outside a stage are dropped.
	c.IncrementCounter(Attempts, 10)

	c.StartStage("step-4", "build")
	c.IncrementCounter(Tiles, 4)
	c.StartStage("step-3", "pronounce")
	c.IncrementCounter(Accepted, 1)
	c.MarkCompleted()

	m := c.Finalize()

	if m.LessonID != "lesson-01" || m.Language != "es" {
		t.Errorf("LessonID/Language = %s/%s", m.LessonID, m.Language)
	}
	if len(m.Stages) != 3 {
		t.Fatalf("Expected 3 stages, got %d", len(m.Stages))
	}
	if m.Stages[0].DurationMs != 100 {
		t.Errorf("stage 0 duration = %dms, want 100", m.Stages[0].DurationMs)
	}
	if !m.Stages[0].Passed || m.Stages[1].Passed {
		t.Error("Passed flags wrong")
	}
	if m.Stages[2].Visit != 2 {
		t.Errorf("revisit Visit = %d, want 2", m.Stages[2].Visit)
	}
	if m.Totals.StepsVisited != 3 || m.Totals.StepsPassed != 1 {
		t.Errorf("Totals = %+v", m.Totals)
	}
	if m.Totals.Counters[Attempts] != 3 || m.Totals.Counters[Accepted] != 2 {
		t.Errorf("Counters = %v", m.Totals.Counters)
	}
	if m.Totals.Accuracy != 0.5 {
		t.Errorf("Accuracy = %f, want 0.5", m.Totals.Accuracy)
	}
	if !m.Totals.LessonCompleted {
		t.Error("LessonCompleted = false")
	}
	if m.Environment == nil || m.Environment.GoVersion == "" {
		t.Error("Expected environment info")
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.StartStage("a", "listen")
	c.IncrementCounter(Plays, 1)
	c.EndStage(true)
	c.MarkCompleted()
	if c.Finalize() != nil || c.GetRunID() != "" || c.Stage() != nil {
		t.Error("nil collector recorded something")
	}
}

func TestReporter(t *testing.T) {
	tmpDir := t.TempDir()

	reporter, err := NewReporter(tmpDir)
	if err != nil {
		t.Fatal(err)
	}

	c := NewCollector("lesson-01")
	c.StartStage("step-1", "listen")
	c.IncrementCounter(Plays, 4)
	first := c.Finalize()

	if err := reporter.Write(first); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	metricsDir := filepath.Join(tmpDir, "metrics")
	for _, name := range []string{"latest.json", "run_" + first.RunID + ".json", "history.jsonl"} {
		if _, err := os.Stat(filepath.Join(metricsDir, name)); os.IsNotExist(err) {
			t.Errorf("Expected %s to exist", name)
		}
	}

	second := NewCollector("lesson-01").Finalize()
	if err := reporter.Write(second); err != nil {
		t.Fatal(err)
	}

	runs, err := reporter.ReadHistory(10)
	if err != nil {
		t.Fatalf("ReadHistory failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].Stages[0].Counters[Plays] != 4 {
		t.Errorf("history lost counters: %+v", runs[0].Stages[0])
	}

	last, err := reporter.GetLastRun()
	if err != nil || last.RunID != second.RunID {
		t.Errorf("GetLastRun = %v, %v", last, err)
	}
}

func TestReadHistoryMissing(t *testing.T) {
	reporter, err := NewReporter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runs, err := reporter.ReadHistory(5)
	if err != nil || runs != nil {
		t.Errorf("ReadHistory on empty dir = %v, %v", runs, err)
	}
}

func TestCompareRuns(t *testing.T) {
	previous := &SessionMetrics{
		RunID:  "prev",
		Totals: &TotalMetrics{DurationMs: 90000, Accuracy: 0.5, Counters: map[string]int64{Attempts: 10}},
	}
	current := &SessionMetrics{
		RunID:  "curr",
		Totals: &TotalMetrics{DurationMs: 60000, Accuracy: 0.75, Counters: map[string]int64{Attempts: 6}},
	}

	cmp := CompareRuns(current, previous)
	if cmp.TimeSavedMs != 30000 || cmp.AttemptsDiff != -4 || cmp.AccuracyDiff != 0.25 {
		t.Errorf("Comparison = %+v", cmp)
	}

	want := "faster than last time (-30000ms), accuracy +25%, -4 attempts"
	if got := FormatComparison(cmp); got != want {
		t.Errorf("FormatComparison = %q, want %q", got, want)
	}
	if FormatComparison(CompareRuns(nil, previous)) != "No previous session to compare" {
		t.Error("nil comparison not handled")
	}
}
