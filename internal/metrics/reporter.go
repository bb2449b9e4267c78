package metrics

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Reporter handles metrics output and history tracking.
type Reporter struct {
	outputDir   string
	historyFile string
}

// NewReporter creates a reporter writing under <outputDir>/metrics.
func NewReporter(outputDir string) (*Reporter, error) {
	metricsDir := filepath.Join(outputDir, "metrics")
	if err := os.MkdirAll(metricsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create metrics dir: %w", err)
	}

	return &Reporter{
		outputDir:   metricsDir,
		historyFile: filepath.Join(metricsDir, "history.jsonl"),
	}, nil
}

// Write writes session metrics to files.
func (r *Reporter) Write(metrics *SessionMetrics) error {
	// Write latest.json (overwritten each run)
	latestPath := filepath.Join(r.outputDir, "latest.json")
	if err := r.writeJSON(latestPath, metrics); err != nil {
		return fmt.Errorf("failed to write latest.json: %w", err)
	}

	// Write per-run file
	runPath := filepath.Join(
		r.outputDir,
		fmt.Sprintf("run_%s.json", metrics.RunID),
	)
	if err := r.writeJSON(runPath, metrics); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}

	// Append to history
	if err := r.appendHistory(metrics); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	return nil
}

// writeJSON writes a metrics struct to a JSON file.
func (r *Reporter) writeJSON(path string, metrics *SessionMetrics) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metrics)
}

// appendHistory appends a summary line to the history file.
func (r *Reporter) appendHistory(metrics *SessionMetrics) error {
	file, err := os.OpenFile(r.historyFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	// Write compact JSON line
	line, err := json.Marshal(metrics)
	if err != nil {
		return err
	}

	_, err = file.WriteString(string(line) + "\n")
	return err
}

// ReadHistory reads the last N runs from history.
func (r *Reporter) ReadHistory(limit int) ([]*SessionMetrics, error) {
	file, err := os.Open(r.historyFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var runs []*SessionMetrics
	scanner := bufio.NewScanner(file)

	// Set a larger buffer for potentially long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		var run SessionMetrics
		if err := json.Unmarshal(scanner.Bytes(), &run); err != nil {
			continue // Skip malformed lines
		}
		runs = append(runs, &run)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Return only the last 'limit' runs
	if limit > 0 && len(runs) > limit {
		runs = runs[len(runs)-limit:]
	}

	return runs, nil
}

// GetLastRun returns the most recent run from history.
func (r *Reporter) GetLastRun() (*SessionMetrics, error) {
	runs, err := r.ReadHistory(1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return runs[0], nil
}

// Comparison is the difference between two sessions.
type Comparison struct {
	CurrentRunID  string  `json:"current_run_id"`
	PreviousRunID string  `json:"previous_run_id"`
	AccuracyDiff  float64 `json:"accuracy_diff"`
	TimeSavedMs   int64   `json:"time_saved_ms"`
	AttemptsDiff  int64   `json:"attempts_diff"`
}

// CompareRuns compares two sessions and returns the difference.
func CompareRuns(current, previous *SessionMetrics) *Comparison {
	if current == nil || previous == nil {
		return nil
	}

	return &Comparison{
		CurrentRunID:  current.RunID,
		PreviousRunID: previous.RunID,
		AccuracyDiff:  current.Totals.Accuracy - previous.Totals.Accuracy,
		TimeSavedMs:   previous.Totals.DurationMs - current.Totals.DurationMs,
		AttemptsDiff:  current.Totals.Counters[Attempts] - previous.Totals.Counters[Attempts],
	}
}

// FormatComparison returns a human-readable comparison string.
func FormatComparison(c *Comparison) string {
	if c == nil {
		return "No previous session to compare"
	}

	direction := "faster"
	if c.TimeSavedMs < 0 {
		direction = "slower"
	}

	return fmt.Sprintf(
		"%s than last time (%+dms), accuracy %+.0f%%, %+d attempts",
		direction,
		-c.TimeSavedMs, // Negative because saved = previous - current
		c.AccuracyDiff*100,
		c.AttemptsDiff,
	)
}
