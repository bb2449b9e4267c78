// Package ui provides terminal UI components using pterm.
package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"lingoland/internal/content"
	"lingoland/internal/metrics"
)

// Theme colors for consistent styling
var (
	ColorPrimary   = pterm.FgCyan
	ColorSecondary = pterm.FgLightBlue
	ColorSuccess   = pterm.FgGreen
	ColorWarning   = pterm.FgYellow
	ColorError     = pterm.FgRed
	ColorMuted     = pterm.FgGray
)

// UI wraps pterm components for lingoland.
type UI struct {
	quiet   bool
	verbose bool
	out     io.Writer
}

// New creates a new UI instance.
func New(quiet, verbose bool) *UI {
	if quiet {
		pterm.DisableOutput()
	}
	return &UI{quiet: quiet, verbose: verbose, out: os.Stdout}
}

// Banner prints the application banner.
func (u *UI) Banner() {
	pterm.DefaultBigText.WithLetters(
		pterm.NewLettersFromStringWithStyle("lingo", pterm.NewStyle(ColorPrimary)),
		pterm.NewLettersFromStringWithStyle("land", pterm.NewStyle(ColorSecondary)),
	).Render()

	pterm.DefaultCenter.Println(
		ColorMuted.Sprint("First words in English, Spanish and Mandarin"),
	)
	fmt.Println()
}

// Config prints the session configuration.
func (u *UI) Config(lessonTitle, language, name string, capture, speaker bool) {
	pterm.DefaultSection.Println("Lesson")

	data := [][]string{
		{"Lesson", lessonTitle},
		{"Language", language},
		{"Name", name},
		{"Microphone", onOff(capture)},
		{"Speaker", onOff(speaker)},
	}

	pterm.DefaultTable.WithData(data).Render()
	fmt.Println()
}

func onOff(b bool) string {
	if b {
		return ColorSuccess.Sprint("on")
	}
	return ColorMuted.Sprint("off")
}

// Phase prints a phase header.
func (u *UI) Phase(number int, total int, name string) {
	pterm.DefaultSection.WithLevel(2).Println(
		fmt.Sprintf("[%d/%d] %s", number, total, name),
	)
}

// Spinner creates a spinner for long operations.
func (u *UI) Spinner(message string) *pterm.SpinnerPrinter {
	spinner, _ := pterm.DefaultSpinner.
		WithRemoveWhenDone(true).
		Start(message)
	return spinner
}

// Progress creates a progress bar.
func (u *UI) Progress(title string, total int) *pterm.ProgressbarPrinter {
	pb, _ := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(title).
		WithShowElapsedTime(true).
		WithShowCount(true).
		Start()
	return pb
}

// FileStatus prints the outcome of loading one lesson file.
func (u *UI) FileStatus(path string, status string, details string) {
	prefix := ColorPrimary.Sprintf("[%s]", path)
	switch status {
	case "ok":
		pterm.Success.Println(prefix, details)
	case "error":
		pterm.Error.Println(prefix, details)
	default:
		pterm.Info.Println(prefix, details)
	}
}

// LoadStats prints the aggregate of a lesson validation run.
func (u *UI) LoadStats(stats *content.LoadStats) {
	pterm.DefaultSection.WithLevel(2).Println("Lessons")

	data := pterm.TableData{
		{"Files", fmt.Sprintf("%d", stats.Files)},
		{"Valid", ColorSuccess.Sprintf("%d", stats.Valid)},
		{"Invalid", ColorError.Sprintf("%d", stats.Invalid)},
		{"Steps", fmt.Sprintf("%d", stats.Steps)},
	}
	pterm.DefaultTable.WithData(data).Render()

	if len(stats.ByKind) > 0 {
		kinds := make([]string, 0, len(stats.ByKind))
		for k := range stats.ByKind {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)

		table := pterm.TableData{{"Step type", "Count"}}
		for _, k := range kinds {
			table = append(table, []string{k, fmt.Sprintf("%d", stats.ByKind[k])})
		}
		pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	}
	fmt.Println()
}

// FinalReport prints the session summary.
func (u *UI) FinalReport(m *metrics.SessionMetrics) {
	if m == nil || m.Totals == nil {
		return
	}
	pterm.DefaultSection.Println("Summary")

	t := m.Totals
	status := ColorWarning.Sprint("not finished")
	if t.LessonCompleted {
		status = ColorSuccess.Sprint("completed")
	}
	panel := pterm.DefaultBox.WithTitle("Session").Sprint(
		fmt.Sprintf(
			"  Lesson:      %s\n"+
				"  Steps:       %s\n"+
				"  Attempts:    %s\n"+
				"  Accuracy:    %s\n"+
				"  Duration:    %s",
			status,
			ColorPrimary.Sprintf("%d/%d passed", t.StepsPassed, t.StepsVisited),
			ColorSecondary.Sprintf("%d", t.Counters[metrics.Attempts]),
			ColorSuccess.Sprintf("%.0f%%", t.Accuracy*100),
			ColorWarning.Sprint((time.Duration(t.DurationMs) * time.Millisecond).Round(time.Second)),
		),
	)
	fmt.Fprintln(u.out, panel)
}

// Prompt prints the input prompt. While listening, the next line is what
// the learner said.
func (u *UI) Prompt(listening bool) {
	if u.quiet {
		return
	}
	if listening {
		fmt.Fprint(u.out, ColorPrimary.Sprint("🎤 say> "))
		return
	}
	fmt.Fprint(u.out, "> ")
}

// Success prints a success message.
func (u *UI) Success(message string) {
	pterm.Success.Println(message)
}

// Error prints an error message.
func (u *UI) Error(message string) {
	pterm.Error.Println(message)
}

// Warning prints a warning message.
func (u *UI) Warning(message string) {
	pterm.Warning.Println(message)
}

// Info prints an info message.
func (u *UI) Info(message string) {
	pterm.Info.Println(message)
}

// Debug prints a debug message (only in verbose mode).
func (u *UI) Debug(message string) {
	if u.verbose {
		pterm.Debug.Println(message)
	}
}

// Separator prints a visual separator.
func (u *UI) Separator() {
	pterm.DefaultBasicText.Println(ColorMuted.Sprint(strings.Repeat("─", 61)))
}

// Done prints the goodbye message.
func (u *UI) Done() {
	fmt.Println()
	pterm.DefaultCenter.Println(
		ColorSuccess.Sprint("✓ See you next time!"),
	)
}
