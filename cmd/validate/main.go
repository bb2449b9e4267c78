// lingoland-validate - load and validate lesson files in parallel.
// Usage: lingoland-validate [options] <dir|file>...
//        lingoland-validate --embedded
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sync"

	"lingoland/internal/config"
	"lingoland/internal/content"
	"lingoland/internal/ui"

	"github.com/spf13/pflag"
)

type fileReport struct {
	Path   string `json:"path"`
	Lesson string `json:"lesson,omitempty"`
	Steps  int    `json:"steps"`
	Error  string `json:"error,omitempty"`
}

func main() {
	workers := pflag.IntP("workers", "w", config.DefaultWorkers(), "Number of parallel workers (0 = auto)")
	jsonOutput := pflag.BoolP("json", "j", false, "Output as JSON")
	quiet := pflag.BoolP("quiet", "q", false, "Only report failures")
	embedded := pflag.BoolP("embedded", "e", false, "Also validate the lessons built into the player")
	pflag.Parse()

	if pflag.NArg() < 1 && !*embedded {
		fmt.Fprintln(os.Stderr, "Usage: lingoland-validate [options] <dir|file>... | --embedded")
		pflag.PrintDefaults()
		os.Exit(1)
	}

	// Auto-detect workers
	if *workers <= 0 {
		*workers = runtime.NumCPU()
		if *workers > config.MaxWorkers {
			*workers = config.MaxWorkers
		}
	}

	paths, err := content.ExpandPaths(pflag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(paths) == 0 && !*embedded {
		fmt.Fprintln(os.Stderr, "No lesson files found")
		os.Exit(1)
	}

	term := ui.New(*quiet || *jsonOutput, false)
	phases := 1
	if *embedded {
		phases = 2
	}

	var results []*content.FileResult
	if len(paths) > 0 {
		term.Phase(1, phases, fmt.Sprintf("Validating %d file(s) with %d worker(s)", len(paths), *workers))
		bar := term.Progress("Lessons", len(paths))
		var mu sync.Mutex
		results = content.LoadAll(paths, content.ParallelConfig{Workers: *workers}, func(path string, r *content.FileResult) {
			mu.Lock()
			defer mu.Unlock()
			bar.Increment()
		})
		bar.Stop()
	}
	if *embedded {
		term.Phase(phases, phases, fmt.Sprintf("Validating %d built-in lesson(s)", len(content.EmbeddedNames())))
		results = append(results, content.LoadEmbedded()...)
	}

	stats := content.AggregateResults(results)

	if *jsonOutput {
		reports := make([]fileReport, len(results))
		for i, r := range results {
			reports[i] = fileReport{Path: r.Path}
			if r.Error != nil {
				reports[i].Error = r.Error.Error()
				continue
			}
			reports[i].Lesson = r.Lesson.ID
			reports[i].Steps = r.Lesson.Len()
		}
		output := struct {
			Files   []fileReport       `json:"files"`
			Summary *content.LoadStats `json:"summary"`
		}{reports, stats}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(output)
	} else {
		for _, r := range results {
			if r.Error != nil {
				// ui output may be disabled by --quiet; failures always print
				fmt.Fprintf(os.Stderr, "%s: %v\n", r.Path, r.Error)
				continue
			}
			term.FileStatus(r.Path, "ok", fmt.Sprintf("%s, %d steps", r.Lesson.ID, r.Lesson.Len()))
		}
		term.LoadStats(stats)
	}

	if stats.Invalid > 0 {
		os.Exit(1)
	}
	term.Success(fmt.Sprintf("All %d lesson file(s) are valid", stats.Valid))
}
