// Calibration runner for the lingoland transcript matcher.
// Run with: go run runner.go [options]
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"lingoland/internal/matcher"
	"lingoland/internal/schema"

	"github.com/spf13/pflag"
)

type Case struct {
	Transcript string `json:"transcript"`
	Expected   string `json:"expected"`
	Accept     bool   `json:"accept"`
	Note       string `json:"note,omitempty"`
}

type Group struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Cases       []Case `json:"cases"`
}

type CaseFile struct {
	Groups []Group `json:"groups"`
}

type CaseResult struct {
	Group      string  `json:"group"`
	Language   string  `json:"language"`
	Transcript string  `json:"transcript"`
	Expected   string  `json:"expected"`
	Want       bool    `json:"want"`
	Got        bool    `json:"got"`
	Similarity float64 `json:"similarity"`
	Reason     string  `json:"reason"`
}

type ScriptSummary struct {
	Script        string  `json:"script"`
	Threshold     float64 `json:"threshold"`
	Cases         int     `json:"cases"`
	Correct       int     `json:"correct"`
	FalseAccepts  int     `json:"false_accepts"`
	FalseRejects  int     `json:"false_rejects"`
	Accuracy      float64 `json:"accuracy"`
	MeanLatencyNs int64   `json:"mean_latency_ns"`
}

func main() {
	casesPath := pflag.String("cases", "cases.json", "Path to labelled transcript cases")
	outputDir := pflag.String("output", "results", "Output directory for results")
	group := pflag.String("group", "", "Run only this group (empty = all)")
	iterations := pflag.Int("iterations", 100, "Evaluations per case for latency")
	showMisses := pflag.Bool("misses", true, "Print every wrong decision")
	pflag.Parse()

	// Load cases
	data, err := os.ReadFile(*casesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading cases: %v\n", err)
		os.Exit(1)
	}

	var file CaseFile
	if err := json.Unmarshal(data, &file); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing cases: %v\n", err)
		os.Exit(1)
	}

	if *iterations < 1 {
		*iterations = 1
	}

	var results []CaseResult
	summaries := make(map[schema.Script]*ScriptSummary)
	latency := make(map[schema.Script]time.Duration)

	for _, g := range file.Groups {
		if *group != "" && g.Name != *group {
			continue
		}

		lang, ok := schema.LookupLanguage(g.Language)
		if !ok {
			fmt.Fprintf(os.Stderr, "Skipping group %s: unknown language %q\n", g.Name, g.Language)
			continue
		}

		fmt.Printf("\n=== Group: %s (%s) ===\n", g.Name, g.Description)
		fmt.Printf("Language: %s, threshold %.2f\n", lang.DisplayName, matcher.Threshold(lang.Script))

		sum := summaries[lang.Script]
		if sum == nil {
			sum = &ScriptSummary{Script: lang.Script.String(), Threshold: matcher.Threshold(lang.Script)}
			summaries[lang.Script] = sum
		}

		for _, c := range g.Cases {
			start := time.Now()
			var v matcher.Verdict
			for i := 0; i < *iterations; i++ {
				v = matcher.Evaluate(c.Transcript, c.Expected, lang.Script)
			}
			latency[lang.Script] += time.Since(start) / time.Duration(*iterations)

			r := CaseResult{
				Group:      g.Name,
				Language:   string(lang.Code),
				Transcript: c.Transcript,
				Expected:   c.Expected,
				Want:       c.Accept,
				Got:        v.Accepted,
				Similarity: v.Similarity,
				Reason:     v.Reason.String(),
			}
			results = append(results, r)

			sum.Cases++
			switch {
			case r.Got == r.Want:
				sum.Correct++
			case r.Got:
				sum.FalseAccepts++
			default:
				sum.FalseRejects++
			}

			if r.Got != r.Want && *showMisses {
				fmt.Printf("  MISS %q vs %q: got %v (%.2f, %s)", c.Transcript, c.Expected, r.Got, r.Similarity, r.Reason)
				if c.Note != "" {
					fmt.Printf(" [%s]", c.Note)
				}
				fmt.Println()
			}
		}
	}

	var ordered []*ScriptSummary
	for script, sum := range summaries {
		if sum.Cases > 0 {
			sum.Accuracy = float64(sum.Correct) / float64(sum.Cases)
			sum.MeanLatencyNs = (latency[script] / time.Duration(sum.Cases)).Nanoseconds()
		}
		ordered = append(ordered, sum)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Script < ordered[j].Script })

	// Write results
	os.MkdirAll(*outputDir, 0755)
	resultsFile := filepath.Join(*outputDir, fmt.Sprintf("calibration_%s.json",
		time.Now().Format("2006-01-02_15-04-05")))

	output := map[string]interface{}{
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"iterations": *iterations,
		"summary":    ordered,
		"results":    results,
	}

	data, _ = json.MarshalIndent(output, "", "  ")
	if err := os.WriteFile(resultsFile, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
	} else {
		fmt.Printf("\nResults written to: %s\n", resultsFile)
	}

	// Print summary table
	printSummary(ordered)
}

func printSummary(summaries []*ScriptSummary) {
	if len(summaries) == 0 {
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("CALIBRATION SUMMARY")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("%-14s %9s %7s %9s %8s %8s %9s\n", "Script", "Threshold", "Cases", "Accuracy", "FalseAcc", "FalseRej", "Latency")
	fmt.Println(strings.Repeat("-", 70))

	for _, s := range summaries {
		fmt.Printf("%-14s %9.2f %7d %8.1f%% %8d %8d %7dns\n",
			s.Script, s.Threshold, s.Cases, s.Accuracy*100, s.FalseAccepts, s.FalseRejects, s.MeanLatencyNs)
	}

	fmt.Println(strings.Repeat("=", 70))
}
