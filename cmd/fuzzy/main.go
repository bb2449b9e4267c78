// lingoland-fuzzy - check a transcript against a lesson's phrases using a BK-tree.
// Usage: lingoland-fuzzy [options] <transcript>
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"lingoland/internal/config"
	"lingoland/internal/content"
	"lingoland/internal/matcher"
	"lingoland/internal/normalizer"
	"lingoland/internal/schema"
	"lingoland/internal/similarity"

	"github.com/spf13/pflag"
)

type result struct {
	Phrase     string  `json:"phrase"`
	Step       string  `json:"step"`
	Distance   int     `json:"distance"`
	Similarity float64 `json:"similarity"`
	Accepted   bool    `json:"accepted"`
	Reason     string  `json:"reason"`
}

func main() {
	// Flags
	lessonPath := pflag.StringP("lesson", "f", config.DefaultLesson(), "Lesson file (empty = built-in lesson)")
	language := pflag.StringP("language", "L", config.DefaultLanguage(), "Lesson language")
	name := pflag.StringP("name", "N", config.DefaultName(), "Name substituted into phrases")
	maxDistance := pflag.IntP("distance", "n", 8, "Maximum edit distance")
	limit := pflag.IntP("limit", "l", 10, "Maximum results to show")
	jsonOutput := pflag.BoolP("json", "j", false, "Output as JSON")

	pflag.Parse()

	if pflag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: lingoland-fuzzy [options] <transcript>")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		pflag.PrintDefaults()
		os.Exit(1)
	}

	transcript := strings.Join(pflag.Args(), " ")

	lang, ok := schema.LookupLanguage(*language)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown language %q (available: %s)\n", *language, config.AvailableLanguagesStr())
		os.Exit(1)
	}

	lesson, err := content.Resolve(*lessonPath, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Build BK-tree over normalized phrases
	tree := similarity.NewBKTree()
	steps := make(map[string]string)
	for _, p := range content.Phrases(lesson, lang.Code, *name) {
		tree.Insert(normalizer.Normalize(p.Text), p.Text)
		steps[p.Text] = p.StepID
	}

	// Search
	query := normalizer.Normalize(transcript)
	exact := tree.Contains(query)
	var results []result
	for _, hit := range tree.Search(query, *maxDistance) {
		for _, phrase := range hit.Phrases {
			v := matcher.Evaluate(transcript, phrase, lang.Script)
			results = append(results, result{
				Phrase:     phrase,
				Step:       steps[phrase],
				Distance:   hit.Distance,
				Similarity: v.Similarity,
				Accepted:   v.Accepted,
				Reason:     v.Reason.String(),
			})
		}
	}

	// Sort by distance, then alphabetically
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Phrase < results[j].Phrase
	})

	// Limit results
	if *limit > 0 && len(results) > *limit {
		results = results[:*limit]
	}

	// Output
	if *jsonOutput {
		output := struct {
			Transcript string   `json:"transcript"`
			Normalized string   `json:"normalized"`
			Language   string   `json:"language"`
			Threshold  float64  `json:"threshold"`
			MaxDist    int      `json:"max_distance"`
			Indexed    int      `json:"indexed"`
			Exact      bool     `json:"exact"`
			Count      int      `json:"count"`
			Results    []result `json:"results"`
		}{
			Transcript: transcript,
			Normalized: query,
			Language:   string(lang.Code),
			Threshold:  matcher.Threshold(lang.Script),
			MaxDist:    *maxDistance,
			Indexed:    tree.Size(),
			Exact:      exact,
			Count:      len(results),
			Results:    results,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(output)
		return
	}

	if len(results) == 0 {
		fmt.Printf("No phrases within distance %d of %q (%d indexed)\n", *maxDistance, query, tree.Size())
		return
	}

	fmt.Printf("Phrases near %q (%s, threshold %.2f, %d indexed):\n", query, lang.DisplayName, matcher.Threshold(lang.Script), tree.Size())
	if exact {
		fmt.Println("  exact lesson phrase")
	}
	fmt.Println()
	for _, r := range results {
		mark := "✗"
		if r.Accepted {
			mark = "✓"
		}
		fmt.Printf("  %s %s (distance: %d, similarity: %.2f, %s)\n", mark, r.Phrase, r.Distance, r.Similarity, r.Reason)
	}
	fmt.Printf("\n%d result(s) found\n", len(results))
}
