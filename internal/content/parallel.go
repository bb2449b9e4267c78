package content

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"lingoland/internal/schema"
)

// ParallelConfig configures concurrent loading.
type ParallelConfig struct {
	Workers int // Number of parallel workers (0 or 1 = sequential)
}

// FileResult holds the outcome for a single lesson file.
type FileResult struct {
	Path   string
	Lesson *schema.Lesson
	Error  error
}

// ProgressCallback is called as each file finishes loading.
type ProgressCallback func(path string, result *FileResult)

// ExpandPaths turns files and directories into a sorted list of lesson
// files. Directories are walked for *.json.
func ExpandPaths(args []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".json") {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// LoadAll loads and validates every path. Results keep the input order.
func LoadAll(paths []string, config ParallelConfig, callback ProgressCallback) []*FileResult {
	results := make([]*FileResult, len(paths))

	if config.Workers <= 1 {
		for i, p := range paths {
			results[i] = loadOne(p)
			if callback != nil {
				callback(p, results[i])
			}
		}
		return results
	}

	type job struct {
		index int
		path  string
	}
	type done struct {
		index  int
		result *FileResult
	}

	jobs := make(chan job, len(paths))
	resultsChan := make(chan done, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				resultsChan <- done{j.index, loadOne(j.path)}
			}
		}()
	}

	for i, p := range paths {
		jobs <- job{i, p}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for r := range resultsChan {
		results[r.index] = r.result
		if callback != nil {
			callback(r.result.Path, r.result)
		}
	}

	return results
}

// LoadEmbedded loads every lesson compiled into the binary. Paths are
// reported as "embedded:<name>".
func LoadEmbedded() []*FileResult {
	var results []*FileResult
	for _, name := range EmbeddedNames() {
		lesson, err := Embedded(name)
		results = append(results, &FileResult{Path: "embedded:" + name, Lesson: lesson, Error: err})
	}
	return results
}

func loadOne(path string) *FileResult {
	lesson, err := LoadFile(path)
	return &FileResult{Path: path, Lesson: lesson, Error: err}
}

// LoadStats summarizes a LoadAll run.
type LoadStats struct {
	Files   int            `json:"files"`
	Valid   int            `json:"valid"`
	Invalid int            `json:"invalid"`
	Steps   int            `json:"steps"`
	ByKind  map[string]int `json:"by_kind"`
}

// AggregateResults computes statistics from load results.
func AggregateResults(results []*FileResult) *LoadStats {
	stats := &LoadStats{
		Files:  len(results),
		ByKind: make(map[string]int),
	}

	for _, r := range results {
		if r.Error != nil {
			stats.Invalid++
			continue
		}
		stats.Valid++
		stats.Steps += r.Lesson.Len()
		for _, s := range r.Lesson.Steps {
			stats.ByKind[s.Kind().String()]++
		}
	}

	return stats
}
