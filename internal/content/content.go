// Package content loads lesson documents from files, directories, URLs and
// the lesson compiled into the binary.
package content

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lingoland/internal/schema"
)

//go:embed data/*.json
var embedded embed.FS

// DefaultLessonFile is the embedded lesson played when none is configured.
const DefaultLessonFile = "lesson-01.json"

// Parse decodes and validates a lesson document.
func Parse(data []byte) (*schema.Lesson, error) {
	var lesson schema.Lesson
	if err := json.Unmarshal(data, &lesson); err != nil {
		return nil, fmt.Errorf("failed to decode lesson: %w", err)
	}
	if err := lesson.Validate(); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// LoadFile reads and validates a lesson file.
func LoadFile(path string) (*schema.Lesson, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lesson: %w", err)
	}
	lesson, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lesson, nil
}

// Default returns the embedded lesson.
func Default() (*schema.Lesson, error) {
	return Embedded(DefaultLessonFile)
}

// Embedded loads a lesson compiled into the binary by file name.
func Embedded(name string) (*schema.Lesson, error) {
	data, err := embedded.ReadFile("data/" + name)
	if err != nil {
		return nil, fmt.Errorf("no embedded lesson %q: %w", name, err)
	}
	return Parse(data)
}

// EmbeddedNames lists the lessons compiled into the binary.
func EmbeddedNames() []string {
	entries, err := embedded.ReadDir("data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// Resolve loads path, an http(s) URL cached under cacheDir, or the
// embedded default when path is empty.
func Resolve(path, cacheDir string) (*schema.Lesson, error) {
	switch {
	case path == "":
		return Default()
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		local, err := Download(path, cacheDir, false)
		if err != nil {
			return nil, err
		}
		return LoadFile(local)
	}
	return LoadFile(path)
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Download fetches a lesson document into cacheDir and returns its local
// path. A cached copy is reused unless force is set.
func Download(url, cacheDir string, force bool) (string, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}

	name := filepath.Base(url)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if name == "" || name == "." || name == "/" {
		name = "lesson.json"
	}
	cachedPath := filepath.Join(cacheDir, name)

	if !force && fileExists(cachedPath) {
		return cachedPath, nil
	}

	resp, err := httpClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	// Write to a temp file so a failed transfer never leaves a partial lesson
	// where the cache lookup would find it.
	tmp, err := os.CreateTemp(cacheDir, name+".*.part")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), cachedPath); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return cachedPath, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
