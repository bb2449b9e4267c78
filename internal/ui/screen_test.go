package ui

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/pterm/pterm"

	"lingoland/internal/content"
	"lingoland/internal/lesson"
	"lingoland/internal/loop"
	"lingoland/internal/schema"
)

func plain(s string) string {
	return pterm.RemoveColorFromString(s)
}

func newController(t *testing.T, language string) *lesson.Controller {
	t.Helper()
	l, err := content.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	c, err := lesson.New(l, language, lesson.Options{
		Scheduler: loop.NewManual(),
		Rand:      rand.New(rand.NewSource(3)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestBar(t *testing.T) {
	tests := []struct {
		done, total int
		want        string
	}{
		{0, 4, "□□□□"},
		{2, 4, "■■□□"},
		{4, 4, "■■■■"},
		{0, 0, "□□□□"},
		{9, 4, "■■■■"},
	}
	for _, tt := range tests {
		if got := plain(Bar(tt.done, tt.total, 4)); got != tt.want {
			t.Errorf("Bar(%d, %d) = %q, want %q", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestScreenListen(t *testing.T) {
	c := newController(t, "en")
	screen := plain(Screen(c))

	for _, want := range []string{"[1/7]", "English", "0/", "1. Hello!", "◀ prev", "next ▶"} {
		if !strings.Contains(screen, want) {
			t.Errorf("screen missing %q:\n%s", want, screen)
		}
	}

	a := c.Activity().(*lesson.ListenActivity)
	a.Play(0)
	if !strings.Contains(plain(Screen(c)), "✓ 1. ") {
		t.Error("heard item not marked")
	}
}

func TestScreenMatchHidesAudioText(t *testing.T) {
	c := newController(t, "zh")
	a := c.Activity().(*lesson.ListenActivity)
	for i := range a.Items {
		a.Play(i)
	}
	if err := c.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	screen := plain(Screen(c))
	if !strings.Contains(screen, "🔊") {
		t.Errorf("audio cards not shown:\n%s", screen)
	}
	if !strings.Contains(screen, "Mandarin") {
		t.Error("language display name missing")
	}
}

func TestScreenCompleted(t *testing.T) {
	tasks := map[schema.LangCode][]string{}
	for _, code := range schema.SupportedLanguages {
		tasks[code] = []string{"Say: Hola"}
	}
	l := &schema.Lesson{ID: "one", Title: "Greetings", Steps: []schema.Step{
		&schema.AssessmentStep{StepHeader: schema.StepHeader{StepID: "check"}, Tasks: tasks},
	}}
	c, err := lesson.New(l, "es", lesson.Options{Scheduler: loop.NewManual()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !strings.Contains(plain(Screen(c)), "complete ✓") {
		t.Error("complete not offered on the last step")
	}
	if err := c.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	screen := plain(Screen(c))
	for _, want := range []string{"Lesson complete", "Greetings", "Spanish"} {
		if !strings.Contains(screen, want) {
			t.Errorf("completed screen missing %q:\n%s", want, screen)
		}
	}
}
