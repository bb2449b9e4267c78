package player

import (
	"errors"
	"math/rand"
	"strconv"
	"testing"

	"lingoland/internal/content"
	"lingoland/internal/lesson"
	"lingoland/internal/loop"
	"lingoland/internal/speech"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line    string
		want    string
		args    int
		wantErr error
	}{
		{"next", "next", 0, nil},
		{"  N  ", "next", 0, nil},
		{"tap 1 3", "tap", 2, nil},
		{"say 2", "say", 1, nil},
		{"q", "quit", 0, nil},
		{"", "", 0, ErrEmpty},
		{"dance", "", 0, ErrUnknownCommand},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := Parse(tt.line)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.line, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.line, err)
			}
			if cmd.Name != tt.want || len(cmd.Args) != tt.args {
				t.Errorf("Parse(%q) = %+v", tt.line, cmd)
			}
		})
	}

	if _, err := Parse("tap 1"); err == nil {
		t.Error("Parse(tap 1) accepted a missing argument")
	}
	cmd, _ := Parse("play x")
	if _, err := cmd.Index(0); err == nil {
		t.Error("Index accepted a non-number")
	}
	cmd, _ = Parse("play 0")
	if _, err := cmd.Index(0); err == nil {
		t.Error("Index accepted position 0")
	}
}

func TestVoice(t *testing.T) {
	tests := map[string]string{
		"en-US": "en-us",
		"zh-CN": "cmn",
		"fr-FR": "fr",
		"de":    "de",
	}
	for locale, want := range tests {
		if got := Voice(locale); got != want {
			t.Errorf("Voice(%q) = %q, want %q", locale, got, want)
		}
	}
}

func TestTypedRecognizer(t *testing.T) {
	r := NewTypedRecognizer()
	if r.Feed("hello") {
		t.Fatal("Feed consumed a line with no session")
	}

	tests := []struct {
		line string
		want []speech.EventKind
		code string
	}{
		{"hello", []speech.EventKind{speech.EventStarted, speech.EventResult, speech.EventEnded}, ""},
		{"", []speech.EventKind{speech.EventStarted, speech.EventEnded}, ""},
		{InputDeny, []speech.EventKind{speech.EventStarted, speech.EventError, speech.EventEnded}, speech.CodeNotAllowed},
		{InputSilence, []speech.EventKind{speech.EventStarted, speech.EventError, speech.EventEnded}, speech.CodeNoSpeech},
	}
	for _, tt := range tests {
		var got []speech.Event
		if _, err := r.Start("en-US", func(ev speech.Event) { got = append(got, ev) }); err != nil {
			t.Fatalf("Start: %v", err)
		}
		if !r.Listening() {
			t.Fatal("Listening() = false after Start")
		}
		if !r.Feed(tt.line) {
			t.Fatalf("Feed(%q) not consumed", tt.line)
		}
		if r.Listening() {
			t.Error("Listening() = true after Feed")
		}
		if len(got) != len(tt.want) {
			t.Fatalf("Feed(%q) events = %v", tt.line, got)
		}
		for i := range tt.want {
			if got[i].Kind != tt.want[i] {
				t.Errorf("Feed(%q) event %d = %v, want %v", tt.line, i, got[i].Kind, tt.want[i])
			}
		}
		if tt.code != "" && got[1].Code != tt.code {
			t.Errorf("Feed(%q) code = %q", tt.line, got[1].Code)
		}
	}

	s, _ := r.Start("en-US", func(speech.Event) {})
	s.Stop()
	if r.Listening() || r.Feed("late") {
		t.Error("stopped session still takes input")
	}
}

type recordingSpeaker struct{ spoken []string }

func (s *recordingSpeaker) Speak(text, locale string) error {
	s.spoken = append(s.spoken, text)
	return nil
}

func (s *recordingSpeaker) Cancel() {}

func newPlayer(t *testing.T, capture bool) (*Player, *loop.Manual, *recordingSpeaker) {
	t.Helper()
	l, err := content.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	m := loop.NewManual()
	spk := &recordingSpeaker{}
	p, err := New(l, Options{
		Language:  "en",
		Speaker:   spk,
		Capture:   capture,
		Scheduler: m,
		Rand:      rand.New(rand.NewSource(7)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, m, spk
}

func run(t *testing.T, p *Player, m *loop.Manual, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if _, err := p.Input(line); err != nil {
			t.Fatalf("Input(%q): %v", line, err)
		}
		m.Flush()
	}
}

func TestPlayerListenThenSay(t *testing.T) {
	p, m, spk := newPlayer(t, true)
	c := p.Controller()

	if _, err := p.Input("next"); !errors.Is(err, lesson.ErrGateClosed) {
		t.Fatalf("next on fresh step = %v", err)
	}
	if _, err := p.Input("left 1"); !errors.Is(err, ErrNotHere) {
		t.Errorf("left on listen step = %v", err)
	}

	items := c.Activity().(*lesson.ListenActivity).Items
	for i := range items {
		run(t, p, m, "play "+strconv.Itoa(i+1))
	}
	if len(spk.spoken) != len(items) {
		t.Errorf("spoken %d, want %d", len(spk.spoken), len(items))
	}
	if _, err := p.Input("play 99"); err == nil {
		t.Error("play 99 accepted")
	}
	run(t, p, m, "next")

	// Skip the matching game by solving it through the engine.
	g := c.Activity().(*lesson.MatchActivity).Game
	for !g.Done() {
		for i := 0; i < g.Total(); i++ {
			for j := 0; j < g.Total(); j++ {
				p.Execute(Command{Name: "left", Args: []string{strconv.Itoa(i + 1)}})
				p.Execute(Command{Name: "right", Args: []string{strconv.Itoa(j + 1)}})
				m.Flush()
			}
		}
	}
	run(t, p, m, "next")

	say := c.Activity().(*lesson.PronounceActivity)
	run(t, p, m, "say 1")
	if !p.Listening() || say.State(0) != speech.Listening {
		t.Fatalf("not listening after say 1: %v", say.State(0))
	}
	run(t, p, m, InputSilence)
	if say.State(0) != speech.Idle || say.LastError() == nil {
		t.Fatalf("after silence: state %v err %v", say.State(0), say.LastError())
	}
	run(t, p, m, "say 1", "stop")
	if p.Listening() || say.State(0) != speech.Idle || say.LastHeard(0) != "" {
		t.Fatalf("after stop: listening=%v state %v heard %q", p.Listening(), say.State(0), say.LastHeard(0))
	}
	if _, err := p.Input("stop"); err != nil {
		t.Errorf("stop while idle = %v", err)
	}
	run(t, p, m, "say 1", say.Items[0].Text)
	if say.State(0) != speech.Correct {
		t.Errorf("State(0) = %v after saying %q", say.State(0), say.Items[0].Text)
	}

	if quit, _ := p.Input("quit"); !quit {
		t.Error("quit did not quit")
	}
}

func TestPlayerWithoutCapture(t *testing.T) {
	p, m, _ := newPlayer(t, false)
	c := p.Controller()

	for c.Index() < 2 {
		switch a := c.Activity().(type) {
		case *lesson.ListenActivity:
			for i := range a.Items {
				a.Play(i)
			}
		case *lesson.MatchActivity:
			for i := 0; i < a.Game.Total(); i++ {
				for j := 0; j < a.Game.Total(); j++ {
					a.TapLeft(i)
					a.TapRight(j)
				}
			}
		}
		m.Flush()
		run(t, p, m, "next")
	}

	say := c.Activity().(*lesson.PronounceActivity)
	if say.Notice() == "" {
		t.Error("no capability notice without capture")
	}
	if _, err := p.Input("say 1"); !errors.Is(err, speech.ErrCapabilityUnavailable) {
		t.Errorf("say 1 = %v, want ErrCapabilityUnavailable", err)
	}
	if p.Listening() {
		t.Error("listening without capture")
	}
}
