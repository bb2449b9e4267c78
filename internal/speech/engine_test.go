package speech

import (
	"errors"
	"testing"
	"time"

	"lingoland/internal/loop"
	"lingoland/internal/schema"
)

type fakeSession struct {
	rec     *fakeRecognizer
	deliver func(Event)
	stopped bool
}

func (s *fakeSession) Stop() {
	if !s.stopped {
		s.stopped = true
		s.rec.live--
	}
}

type fakeRecognizer struct {
	unavailable bool
	startErr    error
	sessions    []*fakeSession
	live        int
	locales     []string
}

func (r *fakeRecognizer) Available() bool { return !r.unavailable }

func (r *fakeRecognizer) Start(locale string, deliver func(Event)) (Session, error) {
	if r.startErr != nil {
		return nil, r.startErr
	}
	s := &fakeSession{rec: r, deliver: deliver}
	r.sessions = append(r.sessions, s)
	r.locales = append(r.locales, locale)
	r.live++
	return s, nil
}

// emit delivers ev on the most recent session.
func (r *fakeRecognizer) emit(ev Event) {
	r.sessions[len(r.sessions)-1].deliver(ev)
}

type fakeSpeaker struct {
	spoken  []string
	cancels int
}

func (s *fakeSpeaker) Speak(text, locale string) error {
	s.spoken = append(s.spoken, text+"@"+locale)
	return nil
}

func (s *fakeSpeaker) Cancel() { s.cancels++ }

type harness struct {
	e       *Engine
	m       *loop.Manual
	rec     *fakeRecognizer
	spk     *fakeSpeaker
	correct []string
	tries   []Attempt
}

func newHarness(script schema.Script, items ...Item) *harness {
	h := &harness{m: loop.NewManual(), rec: &fakeRecognizer{}, spk: &fakeSpeaker{}}
	h.e = New(items, Options{
		Speaker:    h.spk,
		Recognizer: h.rec,
		Scheduler:  h.m,
		Script:     script,
		OnCorrect:  func(key string) { h.correct = append(h.correct, key) },
		OnAttempt:  func(a Attempt) { h.tries = append(h.tries, a) },
	})
	return h
}

var hello = Item{Key: "hello", Expected: "Hello!", Locale: "en-US"}
var name = Item{Key: "name", Expected: "What's your name?", Locale: "en-US"}

func TestPronounceScenario(t *testing.T) {
	h := newHarness(schema.ScriptLatin, hello)

	if err := h.e.Start("hello"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h.e.State("hello") != Listening {
		t.Fatalf("state = %v, want listening", h.e.State("hello"))
	}
	if h.spk.cancels != 1 {
		t.Error("playback not cancelled before capture")
	}
	if h.rec.locales[0] != "en-US" {
		t.Errorf("locale = %s", h.rec.locales[0])
	}

	h.rec.emit(Result("yellow"))
	if h.e.State("hello") != Listening {
		t.Error("event applied before the loop ran it")
	}
	h.m.Flush()

	if h.e.State("hello") != Wrong {
		t.Fatalf("state = %v, want wrong", h.e.State("hello"))
	}
	if h.e.LastHeard("hello") != "yellow" {
		t.Errorf("LastHeard = %q", h.e.LastHeard("hello"))
	}
	if h.rec.live != 0 {
		t.Error("session left open after result")
	}

	h.m.Advance(1199 * time.Millisecond)
	if h.e.State("hello") != Wrong {
		t.Error("reverted early")
	}
	h.m.Advance(time.Millisecond)
	if h.e.State("hello") != Idle {
		t.Fatalf("state = %v, want idle after revert", h.e.State("hello"))
	}

	h.e.Start("hello")
	h.rec.emit(Result("hello"))
	h.m.Flush()

	if h.e.State("hello") != Correct {
		t.Fatalf("state = %v, want correct", h.e.State("hello"))
	}
	if len(h.correct) != 1 || h.correct[0] != "hello" {
		t.Errorf("OnCorrect calls = %v", h.correct)
	}
	if err := h.e.Start("hello"); err != ErrAlreadyCorrect {
		t.Errorf("Start after correct = %v, want ErrAlreadyCorrect", err)
	}
	if len(h.tries) != 2 || h.tries[0].Verdict.Accepted || !h.tries[1].Verdict.Accepted {
		t.Errorf("attempts = %+v", h.tries)
	}
}

func TestRetryFromWrongSupersedesRevert(t *testing.T) {
	h := newHarness(schema.ScriptLatin, hello)

	h.e.Start("hello")
	h.rec.emit(Result("goodbye"))
	h.m.Flush()

	h.m.Advance(600 * time.Millisecond)
	h.e.Start("hello")
	h.rec.emit(Result("nope"))
	h.m.Flush()

	// The first revert would fire here and must not cut the second Wrong short.
	h.m.Advance(700 * time.Millisecond)
	if h.e.State("hello") != Wrong {
		t.Fatalf("state = %v, want wrong", h.e.State("hello"))
	}
	h.m.Advance(500 * time.Millisecond)
	if h.e.State("hello") != Idle {
		t.Errorf("state = %v, want idle", h.e.State("hello"))
	}
}

func TestCaptureErrors(t *testing.T) {
	tests := []struct {
		code     string
		category Category
		message  string
	}{
		{"not-allowed", PermissionDenied, "Microphone permission blocked. Allow microphone access and try again."},
		{"service-not-allowed", PermissionDenied, "Microphone permission blocked. Allow microphone access and try again."},
		{"no-speech", NoSpeech, "I didn't hear anything. Try again and speak louder."},
		{"network", Generic, "Speech recognition error. Try again."},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			h := newHarness(schema.ScriptLatin, hello)
			h.e.Start("hello")
			h.rec.emit(Failed(tt.code))
			h.m.Flush()

			if h.e.State("hello") != Idle {
				t.Errorf("state = %v, want idle", h.e.State("hello"))
			}
			ce := h.e.LastError()
			if ce == nil || ce.Category != tt.category || ce.Message() != tt.message {
				t.Fatalf("LastError = %+v", ce)
			}
			if len(h.tries) != 1 || h.tries[0].Err == nil {
				t.Errorf("attempts = %+v", h.tries)
			}

			// Immediate retry is allowed and clears the message.
			if err := h.e.Start("hello"); err != nil || h.e.LastError() != nil {
				t.Errorf("retry: err=%v lastErr=%v", err, h.e.LastError())
			}
		})
	}
}

func TestEndWithoutResult(t *testing.T) {
	h := newHarness(schema.ScriptLatin, hello)

	h.e.Start("hello")
	h.rec.emit(Started())
	h.m.Flush()
	if h.e.State("hello") != Listening {
		t.Fatal("Started event changed state")
	}

	h.rec.emit(Ended())
	h.m.Flush()
	if h.e.State("hello") != Idle || h.e.Active() != "" {
		t.Errorf("state = %v active = %q", h.e.State("hello"), h.e.Active())
	}
	if h.e.LastError() != nil {
		t.Error("silent end surfaced an error")
	}
}

func TestResultThenEnd(t *testing.T) {
	h := newHarness(schema.ScriptLatin, hello)

	h.e.Start("hello")
	h.rec.emit(Result("hello"))
	h.rec.emit(Ended())
	h.m.Flush()

	if h.e.State("hello") != Correct {
		t.Errorf("state = %v, want correct", h.e.State("hello"))
	}
}

func TestCancelBeforeStart(t *testing.T) {
	h := newHarness(schema.ScriptLatin, hello, name)

	h.e.Start("hello")
	first := h.rec.sessions[0]
	firstID := h.e.sessionID

	if err := h.e.Start("hello"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if h.rec.live != 1 {
		t.Fatalf("live sessions = %d, want 1", h.rec.live)
	}
	if !first.stopped {
		t.Error("first session not stopped")
	}
	if h.e.sessionID == firstID {
		t.Error("session id reused")
	}

	// A late result from the torn-down session is ignored.
	first.deliver(Result("hello"))
	h.m.Flush()
	if h.e.State("hello") != Listening {
		t.Errorf("stale event applied: state = %v", h.e.State("hello"))
	}

	if err := h.e.Start("name"); err != ErrBusy {
		t.Errorf("Start(other) = %v, want ErrBusy", err)
	}
	if h.rec.live != 1 {
		t.Errorf("live sessions = %d after busy", h.rec.live)
	}
}

func TestStop(t *testing.T) {
	h := newHarness(schema.ScriptLatin, hello)

	if h.e.Stop() {
		t.Error("Stop while idle = true")
	}

	h.e.Start("hello")
	if !h.e.Stop() {
		t.Fatal("Stop while listening = false")
	}
	if h.e.State("hello") != Idle || h.rec.live != 0 {
		t.Errorf("state = %v live = %d", h.e.State("hello"), h.rec.live)
	}

	h.rec.emit(Result("hello"))
	h.m.Flush()
	if h.e.State("hello") != Idle {
		t.Error("event after Stop applied")
	}
}

func TestUnavailable(t *testing.T) {
	h := newHarness(schema.ScriptLatin, hello)
	h.rec.unavailable = true

	if err := h.e.Start("hello"); err != ErrCapabilityUnavailable {
		t.Fatalf("Start = %v, want ErrCapabilityUnavailable", err)
	}
	if h.e.State("hello") != Idle {
		t.Error("unavailable capture entered listening")
	}
	if h.e.Notice() != UnavailableNotice {
		t.Errorf("Notice = %q", h.e.Notice())
	}

	nilRec := New([]Item{hello}, Options{})
	if err := nilRec.Start("hello"); err != ErrCapabilityUnavailable {
		t.Errorf("nil recognizer Start = %v", err)
	}
}

func TestStartFailure(t *testing.T) {
	h := newHarness(schema.ScriptLatin, hello)
	h.rec.startErr = errors.New("device busy")

	err := h.e.Start("hello")
	var ce *CaptureError
	if !errors.As(err, &ce) || ce.Code != CodeStartFailed {
		t.Fatalf("Start = %v, want start-failed CaptureError", err)
	}
	if h.e.State("hello") != Idle || h.e.Active() != "" {
		t.Error("failed start left item listening")
	}
	if ce.Message() != "Could not start the microphone. Try again." {
		t.Errorf("Message = %q", ce.Message())
	}
}

func TestPlayStopsCapture(t *testing.T) {
	h := newHarness(schema.ScriptLatin, hello)

	h.e.Start("hello")
	if err := h.e.Play("hello"); err != nil {
		t.Fatal(err)
	}
	if h.e.State("hello") != Idle || h.rec.live != 0 {
		t.Error("capture still open during playback")
	}
	if len(h.spk.spoken) != 1 || h.spk.spoken[0] != "Hello!@en-US" {
		t.Errorf("spoken = %v", h.spk.spoken)
	}
	if err := h.e.Play("missing"); err != ErrUnknownItem {
		t.Errorf("Play(missing) = %v", err)
	}
}

func TestClose(t *testing.T) {
	h := newHarness(schema.ScriptLatin, hello, name)

	h.e.Start("name")
	h.rec.emit(Result("no"))
	h.m.Flush()
	h.e.Start("hello")
	h.e.Close()

	if h.rec.live != 0 {
		t.Error("Close leaked a session")
	}
	if h.m.Pending() != 0 {
		t.Errorf("Close left %d timers", h.m.Pending())
	}
	h.rec.emit(Result("hello"))
	h.m.Flush()
	if h.e.State("hello") == Correct {
		t.Error("closed engine accepted an event")
	}
}

func TestLogographicThreshold(t *testing.T) {
	h := newHarness(schema.ScriptLogographic, Item{Key: "nice", Expected: "很高兴认识你。", Locale: "zh-CN"})

	h.e.Start("nice")
	h.rec.emit(Result("很高兴见到你"))
	h.m.Flush()

	if h.e.State("nice") != Correct {
		t.Errorf("state = %v, want correct under logographic threshold", h.e.State("nice"))
	}
}
