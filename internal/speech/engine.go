package speech

import (
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"lingoland/internal/logging"
	"lingoland/internal/loop"
	"lingoland/internal/matcher"
	"lingoland/internal/schema"
)

// DefaultWrongRevert is how long a rejected attempt shows as Wrong.
const DefaultWrongRevert = 1200 * time.Millisecond

// Item is one phrase the learner must say.
type Item struct {
	Key      string
	Expected string
	Locale   string
}

// Attempt reports the end of one capture for metrics.
type Attempt struct {
	Key     string
	Verdict *matcher.Verdict // set for a transcript
	Err     *CaptureError    // set for a capture failure
}

// Options wires an engine to its surroundings. Speaker and Recognizer may
// be nil: playback then degrades silently and capture is unavailable.
type Options struct {
	Speaker     Speaker
	Recognizer  Recognizer
	Scheduler   loop.Scheduler
	Script      schema.Script
	WrongRevert time.Duration
	Logger      *pterm.Logger

	OnCorrect func(key string)
	OnAttempt func(Attempt)
	OnChange  func()
}

// Engine runs attempts for a fixed set of items, one capture at a time.
// All methods must be called from the loop goroutine; recognizer events are
// posted back to it through the Scheduler.
type Engine struct {
	items  map[string]Item
	order  []string
	states map[string]AttemptState
	heard  map[string]string
	revert map[string]loop.Timer

	active    string // key of the listening item
	session   Session
	sessionID uuid.UUID
	gen       uint64 // bumped whenever a session is torn down
	lastErr   *CaptureError
	closed    bool

	opts Options
	log  *pterm.Logger
}

// New returns an engine with every item Idle.
func New(items []Item, opts Options) *Engine {
	if opts.WrongRevert <= 0 {
		opts.WrongRevert = DefaultWrongRevert
	}
	e := &Engine{
		items:  make(map[string]Item, len(items)),
		order:  make([]string, 0, len(items)),
		states: make(map[string]AttemptState, len(items)),
		heard:  make(map[string]string),
		revert: make(map[string]loop.Timer),
		opts:   opts,
		log:    logging.OrDiscard(opts.Logger),
	}
	for _, it := range items {
		if _, dup := e.items[it.Key]; dup {
			continue
		}
		e.items[it.Key] = it
		e.order = append(e.order, it.Key)
		e.states[it.Key] = Idle
	}
	return e
}

// Available reports whether capture can be attempted at all.
func (e *Engine) Available() bool {
	return e.opts.Recognizer != nil && e.opts.Recognizer.Available()
}

// Notice returns the persistent capability notice, or "".
func (e *Engine) Notice() string {
	if !e.Available() {
		return UnavailableNotice
	}
	return ""
}

// LastError returns the most recent capture failure, cleared on Start.
func (e *Engine) LastError() *CaptureError {
	return e.lastErr
}

// Keys returns the item keys in construction order.
func (e *Engine) Keys() []string {
	return e.order
}

// Item returns the item for key.
func (e *Engine) Item(key string) (Item, bool) {
	it, ok := e.items[key]
	return it, ok
}

// State returns key's attempt state.
func (e *Engine) State(key string) AttemptState {
	return e.states[key]
}

// LastHeard returns the last transcript received for key.
func (e *Engine) LastHeard(key string) string {
	return e.heard[key]
}

// Active returns the key currently listening, or "".
func (e *Engine) Active() string {
	return e.active
}

// CorrectCount returns the number of accepted items.
func (e *Engine) CorrectCount() int {
	n := 0
	for _, s := range e.states {
		if s == Correct {
			n++
		}
	}
	return n
}

// Total returns the number of items.
func (e *Engine) Total() int {
	return len(e.order)
}

// Start begins an attempt for key. Playback is cancelled and any session
// this engine holds is torn down first. Another item listening is ErrBusy.
func (e *Engine) Start(key string) error {
	it, ok := e.items[key]
	if !ok || e.closed {
		return ErrUnknownItem
	}
	if e.states[key] == Correct {
		return ErrAlreadyCorrect
	}
	if e.active != "" && e.active != key {
		return ErrBusy
	}
	if !e.Available() {
		e.log.Warn("speech capture unavailable", e.log.Args("key", key))
		return ErrCapabilityUnavailable
	}

	if e.opts.Speaker != nil {
		e.opts.Speaker.Cancel()
	}
	e.teardown()
	e.stopRevert(key)
	e.lastErr = nil

	e.states[key] = Listening
	e.active = key
	e.sessionID = uuid.New()
	gen := e.gen

	e.log.Debug("capture start", e.log.Args("key", key, "session", e.sessionID.String(), "locale", it.Locale))

	session, err := e.opts.Recognizer.Start(it.Locale, func(ev Event) {
		e.post(func() { e.handle(gen, key, ev) })
	})
	if err != nil {
		e.log.Warn("capture start failed", e.log.Args("key", key, "error", err.Error()))
		e.fail(key, &CaptureError{Category: Generic, Code: CodeStartFailed})
		return e.lastErr
	}
	if gen != e.gen {
		// The session finished before Start returned.
		session.Stop()
		return nil
	}
	e.session = session
	e.changed()
	return nil
}

// Stop ends the capture in progress. It does nothing when idle.
func (e *Engine) Stop() bool {
	if e.active == "" {
		return false
	}
	key := e.active
	e.log.Debug("capture stop", e.log.Args("key", key, "session", e.sessionID.String()))
	e.teardown()
	e.states[key] = Idle
	e.changed()
	return true
}

// Play speaks key's expected phrase. Any capture is stopped first so the
// recognizer never hears the playback.
func (e *Engine) Play(key string) error {
	it, ok := e.items[key]
	if !ok || e.closed {
		return ErrUnknownItem
	}
	e.Stop()
	if e.opts.Speaker == nil {
		e.log.Warn("no speaker, playback skipped", e.log.Args("key", key))
		return nil
	}
	e.opts.Speaker.Cancel()
	return e.opts.Speaker.Speak(it.Expected, it.Locale)
}

// Close tears down the session and every pending timer. Late events from
// the recognizer are dropped.
func (e *Engine) Close() {
	e.teardown()
	for key := range e.revert {
		e.stopRevert(key)
	}
	e.closed = true
}

func (e *Engine) handle(gen uint64, key string, ev Event) {
	if e.closed || gen != e.gen || e.active != key {
		e.log.Trace("stale capture event", e.log.Args("key", key, "event", ev.Kind.String()))
		return
	}

	switch ev.Kind {
	case EventStarted:
		e.log.Debug("capture started", e.log.Args("key", key))

	case EventResult:
		e.teardown()
		e.heard[key] = ev.Transcript
		it := e.items[key]
		v := matcher.Evaluate(ev.Transcript, it.Expected, e.opts.Script)
		e.log.Debug("capture result", e.log.Args(
			"key", key,
			"transcript", ev.Transcript,
			"accepted", v.Accepted,
			"similarity", v.Similarity,
			"reason", v.Reason.String(),
		))
		if e.opts.OnAttempt != nil {
			e.opts.OnAttempt(Attempt{Key: key, Verdict: &v})
		}

		if v.Accepted {
			e.states[key] = Correct
			if e.opts.OnCorrect != nil {
				e.opts.OnCorrect(key)
			}
		} else {
			e.states[key] = Wrong
			e.scheduleRevert(key)
		}
		e.changed()

	case EventError:
		e.log.Debug("capture error", e.log.Args("key", key, "code", ev.Code))
		e.fail(key, ClassifyCode(ev.Code))

	case EventEnded:
		e.log.Debug("capture ended", e.log.Args("key", key))
		e.teardown()
		if e.states[key] == Listening {
			e.states[key] = Idle
		}
		e.changed()
	}
}

func (e *Engine) fail(key string, ce *CaptureError) {
	e.teardown()
	e.lastErr = ce
	e.states[key] = Idle
	if e.opts.OnAttempt != nil {
		e.opts.OnAttempt(Attempt{Key: key, Err: ce})
	}
	e.changed()
}

func (e *Engine) scheduleRevert(key string) {
	if e.opts.Scheduler == nil {
		return
	}
	var t loop.Timer
	t = e.opts.Scheduler.AfterFunc(e.opts.WrongRevert, func() {
		if e.revert[key] != t {
			return
		}
		delete(e.revert, key)
		if e.states[key] == Wrong {
			e.states[key] = Idle
			e.changed()
		}
	})
	e.revert[key] = t
}

func (e *Engine) stopRevert(key string) {
	if t, ok := e.revert[key]; ok {
		t.Stop()
		delete(e.revert, key)
	}
}

// teardown stops the open session, if any, and invalidates its events.
func (e *Engine) teardown() {
	if e.session != nil {
		e.session.Stop()
		e.session = nil
	}
	e.active = ""
	e.sessionID = uuid.Nil
	e.gen++
}

func (e *Engine) post(fn func()) {
	if e.opts.Scheduler == nil {
		fn()
		return
	}
	e.opts.Scheduler.Post(fn)
}

func (e *Engine) changed() {
	if e.opts.OnChange != nil {
		e.opts.OnChange()
	}
}
