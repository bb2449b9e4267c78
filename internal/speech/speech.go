// Package speech runs listen-and-check attempts against a speech recognizer
// and defines the playback and capture capabilities the lesson consumes.
package speech

import (
	"errors"
	"fmt"
)

// Speaker plays text aloud. Speak is fire-and-forget; Cancel stops any
// playback in flight.
type Speaker interface {
	Speak(text, locale string) error
	Cancel()
}

// Recognizer opens capture sessions. deliver may be called from any
// goroutine and receives at most one terminal event per session.
type Recognizer interface {
	Available() bool
	Start(locale string, deliver func(Event)) (Session, error)
}

// Session is one open capture. Stop is idempotent.
type Session interface {
	Stop()
}

// EventKind tags capture events.
type EventKind int

const (
	EventStarted EventKind = iota
	EventResult
	EventError
	EventEnded
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventResult:
		return "result"
	case EventError:
		return "error"
	case EventEnded:
		return "ended"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is delivered by a recognizer session.
type Event struct {
	Kind       EventKind
	Transcript string // EventResult
	Code       string // EventError
}

// Started, Result, Failed and Ended build events.
func Started() Event           { return Event{Kind: EventStarted} }
func Result(text string) Event { return Event{Kind: EventResult, Transcript: text} }
func Failed(code string) Event { return Event{Kind: EventError, Code: code} }
func Ended() Event             { return Event{Kind: EventEnded} }

// AttemptState is the per-item attempt state.
type AttemptState int

const (
	Idle AttemptState = iota
	Listening
	Correct
	Wrong
)

func (s AttemptState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Correct:
		return "correct"
	case Wrong:
		return "wrong"
	}
	return fmt.Sprintf("AttemptState(%d)", int(s))
}

var (
	// ErrCapabilityUnavailable means no recognizer is usable here.
	ErrCapabilityUnavailable = errors.New("speech capture unavailable")
	// ErrBusy means another item is already listening.
	ErrBusy = errors.New("another attempt is in progress")
	// ErrAlreadyCorrect means the item has been accepted already.
	ErrAlreadyCorrect = errors.New("item already correct")
	// ErrUnknownItem means the key does not name an item of this engine.
	ErrUnknownItem = errors.New("unknown item")
)

// UnavailableNotice is shown while capture is unavailable.
const UnavailableNotice = "Speech recognition is not available here. You can still listen, but speaking steps can't be completed."

// Category groups device error codes into what the learner is told.
type Category int

const (
	Generic Category = iota
	PermissionDenied
	NoSpeech
)

func (c Category) String() string {
	switch c {
	case PermissionDenied:
		return "permission-denied"
	case NoSpeech:
		return "no-speech"
	}
	return "generic"
}

// Device codes with special handling.
const (
	CodeNotAllowed        = "not-allowed"
	CodeServiceNotAllowed = "service-not-allowed"
	CodeNoSpeech          = "no-speech"
	CodeStartFailed       = "start-failed"
)

// CaptureError is a recoverable capture failure.
type CaptureError struct {
	Category Category
	Code     string
}

// ClassifyCode maps a device error code to a CaptureError.
func ClassifyCode(code string) *CaptureError {
	switch code {
	case CodeNotAllowed, CodeServiceNotAllowed:
		return &CaptureError{Category: PermissionDenied, Code: code}
	case CodeNoSpeech:
		return &CaptureError{Category: NoSpeech, Code: code}
	}
	return &CaptureError{Category: Generic, Code: code}
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture error (%s): %s", e.Category, e.Code)
}

// Message returns the text shown to the learner.
func (e *CaptureError) Message() string {
	switch {
	case e.Code == CodeStartFailed:
		return "Could not start the microphone. Try again."
	case e.Category == PermissionDenied:
		return "Microphone permission blocked. Allow microphone access and try again."
	case e.Category == NoSpeech:
		return "I didn't hear anything. Try again and speak louder."
	}
	return "Speech recognition error. Try again."
}
