package player

import (
	"strings"

	"lingoland/internal/speech"
)

// Inputs that simulate capture failures.
const (
	InputDeny    = "!deny"
	InputSilence = "!silence"
	InputFail    = "!fail"
)

// TypedRecognizer is a speech.Recognizer whose transcripts are typed. A
// started session takes the next input line as its result.
type TypedRecognizer struct {
	session *typedSession
}

type typedSession struct {
	r       *TypedRecognizer
	deliver func(speech.Event)
	stopped bool
}

// NewTypedRecognizer returns a recognizer with no open session.
func NewTypedRecognizer() *TypedRecognizer {
	return &TypedRecognizer{}
}

func (r *TypedRecognizer) Available() bool { return true }

func (r *TypedRecognizer) Start(locale string, deliver func(speech.Event)) (speech.Session, error) {
	if r.session != nil {
		r.session.Stop()
	}
	s := &typedSession{r: r, deliver: deliver}
	r.session = s
	deliver(speech.Started())
	return s, nil
}

func (s *typedSession) Stop() {
	s.stopped = true
	if s.r.session == s {
		s.r.session = nil
	}
}

// Listening reports whether a session is waiting for input.
func (r *TypedRecognizer) Listening() bool {
	return r.session != nil
}

// Feed hands one input line to the open session and closes it. It reports
// whether a session consumed the line.
func (r *TypedRecognizer) Feed(line string) bool {
	s := r.session
	if s == nil {
		return false
	}
	r.session = nil

	switch text := strings.TrimSpace(line); text {
	case "":
	case InputDeny:
		s.deliver(speech.Failed(speech.CodeNotAllowed))
	case InputSilence:
		s.deliver(speech.Failed(speech.CodeNoSpeech))
	case InputFail:
		s.deliver(speech.Failed("audio-capture"))
	default:
		s.deliver(speech.Result(text))
	}
	s.deliver(speech.Ended())
	return true
}
