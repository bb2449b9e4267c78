package player

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// voices maps a speech locale to an espeak-ng voice.
var voices = map[string]string{
	"en-US": "en-us",
	"es-ES": "es",
	"zh-CN": "cmn",
}

// Voice returns the synthesizer voice for locale, falling back to the
// language part of the locale.
func Voice(locale string) string {
	if v, ok := voices[locale]; ok {
		return v
	}
	lang, _, _ := strings.Cut(locale, "-")
	return strings.ToLower(lang)
}

// ExecSpeaker speaks by running an external synthesizer such as espeak-ng.
// Only one utterance plays at a time; Cancel kills the one in flight.
type ExecSpeaker struct {
	path string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewExecSpeaker resolves command on PATH.
func NewExecSpeaker(command string) (*ExecSpeaker, error) {
	if command == "" {
		return nil, fmt.Errorf("no speech command configured")
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("speech command %q: %w", command, err)
	}
	return &ExecSpeaker{path: path}, nil
}

// Speak starts speaking text and returns without waiting for it to finish.
func (s *ExecSpeaker) Speak(text, locale string) error {
	s.Cancel()

	cmd := exec.Command(s.path, "-v", Voice(locale), text)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()

	go func() {
		cmd.Wait()
		s.mu.Lock()
		if s.cmd == cmd {
			s.cmd = nil
		}
		s.mu.Unlock()
	}()
	return nil
}

// Cancel stops the utterance in flight, if any.
func (s *ExecSpeaker) Cancel() {
	s.mu.Lock()
	cmd := s.cmd
	s.cmd = nil
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		cmd.Process.Kill()
	}
}
