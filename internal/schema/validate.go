package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ContentError reports a lesson authoring fault found at load time.
type ContentError struct {
	LessonID string
	StepID   string
	Language LangCode
	Reason   string
}

func (e *ContentError) Error() string {
	var b strings.Builder
	b.WriteString("lesson ")
	b.WriteString(e.LessonID)
	if e.StepID != "" {
		b.WriteString(": step ")
		b.WriteString(e.StepID)
	}
	if e.Language != "" {
		b.WriteString(" [")
		b.WriteString(string(e.Language))
		b.WriteString("]")
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// Validate checks that every step carries a usable payload for every
// supported language. All faults are returned joined.
func (l *Lesson) Validate() error {
	var errs []error
	fault := func(stepID string, code LangCode, format string, args ...any) {
		errs = append(errs, &ContentError{
			LessonID: l.ID,
			StepID:   stepID,
			Language: code,
			Reason:   fmt.Sprintf(format, args...),
		})
	}

	if strings.TrimSpace(l.ID) == "" {
		fault("", "", "missing id")
	}
	if len(l.Steps) == 0 {
		fault("", "", "no steps")
	}

	seen := make(map[string]bool, len(l.Steps))
	for i, step := range l.Steps {
		id := step.ID()
		if id == "" {
			id = fmt.Sprintf("#%d", i)
			fault(id, "", "missing step id")
		} else if seen[id] {
			fault(id, "", "duplicate step id")
		}
		seen[id] = true

		for _, code := range SupportedLanguages {
			if !step.hasLanguage(code) {
				fault(id, code, "missing %s payload", step.Kind())
				continue
			}
			for _, reason := range validatePayload(step, code) {
				fault(id, code, "%s", reason)
			}
		}
	}

	return errors.Join(errs...)
}

func validatePayload(step Step, code LangCode) []string {
	switch s := step.(type) {
	case *ListenStep:
		return validateItems(s.Items[code])
	case *MatchStep:
		return validateItems(s.Items[code])
	case *PronounceStep:
		return validateItems(s.Items[code])
	case *BuildStep:
		return validateSentences(s, code)
	case *ConversationStep:
		return validateScript(s.Scripts[code])
	case *FillBlankStep:
		return validatePairs(s.Pairs[code])
	}
	return nil
}

func validateItems(items []VocabItem) []string {
	var reasons []string
	ids := make(map[string]bool, len(items))
	for i, item := range items {
		if item.ID == "" {
			reasons = append(reasons, fmt.Sprintf("item %d: missing id", i))
		} else if ids[item.ID] {
			reasons = append(reasons, fmt.Sprintf("item %s: duplicate id", item.ID))
		}
		ids[item.ID] = true
		if item.Speech() == "" {
			reasons = append(reasons, fmt.Sprintf("item %s: empty text", item.ID))
		}
	}
	return reasons
}

func validateSentences(s *BuildStep, code LangCode) []string {
	var reasons []string
	keys := make(map[string]bool)
	for i, sent := range s.Sentences[code] {
		if sent.Key == "" {
			reasons = append(reasons, fmt.Sprintf("sentence %d: missing key", i))
		} else if keys[sent.Key] {
			reasons = append(reasons, fmt.Sprintf("sentence %s: duplicate key", sent.Key))
		}
		keys[sent.Key] = true
		if len(sent.Tiles) == 0 {
			reasons = append(reasons, fmt.Sprintf("sentence %s: no tiles", sent.Key))
		}
		if sent.UsesName() && len(s.Names) == 0 {
			reasons = append(reasons, fmt.Sprintf("sentence %s: uses %s but step has no names", sent.Key, NameSlot))
		}
	}
	return reasons
}

func validateScript(lines []Line) []string {
	var reasons []string
	for i, line := range lines {
		if line.Speaker != SpeakerApp && line.Speaker != SpeakerLearner {
			reasons = append(reasons, fmt.Sprintf("line %d: unknown speaker %q", i, line.Speaker))
		}
	}
	return reasons
}

func validatePairs(pairs []BlankPair) []string {
	var reasons []string
	words := make(map[string]bool, len(pairs))
	for i, p := range pairs {
		if strings.TrimSpace(p.Word) == "" || strings.TrimSpace(p.Sentence) == "" {
			reasons = append(reasons, fmt.Sprintf("pair %d: empty side", i))
			continue
		}
		if words[p.Word] {
			reasons = append(reasons, fmt.Sprintf("pair %d: duplicate word %q", i, p.Word))
		}
		words[p.Word] = true
	}
	return reasons
}
