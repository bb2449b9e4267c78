package content

import (
	"strings"

	"lingoland/internal/schema"
)

// Phrase is one thing a learner may be asked to say or hear.
type Phrase struct {
	StepID string `json:"step"`
	Text   string `json:"text"`
}

// Phrases lists the lesson's phrases in code with the name slot filled,
// in step order and without duplicates.
func Phrases(l *schema.Lesson, code schema.LangCode, name string) []Phrase {
	var out []Phrase
	seen := make(map[string]bool)
	add := func(step, text string) {
		text = strings.TrimSpace(schema.SubstituteName(text, name))
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		out = append(out, Phrase{StepID: step, Text: text})
	}

	for _, s := range l.Steps {
		id := s.ID()
		switch s := s.(type) {
		case *schema.ListenStep:
			for _, it := range s.ItemsFor(code) {
				add(id, it.Speech())
			}
		case *schema.MatchStep:
			for _, it := range s.ItemsFor(code) {
				add(id, it.Speech())
			}
		case *schema.PronounceStep:
			for _, it := range s.ItemsFor(code) {
				add(id, it.Speech())
			}
		case *schema.BuildStep:
			for _, b := range s.SentencesFor(code) {
				add(id, b.Text)
			}
		case *schema.ConversationStep:
			for _, line := range s.ScriptFor(code) {
				add(id, line.Text)
			}
		case *schema.FillBlankStep:
			for _, p := range s.PairsFor(code) {
				add(id, p.Filled())
			}
		}
	}
	return out
}
