package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StepKind tags the step variants.
type StepKind int

const (
	KindListen StepKind = iota
	KindMatch
	KindPronounce
	KindBuild
	KindConversation
	KindFillBlank
	KindAssessment
)

var kindNames = map[StepKind]string{
	KindListen:       "listen",
	KindMatch:        "match",
	KindPronounce:    "pronounce",
	KindBuild:        "build",
	KindConversation: "conversation",
	KindFillBlank:    "fill_blank",
	KindAssessment:   "assessment",
}

// kindAliases accepts the tags used by older lesson files.
var kindAliases = map[string]StepKind{
	"vocab": KindMatch,
	"game":  KindFillBlank,
}

func (k StepKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// ParseStepKind parses a step type tag.
func ParseStepKind(s string) (StepKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown step type: %q", s)
}

// VocabItem is a single word or phrase the learner hears, matches or says.
type VocabItem struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	SpeechText string `json:"ttsText,omitempty"`
	Locale     string `json:"ttsLang,omitempty"`
	Phonetic   string `json:"pinyin,omitempty"`
	Concept    string `json:"concept,omitempty"`
}

// Speech returns the text to synthesize and to compare transcripts against.
func (v VocabItem) Speech() string {
	if s := strings.TrimSpace(v.SpeechText); s != "" {
		return s
	}
	return strings.TrimSpace(v.Text)
}

// LocaleOr returns the item's locale, or def when none was authored.
func (v VocabItem) LocaleOr(def string) string {
	if l := strings.TrimSpace(v.Locale); l != "" {
		return l
	}
	return def
}

// Step is one page of a lesson. The concrete types are *ListenStep,
// *MatchStep, *PronounceStep, *BuildStep, *ConversationStep,
// *FillBlankStep and *AssessmentStep.
type Step interface {
	ID() string
	Title() string
	Kind() StepKind

	// hasLanguage reports whether the step carries a payload for code.
	hasLanguage(code LangCode) bool
}

// StepHeader holds the fields shared by all steps.
type StepHeader struct {
	StepID    string `json:"id"`
	StepTitle string `json:"title"`
}

func (h StepHeader) ID() string    { return h.StepID }
func (h StepHeader) Title() string { return h.StepTitle }

// ListenStep: tap each item to hear it.
type ListenStep struct {
	StepHeader
	Items map[LangCode][]VocabItem `json:"itemsByLanguage"`
}

func (s *ListenStep) Kind() StepKind { return KindListen }

func (s *ListenStep) hasLanguage(code LangCode) bool { return len(s.Items[code]) > 0 }

// ItemsFor returns the items for a language.
func (s *ListenStep) ItemsFor(code LangCode) []VocabItem { return s.Items[code] }

// MatchStep: pair audio cues with their written form.
type MatchStep struct {
	StepHeader
	Items map[LangCode][]VocabItem `json:"itemsByLanguage"`
}

func (s *MatchStep) Kind() StepKind { return KindMatch }

func (s *MatchStep) hasLanguage(code LangCode) bool { return len(s.Items[code]) > 0 }

// ItemsFor returns the items for a language.
func (s *MatchStep) ItemsFor(code LangCode) []VocabItem { return s.Items[code] }

// PronounceStep: say each item aloud until it is accepted.
type PronounceStep struct {
	StepHeader
	Items map[LangCode][]VocabItem `json:"itemsByLanguage"`
}

func (s *PronounceStep) Kind() StepKind { return KindPronounce }

func (s *PronounceStep) hasLanguage(code LangCode) bool { return len(s.Items[code]) > 0 }

// ItemsFor returns the items for a language.
func (s *PronounceStep) ItemsFor(code LangCode) []VocabItem { return s.Items[code] }

// BuildSentence is one target sentence for the tile builder. Tiles and
// Text may contain a name slot.
type BuildSentence struct {
	Key         string   `json:"key"`
	Text        string   `json:"tts"`
	Locale      string   `json:"ttsLang,omitempty"`
	Tiles       []string `json:"tiles"`
	Distractors []string `json:"distractors,omitempty"`
}

// WithName returns a copy with every name slot filled.
func (b BuildSentence) WithName(name string) BuildSentence {
	out := BuildSentence{
		Key:         b.Key,
		Text:        SubstituteName(b.Text, name),
		Locale:      b.Locale,
		Tiles:       make([]string, len(b.Tiles)),
		Distractors: make([]string, len(b.Distractors)),
	}
	for i, t := range b.Tiles {
		out.Tiles[i] = SubstituteName(t, name)
	}
	for i, t := range b.Distractors {
		out.Distractors[i] = SubstituteName(t, name)
	}
	return out
}

// UsesName reports whether any part of the sentence has a name slot.
func (b BuildSentence) UsesName() bool {
	if HasNameSlot(b.Text) {
		return true
	}
	for _, t := range append(append([]string(nil), b.Tiles...), b.Distractors...) {
		if HasNameSlot(t) {
			return true
		}
	}
	return false
}

// BuildStep: reconstruct sentences from tiles.
type BuildStep struct {
	StepHeader
	Names     []string                     `json:"names"`
	Sentences map[LangCode][]BuildSentence `json:"sentencesByLanguage"`
}

func (s *BuildStep) Kind() StepKind { return KindBuild }

func (s *BuildStep) hasLanguage(code LangCode) bool { return len(s.Sentences[code]) > 0 }

// SentencesFor returns the sentence templates for a language.
func (s *BuildStep) SentencesFor(code LangCode) []BuildSentence { return s.Sentences[code] }

// HasName reports whether name is one of the step's selectable names.
func (s *BuildStep) HasName(name string) bool {
	for _, n := range s.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Speaker says who delivers a conversation line.
type Speaker string

const (
	SpeakerApp     Speaker = "app"
	SpeakerLearner Speaker = "learner"
)

// Line is one conversation turn.
type Line struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Required reports whether the learner must say this line.
func (l Line) Required() bool {
	return l.Speaker == SpeakerLearner && strings.TrimSpace(l.Text) != ""
}

// ConversationStep: alternate app and learner lines; learner lines are spoken.
type ConversationStep struct {
	StepHeader
	Scripts map[LangCode][]Line `json:"scriptByLanguage"`
}

func (s *ConversationStep) Kind() StepKind { return KindConversation }

func (s *ConversationStep) hasLanguage(code LangCode) bool { return len(s.Scripts[code]) > 0 }

// ScriptFor returns the conversation lines for a language.
func (s *ConversationStep) ScriptFor(code LangCode) []Line { return s.Scripts[code] }

// BlankSlot marks the gap in a fill-in-the-blank sentence.
const BlankSlot = "____"

// BlankPair pairs a word with the sentence it completes.
type BlankPair struct {
	Word     string `json:"left"`
	Sentence string `json:"right"`
}

// Filled returns the sentence with the word in its slot.
func (p BlankPair) Filled() string {
	if strings.Contains(p.Sentence, BlankSlot) {
		return strings.Replace(p.Sentence, BlankSlot, p.Word, 1)
	}
	return p.Sentence
}

// FillBlankStep: match words to the sentences they complete.
type FillBlankStep struct {
	StepHeader
	Pairs map[LangCode][]BlankPair `json:"pairsByLanguage"`
}

func (s *FillBlankStep) Kind() StepKind { return KindFillBlank }

func (s *FillBlankStep) hasLanguage(code LangCode) bool { return len(s.Pairs[code]) > 0 }

// PairsFor returns the word/sentence pairs for a language.
func (s *FillBlankStep) PairsFor(code LangCode) []BlankPair { return s.Pairs[code] }

// AssessmentStep: a read-only task list.
type AssessmentStep struct {
	StepHeader
	Tasks map[LangCode][]string `json:"tasksByLanguage"`
}

func (s *AssessmentStep) Kind() StepKind { return KindAssessment }

func (s *AssessmentStep) hasLanguage(code LangCode) bool { return len(s.Tasks[code]) > 0 }

// TasksFor returns the tasks for a language with the name slot filled.
func (s *AssessmentStep) TasksFor(code LangCode, name string) []string {
	tasks := make([]string, len(s.Tasks[code]))
	for i, t := range s.Tasks[code] {
		tasks[i] = SubstituteName(t, name)
	}
	return tasks
}

// Lesson is an ordered, immutable sequence of steps.
type Lesson struct {
	ID    string
	Title string
	Steps []Step

	// Glossary maps display text to a phonetic reading per language, used
	// for tiles and lines that are not vocabulary items.
	Glossary map[LangCode]map[string]string
}

// Len returns the number of steps.
func (l *Lesson) Len() int {
	return len(l.Steps)
}

// Gloss returns the phonetic reading of text in code, or "". The name slot
// is matched in its template form and filled in the result.
func (l *Lesson) Gloss(code LangCode, text, name string) string {
	g := l.Glossary[code]
	if g == nil {
		return ""
	}
	raw := strings.TrimSpace(text)
	if hit, ok := g[raw]; ok {
		return SubstituteName(hit, name)
	}
	if name != "" && strings.Contains(raw, name) {
		if hit, ok := g[strings.ReplaceAll(raw, name, NameSlot)]; ok {
			return SubstituteName(hit, name)
		}
	}
	return ""
}

type lessonJSON struct {
	ID       string                         `json:"id"`
	Title    string                         `json:"title"`
	Steps    []json.RawMessage              `json:"steps"`
	Glossary map[LangCode]map[string]string `json:"glossaryByLanguage,omitempty"`
}

// UnmarshalJSON decodes the step list by its "type" tag.
func (l *Lesson) UnmarshalJSON(data []byte) error {
	var raw lessonJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.ID = raw.ID
	l.Title = raw.Title
	l.Glossary = raw.Glossary
	l.Steps = make([]Step, 0, len(raw.Steps))

	for i, msg := range raw.Steps {
		step, err := decodeStep(msg)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		l.Steps = append(l.Steps, step)
	}
	return nil
}

func decodeStep(msg json.RawMessage) (Step, error) {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &tag); err != nil {
		return nil, err
	}
	kind, err := ParseStepKind(tag.Type)
	if err != nil {
		return nil, err
	}

	var step Step
	switch kind {
	case KindListen:
		step = &ListenStep{}
	case KindMatch:
		step = &MatchStep{}
	case KindPronounce:
		step = &PronounceStep{}
	case KindBuild:
		step = &BuildStep{}
	case KindConversation:
		step = &ConversationStep{}
	case KindFillBlank:
		step = &FillBlankStep{}
	case KindAssessment:
		step = &AssessmentStep{}
	}

	if err := json.Unmarshal(msg, step); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return step, nil
}
