// Package schema defines lesson, step and language data structures for lingoland.
package schema

import (
	"fmt"
	"strings"
)

// Script selects matching thresholds and hint style.
type Script int

const (
	ScriptLatin Script = iota
	ScriptLogographic
)

func (s Script) String() string {
	switch s {
	case ScriptLatin:
		return "latin"
	case ScriptLogographic:
		return "logographic"
	}
	return fmt.Sprintf("Script(%d)", int(s))
}

// ParseScript parses "latin" or "logographic".
func ParseScript(s string) (Script, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "latin":
		return ScriptLatin, nil
	case "logographic":
		return ScriptLogographic, nil
	}
	return ScriptLatin, fmt.Errorf("unknown script: %q", s)
}

// LangCode identifies a lesson language, e.g. "en".
type LangCode string

// Language describes a language a lesson can be played in.
type Language struct {
	Code        LangCode
	DisplayName string
	Locale      string // BCP-47 locale for speech, e.g. "en-US"
	Script      Script
	Filler      []string // tokens used to pad tile banks, in preference order
}

// SupportedLanguages lists the language codes every lesson must carry,
// in display order.
var SupportedLanguages = []LangCode{"en", "es", "zh"}

var languages = map[LangCode]Language{
	"en": {
		Code:        "en",
		DisplayName: "English",
		Locale:      "en-US",
		Script:      ScriptLatin,
		Filler: []string{
			"Hello", "Hi", "name", "is", "My", "your", "What's", "Nice", "to",
			"meet", "you", "you.", "name?", "Hello!", "Hi!",
		},
	},
	"es": {
		Code:        "es",
		DisplayName: "Spanish",
		Locale:      "es-ES",
		Script:      ScriptLatin,
		Filler: []string{
			"Hola", "¡Hola!", "Hi", "Me", "llamo", "¿Cómo", "te", "llamas?", "Mucho", "gusto.",
		},
	},
	"zh": {
		Code:        "zh",
		DisplayName: "Mandarin",
		Locale:      "zh-CN",
		Script:      ScriptLogographic,
		Filler: []string{
			"你", "我叫", "你好！", "嗨！", "叫什么", "名字？", "很高兴", "认识", "你。",
		},
	},
}

// LookupLanguage returns the language registered under code.
func LookupLanguage(code string) (Language, bool) {
	lang, ok := languages[LangCode(strings.ToLower(strings.TrimSpace(code)))]
	return lang, ok
}

// MustLanguage is LookupLanguage for codes known at compile time.
func MustLanguage(code LangCode) Language {
	lang, ok := languages[code]
	if !ok {
		panic(fmt.Sprintf("lingoland: unknown language %q", code))
	}
	return lang
}

// NameSlot is replaced by the learner's chosen name in lesson text.
const NameSlot = "{name}"

// SubstituteName fills every name slot in s.
func SubstituteName(s, name string) string {
	return strings.ReplaceAll(s, NameSlot, name)
}

// HasNameSlot reports whether s contains a name slot.
func HasNameSlot(s string) bool {
	return strings.Contains(s, NameSlot)
}
