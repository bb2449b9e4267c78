package hint

import (
	"strings"
	"unicode"

	"lingoland/internal/schema"
)

// maxRule is the longest rule key, in runes.
const maxRule = 4

// Transcriber renders words in a rough IPA using longest-match rules.
type Transcriber struct {
	rules map[string]string
}

// NewTranscriber creates a transcriber for the given language. Languages
// without rules get a plain letter mapping.
func NewTranscriber(language schema.LangCode) *Transcriber {
	t := &Transcriber{}
	switch language {
	case "en":
		t.rules = englishRules
	case "es":
		t.rules = spanishRules
	default:
		t.rules = basicRules
	}
	return t
}

// Transcribe converts a single word. Non-letters are dropped.
func (t *Transcriber) Transcribe(word string) string {
	runes := []rune(strings.ToLower(word))
	var result strings.Builder

	i := 0
	for i < len(runes) {
		matched := false

		for length := min(maxRule, len(runes)-i); length > 0; length-- {
			if ipa, ok := t.rules[string(runes[i:i+length])]; ok {
				result.WriteString(ipa)
				i += length
				matched = true
				break
			}
		}

		if !matched {
			if unicode.IsLetter(runes[i]) {
				result.WriteRune(runes[i])
			}
			i++
		}
	}

	return result.String()
}

// TranscribePhrase transcribes each word of text and joins them with spaces.
func (t *Transcriber) TranscribePhrase(text string) string {
	var words []string
	for _, w := range strings.Fields(text) {
		if ipa := t.Transcribe(w); ipa != "" {
			words = append(words, ipa)
		}
	}
	return strings.Join(words, " ")
}

// Plain letter mapping (fallback)
var basicRules = map[string]string{
	"a": "a", "b": "b", "c": "k", "d": "d", "e": "e",
	"f": "f", "g": "g", "h": "h", "i": "i", "j": "dʒ",
	"k": "k", "l": "l", "m": "m", "n": "n", "o": "o",
	"p": "p", "q": "k", "r": "r", "s": "s", "t": "t",
	"u": "u", "v": "v", "w": "w", "x": "ks", "y": "j",
	"z": "z",
}

// English rules (simplified)
var englishRules = map[string]string{
	"th":   "ð",
	"ch":   "tʃ",
	"sh":   "ʃ",
	"ph":   "f",
	"wh":   "w",
	"ng":   "ŋ",
	"ck":   "k",
	"gh":   "",
	"kn":   "n",
	"wr":   "r",
	"ll":   "l",
	"tion": "ʃən",
	"igh":  "aɪ",
	"ould": "ʊd",
	"ee":   "iː",
	"ea":   "iː",
	"oo":   "uː",
	"ou":   "aʊ",
	"oy":   "ɔɪ",
	"ai":   "eɪ",
	"ay":   "eɪ",
	"ew":   "juː",
	"'s":   "s",
	"a":    "æ",
	"b":    "b",
	"c":    "k",
	"d":    "d",
	"e":    "ɛ",
	"f":    "f",
	"g":    "g",
	"h":    "h",
	"i":    "ɪ",
	"j":    "dʒ",
	"k":    "k",
	"l":    "l",
	"m":    "m",
	"n":    "n",
	"o":    "oʊ",
	"p":    "p",
	"q":    "k",
	"r":    "r",
	"s":    "s",
	"t":    "t",
	"u":    "ʌ",
	"v":    "v",
	"w":    "w",
	"x":    "ks",
	"y":    "j",
	"z":    "z",
}

// Spanish rules (Castilian, simplified)
var spanishRules = map[string]string{
	"ll": "ʝ",
	"rr": "r",
	"ch": "tʃ",
	"qu": "k",
	"gue": "ge",
	"gui": "gi",
	"ce": "θe",
	"ci": "θi",
	"ge": "xe",
	"gi": "xi",
	"ñ":  "ɲ",
	"á":  "a",
	"é":  "e",
	"í":  "i",
	"ó":  "o",
	"ú":  "u",
	"ü":  "w",
	"h":  "",
	"j":  "x",
	"v":  "b",
	"z":  "θ",
	"y":  "ʝ",
	"r":  "ɾ",
	"a":  "a",
	"b":  "b",
	"c":  "k",
	"d":  "d",
	"e":  "e",
	"f":  "f",
	"g":  "g",
	"i":  "i",
	"k":  "k",
	"l":  "l",
	"m":  "m",
	"n":  "n",
	"o":  "o",
	"p":  "p",
	"s":  "s",
	"t":  "t",
	"u":  "u",
	"w":  "w",
	"x":  "ks",
}
