// Package hint derives the pronunciation aids shown after a rejected attempt.
package hint

import (
	"regexp"
	"strings"

	"lingoland/internal/normalizer"
	"lingoland/internal/schema"
)

// Separators used when rendering a Latin hint.
const (
	SyllableSep = " • "
	WordSep     = "   "
)

// syllable approximates one syllable: leading consonants, a vowel run and
// an optional trailing non-vowel run.
var syllable = regexp.MustCompile(`[bcdfghjklmnpqrstvwxyz]*[aeiouy]+(?:[^aeiouy]+)?`)

// Hint returns the visual aid for text in the given script.
func Hint(text string, script schema.Script) string {
	if script == schema.ScriptLogographic {
		return SpacedCharacters(text)
	}
	return Syllables(text)
}

// Syllables splits each word of text into approximate syllables. A word
// with no vowel group is returned as written.
func Syllables(text string) string {
	words := strings.Fields(text)
	out := make([]string, 0, len(words))

	for _, word := range words {
		parts := syllable.FindAllString(letters(word), -1)
		if len(parts) == 0 {
			out = append(out, word)
			continue
		}
		out = append(out, strings.Join(parts, SyllableSep))
	}
	return strings.Join(out, WordSep)
}

// letters lowercases word, folds accents and keeps only a-z and apostrophes.
func letters(word string) string {
	var b strings.Builder
	for _, r := range normalizer.CleanDisplay(word) {
		for _, f := range normalizer.FoldChar(r) {
			if (f >= 'a' && f <= 'z') || f == '\'' {
				b.WriteRune(f)
			}
		}
	}
	return b.String()
}

// SpacedCharacters puts a space between every character of the trimmed text.
func SpacedCharacters(text string) string {
	runes := []rune(strings.TrimSpace(text))
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}

// Aid is what the player shows under an item after a miss.
type Aid struct {
	Primary  string // syllables, pinyin or spaced characters
	Phonetic string // optional second line, e.g. a rough IPA rendering
}

// ForItem builds the aid for a vocabulary item in lang. Logographic items
// prefer their authored phonetic annotation; Latin items always show
// syllables plus the annotation or a rule-based transcription.
func ForItem(item schema.VocabItem, lang schema.Language) Aid {
	text := item.Speech()

	if lang.Script == schema.ScriptLogographic {
		if p := strings.TrimSpace(item.Phonetic); p != "" {
			return Aid{Primary: p}
		}
		return Aid{Primary: SpacedCharacters(text)}
	}

	aid := Aid{Primary: Syllables(text)}
	if p := strings.TrimSpace(item.Phonetic); p != "" {
		aid.Phonetic = p
	} else if ipa := NewTranscriber(lang.Code).TranscribePhrase(text); ipa != "" {
		aid.Phonetic = "/" + ipa + "/"
	}
	return aid
}

// ForText is ForItem for free text such as a conversation line.
func ForText(text string, lang schema.Language) Aid {
	return ForItem(schema.VocabItem{Text: text}, lang)
}
