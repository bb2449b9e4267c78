// Package matcher decides whether a speech transcript is close enough to the
// phrase the learner was asked to say.
package matcher

import (
	"strings"
	"unicode/utf8"

	"lingoland/internal/normalizer"
	"lingoland/internal/schema"
	"lingoland/internal/similarity"
)

// Acceptance thresholds on the similarity ratio.
const (
	LatinThreshold       = 0.72
	LogographicThreshold = 0.60
)

// MinContainLen is the normalized length (in runes) the contained string
// must reach before containment alone is accepted. Shorter fragments such as
// a single word go through the similarity ratio instead.
const MinContainLen = 10

// Reason says which rule produced a verdict.
type Reason int

const (
	ReasonEmpty Reason = iota
	ReasonExact
	ReasonContained
	ReasonSimilar
	ReasonTooDifferent
)

func (r Reason) String() string {
	switch r {
	case ReasonEmpty:
		return "empty"
	case ReasonExact:
		return "exact"
	case ReasonContained:
		return "contained"
	case ReasonSimilar:
		return "similar"
	case ReasonTooDifferent:
		return "too-different"
	}
	return "unknown"
}

// Verdict is the full outcome of one comparison.
type Verdict struct {
	Accepted   bool    `json:"accepted"`
	Reason     Reason  `json:"-"`
	Similarity float64 `json:"similarity"`
	Transcript string  `json:"transcript"` // normalized
	Expected   string  `json:"expected"`   // normalized
}

// Threshold returns the similarity bar for a script.
func Threshold(script schema.Script) float64 {
	if script == schema.ScriptLogographic {
		return LogographicThreshold
	}
	return LatinThreshold
}

// IsAcceptableMatch reports whether transcript is an acceptable rendition
// of expected.
func IsAcceptableMatch(transcript, expected string, script schema.Script) bool {
	return Evaluate(transcript, expected, script).Accepted
}

// Evaluate compares transcript against expected and explains the decision.
func Evaluate(transcript, expected string, script schema.Script) Verdict {
	a := normalizer.Normalize(transcript)
	b := normalizer.Normalize(expected)
	v := Verdict{Transcript: a, Expected: b}

	if a == "" || b == "" {
		v.Reason = ReasonEmpty
		return v
	}

	if a == b {
		v.Accepted = true
		v.Reason = ReasonExact
		v.Similarity = 1
		return v
	}

	v.Similarity = similarity.Ratio(a, b)

	longer, shorter := a, b
	if utf8.RuneCountInString(shorter) > utf8.RuneCountInString(longer) {
		longer, shorter = shorter, longer
	}
	if utf8.RuneCountInString(shorter) >= MinContainLen && strings.Contains(longer, shorter) {
		v.Accepted = true
		v.Reason = ReasonContained
		return v
	}

	if v.Similarity >= Threshold(script) {
		v.Accepted = true
		v.Reason = ReasonSimilar
		return v
	}

	v.Reason = ReasonTooDifferent
	return v
}
