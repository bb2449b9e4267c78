package matcher

import (
	"testing"

	"lingoland/internal/schema"
)

func TestIsAcceptableMatch(t *testing.T) {
	latin, logo := schema.ScriptLatin, schema.ScriptLogographic

	tests := []struct {
		name       string
		transcript string
		expected   string
		script     schema.Script
		want       bool
	}{
		{"exact after normalization", "hello", "Hello!", latin, true},
		{"rejected far", "yellow", "Hello!", latin, false},
		{"containment over-capture", "my name is alex please", "my name is alex", latin, true},
		{"containment under-capture", "my name is", "My name is Alex.", latin, true},
		{"short containment rejected", "hi there", "hi", latin, false},
		{"single letter inside phrase", "a", "My name is Alex.", latin, false},
		{"single word inside phrase", "is", "My name is Alex.", latin, false},
		{"short fragment of long phrase", "name is", "My name is Alex.", latin, false},
		{"accent folded", "como te llamas", "¿Cómo te llamas?", latin, true},
		{"curly apostrophe", "whats your name", "What’s your name?", latin, true},
		{"punctuation only", "?!", "?!", latin, false},
		{"empty transcript", "", "Hello!", latin, false},
		{"logographic exact", "你好", "你好！", logo, true},
		{"logographic near", "很高兴见到你", "很高兴认识你。", logo, true},
		{"logographic far", "再见", "你好！", logo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsAcceptableMatch(tt.transcript, tt.expected, tt.script)
			if got != tt.want {
				v := Evaluate(tt.transcript, tt.expected, tt.script)
				t.Errorf("IsAcceptableMatch(%q, %q, %v) = %v, want %v (verdict %+v)",
					tt.transcript, tt.expected, tt.script, got, tt.want, v)
			}
		})
	}
}

func TestReflexive(t *testing.T) {
	phrases := []string{"Hello!", "¡Hola!", "Mucho gusto.", "我叫 Alex。", "What's your name?", "a"}
	for _, p := range phrases {
		for _, script := range []schema.Script{schema.ScriptLatin, schema.ScriptLogographic} {
			if !IsAcceptableMatch(p, p, script) {
				t.Errorf("IsAcceptableMatch(%q, %q, %v) = false", p, p, script)
			}
		}
	}
}

func TestThresholdAsymmetry(t *testing.T) {
	// 20 characters with 7 substitutions: similarity 0.65.
	expected := "abcdefghijklmnopqrst"
	transcript := "xxxxxxxhijklmnopqrst"

	v := Evaluate(transcript, expected, schema.ScriptLatin)
	if v.Similarity < 0.649 || v.Similarity > 0.651 {
		t.Fatalf("similarity = %f, want 0.65", v.Similarity)
	}
	if v.Accepted {
		t.Error("latin accepted similarity 0.65")
	}
	if !IsAcceptableMatch(transcript, expected, schema.ScriptLogographic) {
		t.Error("logographic rejected similarity 0.65")
	}
}

func TestEvaluateReason(t *testing.T) {
	tests := []struct {
		transcript, expected string
		want                 Reason
	}{
		{"", "x", ReasonEmpty},
		{"Hello", "hello!", ReasonExact},
		{"my name is alex please", "my name is alex", ReasonContained},
		{"helo", "hello", ReasonSimilar},
		{"goodbye", "hello", ReasonTooDifferent},
	}
	for _, tt := range tests {
		v := Evaluate(tt.transcript, tt.expected, schema.ScriptLatin)
		if v.Reason != tt.want {
			t.Errorf("Evaluate(%q, %q).Reason = %v, want %v", tt.transcript, tt.expected, v.Reason, tt.want)
		}
	}
}

func BenchmarkIsAcceptableMatch(b *testing.B) {
	for i := 0; i < b.N; i++ {
		IsAcceptableMatch("me llamo alex y tu", "Me llamo Alex.", schema.ScriptLatin)
	}
}
