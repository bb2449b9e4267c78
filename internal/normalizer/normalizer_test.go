package normalizer

import (
	"testing"
)

func TestFoldChar(t *testing.T) {
	tests := []struct {
		name     string
		input    rune
		expected string
	}{
		// Spanish
		{"spanish o acute", 'ó', "o"},
		{"spanish n tilde", 'ñ', "n"},
		{"spanish N tilde", 'Ñ', "n"},
		{"spanish u diaeresis", 'ü', "u"},

		// Other Latin
		{"german eszett", 'ß', "ss"},
		{"french e grave", 'è', "e"},
		{"polish l stroke", 'ł', "l"},

		// Logographic passthrough
		{"chinese wo", '我', "我"},

		// ASCII passthrough
		{"ascii lowercase", 'a', "a"},
		{"ascii uppercase", 'A', "a"},
		{"ascii digit", '7', "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FoldChar(tt.input)
			if result != tt.expected {
				t.Errorf("FoldChar(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "Hello!", "hello"},
		{"collapse whitespace", "  My   name\tis  Alex. ", "my name is alex"},
		{"curly apostrophe", "What’s your name?", "what's your name"},
		{"ellipsis", "Hello… there", "hello there"},
		{"three dots", "Well...ok", "wellok"},
		{"non-breaking space", "Mucho\u00a0gusto.", "mucho gusto"},
		{"spanish accents", "¿Cómo te llamas?", "como te llamas"},
		{"spanish exclamation", "¡Hola!", "hola"},
		{"chinese punctuation", "你好！", "你好"},
		{"chinese mixed", "我叫 Alex。", "我叫 alex"},
		{"digits kept", "Room 101", "room 101"},
		{"punctuation only", "?!…", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.input)
			if result != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeDecomposedInput(t *testing.T) {
	// "como" typed with a combining acute accent must equal the precomposed form.
	decomposed := "Co\u0301mo"
	if Normalize(decomposed) != Normalize("Cómo") {
		t.Errorf("decomposed %q = %q, precomposed = %q",
			decomposed, Normalize(decomposed), Normalize("Cómo"))
	}
}

func TestIsLogographic(t *testing.T) {
	if !IsLogographic('你') {
		t.Error("IsLogographic(你) = false, want true")
	}
	if IsLogographic('a') || IsLogographic('！') {
		t.Error("IsLogographic returned true for a non-ideograph")
	}
}

func TestCleanDisplay(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"What’s your name?", "What's your name?"},
		{"  Hi…  ", "Hi"},
		{"Mucho\u00a0gusto.", "Mucho gusto."},
	}

	for _, tt := range tests {
		if got := CleanDisplay(tt.input); got != tt.expected {
			t.Errorf("CleanDisplay(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func BenchmarkNormalize(b *testing.B) {
	phrases := []string{"My name is Alex.", "¿Cómo te llamas?", "很高兴认识你。", "What’s your name?"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, p := range phrases {
			Normalize(p)
		}
	}
}
