package quizverify

import (
	"math"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "I am your lord, most high", "I am your lord, most high", 1},
		{"partial overlap", "the quick brown fox", "the lazy brown dog", 1.0 / 3.0},
		{"punctuation and case ignored", "Lord, MOST high!", "lord most high", 1},
		{"disjoint", "He denied everything", `He said, "I am your lord, most high"`, 0},
		{"short words dropped", "he is at an", "he is at an", 0},
		{"empty", "", "anything here", 0},
		{"duplicates collapse", "lord lord lord", "lord", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

var similarityCorpus = []string{
	"",
	"a",
	"He denied everything",
	`He said, "I am your lord, most high"`,
	"Then he gathered his people and called out",
	"Moses said: Our Lord is the one who gave everything its form",
	"Ἐν ἀρχῇ ἦν ὁ λόγος",
	"2 + 2 = 4",
	"lord LORD Lord",
}

func TestSimilaritySymmetric(t *testing.T) {
	for _, a := range similarityCorpus {
		for _, b := range similarityCorpus {
			ab, ba := Similarity(a, b), Similarity(b, a)
			if ab != ba {
				t.Errorf("Similarity(%q, %q) = %v but reversed = %v", a, b, ab, ba)
			}
			if ab < 0 || ab > 1 {
				t.Errorf("Similarity(%q, %q) = %v, outside [0,1]", a, b, ab)
			}
		}
	}
}

func TestSimilarityReflexive(t *testing.T) {
	for _, s := range similarityCorpus {
		if len(tokenSet(s)) == 0 {
			if got := Similarity(s, s); got != 0 {
				t.Errorf("Similarity(%q, %q) = %v, want 0 for token-less input", s, s, got)
			}
			continue
		}
		if got := Similarity(s, s); got != 1 {
			t.Errorf("Similarity(%q, %q) = %v, want 1", s, s, got)
		}
	}
}
