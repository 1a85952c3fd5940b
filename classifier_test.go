package quizverify

import (
	"regexp"
	"strings"
	"testing"
)

func TestIsReferenceRelated(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"What did Pharaoh say in this ayah?", true},
		{"What did Pharaoh declare?", true},
		{"According to this verse, who gathered the people?", true},
		{"Which event is described in ayah 24?", true},
		{"What happens in 79:24?", true},
		{"What is the meaning of the passage about the staff?", true},
		{"What lesson is taught in this passage?", true},
		{`Who said "I am your lord, most high"?`, true},
		{"What is 2 + 2?", false},
		{"What does the word 'mercy' mean?", false},
		{"Name the month of fasting.", false},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			if got := IsReferenceRelated(tt.question); got != tt.want {
				t.Errorf("IsReferenceRelated(%q) = %v, want %v", tt.question, got, tt.want)
			}
		})
	}
}

func TestClassifyFirstRuleWins(t *testing.T) {
	c := NewClassifier(DefaultRelationRules())

	tag, ok := c.Classify("What did Pharaoh say in ayah 24?")
	if !ok || tag != TagSpeech {
		t.Errorf("Classify = (%q, %v), want (%q, true)", tag, ok, TagSpeech)
	}
	tag, ok = c.Classify("Explain ayah 24")
	if !ok || tag != TagOrdinal {
		t.Errorf("Classify = (%q, %v), want (%q, true)", tag, ok, TagOrdinal)
	}
}

func TestRelationRulesExtendable(t *testing.T) {
	question := "Who spoke these words to Moses?"
	if IsReferenceRelated(question) {
		t.Fatalf("%q should not be related with the default rules", question)
	}

	rules := append(DefaultRelationRules(), Rule{Tag: "speaker", Pattern: regexp.MustCompile(`(?i)\bwho\s+spoke\b`)})
	c := NewClassifier(rules)
	tag, ok := c.Classify(question)
	if !ok || tag != "speaker" {
		t.Errorf("Classify = (%q, %v), want (speaker, true)", tag, ok)
	}

	// The defaults are a fresh copy every time
	if len(DefaultRelationRules()) == len(rules) {
		t.Error("DefaultRelationRules was mutated by append")
	}
}

func TestLoadRules(t *testing.T) {
	rules, err := LoadRules(strings.NewReader(`[
		{"tag": "speaker", "pattern": "(?i)\\bwho\\s+spoke\\b"},
		{"pattern": "(?i)\\bsurah\\s+\\d+"}
	]`))
	if err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	if rules[0].Tag != "speaker" || rules[1].Tag != "rule-1" {
		t.Errorf("tags = %q, %q", rules[0].Tag, rules[1].Tag)
	}

	if _, err := LoadRules(strings.NewReader(`[{"tag": "bad", "pattern": "(unclosed"}]`)); err == nil {
		t.Error("expected error for invalid pattern")
	}
	if _, err := LoadRules(strings.NewReader(`[{"tag": "empty"}]`)); err == nil {
		t.Error("expected error for empty pattern")
	}
	if _, err := LoadRules(strings.NewReader(`not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
