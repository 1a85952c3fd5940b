package quizverify

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
)

// Rule is one entry of an ordered pattern table
type Rule struct {
	Tag     string
	Pattern *regexp.Regexp
}

// RuleSet is evaluated top to bottom; the first match wins
type RuleSet []Rule

// Match returns the tag of the first rule matching s
func (rs RuleSet) Match(s string) (string, bool) {
	for _, r := range rs {
		if r.Pattern.MatchString(s) {
			return r.Tag, true
		}
	}
	return "", false
}

// RuleSpec is the serialisable form of a Rule
type RuleSpec struct {
	Tag     string `json:"tag"`
	Pattern string `json:"pattern"`
}

// CompileRules compiles rule specs, preserving order
func CompileRules(specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for i, spec := range specs {
		if spec.Pattern == "" {
			return nil, fmt.Errorf("rule %d (%s): empty pattern", i, spec.Tag)
		}
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule %d (%s): %w", i, spec.Tag, err)
		}
		tag := spec.Tag
		if tag == "" {
			tag = fmt.Sprintf("rule-%d", i)
		}
		rules = append(rules, Rule{Tag: tag, Pattern: re})
	}
	return rules, nil
}

// LoadRules reads a JSON array of RuleSpec and compiles it
func LoadRules(r io.Reader) ([]Rule, error) {
	var specs []RuleSpec
	if err := json.NewDecoder(r).Decode(&specs); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}
	return CompileRules(specs)
}
