package quizverify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Key is a parsed composite key such as "79:24"
type Key struct {
	Unit    int `json:"unit"`
	Ordinal int `json:"ordinal"`
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%d", k.Unit, k.Ordinal)
}

//nolint:govet // participle grammar tags are not standard struct tags
type keyGrammar struct {
	Unit    int `parser:"@Int \":\""`
	Ordinal int `parser:"@Int"`
}

var keyLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `:`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var keyParser = participle.MustBuild[keyGrammar](
	participle.Lexer(keyLexer),
	participle.Elide("Whitespace"),
)

// ParseKey parses a "unit:ordinal" composite key
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Key{}, fmt.Errorf("empty composite key")
	}
	parsed, err := keyParser.ParseString("", s)
	if err != nil {
		return Key{}, fmt.Errorf("invalid composite key %q: %w", s, err)
	}
	return Key{Unit: parsed.Unit, Ordinal: parsed.Ordinal}, nil
}

// Reference is a citation pulled out of question text.
// Unit is 0 when the citation named only an ordinal.
type Reference struct {
	Unit    int    `json:"unit,omitempty"`
	Ordinal int    `json:"ordinal"`
	Tag     string `json:"tag"`
}

// Reference rule tags
const (
	TagCompositeCitation = "composite"
	TagBareCitation      = "bare"
)

// DefaultReferenceRules returns the citation patterns in priority order.
// A fully qualified citation wins over a bare number appearing elsewhere.
func DefaultReferenceRules() []Rule {
	return []Rule{
		{Tag: TagCompositeCitation, Pattern: regexp.MustCompile(`\b\d{1,4}\s*:\s*\d{1,4}\b`)},
		{Tag: TagBareCitation, Pattern: regexp.MustCompile(`(?i)\b(?:ayah|ayat|verse)\s+(\d{1,4})\b`)},
	}
}

// ReferenceExtractor finds explicit citations in question text
type ReferenceExtractor struct {
	rules RuleSet
}

// NewReferenceExtractor creates an extractor over the given rules.
// Rules tagged TagCompositeCitation must match a whole "unit:ordinal" key;
// any other rule must capture the ordinal in its first group.
func NewReferenceExtractor(rules []Rule) *ReferenceExtractor {
	return &ReferenceExtractor{rules: RuleSet(rules)}
}

// Extract returns the first citation found, or nil
func (re *ReferenceExtractor) Extract(question string) *Reference {
	for _, rule := range re.rules {
		m := rule.Pattern.FindStringSubmatch(question)
		if m == nil {
			continue
		}
		if rule.Tag == TagCompositeCitation {
			key, err := ParseKey(m[0])
			if err != nil {
				VerboseLog("Citation %q matched rule %s but did not parse: %v", m[0], rule.Tag, err)
				continue
			}
			return &Reference{Unit: key.Unit, Ordinal: key.Ordinal, Tag: rule.Tag}
		}
		if len(m) < 2 {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return &Reference{Ordinal: n, Tag: rule.Tag}
	}
	return nil
}

var defaultExtractor = NewReferenceExtractor(DefaultReferenceRules())

// ExtractReference runs the default citation rules
func ExtractReference(question string) *Reference {
	return defaultExtractor.Extract(question)
}

// Matches reports whether rec is the passage this reference points at
func (r *Reference) Matches(rec ReferenceRecord) bool {
	if r.Unit == 0 {
		return rec.Ordinal == r.Ordinal
	}
	key, err := ParseKey(rec.CompositeKey)
	if err != nil {
		return false
	}
	return key.Unit == r.Unit && key.Ordinal == r.Ordinal
}

func formatRange(unit, from, to int) string {
	switch {
	case unit == 0:
		return ""
	case from == 0 && to == 0:
		return strconv.Itoa(unit)
	case to == 0 || to == from:
		return fmt.Sprintf("%d:%d", unit, from)
	default:
		return fmt.Sprintf("%d:%d-%d", unit, from, to)
	}
}
