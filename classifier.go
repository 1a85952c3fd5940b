package quizverify

import "regexp"

// Relation rule tags
const (
	TagSpeech      = "speech"
	TagAccordingTo = "according-to"
	TagOrdinal     = "ordinal"
	TagCitation    = "citation"
	TagMeaning     = "meaning"
	TagThisPassage = "this-passage"
	TagFirstPerson = "first-person"
)

// speechPattern recognises "what did X say/declare" questions.
// The span extractor uses it too.
var speechPattern = regexp.MustCompile(`(?i)\bwhat\s+did\s+(?:[\p{L}'-]+\s+){1,3}?(?:say|said|declare|claim|announce|proclaim|state|reply|respond|tell)\b`)

// DefaultRelationRules returns a fresh copy of the built-in relation table.
// Callers may append their own phrasings before handing it to WithRelationRules.
func DefaultRelationRules() []Rule {
	return []Rule{
		{Tag: TagSpeech, Pattern: speechPattern},
		{Tag: TagAccordingTo, Pattern: regexp.MustCompile(`(?i)\baccording\s+to\s+(?:this|the|that)\s+(?:ayah|ayat|verse|passage)`)},
		{Tag: TagOrdinal, Pattern: regexp.MustCompile(`(?i)\b(?:ayah|ayat|verse)\s+\d+`)},
		{Tag: TagCitation, Pattern: regexp.MustCompile(`\b\d{1,4}\s*:\s*\d{1,4}\b`)},
		{Tag: TagMeaning, Pattern: regexp.MustCompile(`(?i)\bmeaning\s+of\s+(?:this\s+|the\s+)?(?:ayah|ayat|verse|passage)`)},
		{Tag: TagThisPassage, Pattern: regexp.MustCompile(`(?i)\b(?:in|from)\s+this\s+(?:ayah|ayat|verse|passage)\b`)},
		{Tag: TagFirstPerson, Pattern: regexp.MustCompile(`(?i)["“']\s*i\s+am\s+your\b`)},
	}
}

// Classifier decides whether a question makes a claim about a specific passage
type Classifier struct {
	rules RuleSet
}

// NewClassifier creates a classifier over an ordered rule table
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: RuleSet(rules)}
}

// Classify returns the tag of the first matching rule
func (c *Classifier) Classify(question string) (string, bool) {
	return c.rules.Match(question)
}

// IsReferenceRelated reports whether any rule matches
func (c *Classifier) IsReferenceRelated(question string) bool {
	_, ok := c.rules.Match(question)
	return ok
}

var defaultClassifier = NewClassifier(DefaultRelationRules())

// IsReferenceRelated runs the default relation table
func IsReferenceRelated(question string) bool {
	return defaultClassifier.IsReferenceRelated(question)
}
