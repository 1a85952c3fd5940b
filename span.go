package quizverify

import (
	"regexp"
	"strings"
)

var (
	quotedPattern = regexp.MustCompile(`["“”]([^"“”]+)["“”]`)
	saidPattern   = regexp.MustCompile(`(?i)\bsaid\s*[:,]\s*(.+)$`)
)

// ExtractRelevantSpan picks the part of the record's translation that best
// answers the question. This is best-effort: for "what did X say" questions
// it tries quoted speech, then a "said: ..." clause; otherwise, or when
// neither fires, the full translation is returned.
func ExtractRelevantSpan(question string, record ReferenceRecord) string {
	translation := record.CanonicalTranslation
	if !speechPattern.MatchString(question) {
		return translation
	}

	for _, m := range quotedPattern.FindAllStringSubmatch(translation, -1) {
		if quote := strings.TrimSpace(m[1]); quote != "" {
			return quote
		}
	}

	if m := saidPattern.FindStringSubmatch(translation); m != nil {
		if clause := strings.TrimSpace(m[1]); clause != "" {
			return clause
		}
	}

	return translation
}
