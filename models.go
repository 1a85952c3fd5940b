package quizverify

import "time"

// ReferenceRecord is a verified passage entry supplied by the caller.
// The engine only reads these.
type ReferenceRecord struct {
	Ordinal              int    `json:"ordinal"`       // position within its parent unit
	CompositeKey         string `json:"composite_key"` // e.g. "79:24"
	LeadWord             string `json:"lead_word,omitempty"`
	Transliteration      string `json:"transliteration,omitempty"`
	ShortTranslation     string `json:"short_translation,omitempty"`
	CanonicalSourceText  string `json:"canonical_source_text,omitempty"`
	CanonicalTranslation string `json:"canonical_translation"`
}

// ParsedQuestion is one question block found in a quiz document.
// SpanStart and SpanEnd are byte offsets of the marked answer in the original content.
type ParsedQuestion struct {
	QuestionText    string `json:"question_text"`
	ExtractedAnswer string `json:"extracted_answer"`
	SpanStart       int    `json:"span_start"`
	SpanEnd         int    `json:"span_end"`
}

// Outcome names how a single question was settled
type Outcome string

const (
	OutcomeNotApplicable Outcome = "not-applicable" // makes no passage claim
	OutcomeVerified      Outcome = "verified"
	OutcomeCorrected     Outcome = "corrected"
	OutcomeUnresolved    Outcome = "unresolved" // no passage could be matched
	OutcomeSuppressed    Outcome = "suppressed" // low similarity, fix too close to the original
)

// MatchedBy values
const (
	MatchByCitation   = "citation"
	MatchByBestMatch  = "best-match"
	MatchBySoleRecord = "sole-record"
)

// VerificationResult is the per-question outcome, reported in document order
type VerificationResult struct {
	QuestionText    string  `json:"question_text"`
	ReferenceFound  *int    `json:"reference_found"`
	OriginalAnswer  string  `json:"original_answer"`
	CorrectedAnswer *string `json:"corrected_answer"`
	IsVerified      bool    `json:"is_verified"`
	CorrectionMade  bool    `json:"correction_made"`
	Similarity      float64 `json:"similarity"`

	Related     bool    `json:"related"`
	RelationTag string  `json:"relation_tag,omitempty"`
	MatchedKey  string  `json:"matched_key,omitempty"`
	MatchedBy   string  `json:"matched_by,omitempty"`
	Outcome     Outcome `json:"outcome"`
}

// VerificationSummary is the result of one VerifyAndCorrect call
type VerificationSummary struct {
	TotalQuestions            int                  `json:"total_questions"`
	ReferenceRelatedQuestions int                  `json:"reference_related_questions"`
	CorrectionsApplied        int                  `json:"corrections_applied"`
	CorrectedContent          string               `json:"corrected_content"`
	Results                   []VerificationResult `json:"results"`

	// Limited is set when the input guard cut the scan short
	Limited bool `json:"limited,omitempty"`
}

// VerificationContext is descriptive metadata about the passage range.
// It never influences the engine, only logs and audit records.
type VerificationContext struct {
	SubjectID  string `json:"subject_id,omitempty"`
	UnitNumber int    `json:"unit_number,omitempty"`
	UnitName   string `json:"unit_name,omitempty"`
	RangeLabel string `json:"range_label,omitempty"`
}

// AuditCorrection describes one applied correction
type AuditCorrection struct {
	Question   string  `json:"question"`
	Original   string  `json:"original"`
	Corrected  string  `json:"corrected"`
	Similarity float64 `json:"similarity"`
}

// AuditRecord is the storable summary of one verification run
type AuditRecord struct {
	ID                        string               `json:"id"`
	SubjectID                 string               `json:"subject_id"`
	VerifiedAt                time.Time            `json:"verified_at"`
	TotalQuestions            int                  `json:"total_questions"`
	ReferenceRelatedQuestions int                  `json:"reference_related_questions"`
	CorrectionsApplied        int                  `json:"corrections_applied"`
	Corrections               []AuditCorrection    `json:"corrections"`
	Context                   *VerificationContext `json:"context,omitempty"`
}

// GenerationRequest asks the upstream generator for a quiz about a passage range
type GenerationRequest struct {
	SubjectID    string `json:"subject_id"`
	UnitNumber   int    `json:"unit_number"`
	UnitName     string `json:"unit_name,omitempty"`
	FromOrdinal  int    `json:"from_ordinal"`
	ToOrdinal    int    `json:"to_ordinal"`
	NumQuestions int    `json:"num_questions"`
	Difficulty   string `json:"difficulty,omitempty"`
}

// RangeLabel renders the passage range, e.g. "79:15-26"
func (r GenerationRequest) RangeLabel() string {
	return formatRange(r.UnitNumber, r.FromOrdinal, r.ToOrdinal)
}

// Context returns the descriptive metadata for this request
func (r GenerationRequest) Context() VerificationContext {
	return VerificationContext{
		SubjectID:  r.SubjectID,
		UnitNumber: r.UnitNumber,
		UnitName:   r.UnitName,
		RangeLabel: r.RangeLabel(),
	}
}

// QuizStatus represents the state of a stored quiz
type QuizStatus string

const (
	StatusGenerated QuizStatus = "generated"
	StatusVerified  QuizStatus = "verified"
)
