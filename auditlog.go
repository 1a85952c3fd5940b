package quizverify

import (
	"time"

	"github.com/google/uuid"
)

// maxAuditQuestionLen bounds the question text copied into an audit record
const maxAuditQuestionLen = 100

// BuildAuditLog summarises a verification run for an external sink
func BuildAuditLog(subjectID string, summary VerificationSummary) AuditRecord {
	return BuildAuditLogAt(subjectID, summary, time.Now().UTC())
}

// BuildAuditLogAt is BuildAuditLog with an explicit timestamp
func BuildAuditLogAt(subjectID string, summary VerificationSummary, verifiedAt time.Time) AuditRecord {
	record := AuditRecord{
		ID:                        uuid.NewString(),
		SubjectID:                 subjectID,
		VerifiedAt:                verifiedAt,
		TotalQuestions:            summary.TotalQuestions,
		ReferenceRelatedQuestions: summary.ReferenceRelatedQuestions,
		CorrectionsApplied:        summary.CorrectionsApplied,
		Corrections:               []AuditCorrection{},
	}

	for _, r := range summary.Results {
		if !r.CorrectionMade || r.CorrectedAnswer == nil {
			continue
		}
		record.Corrections = append(record.Corrections, AuditCorrection{
			Question:   truncateRunes(r.QuestionText, maxAuditQuestionLen),
			Original:   r.OriginalAnswer,
			Corrected:  *r.CorrectedAnswer,
			Similarity: r.Similarity,
		})
	}
	return record
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
