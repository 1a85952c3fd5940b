package quizverify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// QuizSource produces raw quiz documents; ContentGenerator is the production one
type QuizSource interface {
	GenerateQuiz(ctx context.Context, req GenerationRequest, records []ReferenceRecord, logger *RunLogger) (string, error)
}

// VerifiedQuiz is the outcome of one pipeline run
type VerifiedQuiz struct {
	Quiz    *DBQuiz             `json:"quiz"`
	Summary VerificationSummary `json:"summary"`
	Audit   AuditRecord         `json:"audit"`
}

// Pipeline generates quizzes, verifies them against the stored corpus and
// persists both the documents and the audit trail
type Pipeline struct {
	source QuizSource
	engine *Engine
	db     *DB
	logDir string
}

// NewPipeline creates a pipeline. source may be nil when only stored quizzes
// are re-verified.
func NewPipeline(source QuizSource, engine *Engine, db *DB) *Pipeline {
	if engine == nil {
		engine = defaultEngine
	}
	return &Pipeline{source: source, engine: engine, db: db}
}

// SetLogDir enables per-quiz run logs in dir
func (p *Pipeline) SetLogDir(dir string) {
	p.logDir = dir
}

// GenerateVerifiedQuiz generates a quiz for the requested range and verifies it
func (p *Pipeline) GenerateVerifiedQuiz(ctx context.Context, req GenerationRequest) (*VerifiedQuiz, error) {
	if p.source == nil {
		return nil, fmt.Errorf("no quiz source configured")
	}
	log.Printf("Starting verified quiz generation for %s, target questions: %d", req.RangeLabel(), req.NumQuestions)

	records, err := p.db.GetReferenceRecords(req.UnitNumber, req.FromOrdinal, req.ToOrdinal)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	if len(records) == 0 {
		// The engine passes content through untouched on an empty corpus;
		// generation still goes ahead so the quiz is not lost.
		log.Printf("Warning: %v %s", ErrEmptyCorpus, req.RangeLabel())
	}

	quiz := &DBQuiz{
		ID:          uuid.NewString(),
		SubjectID:   req.SubjectID,
		UnitNumber:  req.UnitNumber,
		UnitName:    req.UnitName,
		FromOrdinal: req.FromOrdinal,
		ToOrdinal:   req.ToOrdinal,
		CreatedAt:   time.Now(),
		Status:      StatusGenerated,
	}

	logger := p.openLogger(quiz.ID, req.Context())
	if logger != nil {
		defer logger.Close()
	}

	content, err := p.source.GenerateQuiz(ctx, req, records, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to generate quiz: %w", err)
	}
	quiz.Content = content

	if err := p.db.CreateQuiz(quiz); err != nil {
		return nil, err
	}

	return p.verify(quiz, records, logger)
}

// VerifyStoredQuiz re-runs verification on a stored quiz's latest content
func (p *Pipeline) VerifyStoredQuiz(ctx context.Context, quizID string) (*VerifiedQuiz, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	quiz, err := p.db.GetQuiz(quizID)
	if err != nil {
		return nil, err
	}
	records, err := p.db.GetReferenceRecords(quiz.UnitNumber, quiz.FromOrdinal, quiz.ToOrdinal)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	logger := p.openLogger(quiz.ID, quiz.Context())
	if logger != nil {
		defer logger.Close()
	}
	return p.verify(quiz, records, logger)
}

func (p *Pipeline) verify(quiz *DBQuiz, records []ReferenceRecord, logger *RunLogger) (*VerifiedQuiz, error) {
	content := quiz.Content
	if quiz.CorrectedContent != "" {
		content = quiz.CorrectedContent
	}

	summary := p.engine.VerifyAndCorrect(content, records)
	if logger != nil {
		logger.LogSummary(summary)
	}

	if err := p.db.UpdateQuizVerification(quiz.ID, summary.CorrectedContent); err != nil {
		return nil, err
	}
	quiz.CorrectedContent = summary.CorrectedContent
	quiz.Status = StatusVerified

	vctx := quiz.Context()
	audit := BuildAuditLog(quiz.SubjectID, summary)
	audit.Context = &vctx
	if err := p.db.SaveAuditRecord(audit); err != nil {
		return nil, err
	}

	log.Printf("Quiz %s verified: %d questions, %d reference-related, %d corrected",
		quiz.ID, summary.TotalQuestions, summary.ReferenceRelatedQuestions, summary.CorrectionsApplied)
	return &VerifiedQuiz{Quiz: quiz, Summary: summary, Audit: audit}, nil
}

func (p *Pipeline) openLogger(quizID string, vctx VerificationContext) *RunLogger {
	if p.logDir == "" {
		return nil
	}
	logger, err := NewRunLogger(p.logDir, quizID, vctx)
	if err != nil {
		// Continue without logging rather than failing
		log.Printf("Failed to create run logger for quiz %s: %v", quizID, err)
		return nil
	}
	return logger
}
