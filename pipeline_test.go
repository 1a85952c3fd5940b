package quizverify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeSource struct {
	content string
	err     error
	calls   int
	records int
}

func (f *fakeSource) GenerateQuiz(ctx context.Context, req GenerationRequest, records []ReferenceRecord, logger *RunLogger) (string, error) {
	f.calls++
	f.records = len(records)
	if logger != nil {
		logger.LogLLMResponse("fake", f.content)
	}
	return f.content, f.err
}

func TestPipelineGenerateVerifiedQuiz(t *testing.T) {
	db := openTestDB(t)
	seedCorpus(t, db)
	logDir := t.TempDir()

	source := &fakeSource{content: "Q1. In 79:24, what did Pharaoh say?\nA) He denied everything ✅"}
	p := NewPipeline(source, nil, db)
	p.SetLogDir(logDir)

	req := GenerationRequest{SubjectID: "student-1", UnitNumber: 79, UnitName: "An-Naziat", FromOrdinal: 23, ToOrdinal: 25, NumQuestions: 1}
	result, err := p.GenerateVerifiedQuiz(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateVerifiedQuiz failed: %v", err)
	}
	if source.records != 3 {
		t.Errorf("source saw %d records, want 3", source.records)
	}

	want := "Q1. In 79:24, what did Pharaoh say?\nA) I am your lord, most high ✅"
	if result.Summary.CorrectionsApplied != 1 || result.Quiz.CorrectedContent != want {
		t.Errorf("result = %+v", result.Summary)
	}

	stored, err := db.GetQuiz(result.Quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz failed: %v", err)
	}
	if stored.Content != source.content || stored.CorrectedContent != want || stored.Status != StatusVerified {
		t.Errorf("stored quiz = %+v", stored)
	}

	audits, err := db.GetAuditRecords("student-1", 0)
	if err != nil || len(audits) != 1 {
		t.Fatalf("GetAuditRecords = %v, %v", audits, err)
	}
	if audits[0].ID != result.Audit.ID || audits[0].Context == nil || audits[0].Context.RangeLabel != "79:23-25" {
		t.Errorf("audit = %+v", audits[0])
	}

	if _, err := os.Stat(filepath.Join(logDir, result.Quiz.ID+".log")); err != nil {
		t.Errorf("run log not written: %v", err)
	}

	// Re-verifying the stored quiz finds nothing left to fix
	again, err := p.VerifyStoredQuiz(context.Background(), result.Quiz.ID)
	if err != nil {
		t.Fatalf("VerifyStoredQuiz failed: %v", err)
	}
	if again.Summary.CorrectionsApplied != 0 || again.Quiz.CorrectedContent != want {
		t.Errorf("re-verification = %+v", again.Summary)
	}
}

func TestPipelineEmptyCorpus(t *testing.T) {
	db := openTestDB(t)
	source := &fakeSource{content: "Q1. What did Pharaoh declare?\nA) He denied everything ✅"}

	result, err := NewPipeline(source, nil, db).GenerateVerifiedQuiz(context.Background(), GenerationRequest{UnitNumber: 99, NumQuestions: 1})
	if err != nil {
		t.Fatalf("GenerateVerifiedQuiz failed: %v", err)
	}
	if result.Summary.CorrectionsApplied != 0 || result.Quiz.CorrectedContent != source.content {
		t.Errorf("empty corpus changed content: %+v", result.Summary)
	}
}

func TestPipelineErrors(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := NewPipeline(nil, nil, db).GenerateVerifiedQuiz(ctx, GenerationRequest{UnitNumber: 79}); err == nil {
		t.Error("expected error without a source")
	}

	genErr := errors.New("rate limited")
	if _, err := NewPipeline(&fakeSource{err: genErr}, nil, db).GenerateVerifiedQuiz(ctx, GenerationRequest{UnitNumber: 79}); !errors.Is(err, genErr) {
		t.Errorf("err = %v, want wrapped %v", err, genErr)
	}
	if quizzes, _ := db.ListQuizzes(0); len(quizzes) != 0 {
		t.Errorf("failed generation stored %d quizzes", len(quizzes))
	}

	if _, err := NewPipeline(nil, nil, db).VerifyStoredQuiz(ctx, "missing"); !errors.Is(err, ErrQuizNotFound) {
		t.Errorf("err = %v, want ErrQuizNotFound", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := NewPipeline(nil, nil, db).VerifyStoredQuiz(cancelled, "missing"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
