package quizverify

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RunLogger writes a per-quiz log of the generation call and the verification outcome
type RunLogger struct {
	file   *os.File
	mu     sync.Mutex
	quizID string
}

// NewRunLogger creates <dir>/<quizID>.log and writes the run header
func NewRunLogger(dir, quizID string, vctx VerificationContext) (*RunLogger, error) {
	if dir == "" {
		dir = "log"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", quizID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &RunLogger{
		file:   file,
		quizID: quizID,
	}

	logger.Logf("=== Quiz Verification Log ===\n")
	logger.Logf("Quiz ID: %s\n", quizID)
	if vctx.SubjectID != "" {
		logger.Logf("Subject: %s\n", vctx.SubjectID)
	}
	if vctx.UnitNumber != 0 {
		logger.Logf("Unit: %d %s\n", vctx.UnitNumber, vctx.UnitName)
	}
	if vctx.RangeLabel != "" {
		logger.Logf("Range: %s\n", vctx.RangeLabel)
	}
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("=============================\n\n")

	return logger, nil
}

// Logf writes a formatted log entry with timestamp
func (rl *RunLogger) Logf(format string, args ...interface{}) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.logf(format, args...)
}

func (rl *RunLogger) logf(format string, args ...interface{}) {
	if rl.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(rl.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	rl.file.Sync()
}

// LogLLMRequest logs an LLM request
func (rl *RunLogger) LogLLMRequest(module, prompt string) {
	rl.Logf("=== LLM REQUEST (%s) ===\n", module)
	rl.Logf("Prompt:\n%s\n", prompt)
	rl.Logf("=====================\n\n")
}

// LogLLMResponse logs an LLM response
func (rl *RunLogger) LogLLMResponse(module, response string) {
	rl.Logf("=== LLM RESPONSE (%s) ===\n", module)
	rl.Logf("Response:\n%s\n", response)
	rl.Logf("======================\n\n")
}

// LogVerificationResult logs how one question was settled
func (rl *RunLogger) LogVerificationResult(n int, r VerificationResult) {
	switch r.Outcome {
	case OutcomeCorrected:
		rl.Logf("Question %d: %s (%s, sim=%.2f) %q -> %q\n", n, r.Outcome, r.MatchedKey, r.Similarity, r.OriginalAnswer, *r.CorrectedAnswer)
	case OutcomeNotApplicable, OutcomeUnresolved:
		rl.Logf("Question %d: %s\n", n, r.Outcome)
	default:
		rl.Logf("Question %d: %s (%s, sim=%.2f)\n", n, r.Outcome, r.MatchedKey, r.Similarity)
	}
}

// LogSummary logs every result followed by the totals
func (rl *RunLogger) LogSummary(summary VerificationSummary) {
	for i, r := range summary.Results {
		rl.LogVerificationResult(i+1, r)
	}
	rl.Logf("Totals: %d questions, %d reference-related, %d corrected\n",
		summary.TotalQuestions, summary.ReferenceRelatedQuestions, summary.CorrectionsApplied)
}

// Close closes the log file
func (rl *RunLogger) Close() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.file == nil {
		return nil
	}
	rl.logf("=== Quiz Verification Complete ===\n")
	rl.logf("Completed: %s\n", time.Now().Format(time.RFC3339))
	rl.logf("==================================\n")
	err := rl.file.Close()
	rl.file = nil
	return err
}
