package quizverify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	vctx := VerificationContext{SubjectID: "student-1", UnitNumber: 79, UnitName: "An-Naziat", RangeLabel: "79:23-25"}

	logger, err := NewRunLogger(dir, "quiz-1", vctx)
	if err != nil {
		t.Fatalf("NewRunLogger failed: %v", err)
	}

	logger.LogLLMRequest("ContentGenerator", "Write 1 question")
	logger.LogLLMResponse("ContentGenerator", `{"content": "Q1."}`)
	summary := VerifyAndCorrect("Q1. What did Pharaoh declare?\nA) He denied everything ✅\n\n2. What is 2 + 2?\nA) 4 ✅",
		[]ReferenceRecord{pharaohDeclaration})
	logger.LogSummary(summary)

	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	logger.Logf("after close\n")

	data, err := os.ReadFile(filepath.Join(dir, "quiz-1.log"))
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	log := string(data)

	for _, want := range []string{
		"Quiz ID: quiz-1",
		"Subject: student-1",
		"Unit: 79 An-Naziat",
		"Range: 79:23-25",
		"LLM REQUEST (ContentGenerator)",
		"Write 1 question",
		`Question 1: corrected (79:24, sim=0.00) "He denied everything" -> "I am your lord, most high"`,
		"Question 2: not-applicable",
		"Totals: 2 questions, 1 reference-related, 1 corrected",
		"Quiz Verification Complete",
	} {
		if !strings.Contains(log, want) {
			t.Errorf("log missing %q", want)
		}
	}
	if strings.Contains(log, "after close") {
		t.Error("Logf after Close wrote to the file")
	}
}
