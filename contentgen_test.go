package quizverify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

// fakeChatServer answers every chat completion with message and records the last prompt
func fakeChatServer(t *testing.T, message openai.ChatCompletionMessage, prompt *string) *ContentGenerator {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if prompt != nil && len(req.Messages) > 0 {
			*prompt = req.Messages[len(req.Messages)-1].Content
		}

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  req.Model,
		}
		if message.Role != "" {
			resp.Choices = []openai.ChatCompletionChoice{{Index: 0, Message: message}}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewContentGeneratorWithConfig(cfg)
}

func toolCallMessage(t *testing.T, name, content string) openai.ChatCompletionMessage {
	t.Helper()
	args, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		t.Fatal(err)
	}
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleAssistant,
		ToolCalls: []openai.ToolCall{{
			ID:   "call_1",
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      name,
				Arguments: string(args),
			},
		}},
	}
}

var testGenerationRequest = GenerationRequest{
	SubjectID:    "student-1",
	UnitNumber:   79,
	UnitName:     "An-Naziat",
	FromOrdinal:  23,
	ToOrdinal:    25,
	NumQuestions: 2,
	Difficulty:   "easy",
}

func TestGenerateQuizToolCall(t *testing.T) {
	quiz := "Q1. What did Pharaoh declare?\nA) He denied everything ✅"
	var prompt string
	cg := fakeChatServer(t, toolCallMessage(t, submitQuizTool, quiz), &prompt)

	got, err := cg.GenerateQuiz(context.Background(), testGenerationRequest, []ReferenceRecord{pharaohDeclaration}, nil)
	if err != nil {
		t.Fatalf("GenerateQuiz failed: %v", err)
	}
	if got != quiz {
		t.Errorf("GenerateQuiz = %q, want %q", got, quiz)
	}

	for _, want := range []string{
		"Write 2 multiple choice questions about 79:23-25 (An-Naziat)",
		`[79:24] He said, "I am your lord, most high"`,
		"Difficulty level: easy",
		"Put ✅ directly after",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestGenerateQuizPlainContent(t *testing.T) {
	quiz := "Q1. Who spoke?\nA) Moses ✅"
	cg := fakeChatServer(t, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: quiz}, nil)

	got, err := cg.GenerateQuiz(context.Background(), testGenerationRequest, nil, nil)
	if err != nil {
		t.Fatalf("GenerateQuiz failed: %v", err)
	}
	if got != quiz {
		t.Errorf("GenerateQuiz = %q, want %q", got, quiz)
	}
}

func TestGenerateQuizErrors(t *testing.T) {
	tests := []struct {
		name    string
		message openai.ChatCompletionMessage
	}{
		{"no choices", openai.ChatCompletionMessage{}},
		{"empty message", openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}},
		{"wrong tool", toolCallMessage(t, "submit_questions", "Q1.")},
		{"empty content", toolCallMessage(t, submitQuizTool, "   ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cg := fakeChatServer(t, tt.message, nil)
			if _, err := cg.GenerateQuiz(context.Background(), testGenerationRequest, nil, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGenerateQuizLogs(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewRunLogger(dir, "quiz-1", testGenerationRequest.Context())
	if err != nil {
		t.Fatalf("NewRunLogger failed: %v", err)
	}
	cg := fakeChatServer(t, toolCallMessage(t, submitQuizTool, "Q1. x\nA) y ✅"), nil)
	cg.SetModel("gpt-4o-mini")

	if _, err := cg.GenerateQuiz(context.Background(), testGenerationRequest, nil, logger); err != nil {
		t.Fatalf("GenerateQuiz failed: %v", err)
	}
	if cg.model != "gpt-4o-mini" {
		t.Errorf("model = %q", cg.model)
	}
	logger.Close()
}
