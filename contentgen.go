package quizverify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const submitQuizTool = "submit_quiz"

// ContentGenerator asks an LLM for a raw quiz document about a passage range
type ContentGenerator struct {
	client *openai.Client
	model  string
}

// NewContentGenerator creates a generator with an OpenAI client
func NewContentGenerator(apiKey string) *ContentGenerator {
	return NewContentGeneratorWithConfig(openai.DefaultConfig(apiKey))
}

// NewContentGeneratorWithConfig creates a generator from a full client config,
// e.g. to point BaseURL at a compatible endpoint
func NewContentGeneratorWithConfig(cfg openai.ClientConfig) *ContentGenerator {
	return &ContentGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4o,
	}
}

// SetModel overrides the chat model
func (cg *ContentGenerator) SetModel(model string) {
	if model != "" {
		cg.model = model
	}
}

// GenerateQuiz returns the quiz document text. records are given to the model as
// source material; the model's answers are not trusted and must be verified.
func (cg *ContentGenerator) GenerateQuiz(ctx context.Context, req GenerationRequest, records []ReferenceRecord, logger *RunLogger) (string, error) {
	log.Printf("Generating %d questions for %s", req.NumQuestions, req.RangeLabel())

	prompt := cg.buildPrompt(req, records)
	if logger != nil {
		logger.LogLLMRequest("ContentGenerator", prompt)
	}

	resp, err := cg.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: cg.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are a study assistant writing multiple choice quizzes about a specific scripture passage. Follow the requested layout exactly.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Tools: []openai.Tool{
				{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        submitQuizTool,
						Description: "Submit the generated quiz document",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"content": map[string]interface{}{
									"type":        "string",
									"description": "The full quiz document in the requested layout",
								},
							},
							"required": []string{"content"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: submitQuizTool,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate quiz: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", cg.model)
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		// Some compatible endpoints ignore tool_choice and answer in plain text
		if strings.TrimSpace(choice.Message.Content) != "" {
			if logger != nil {
				logger.LogLLMResponse("ContentGenerator", choice.Message.Content)
			}
			return choice.Message.Content, nil
		}
		return "", fmt.Errorf("no tool calls in response")
	}

	toolCall := choice.Message.ToolCalls[0]
	if logger != nil {
		logger.LogLLMResponse("ContentGenerator", toolCall.Function.Arguments)
	}
	if toolCall.Function.Name != submitQuizTool {
		return "", fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}

	var toolArgs struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &toolArgs); err != nil {
		return "", fmt.Errorf("failed to parse tool arguments: %w", err)
	}
	if strings.TrimSpace(toolArgs.Content) == "" {
		return "", fmt.Errorf("empty quiz content")
	}

	VerboseLog("Generated quiz of %d bytes for %s", len(toolArgs.Content), req.RangeLabel())
	return toolArgs.Content, nil
}

func (cg *ContentGenerator) buildPrompt(req GenerationRequest, records []ReferenceRecord) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Write %d multiple choice questions about %s", req.NumQuestions, req.RangeLabel()))
	if req.UnitName != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", req.UnitName))
	}
	sb.WriteString(".\n\n")

	if len(records) > 0 {
		sb.WriteString("Source passages:\n")
		for _, r := range records {
			sb.WriteString(fmt.Sprintf("[%s] %s\n", r.CompositeKey, r.CanonicalTranslation))
		}
		sb.WriteString("\n")
	}

	if req.Difficulty != "" {
		sb.WriteString(fmt.Sprintf("Difficulty level: %s\n\n", req.Difficulty))
	}

	sb.WriteString("Layout:\n")
	sb.WriteString("- Start each question with Q<number>. on its own line, followed by the question text\n")
	sb.WriteString("- Put each option on its own line as A), B), C), D)\n")
	sb.WriteString("- Put ✅ directly after the text of the one correct option\n")
	sb.WriteString("- Cite the passage as unit:ordinal (for example 79:24) when a question is about one passage\n")
	sb.WriteString("- Quote the source passages exactly when an answer is a quotation\n")
	sb.WriteString(fmt.Sprintf("- Use the %s tool to return the document\n", submitQuizTool))

	return sb.String()
}
