package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type AIService struct {
	client *openai.Client
	model  string
}

// TaskDraft is a task suggested by the AI service
type TaskDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Estimation  string `json:"estimation"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// NewAIServiceWithConfig builds the service on a custom client configuration,
// e.g. a different base URL.
func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4o,
	}
}

// DraftTasksFromText analyzes text and extracts tasks using OpenAI GPT
func (s *AIService) DraftTasksFromText(ctx context.Context, text string) ([]TaskDraft, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You extract actionable engineering tasks from text.

Text:
%s

Return a JSON array of tasks in this shape:
[
  {
    "title": "short imperative title",
    "description": "what needs to be done",
    "estimation": "rough size such as S, M, L, or empty"
  }
]

Rules:
- Return [] when the text contains no tasks
- Return only JSON, no prose`, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var drafts []TaskDraft
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return drafts, nil
}

// stripCodeFence removes a surrounding ```json fence the model sometimes adds.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
