package responder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"querychat/internal/models"
)

// LLM generates replies from an OpenAI-compatible endpoint.
type LLM struct {
	llm llms.LLM
}

func NewLLM(baseURL, token, model string) (*LLM, error) {
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return &LLM{llm: llm}, nil
}

func (l *LLM) GenerateReply(ctx context.Context, conversationID string, userMessage models.Message) (models.Message, error) {
	completion, err := llms.GenerateFromSinglePrompt(ctx, l.llm, userMessage.Content)
	if err != nil {
		return models.Message{}, err
	}

	return models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Content:        completion,
		IsUserMessage:  false,
		CreatedAt:      time.Now(),
	}, nil
}
