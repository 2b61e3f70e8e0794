// Package responder produces the bot side of the conversation. The session
// only depends on the Responder interface, so the fixed-string implementation
// can be swapped for a real model without touching the session.
package responder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"querychat/internal/models"
)

const (
	// DefaultReply mirrors the canned bot acknowledgement.
	DefaultReply = "Merci pour votre message !"

	// DefaultDelay simulates the bot typing before the reply lands.
	DefaultDelay = time.Second
)

type Responder interface {
	GenerateReply(ctx context.Context, conversationID string, userMessage models.Message) (models.Message, error)
}

// Static replies with a fixed string after a fixed delay.
type Static struct {
	Reply string
	Delay time.Duration

	now   func() time.Time
	newID func() string
}

func NewStatic() *Static {
	return &Static{
		Reply: DefaultReply,
		Delay: DefaultDelay,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *Static) GenerateReply(ctx context.Context, conversationID string, _ models.Message) (models.Message, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return models.Message{}, ctx.Err()
		}
	}

	now := s.now
	if now == nil {
		now = time.Now
	}
	newID := s.newID
	if newID == nil {
		newID = uuid.NewString
	}

	return models.Message{
		ID:             newID(),
		ConversationID: conversationID,
		Content:        s.Reply,
		IsUserMessage:  false,
		CreatedAt:      now(),
	}, nil
}
