// Package session owns the active conversation: the ordered message log, the
// typing indicator, and the send-in-flight gate. The log is mutated in
// exactly two ways: the synchronous optimistic append when a send starts, and
// reconciliation against storage responses.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"querychat/internal/models"
	"querychat/internal/responder"
)

var (
	ErrNoConversation = errors.New("no active conversation")
	ErrSendInFlight   = errors.New("a send is already in flight")
)

// Storage is the persistence collaborator the session talks to.
type Storage interface {
	CreateConversation(ctx context.Context) (models.Conversation, error)
	CreateMessage(ctx context.Context, conversationID, content string) (models.Message, error)
}

type State int

const (
	StateInitializing State = iota
	StateReady
	StateSending
)

type Delivery int

const (
	// Delivered records came back from storage (or the responder).
	Delivered Delivery = iota
	// Pending is the optimistic record for an in-flight send.
	Pending
	// Failed marks an optimistic record whose persist failed. It stays in
	// the log so the user can see the message never went through.
	Failed
)

// Entry is one message of the log plus its delivery status.
type Entry struct {
	models.Message
	Delivery Delivery
}

type Session struct {
	storage   Storage
	responder responder.Responder
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string

	mu             sync.Mutex
	state          State
	conversationID string
	log            []Entry
	typing         bool
}

func New(storage Storage, r responder.Responder, logger *zap.Logger) *Session {
	return &Session{
		storage:   storage,
		responder: r,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Start requests a fresh conversation and resets the log. It also serves the
// explicit "new conversation" action on an already running session. On
// failure the session stays (or falls back to) initializing and cannot send.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateSending {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	s.state = StateInitializing
	s.mu.Unlock()

	conv, err := s.storage.CreateConversation(ctx)
	if err != nil {
		s.logger.Error("failed to create conversation", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.conversationID = conv.ID
	s.log = nil
	s.state = StateReady
	s.mu.Unlock()

	s.logger.Info("conversation started", zap.String("conversation_id", conv.ID))
	return nil
}

// Send appends an optimistic record, persists the message, and reconciles.
// Whitespace-only content is a no-op. Only one send may be in flight; a
// second attempt is rejected without touching the log.
func (s *Session) Send(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	s.mu.Lock()
	switch s.state {
	case StateSending:
		s.mu.Unlock()
		return ErrSendInFlight
	case StateInitializing:
		s.mu.Unlock()
		return ErrNoConversation
	}

	convID := s.conversationID
	optimistic := Entry{
		Message: models.Message{
			ID:             s.newID(),
			ConversationID: convID,
			Content:        content,
			IsUserMessage:  true,
			CreatedAt:      s.now(),
		},
		Delivery: Pending,
	}
	s.log = append(s.log, optimistic)
	s.state = StateSending
	s.typing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.typing = false
		s.state = StateReady
		s.mu.Unlock()
	}()

	persisted, err := s.storage.CreateMessage(ctx, convID, content)
	if err != nil {
		s.logger.Error("failed to persist message",
			zap.Error(err),
			zap.String("conversation_id", convID))
		s.mu.Lock()
		s.markFailed(optimistic.ID)
		s.mu.Unlock()
		return err
	}

	// Replace by the client-minted id, not by content, so two identical
	// messages never collapse into one.
	s.mu.Lock()
	s.replace(optimistic.ID, persisted)
	s.mu.Unlock()

	reply, err := s.responder.GenerateReply(ctx, convID, persisted)
	if err != nil {
		s.logger.Error("responder failed",
			zap.Error(err),
			zap.String("conversation_id", convID))
		return err
	}

	s.mu.Lock()
	s.log = append(s.log, Entry{Message: reply, Delivery: Delivered})
	s.mu.Unlock()
	return nil
}

func (s *Session) replace(optimisticID string, persisted models.Message) {
	for i := range s.log {
		if s.log[i].ID == optimisticID {
			s.log[i] = Entry{Message: persisted, Delivery: Delivered}
			return
		}
	}
	// The optimistic record should still be there; append rather than drop
	// the persisted message if it is not.
	s.log = append(s.log, Entry{Message: persisted, Delivery: Delivered})
}

func (s *Session) markFailed(optimisticID string) {
	for i := range s.log {
		if s.log[i].ID == optimisticID {
			s.log[i].Delivery = Failed
			return
		}
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// Messages returns a snapshot of the log.
func (s *Session) Messages() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.log...)
}
