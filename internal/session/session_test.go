package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"querychat/internal/models"
)

type fakeStorage struct {
	mu      sync.Mutex
	convErr error
	msgErr  error
	// When non-nil, CreateMessage blocks until the channel is closed.
	block chan struct{}

	createdMessages []string
}

func (f *fakeStorage) CreateConversation(_ context.Context) (models.Conversation, error) {
	if f.convErr != nil {
		return models.Conversation{}, f.convErr
	}
	return models.Conversation{ID: "conv-1", CreatedAt: time.Now()}, nil
}

func (f *fakeStorage) CreateMessage(_ context.Context, conversationID, content string) (models.Message, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.msgErr != nil {
		return models.Message{}, f.msgErr
	}
	f.createdMessages = append(f.createdMessages, content)
	return models.Message{
		ID:             "persisted-" + content,
		ConversationID: conversationID,
		Content:        content,
		IsUserMessage:  true,
		CreatedAt:      time.Now(),
	}, nil
}

type fakeResponder struct {
	err error
}

func (f *fakeResponder) GenerateReply(_ context.Context, conversationID string, _ models.Message) (models.Message, error) {
	if f.err != nil {
		return models.Message{}, f.err
	}
	return models.Message{
		ID:             "reply-1",
		ConversationID: conversationID,
		Content:        "Merci pour votre message !",
		IsUserMessage:  false,
		CreatedAt:      time.Now(),
	}, nil
}

func newTestSession(storage *fakeStorage, r *fakeResponder) *Session {
	return New(storage, r, zap.NewNop())
}

func TestStart_Success(t *testing.T) {
	sess := newTestSession(&fakeStorage{}, &fakeResponder{})

	require.Equal(t, StateInitializing, sess.State())
	require.NoError(t, sess.Start(context.Background()))
	require.Equal(t, StateReady, sess.State())
	require.Equal(t, "conv-1", sess.ConversationID())
	require.Empty(t, sess.Messages())
}

func TestStart_FailureStaysInitializing(t *testing.T) {
	storage := &fakeStorage{convErr: errors.New("storage down")}
	sess := newTestSession(storage, &fakeResponder{})

	require.Error(t, sess.Start(context.Background()))
	require.Equal(t, StateInitializing, sess.State())
	require.ErrorIs(t, sess.Send(context.Background(), "hello"), ErrNoConversation)
}

func TestStart_ResetsLog(t *testing.T) {
	sess := newTestSession(&fakeStorage{}, &fakeResponder{})
	require.NoError(t, sess.Start(context.Background()))
	require.NoError(t, sess.Send(context.Background(), "hello"))
	require.Len(t, sess.Messages(), 2)

	require.NoError(t, sess.Start(context.Background()))
	require.Empty(t, sess.Messages())
}

func TestSend_Success(t *testing.T) {
	sess := newTestSession(&fakeStorage{}, &fakeResponder{})
	require.NoError(t, sess.Start(context.Background()))

	require.NoError(t, sess.Send(context.Background(), "hello"))

	log := sess.Messages()
	require.Len(t, log, 2)

	require.Equal(t, "persisted-hello", log[0].ID)
	require.Equal(t, "hello", log[0].Content)
	require.True(t, log[0].IsUserMessage)
	require.Equal(t, Delivered, log[0].Delivery)

	require.False(t, log[1].IsUserMessage)
	require.Equal(t, "Merci pour votre message !", log[1].Content)

	require.Equal(t, StateReady, sess.State())
	require.False(t, sess.Typing())
}

func TestSend_EmptyContentIsNoOp(t *testing.T) {
	sess := newTestSession(&fakeStorage{}, &fakeResponder{})
	require.NoError(t, sess.Start(context.Background()))

	require.NoError(t, sess.Send(context.Background(), ""))
	require.NoError(t, sess.Send(context.Background(), "   \t\n"))
	require.Empty(t, sess.Messages())
}

func TestSend_OptimisticThenReplaced(t *testing.T) {
	storage := &fakeStorage{block: make(chan struct{})}
	sess := newTestSession(storage, &fakeResponder{})
	require.NoError(t, sess.Start(context.Background()))

	done := make(chan error, 1)
	go func() {
		done <- sess.Send(context.Background(), "hello")
	}()

	// The optimistic record is visible while the send is in flight, with
	// the typing indicator raised.
	require.Eventually(t, func() bool {
		return sess.State() == StateSending
	}, time.Second, time.Millisecond)

	log := sess.Messages()
	require.Len(t, log, 1)
	require.Equal(t, "hello", log[0].Content)
	require.Equal(t, Pending, log[0].Delivery)
	require.NotEqual(t, "persisted-hello", log[0].ID)
	require.True(t, sess.Typing())

	close(storage.block)
	require.NoError(t, <-done)

	// The optimistic and persisted records are never visible together.
	log = sess.Messages()
	require.Len(t, log, 2)
	require.Equal(t, "persisted-hello", log[0].ID)
	for _, e := range log {
		require.Equal(t, Delivered, e.Delivery)
	}
}

func TestSend_SecondSendRejectedWhileInFlight(t *testing.T) {
	storage := &fakeStorage{block: make(chan struct{})}
	sess := newTestSession(storage, &fakeResponder{})
	require.NoError(t, sess.Start(context.Background()))

	done := make(chan error, 1)
	go func() {
		done <- sess.Send(context.Background(), "first")
	}()
	require.Eventually(t, func() bool {
		return sess.State() == StateSending
	}, time.Second, time.Millisecond)

	require.ErrorIs(t, sess.Send(context.Background(), "second"), ErrSendInFlight)
	require.Len(t, sess.Messages(), 1)

	require.ErrorIs(t, sess.Start(context.Background()), ErrSendInFlight)

	close(storage.block)
	require.NoError(t, <-done)
}

func TestSend_FailureMarksOptimisticFailed(t *testing.T) {
	storage := &fakeStorage{msgErr: errors.New("storage down")}
	sess := newTestSession(storage, &fakeResponder{})
	require.NoError(t, sess.Start(context.Background()))

	require.Error(t, sess.Send(context.Background(), "hello"))

	log := sess.Messages()
	require.Len(t, log, 1)
	require.Equal(t, "hello", log[0].Content)
	require.Equal(t, Failed, log[0].Delivery)

	// The session recovered; a retry works.
	require.Equal(t, StateReady, sess.State())
	require.False(t, sess.Typing())

	storage.mu.Lock()
	storage.msgErr = nil
	storage.mu.Unlock()
	require.NoError(t, sess.Send(context.Background(), "hello"))

	log = sess.Messages()
	require.Len(t, log, 3)
	require.Equal(t, Failed, log[0].Delivery)
	require.Equal(t, "persisted-hello", log[1].ID)
}

func TestSend_ResponderFailureKeepsPersistedMessage(t *testing.T) {
	sess := newTestSession(&fakeStorage{}, &fakeResponder{err: errors.New("responder down")})
	require.NoError(t, sess.Start(context.Background()))

	require.Error(t, sess.Send(context.Background(), "hello"))

	log := sess.Messages()
	require.Len(t, log, 1)
	require.Equal(t, "persisted-hello", log[0].ID)
	require.Equal(t, Delivered, log[0].Delivery)
	require.Equal(t, StateReady, sess.State())
}
