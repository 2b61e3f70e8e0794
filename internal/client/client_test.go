package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateConversation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/conversations", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"conv-1","createdAt":"2025-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	conv, err := c.CreateConversation(context.Background())
	require.NoError(t, err)
	require.Equal(t, "conv-1", conv.ID)
}

func TestCreateMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "hello", body["content"])
		require.Equal(t, "conv-1", body["conversationId"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"msg-1","conversationId":"conv-1","content":"hello","isUserMessage":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	msg, err := c.CreateMessage(context.Background(), "conv-1", "hello")
	require.NoError(t, err)
	require.Equal(t, "msg-1", msg.ID)
	require.True(t, msg.IsUserMessage)
}

func TestCreateMessage_ValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"content and conversation id are required"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.CreateMessage(context.Background(), "", "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateMessage_ConversationNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"conversation not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.CreateMessage(context.Background(), "nope", "hello")
	require.ErrorIs(t, err, ErrConversationNotFound)
}

func TestCreateMessage_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"db exploded"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.CreateMessage(context.Background(), "conv-1", "hello")
	require.ErrorIs(t, err, ErrStorageUnavailable)
	require.Contains(t, err.Error(), "db exploded")
}

func TestCreateMessage_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewWithHTTPClient(srv.URL, &http.Client{Timeout: 20 * time.Millisecond})
	_, err := c.CreateMessage(context.Background(), "conv-1", "hello")
	require.ErrorIs(t, err, ErrStorageTimeout)
}

func TestCreateConversation_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL)
	_, err := c.CreateConversation(context.Background())
	require.ErrorIs(t, err, ErrStorageUnavailable)
}
