// Package client is the HTTP client for the conversation/message endpoints,
// consumed by the conversation session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"querychat/internal/models"
)

var (
	ErrStorageUnavailable   = errors.New("storage unavailable")
	ErrStorageTimeout       = errors.New("storage timeout")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrValidation           = errors.New("validation failed")
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// NewWithHTTPClient lets callers control timeouts and transport.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

func (c *Client) CreateConversation(ctx context.Context) (models.Conversation, error) {
	var conv models.Conversation
	if err := c.postJSON(ctx, "/api/conversations", nil, &conv); err != nil {
		return models.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

func (c *Client) CreateMessage(ctx context.Context, conversationID, content string) (models.Message, error) {
	body := map[string]string{
		"content":        content,
		"conversationId": conversationID,
	}

	var msg models.Message
	if err := c.postJSON(ctx, "/api/messages", body, &msg); err != nil {
		return models.Message{}, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("%w: encode request: %v", ErrStorageUnavailable, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %v", ErrStorageTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrValidation, body.Error)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrConversationNotFound, body.Error)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrStorageUnavailable, resp.StatusCode, body.Error)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
