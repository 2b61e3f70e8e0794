package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"querychat/internal/db"
)

type Handler struct {
	store  *db.Store
	logger *zap.Logger
}

func NewHandler(store *db.Store, logger *zap.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

type CreateMessageRequest struct {
	Content        string `json:"content"`
	ConversationID string `json:"conversationId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	conv, err := h.store.CreateConversation()
	if err != nil {
		h.logger.Error("failed to create conversation", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to create conversation")
		return
	}

	h.logger.Info("conversation created", zap.String("conversation_id", conv.ID))
	h.writeJSON(w, http.StatusCreated, conv)
}

// Messages handles POST (create a user message) and GET (conversation
// history) on /api/messages.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createMessage(w, r)
	case http.MethodGet:
		h.listMessages(w, r)
	default:
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) createMessage(w http.ResponseWriter, r *http.Request) {
	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Content == "" || req.ConversationID == "" {
		h.writeError(w, http.StatusBadRequest, "content and conversation id are required")
		return
	}

	if _, err := h.store.GetConversation(req.ConversationID); err != nil {
		if errors.Is(err, db.ErrConversationNotFound) {
			h.writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		h.logger.Error("failed to look up conversation",
			zap.Error(err),
			zap.String("conversation_id", req.ConversationID))
		h.writeError(w, http.StatusInternalServerError, "failed to create message")
		return
	}

	msg, err := h.store.CreateMessage(req.ConversationID, req.Content, true)
	if err != nil {
		h.logger.Error("failed to create message",
			zap.Error(err),
			zap.String("conversation_id", req.ConversationID))
		h.writeError(w, http.StatusInternalServerError, "failed to create message")
		return
	}

	h.writeJSON(w, http.StatusCreated, msg)
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	convID := r.URL.Query().Get("conversationId")
	if convID == "" {
		h.writeError(w, http.StatusBadRequest, "conversation id is required")
		return
	}

	messages, err := h.store.MessagesByConversation(convID, 50)
	if err != nil {
		h.logger.Error("failed to get messages",
			zap.Error(err),
			zap.String("conversation_id", convID))
		h.writeError(w, http.StatusInternalServerError, "failed to get messages")
		return
	}

	h.writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	options, err := h.store.ListOptions(r.URL.Query().Get("optionName"))
	if err != nil {
		h.logger.Error("failed to list options", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to list options")
		return
	}

	h.writeJSON(w, http.StatusOK, options)
}

func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filter := r.URL.Query().Get("locationTypeFilter")
	locations, err := h.store.ListLocations(filter)
	if err != nil {
		h.logger.Error("failed to list locations",
			zap.Error(err),
			zap.String("type_filter", filter))
		h.writeError(w, http.StatusInternalServerError, "failed to list locations")
		return
	}

	h.writeJSON(w, http.StatusOK, locations)
}

func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filter := r.URL.Query().Get("itemCategoryFilter")
	items, err := h.store.ListItems(filter)
	if err != nil {
		h.logger.Error("failed to list items",
			zap.Error(err),
			zap.String("category_filter", filter))
		h.writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	h.writeJSON(w, http.StatusOK, items)
}
