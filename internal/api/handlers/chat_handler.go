package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopsense/backend/internal/application/services"
)

// ChatProcessor defines the chat operation used by the handler.
type ChatProcessor interface {
	ProcessMessage(ctx context.Context, userID, message, sessionID string) (*services.ChatResult, error)
}

// ChatHandler handles the conversational turn endpoint.
type ChatHandler struct {
	chat ChatProcessor
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chat ChatProcessor) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Message        string      `json:"message"`
	UserID         interface{} `json:"user_id"`
	ConversationID string      `json:"conversation_id"`
}

type chatResponse struct {
	Success        bool   `json:"success"`
	ConversationID string `json:"conversation_id"`
	Response       string `json:"response"`
	ContextUsed    bool   `json:"context_used"`
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	userID, ok := normalizeUserID(payload.UserID)
	if payload.Message == "" || !ok {
		respondWithError(w, http.StatusBadRequest, "Message and user_id are required")
		return
	}

	result, err := h.chat.ProcessMessage(r.Context(), userID, payload.Message, payload.ConversationID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, chatResponse{
		Success:        true,
		ConversationID: result.SessionID,
		Response:       result.Response,
		ContextUsed:    result.ContextUsed,
	})
}

// normalizeUserID accepts the JSON number and string encodings of a user id
// and folds both into a string.
func normalizeUserID(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}
