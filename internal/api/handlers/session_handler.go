package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopsense/backend/internal/domain/repositories"
)

// SessionHandler handles session and message persistence endpoints.
type SessionHandler struct {
	conversations repositories.ConversationRepository
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(conversations repositories.ConversationRepository) *SessionHandler {
	return &SessionHandler{conversations: conversations}
}

type createSessionRequest struct {
	UserID interface{} `json:"user_id"`
	Title  string      `json:"title"`
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var payload createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	userID, ok := normalizeUserID(payload.UserID)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	session, err := h.conversations.CreateSession(r.Context(), userID, payload.Title)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"session_id": session.ID,
	})
}

type saveMessageRequest struct {
	SessionID string `json:"session_id"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
}

// SaveMessage handles POST /api/messages
func (h *SessionHandler) SaveMessage(w http.ResponseWriter, r *http.Request) {
	var payload saveMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if payload.SessionID == "" || payload.Sender == "" || payload.Content == "" {
		respondWithError(w, http.StatusBadRequest, "session_id, sender and content are required")
		return
	}

	if _, err := h.conversations.SaveMessage(r.Context(), payload.SessionID, payload.Sender, payload.Content); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{
		"success": true,
	})
}

// GetMessages handles GET /api/sessions/{sessionId}/messages
func (h *SessionHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	messages, err := h.conversations.GetHistory(r.Context(), sessionID, 0)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, messages)
}

// GetUserSessions handles GET /api/users/{userId}/sessions
func (h *SessionHandler) GetUserSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	sessions, err := h.conversations.GetUserSessions(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, sessions)
}
