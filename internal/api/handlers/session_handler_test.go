package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopsense/backend/internal/api/handlers"
	"github.com/shopsense/backend/internal/domain/entities"
	apperrors "github.com/shopsense/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConversationRepo is an in-memory ConversationRepository.
type stubConversationRepo struct {
	sessions  map[string]*entities.ConversationSession
	messages  map[string][]*entities.Message
	summaries []*entities.SessionSummary
	saveErr   error
}

func newStubConversationRepo() *stubConversationRepo {
	return &stubConversationRepo{
		sessions: make(map[string]*entities.ConversationSession),
		messages: make(map[string][]*entities.Message),
	}
}

func (s *stubConversationRepo) CreateSession(_ context.Context, userID, title string) (*entities.ConversationSession, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user ID is required")
	}
	if title == "" {
		title = "New Chat"
	}
	session := &entities.ConversationSession{
		ID:        "sess-1",
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now(),
	}
	s.sessions[session.ID] = session
	return session, nil
}

func (s *stubConversationRepo) SaveMessage(_ context.Context, sessionID, sender, content string) (*entities.Message, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	msg := &entities.Message{
		ID:        "msg-1",
		SessionID: sessionID,
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now(),
	}
	s.messages[sessionID] = append(s.messages[sessionID], msg)
	return msg, nil
}

func (s *stubConversationRepo) GetHistory(_ context.Context, sessionID string, _ int) ([]*entities.Message, error) {
	return s.messages[sessionID], nil
}

func (s *stubConversationRepo) GetUserSessions(_ context.Context, _ string) ([]*entities.SessionSummary, error) {
	return s.summaries, nil
}

func TestSessionHandler_CreateSession(t *testing.T) {
	t.Run("returns the new session id", func(t *testing.T) {
		repo := newStubConversationRepo()
		handler := handlers.NewSessionHandler(repo)

		body := `{"user_id":"user-1","title":"Gift ideas"}`
		req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateSession(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "sess-1", response["session_id"])
		assert.Equal(t, "Gift ideas", repo.sessions["sess-1"].Title)
	})

	t.Run("accepts a numeric user id", func(t *testing.T) {
		repo := newStubConversationRepo()
		handler := handlers.NewSessionHandler(repo)

		body := `{"user_id":42}`
		req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateSession(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "42", repo.sessions["sess-1"].UserID)
	})

	t.Run("rejects a missing user id", func(t *testing.T) {
		repo := newStubConversationRepo()
		handler := handlers.NewSessionHandler(repo)

		req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		handler.CreateSession(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, repo.sessions)
	})
}

func TestSessionHandler_SaveMessage(t *testing.T) {
	t.Run("persists and confirms", func(t *testing.T) {
		repo := newStubConversationRepo()
		handler := handlers.NewSessionHandler(repo)

		body := `{"session_id":"sess-1","sender":"user","content":"hello"}`
		req := httptest.NewRequest("POST", "/api/messages", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.SaveMessage(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]bool
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.True(t, response["success"])
		assert.Len(t, repo.messages["sess-1"], 1)
	})

	t.Run("rejects incomplete payloads", func(t *testing.T) {
		repo := newStubConversationRepo()
		handler := handlers.NewSessionHandler(repo)

		body := `{"session_id":"sess-1","sender":"user"}`
		req := httptest.NewRequest("POST", "/api/messages", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.SaveMessage(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, repo.messages)
	})

	t.Run("maps validation errors from the store", func(t *testing.T) {
		repo := newStubConversationRepo()
		repo.saveErr = apperrors.NewValidationError("sender must be user or ai")
		handler := handlers.NewSessionHandler(repo)

		body := `{"session_id":"sess-1","sender":"robot","content":"hi"}`
		req := httptest.NewRequest("POST", "/api/messages", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.SaveMessage(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "sender must be user or ai", response["error"])
	})
}

func TestSessionHandler_GetMessages(t *testing.T) {
	repo := newStubConversationRepo()
	now := time.Now()
	repo.messages["sess-1"] = []*entities.Message{
		{ID: "m1", SessionID: "sess-1", Sender: "user", Content: "hi", CreatedAt: now},
		{ID: "m2", SessionID: "sess-1", Sender: "ai", Content: "hello", CreatedAt: now.Add(time.Second)},
	}
	handler := handlers.NewSessionHandler(repo)

	req := httptest.NewRequest("GET", "/api/sessions/sess-1/messages", nil)
	req.SetPathValue("sessionId", "sess-1")
	w := httptest.NewRecorder()

	handler.GetMessages(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var messages []map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&messages))
	require.Len(t, messages, 2)
	assert.Equal(t, "hi", messages[0]["content"])
	assert.Equal(t, "user", messages[0]["sender"])
	assert.Equal(t, "hello", messages[1]["content"])
	assert.NotEmpty(t, messages[0]["timestamp"])
}

func TestSessionHandler_GetUserSessions(t *testing.T) {
	repo := newStubConversationRepo()
	repo.summaries = []*entities.SessionSummary{
		{
			ConversationSession: entities.ConversationSession{ID: "sess-2", UserID: "user-1", Title: "New Chat"},
			MessageCount:        3,
			LastMessage:         "see you",
		},
	}
	handler := handlers.NewSessionHandler(repo)

	req := httptest.NewRequest("GET", "/api/users/user-1/sessions", nil)
	req.SetPathValue("userId", "user-1")
	w := httptest.NewRecorder()

	handler.GetUserSessions(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var sessions []map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, "sess-2", sessions[0]["id"])
	assert.Equal(t, float64(3), sessions[0]["message_count"])
	assert.Equal(t, "see you", sessions[0]["last_message"])
}
