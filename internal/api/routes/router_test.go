package routes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopsense/backend/internal/api/handlers"
	"github.com/shopsense/backend/internal/api/routes"
	"github.com/shopsense/backend/internal/application/services"
	"github.com/shopsense/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChat struct {
	result *services.ChatResult
}

func (s *stubChat) ProcessMessage(context.Context, string, string, string) (*services.ChatResult, error) {
	return s.result, nil
}

type stubConversations struct {
	history []*entities.Message
}

func (s *stubConversations) CreateSession(_ context.Context, userID, title string) (*entities.ConversationSession, error) {
	return &entities.ConversationSession{ID: "sess-1", UserID: userID, Title: title, CreatedAt: time.Now()}, nil
}

func (s *stubConversations) SaveMessage(_ context.Context, sessionID, sender, content string) (*entities.Message, error) {
	return &entities.Message{ID: "m1", SessionID: sessionID, Sender: sender, Content: content}, nil
}

func (s *stubConversations) GetHistory(context.Context, string, int) ([]*entities.Message, error) {
	return s.history, nil
}

func (s *stubConversations) GetUserSessions(context.Context, string) ([]*entities.SessionSummary, error) {
	return nil, nil
}

func newTestHandler() http.Handler {
	chatHandler := handlers.NewChatHandler(&stubChat{result: &services.ChatResult{
		SessionID: "sess-1",
		Response:  "hello",
	}})
	sessionHandler := handlers.NewSessionHandler(&stubConversations{})
	return routes.NewRouter(chatHandler, sessionHandler, nil).SetupRoutes()
}

func TestRouter_Banner(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "ok", response["status"])
	assert.Contains(t, response["message"], "running")
}

func TestRouter_Health(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestRouter_ChatRoute(t *testing.T) {
	handler := newTestHandler()

	body := `{"message":"hi","user_id":"user-1"}`
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "sess-1", response["conversation_id"])
}

func TestRouter_SessionRoutes(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader(`{"user_id":"user-1"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/api/sessions/sess-1/messages", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/api/users/user-1/sessions", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_UnknownRouteReturnsJSON404(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest("GET", "/api/nope", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Not Found", response["error"])
	assert.NotEmpty(t, response["message"])
}

func TestRouter_CORSPreflight(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest("OPTIONS", "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
