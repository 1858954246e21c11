package routes

import (
	"encoding/json"
	"net/http"

	"github.com/shopsense/backend/internal/api/handlers"
	"github.com/shopsense/backend/internal/api/middleware"
	"github.com/shopsense/backend/internal/infrastructure/observability"
)

// Router wires handlers onto the HTTP mux.
type Router struct {
	mux *http.ServeMux

	chatHandler    *handlers.ChatHandler
	sessionHandler *handlers.SessionHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router.
func NewRouter(
	chatHandler *handlers.ChatHandler,
	sessionHandler *handlers.SessionHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		chatHandler:    chatHandler,
		sessionHandler: sessionHandler,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes.
func (r *Router) SetupRoutes() http.Handler {
	// Service banner and health check
	r.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"message": "E-commerce Chat API is running",
		})
	})

	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Chat endpoint
	r.mux.HandleFunc("POST /api/chat", r.chatHandler.Chat)

	// Session and message endpoints
	r.mux.HandleFunc("POST /api/sessions", r.sessionHandler.CreateSession)
	r.mux.HandleFunc("POST /api/messages", r.sessionHandler.SaveMessage)
	r.mux.HandleFunc("GET /api/sessions/{sessionId}/messages", r.sessionHandler.GetMessages)
	r.mux.HandleFunc("GET /api/users/{userId}/sessions", r.sessionHandler.GetUserSessions)

	// Everything else gets a JSON 404 instead of the mux default.
	r.mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "Not Found",
			"message": "The requested endpoint does not exist",
		})
	})

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
