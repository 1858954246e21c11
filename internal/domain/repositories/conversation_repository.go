package repositories

import (
	"context"

	"github.com/shopsense/backend/internal/domain/entities"
)

// ConversationRepository persists conversation sessions and their messages.
type ConversationRepository interface {
	// CreateSession creates a new session for a user.
	CreateSession(ctx context.Context, userID, title string) (*entities.ConversationSession, error)

	// SaveMessage appends a message to an existing session.
	SaveMessage(ctx context.Context, sessionID, sender, content string) (*entities.Message, error)

	// GetHistory returns up to limit messages for a session, oldest first.
	GetHistory(ctx context.Context, sessionID string, limit int) ([]*entities.Message, error)

	// GetUserSessions returns a user's sessions, newest first, each with
	// message count and most recent message content.
	GetUserSessions(ctx context.Context, userID string) ([]*entities.SessionSummary, error)
}
