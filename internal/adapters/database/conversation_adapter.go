package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/shopsense/backend/internal/domain/entities"
	"github.com/shopsense/backend/internal/domain/repositories"
	"github.com/shopsense/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/shopsense/backend/pkg/errors"
)

// ConversationAdapter implements ConversationRepository
type ConversationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewConversationAdapter creates a new conversation adapter
func NewConversationAdapter(client *postgres.Client) repositories.ConversationRepository {
	return &ConversationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// CreateSession creates a new conversation session for a user
func (a *ConversationAdapter) CreateSession(ctx context.Context, userID, title string) (*entities.ConversationSession, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}
	if title == "" {
		title = "New Chat"
	}

	session := &entities.ConversationSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}

	record := goqu.Record{
		"id":         session.ID,
		"user_id":    session.UserID,
		"title":      session.Title,
		"created_at": session.CreatedAt,
	}

	query, args, err := a.db.Insert("conversation_sessions").Rows(record).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create session", err)
	}

	return session, nil
}

// SaveMessage appends a message to an existing session. Every message must
// reference an existing session; the foreign key enforces it.
func (a *ConversationAdapter) SaveMessage(ctx context.Context, sessionID, sender, content string) (*entities.Message, error) {
	if sessionID == "" {
		return nil, apperrors.NewValidationError("session id is required")
	}
	if sender != entities.SenderUser && sender != entities.SenderAI {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid sender %q", sender))
	}

	message := &entities.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	record := goqu.Record{
		"id":         message.ID,
		"session_id": message.SessionID,
		"sender":     message.Sender,
		"content":    message.Content,
		"created_at": message.CreatedAt,
	}

	query, args, err := a.db.Insert("messages").Rows(record).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to save message", err)
	}

	return message, nil
}

// GetHistory returns up to limit messages for a session, oldest first.
func (a *ConversationAdapter) GetHistory(ctx context.Context, sessionID string, limit int) ([]*entities.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	query, args, err := a.db.Select(
		"id", "session_id", "sender", "content", "created_at",
	).From("messages").
		Where(goqu.Ex{"session_id": sessionID}).
		Order(goqu.I("created_at").Asc()).
		Limit(uint(limit)).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build history query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get history", err)
	}
	defer rows.Close()

	var messages []*entities.Message
	for rows.Next() {
		message := &entities.Message{}
		err := rows.Scan(
			&message.ID,
			&message.SessionID,
			&message.Sender,
			&message.Content,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan message", err)
		}
		messages = append(messages, message)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating messages", err)
	}

	return messages, nil
}

// GetUserSessions returns a user's sessions, newest first, with message
// counts and the most recent message content.
func (a *ConversationAdapter) GetUserSessions(ctx context.Context, userID string) ([]*entities.SessionSummary, error) {
	query, args, err := a.db.Select(
		"id", "user_id", "title", "created_at",
		goqu.L("(SELECT COUNT(*) FROM messages WHERE messages.session_id = conversation_sessions.id)").As("message_count"),
		goqu.L("(SELECT content FROM messages WHERE messages.session_id = conversation_sessions.id ORDER BY created_at DESC LIMIT 1)").As("last_message"),
	).From("conversation_sessions").
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.I("created_at").Desc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build sessions query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user sessions", err)
	}
	defer rows.Close()

	var sessions []*entities.SessionSummary
	for rows.Next() {
		summary := &entities.SessionSummary{}
		var lastMessage sql.NullString

		err := rows.Scan(
			&summary.ID,
			&summary.UserID,
			&summary.Title,
			&summary.CreatedAt,
			&summary.MessageCount,
			&lastMessage,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan session summary", err)
		}

		summary.LastMessage = lastMessage.String
		sessions = append(sessions, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating sessions", err)
	}

	return sessions, nil
}
