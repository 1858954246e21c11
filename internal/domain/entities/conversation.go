package entities

import "time"

// Message sender values. A turn produces exactly one message per sender.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// ConversationSession is a persisted conversation thread owned by one user.
// Sessions are never deleted; only the title may change after creation.
type ConversationSession struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Message is one append-only entry in a session transcript. Transcripts are
// reconstructed by ordering on CreatedAt ascending.
type Message struct {
	ID        string    `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Sender    string    `json:"sender" db:"sender"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"timestamp" db:"created_at"`
}

// SessionSummary augments a session with message stats for history listings.
type SessionSummary struct {
	ConversationSession
	MessageCount int    `json:"message_count" db:"message_count"`
	LastMessage  string `json:"last_message" db:"last_message"`
}
