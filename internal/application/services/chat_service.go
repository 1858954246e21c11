package services

import (
	"context"

	"github.com/shopsense/backend/internal/domain/entities"
	"github.com/shopsense/backend/internal/domain/repositories"
	"github.com/shopsense/backend/internal/infrastructure/observability"
)

const (
	defaultSessionTitle = "New Chat"
	historyLimit        = 50
)

// ChatResult is one completed conversational turn.
type ChatResult struct {
	SessionID   string
	Response    string
	ContextUsed bool
}

// responseBranch identifies which of the mutually exclusive reply paths a
// turn takes.
type responseBranch int

const (
	branchClarify responseBranch = iota
	branchWithContext
	branchPlain
)

// branchFor derives the reply path from a classifier decision. Clarification
// takes precedence over a database lookup.
func branchFor(analysis entities.QueryAnalysis) responseBranch {
	switch {
	case analysis.ClarificationNeeded:
		return branchClarify
	case analysis.NeedsDatabase:
		return branchWithContext
	default:
		return branchPlain
	}
}

// ChatService orchestrates one conversational turn: session bookkeeping,
// message persistence, intent classification, context enrichment, and reply
// generation.
type ChatService struct {
	conversations  repositories.ConversationRepository
	classifier     *IntentClassifier
	contextBuilder *ContextBuilder
	composer       *ResponseComposer
}

// NewChatService creates a new chat service.
func NewChatService(
	conversations repositories.ConversationRepository,
	classifier *IntentClassifier,
	contextBuilder *ContextBuilder,
	composer *ResponseComposer,
) *ChatService {
	return &ChatService{
		conversations:  conversations,
		classifier:     classifier,
		contextBuilder: contextBuilder,
		composer:       composer,
	}
}

// ProcessMessage runs one turn. An empty sessionID starts a new session. The
// user message is persisted before anything fallible runs, so a failed turn
// still leaves the user's input in the transcript.
func (s *ChatService) ProcessMessage(ctx context.Context, userID, message, sessionID string) (*ChatResult, error) {
	logger := observability.LoggerFromContext(ctx)

	if sessionID == "" {
		session, err := s.conversations.CreateSession(ctx, userID, defaultSessionTitle)
		if err != nil {
			return nil, err
		}
		sessionID = session.ID
		logger.Debug().Str("session_id", sessionID).Msg("created new conversation session")
	}

	if _, err := s.conversations.SaveMessage(ctx, sessionID, entities.SenderUser, message); err != nil {
		return nil, err
	}

	history, err := s.conversations.GetHistory(ctx, sessionID, historyLimit)
	if err != nil {
		return nil, err
	}

	analysis := s.classifier.Classify(ctx, message, history)

	var (
		reply     string
		dbContext interface{}
	)

	switch branchFor(analysis) {
	case branchClarify:
		reply = analysis.ClarificationQuestion

	case branchWithContext:
		dbContext = s.contextBuilder.Build(ctx, analysis.QueryType, message)
		reply, err = s.composer.Compose(ctx, message, history, dbContext)
		if err != nil {
			return nil, err
		}

	case branchPlain:
		reply, err = s.composer.Compose(ctx, message, history, nil)
		if err != nil {
			return nil, err
		}
	}

	if _, err := s.conversations.SaveMessage(ctx, sessionID, entities.SenderAI, reply); err != nil {
		return nil, err
	}

	logger.Info().
		Str("session_id", sessionID).
		Str("query_type", string(analysis.QueryType)).
		Bool("context_used", dbContext != nil).
		Msg("chat turn completed")

	return &ChatResult{
		SessionID:   sessionID,
		Response:    reply,
		ContextUsed: dbContext != nil,
	}, nil
}
