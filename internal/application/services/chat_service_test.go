package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopsense/backend/internal/application/services"
	"github.com/shopsense/backend/internal/domain/entities"
	"github.com/shopsense/backend/internal/domain/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) CreateSession(ctx context.Context, userID, title string) (*entities.ConversationSession, error) {
	args := m.Called(ctx, userID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ConversationSession), args.Error(1)
}

func (m *MockConversationRepository) SaveMessage(ctx context.Context, sessionID, sender, content string) (*entities.Message, error) {
	args := m.Called(ctx, sessionID, sender, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Message), args.Error(1)
}

func (m *MockConversationRepository) GetHistory(ctx context.Context, sessionID string, limit int) ([]*entities.Message, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Message), args.Error(1)
}

func (m *MockConversationRepository) GetUserSessions(ctx context.Context, userID string) ([]*entities.SessionSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SessionSummary), args.Error(1)
}

const (
	plainAnalysisJSON   = `{"needsDatabase": false, "queryType": "none", "clarificationNeeded": false, "clarificationQuestion": ""}`
	productAnalysisJSON = `{"needsDatabase": true, "queryType": "products", "clarificationNeeded": false, "clarificationQuestion": ""}`
	clarifyAnalysisJSON = `{"needsDatabase": false, "queryType": "none", "clarificationNeeded": true, "clarificationQuestion": "Which category are you interested in?"}`
)

func newChatService(conversations repositories.ConversationRepository, catalog repositories.CatalogRepository, llm *stubLLM) *services.ChatService {
	return services.NewChatService(
		conversations,
		services.NewIntentClassifier(llm),
		services.NewContextBuilder(catalog),
		services.NewResponseComposer(llm),
	)
}

func savedMessage(sessionID, sender, content string) *entities.Message {
	return &entities.Message{
		ID:        "msg-" + sender,
		SessionID: sessionID,
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

func TestChatService_ProcessMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("reuses an existing session for a plain turn", func(t *testing.T) {
		conversations := new(MockConversationRepository)
		catalog := new(MockCatalogRepository)
		llm := &stubLLM{responses: []string{plainAnalysisJSON, "Hi! How can I help?"}}
		service := newChatService(conversations, catalog, llm)

		conversations.On("SaveMessage", mock.Anything, "sess-1", entities.SenderUser, "hello").
			Return(savedMessage("sess-1", entities.SenderUser, "hello"), nil)
		conversations.On("GetHistory", mock.Anything, "sess-1", 50).
			Return([]*entities.Message{savedMessage("sess-1", entities.SenderUser, "hello")}, nil)
		conversations.On("SaveMessage", mock.Anything, "sess-1", entities.SenderAI, "Hi! How can I help?").
			Return(savedMessage("sess-1", entities.SenderAI, "Hi! How can I help?"), nil)

		result, err := service.ProcessMessage(ctx, "user-1", "hello", "sess-1")

		require.NoError(t, err)
		assert.Equal(t, "sess-1", result.SessionID)
		assert.Equal(t, "Hi! How can I help?", result.Response)
		assert.False(t, result.ContextUsed)
		conversations.AssertNotCalled(t, "CreateSession")
		conversations.AssertExpectations(t)
	})

	t.Run("creates a session when none is given", func(t *testing.T) {
		conversations := new(MockConversationRepository)
		catalog := new(MockCatalogRepository)
		llm := &stubLLM{responses: []string{plainAnalysisJSON, "Hello!"}}
		service := newChatService(conversations, catalog, llm)

		conversations.On("CreateSession", mock.Anything, "user-1", "New Chat").
			Return(&entities.ConversationSession{ID: "sess-new", UserID: "user-1", Title: "New Chat"}, nil)
		conversations.On("SaveMessage", mock.Anything, "sess-new", entities.SenderUser, "hello").
			Return(savedMessage("sess-new", entities.SenderUser, "hello"), nil)
		conversations.On("GetHistory", mock.Anything, "sess-new", 50).
			Return([]*entities.Message{}, nil)
		conversations.On("SaveMessage", mock.Anything, "sess-new", entities.SenderAI, "Hello!").
			Return(savedMessage("sess-new", entities.SenderAI, "Hello!"), nil)

		result, err := service.ProcessMessage(ctx, "user-1", "hello", "")

		require.NoError(t, err)
		assert.Equal(t, "sess-new", result.SessionID)
		conversations.AssertExpectations(t)
	})

	t.Run("database turn builds context and reports it", func(t *testing.T) {
		conversations := new(MockConversationRepository)
		catalog := new(MockCatalogRepository)
		llm := &stubLLM{responses: []string{productAnalysisJSON, "We have great headphones."}}
		service := newChatService(conversations, catalog, llm)

		conversations.On("SaveMessage", mock.Anything, "sess-1", entities.SenderUser, mock.Anything).
			Return(savedMessage("sess-1", entities.SenderUser, "electronics under $50"), nil)
		conversations.On("GetHistory", mock.Anything, "sess-1", 50).
			Return([]*entities.Message{}, nil)
		catalog.On("GetProducts", mock.Anything, mock.Anything).
			Return([]*entities.Product{{ID: 1, Name: "Headphones"}}, nil)
		conversations.On("SaveMessage", mock.Anything, "sess-1", entities.SenderAI, "We have great headphones.").
			Return(savedMessage("sess-1", entities.SenderAI, "We have great headphones."), nil)

		result, err := service.ProcessMessage(ctx, "user-1", "electronics under $50", "sess-1")

		require.NoError(t, err)
		assert.True(t, result.ContextUsed)

		// Second completion is the composer; its system prompt carries the data.
		require.Len(t, llm.calls, 2)
		assert.Contains(t, llm.calls[1].messages[0].Content, "Headphones")
	})

	t.Run("catalog failure degrades to a context-free turn", func(t *testing.T) {
		conversations := new(MockConversationRepository)
		catalog := new(MockCatalogRepository)
		llm := &stubLLM{responses: []string{productAnalysisJSON, "Let me tell you generally."}}
		service := newChatService(conversations, catalog, llm)

		conversations.On("SaveMessage", mock.Anything, "sess-1", entities.SenderUser, mock.Anything).
			Return(savedMessage("sess-1", entities.SenderUser, "electronics"), nil)
		conversations.On("GetHistory", mock.Anything, "sess-1", 50).
			Return([]*entities.Message{}, nil)
		catalog.On("GetProducts", mock.Anything, mock.Anything).Return(nil, assert.AnError)
		conversations.On("SaveMessage", mock.Anything, "sess-1", entities.SenderAI, "Let me tell you generally.").
			Return(savedMessage("sess-1", entities.SenderAI, "Let me tell you generally."), nil)

		result, err := service.ProcessMessage(ctx, "user-1", "electronics", "sess-1")

		require.NoError(t, err)
		assert.False(t, result.ContextUsed)
	})

	t.Run("clarification is returned verbatim without touching the catalog", func(t *testing.T) {
		conversations := new(MockConversationRepository)
		catalog := new(MockCatalogRepository)
		llm := &stubLLM{responses: []string{clarifyAnalysisJSON}}
		service := newChatService(conversations, catalog, llm)

		conversations.On("SaveMessage", mock.Anything, "sess-1", entities.SenderUser, mock.Anything).
			Return(savedMessage("sess-1", entities.SenderUser, "show me stuff"), nil)
		conversations.On("GetHistory", mock.Anything, "sess-1", 50).
			Return([]*entities.Message{}, nil)
		conversations.On("SaveMessage", mock.Anything, "sess-1", entities.SenderAI, "Which category are you interested in?").
			Return(savedMessage("sess-1", entities.SenderAI, "Which category are you interested in?"), nil)

		result, err := service.ProcessMessage(ctx, "user-1", "show me stuff", "sess-1")

		require.NoError(t, err)
		assert.Equal(t, "Which category are you interested in?", result.Response)
		assert.False(t, result.ContextUsed)

		// Only the classifier completion ran.
		assert.Len(t, llm.calls, 1)
		catalog.AssertNotCalled(t, "GetProducts")
	})

	t.Run("classifier failure degrades to a plain reply", func(t *testing.T) {
		conversations := new(MockConversationRepository)
		catalog := new(MockCatalogRepository)
		llm := &stubLLM{responses: []string{"not json at all", "Plain answer."}}
		service := newChatService(conversations, catalog, llm)

		conversations.On("SaveMessage", mock.Anything, "sess-1", entities.SenderUser, mock.Anything).
			Return(savedMessage("sess-1", entities.SenderUser, "show me products"), nil)
		conversations.On("GetHistory", mock.Anything, "sess-1", 50).
			Return([]*entities.Message{}, nil)
		conversations.On("SaveMessage", mock.Anything, "sess-1", entities.SenderAI, "Plain answer.").
			Return(savedMessage("sess-1", entities.SenderAI, "Plain answer."), nil)

		result, err := service.ProcessMessage(ctx, "user-1", "show me products", "sess-1")

		require.NoError(t, err)
		assert.Equal(t, "Plain answer.", result.Response)
		assert.False(t, result.ContextUsed)
	})

	t.Run("generation failure surfaces after the user message is persisted", func(t *testing.T) {
		conversations := new(MockConversationRepository)
		catalog := new(MockCatalogRepository)
		llm := &stubLLM{err: assert.AnError}
		service := newChatService(conversations, catalog, llm)

		conversations.On("SaveMessage", mock.Anything, "sess-1", entities.SenderUser, "hello").
			Return(savedMessage("sess-1", entities.SenderUser, "hello"), nil)
		conversations.On("GetHistory", mock.Anything, "sess-1", 50).
			Return([]*entities.Message{}, nil)

		_, err := service.ProcessMessage(ctx, "user-1", "hello", "sess-1")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to generate AI response")
		conversations.AssertCalled(t, "SaveMessage", mock.Anything, "sess-1", entities.SenderUser, "hello")
		conversations.AssertNotCalled(t, "SaveMessage", mock.Anything, "sess-1", entities.SenderAI, mock.Anything)
	})

	t.Run("session creation failure stops the turn", func(t *testing.T) {
		conversations := new(MockConversationRepository)
		catalog := new(MockCatalogRepository)
		llm := &stubLLM{}
		service := newChatService(conversations, catalog, llm)

		conversations.On("CreateSession", mock.Anything, "user-1", "New Chat").
			Return(nil, assert.AnError)

		_, err := service.ProcessMessage(ctx, "user-1", "hello", "")

		require.Error(t, err)
		conversations.AssertNotCalled(t, "SaveMessage")
		assert.Empty(t, llm.calls)
	})
}
