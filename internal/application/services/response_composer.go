package services

import (
	"context"
	"encoding/json"

	"github.com/shopsense/backend/internal/domain/entities"
	"github.com/shopsense/backend/internal/domain/providers"
	apperrors "github.com/shopsense/backend/pkg/errors"
)

const (
	composerTemperature = 0.7
	composerMaxTokens   = 1024
)

const systemPromptBase = `You are an intelligent e-commerce assistant with access to a comprehensive database containing:

- Products (with categories, brands, prices, departments)
- Users (with demographics and location data)
- Orders (with status, dates, and items)
- Inventory items
- Distribution centers

Your role is to help users with:
1. Product inquiries and recommendations
2. Order status and history
3. Inventory availability
4. Business analytics and insights
5. General e-commerce questions

Guidelines:
- Ask clarifying questions when you need more specific information
- Provide accurate, helpful responses based on the available data
- If you need to query specific data, clearly indicate what information you need
- Be conversational and helpful
- If you cannot find specific information, explain what data you would need to help better
`

// ResponseComposer generates the user-facing reply. Unlike classification and
// context building, a failure here is surfaced: persisting a placeholder as
// if it were a real answer would corrupt the transcript.
type ResponseComposer struct {
	llm providers.LLMProvider
}

// NewResponseComposer creates a new response composer.
func NewResponseComposer(llm providers.LLMProvider) *ResponseComposer {
	return &ResponseComposer{llm: llm}
}

// Compose generates a reply to message given the conversation so far and an
// optional catalog context. dbContext must be JSON-serializable or nil.
func (c *ResponseComposer) Compose(ctx context.Context, message string, history []*entities.Message, dbContext interface{}) (string, error) {
	messages := make([]providers.ChatMessage, 0, len(history)+2)
	messages = append(messages, providers.ChatMessage{
		Role:    providers.RoleSystem,
		Content: buildSystemPrompt(dbContext),
	})

	for _, msg := range history {
		role := providers.RoleAssistant
		if msg.Sender == entities.SenderUser {
			role = providers.RoleUser
		}
		messages = append(messages, providers.ChatMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	messages = append(messages, providers.ChatMessage{
		Role:    providers.RoleUser,
		Content: message,
	})

	response, err := c.llm.Complete(ctx, messages, providers.CompletionOptions{
		Temperature: composerTemperature,
		MaxTokens:   composerMaxTokens,
	})
	if err != nil {
		return "", apperrors.NewExternalError("failed to generate AI response", err)
	}

	return response, nil
}

func buildSystemPrompt(dbContext interface{}) string {
	if dbContext == nil {
		return systemPromptBase
	}

	data, err := json.MarshalIndent(dbContext, "", "  ")
	if err != nil {
		return systemPromptBase
	}

	return systemPromptBase + "\nCurrent database context:\n" + string(data)
}
