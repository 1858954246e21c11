package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopsense/backend/internal/domain/entities"
	"github.com/shopsense/backend/internal/domain/providers"
)

const (
	classifierTemperature = 0.1
	classifierMaxTokens   = 200
)

const analysisPromptTemplate = `Analyze this user message and determine if it requires querying an e-commerce database.

User message: %q

Respond with JSON in this format:
{
  "needsDatabase": true/false,
  "queryType": "products|orders|users|inventory|analytics|none",
  "clarificationNeeded": true/false,
  "clarificationQuestion": "question to ask user if needed"
}

Examples of messages that need database queries:
- "Show me products under $50"
- "What's my order status?"
- "How many users are from California?"
- "What are the top selling products?"

Examples that don't need database:
- "Hello"
- "How are you?"
- "What can you help me with?"`

var validQueryTypes = map[entities.QueryType]struct{}{
	entities.QueryTypeProducts:  {},
	entities.QueryTypeOrders:    {},
	entities.QueryTypeUsers:     {},
	entities.QueryTypeInventory: {},
	entities.QueryTypeAnalytics: {},
	entities.QueryTypeNone:      {},
}

// IntentClassifier decides whether a message needs catalog data and which
// domain to query. It delegates the decision to the LLM and falls back to the
// safe default on any failure, so a broken upstream degrades a turn instead
// of failing it.
type IntentClassifier struct {
	llm providers.LLMProvider
}

// NewIntentClassifier creates a new intent classifier.
func NewIntentClassifier(llm providers.LLMProvider) *IntentClassifier {
	return &IntentClassifier{llm: llm}
}

// Classify analyzes one user message. It never returns an error. history is
// accepted for future prompt enrichment; the decision today is per-message.
func (c *IntentClassifier) Classify(ctx context.Context, message string, history []*entities.Message) entities.QueryAnalysis {
	prompt := fmt.Sprintf(analysisPromptTemplate, message)

	raw, err := c.llm.Complete(ctx, []providers.ChatMessage{
		{Role: providers.RoleUser, Content: prompt},
	}, providers.CompletionOptions{
		Temperature: classifierTemperature,
		MaxTokens:   classifierMaxTokens,
	})
	if err != nil {
		log.Warn().Err(err).Msg("intent classification failed, using safe default")
		return entities.SafeDefaultAnalysis()
	}

	var analysis entities.QueryAnalysis
	if err := json.Unmarshal([]byte(stripMarkdownFences(raw)), &analysis); err != nil {
		log.Warn().Err(err).Str("response", raw).Msg("classifier returned unparseable JSON, using safe default")
		return entities.SafeDefaultAnalysis()
	}

	if _, ok := validQueryTypes[analysis.QueryType]; !ok {
		log.Warn().Str("query_type", string(analysis.QueryType)).Msg("classifier returned unknown query type, using safe default")
		return entities.SafeDefaultAnalysis()
	}

	return analysis
}

// stripMarkdownFences removes a surrounding ```json ... ``` block, which some
// models emit even when asked for bare JSON.
func stripMarkdownFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
