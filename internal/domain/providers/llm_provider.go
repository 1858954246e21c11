package providers

import "context"

// Completion message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one role-tagged message in a completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionOptions tune a single completion call.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// LLMProvider is the hosted completion API. Implementations are fallible and
// must honor context cancellation; callers decide whether a failure degrades
// or surfaces.
type LLMProvider interface {
	Complete(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (string, error)
}
