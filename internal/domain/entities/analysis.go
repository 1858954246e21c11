package entities

// QueryType routes a classified message to one catalog domain.
type QueryType string

const (
	QueryTypeProducts  QueryType = "products"
	QueryTypeOrders    QueryType = "orders"
	QueryTypeUsers     QueryType = "users"
	QueryTypeInventory QueryType = "inventory"
	QueryTypeAnalytics QueryType = "analytics"
	QueryTypeNone      QueryType = "none"
)

// QueryAnalysis is the classifier decision for one user message. It is
// ephemeral and never persisted.
type QueryAnalysis struct {
	NeedsDatabase         bool      `json:"needsDatabase"`
	QueryType             QueryType `json:"queryType"`
	ClarificationNeeded   bool      `json:"clarificationNeeded"`
	ClarificationQuestion string    `json:"clarificationQuestion"`
}

// SafeDefaultAnalysis is the fixed fallback decision used whenever
// classification fails. Callers get a plain response instead of an error.
func SafeDefaultAnalysis() QueryAnalysis {
	return QueryAnalysis{
		NeedsDatabase:         false,
		QueryType:             QueryTypeNone,
		ClarificationNeeded:   false,
		ClarificationQuestion: "",
	}
}
