package model

import "encoding/json"

type IntentKind string

const (
	IntentTransaction IntentKind = "transaction"
	IntentQuery       IntentKind = "query"
	IntentDebt        IntentKind = "debt"
)

// Intent is the structured record produced by the upstream extraction
// service. It is an untrusted, best-effort classification: every field is
// optional and must be defaulted or validated before use.
type Intent struct {
	Kind            IntentKind      `json:"intent"`
	Amount          *float64        `json:"amount,omitempty"`
	Description     *string         `json:"description,omitempty"`
	Category        *string         `json:"category,omitempty"`
	TransactionType *string         `json:"transactionType,omitempty"`
	DebtorName      *string         `json:"debtorName,omitempty"`
	ToolName        string          `json:"toolName,omitempty"`
	Arguments       json.RawMessage `json:"arguments,omitempty"`
}

// IsToolCall reports whether the extractor produced a typed tool call
// instead of a bare intent classification.
func (i *Intent) IsToolCall() bool { return i.ToolName != "" }
