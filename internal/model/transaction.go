package model

import (
	"errors"
	"time"
)

type TransactionType string

const (
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeTransfer TransactionType = "transfer"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeExpense, TransactionTypeIncome, TransactionTypeTransfer:
		return true
	}
	return false
}

type Transaction struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	CategoryID    int64           `json:"category_id"`
	Amount        float64         `json:"amount"` // positive scalar, sign carried by Type
	Type          TransactionType `json:"type"`
	Description   string          `json:"description"`
	Merchant      string          `json:"merchant,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Verified      bool            `json:"verified"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }

type TransactionCreateRequest struct {
	UserID        int64
	CategoryID    int64
	Amount        float64
	Type          TransactionType
	Description   string
	Merchant      string
	PaymentMethod string
	OccurredAt    time.Time
}

func (p TransactionCreateRequest) Validate() error {
	if p.UserID == 0 {
		return errors.New("user_id is required")
	}
	if p.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if !p.Type.Valid() {
		return errors.New("type must be expense, income or transfer")
	}
	return nil
}

// TransactionUpdate carries the editable fields. Nil means "leave as is".
type TransactionUpdate struct {
	CategoryID    *int64
	Amount        *float64
	Type          *TransactionType
	Description   *string
	Merchant      *string
	PaymentMethod *string
	Verified      *bool
	OccurredAt    *time.Time
}

// TransactionFilter controls list and aggregate queries. UserID is
// mandatory: every read is owner-scoped at the query level.
type TransactionFilter struct {
	UserID     int64
	CategoryID *int64
	Types      []TransactionType
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
	Desc       bool
}
