package model

import "errors"

type DebtStatus string

const (
	DebtStatusUnpaid DebtStatus = "unpaid"
	DebtStatusPaid   DebtStatus = "paid"
)

// Debt is a personal IOU. Amount is signed: positive means the counterpart
// owes the user, negative means the user owes the counterpart.
type Debt struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Amount          float64    `json:"amount"`
	CounterpartName string     `json:"counterpart_name"`
	Status          DebtStatus `json:"status"`
}

func (Debt) TableName() string { return "debts" }

type DebtCreateRequest struct {
	UserID          int64
	Amount          float64
	CounterpartName string
}

func (p DebtCreateRequest) Validate() error {
	if p.UserID == 0 {
		return errors.New("user_id is required")
	}
	if p.Amount == 0 {
		return errors.New("amount is required")
	}
	if p.CounterpartName == "" {
		return errors.New("counterpart_name is required")
	}
	return nil
}
