package model

import "errors"

// Budget is a monthly spending limit scoped to (user, category, month, year).
// At most one budget exists per tuple; creation upserts on conflict. Spent is
// never stored, always derived from the transaction ledger.
type Budget struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	CategoryID int64   `json:"category_id"`
	Month      int     `json:"month"` // 1..12
	Year       int     `json:"year"`
	Amount     float64 `json:"amount"`
}

func (Budget) TableName() string { return "budgets" }

type BudgetCreateRequest struct {
	UserID     int64
	CategoryID int64
	Month      int
	Year       int
	Amount     float64
}

func (p BudgetCreateRequest) Validate() error {
	if p.UserID == 0 {
		return errors.New("user_id is required")
	}
	if p.CategoryID == 0 {
		return errors.New("category_id is required")
	}
	if p.Month < 1 || p.Month > 12 {
		return errors.New("month must be between 1 and 12")
	}
	if p.Year < 1970 {
		return errors.New("year is out of range")
	}
	if p.Amount < 0 {
		return errors.New("amount must not be negative")
	}
	return nil
}

// BudgetProgress is a budget with its derived fill, computed on read.
type BudgetProgress struct {
	Budget
	Spent   float64 `json:"spent"`
	Percent float64 `json:"percent"`
}
