package model

import "errors"

type BillFrequency string

const (
	BillFrequencyMonthly BillFrequency = "monthly"
	BillFrequencyWeekly  BillFrequency = "weekly"
	BillFrequencyYearly  BillFrequency = "yearly"
)

func (f BillFrequency) Valid() bool {
	switch f {
	case BillFrequencyMonthly, BillFrequencyWeekly, BillFrequencyYearly:
		return true
	}
	return false
}

type Bill struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	Name      string        `json:"name"`
	Amount    float64       `json:"amount"`
	DueDay    int           `json:"due_day"` // day of month, 1..31
	Frequency BillFrequency `json:"frequency"`
	IsPaid    bool          `json:"is_paid"`
}

func (Bill) TableName() string { return "bills" }

type BillCreateRequest struct {
	UserID    int64
	Name      string
	Amount    float64
	DueDay    int
	Frequency BillFrequency
}

func (p BillCreateRequest) Validate() error {
	if p.UserID == 0 {
		return errors.New("user_id is required")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if p.DueDay < 1 || p.DueDay > 31 {
		return errors.New("due_day must be between 1 and 31")
	}
	if !p.Frequency.Valid() {
		return errors.New("frequency must be monthly, weekly or yearly")
	}
	return nil
}

type BillUpdate struct {
	Name      *string
	Amount    *float64
	DueDay    *int
	Frequency *BillFrequency
	IsPaid    *bool
}
