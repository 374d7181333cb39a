package model

import "errors"

// Investment holds a position at manually-updated prices. Value and profit
// are derived on read, never stored.
type Investment struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"user_id"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	AvgBuyPrice  float64 `json:"avg_buy_price"`
	CurrentPrice float64 `json:"current_price"`
	Platform     string  `json:"platform,omitempty"`
}

func (Investment) TableName() string { return "investments" }

func (i *Investment) Value() float64 {
	return i.Quantity * i.CurrentPrice
}

func (i *Investment) Profit() float64 {
	return i.Quantity * (i.CurrentPrice - i.AvgBuyPrice)
}

type InvestmentCreateRequest struct {
	UserID       int64
	Name         string
	Quantity     float64
	AvgBuyPrice  float64
	CurrentPrice float64
	Platform     string
}

func (p InvestmentCreateRequest) Validate() error {
	if p.UserID == 0 {
		return errors.New("user_id is required")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	if p.AvgBuyPrice < 0 || p.CurrentPrice < 0 {
		return errors.New("prices must not be negative")
	}
	return nil
}

type InvestmentUpdate struct {
	Name         *string
	Quantity     *float64
	AvgBuyPrice  *float64
	CurrentPrice *float64
	Platform     *string
}
