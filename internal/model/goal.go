package model

import (
	"errors"
	"time"
)

// Goal is a savings target. CurrentAmount is stored, not derived; it only
// moves through guarded repository mutations so automatic progress can
// never push it past TargetAmount (manual edits may).
type Goal struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	Name          string     `json:"name"`
	TargetAmount  float64    `json:"target_amount"`
	CurrentAmount float64    `json:"current_amount"`
	Deadline      *time.Time `json:"deadline,omitempty"`
}

func (Goal) TableName() string { return "goals" }

// Percent is the display progress. Zero targets yield 0, never NaN.
func (g *Goal) Percent() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return g.CurrentAmount / g.TargetAmount * 100
}

type GoalCreateRequest struct {
	UserID        int64
	Name          string
	TargetAmount  float64
	CurrentAmount float64
	Deadline      *time.Time
}

func (p GoalCreateRequest) Validate() error {
	if p.UserID == 0 {
		return errors.New("user_id is required")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.TargetAmount < 0 || p.CurrentAmount < 0 {
		return errors.New("amounts must not be negative")
	}
	return nil
}

type GoalUpdate struct {
	Name          *string
	TargetAmount  *float64
	CurrentAmount *float64 // manual override, bypasses the progress cap
	Deadline      *time.Time
}
