package model

// UserSettings is one-to-one with User. PrimaryGoalID must reference a goal
// owned by the same user; deleting that goal nulls the pointer in the same
// transaction (convention, not a database constraint).
type UserSettings struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"user_id"`
	HourlyRate    float64 `json:"hourly_rate"`
	PrimaryGoalID *int64  `json:"primary_goal_id,omitempty"`
	PIN           string  `json:"-"`
	AppLock       bool    `json:"app_lock"`
}

func (UserSettings) TableName() string { return "user_settings" }
