package model

import "time"

// User is the owning identity for every ledger row. Accounts are created
// lazily: a web signup carries credentials, a first bot contact does not.
type User struct {
	ID           int64     `json:"id"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	ChatID       *int64    `json:"chat_id,omitempty"` // linked messaging identity, unique
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

// IsGhost reports whether the account was provisioned from a messaging
// contact and has never been claimed with credentials.
func (u *User) IsGhost() bool {
	return u.ChatID != nil && u.PasswordHash == ""
}
