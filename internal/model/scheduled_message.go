package model

import "time"

type ScheduledMessageStatus string

const (
	ScheduledMessageStatusPending ScheduledMessageStatus = "pending"
	ScheduledMessageStatusSent    ScheduledMessageStatus = "sent"
	ScheduledMessageStatusFailed  ScheduledMessageStatus = "failed"
)

// ScheduledMessage is a one-shot reminder queued on behalf of a user,
// drained by the recap job. A message is included in at most one digest:
// the status flip to sent is the delivery record.
type ScheduledMessage struct {
	ID          int64                  `json:"id"`
	UserID      int64                  `json:"user_id"`
	Payload     string                 `json:"payload"`
	ScheduledAt time.Time              `json:"scheduled_at"`
	Status      ScheduledMessageStatus `json:"status"`
}

func (ScheduledMessage) TableName() string { return "scheduled_messages" }
