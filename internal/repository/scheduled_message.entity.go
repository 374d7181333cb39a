package repository

import (
	"time"

	"github.com/duitapp/ledger/internal/model"
)

type ScheduledMessageEntity struct {
	ID          int64     `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	UserID      int64     `db:"user_id"      gorm:"column:user_id;not null;index"`
	Payload     string    `db:"payload"      gorm:"column:payload;not null"`
	ScheduledAt time.Time `db:"scheduled_at" gorm:"column:scheduled_at;not null;index"`
	Status      string    `db:"status"       gorm:"column:status;not null;default:'pending'"`
}

func (ScheduledMessageEntity) TableName() string {
	return "scheduled_messages"
}

func toScheduledMessageEntity(m *model.ScheduledMessage) *ScheduledMessageEntity {
	if m == nil {
		return nil
	}
	return &ScheduledMessageEntity{
		ID:          m.ID,
		UserID:      m.UserID,
		Payload:     m.Payload,
		ScheduledAt: m.ScheduledAt,
		Status:      string(m.Status),
	}
}

func toScheduledMessageModel(e *ScheduledMessageEntity) *model.ScheduledMessage {
	if e == nil {
		return nil
	}
	return &model.ScheduledMessage{
		ID:          e.ID,
		UserID:      e.UserID,
		Payload:     e.Payload,
		ScheduledAt: e.ScheduledAt,
		Status:      model.ScheduledMessageStatus(e.Status),
	}
}

func toScheduledMessageModels(entities []*ScheduledMessageEntity) []*model.ScheduledMessage {
	if entities == nil {
		return nil
	}
	models := make([]*model.ScheduledMessage, len(entities))
	for i, e := range entities {
		models[i] = toScheduledMessageModel(e)
	}
	return models
}
