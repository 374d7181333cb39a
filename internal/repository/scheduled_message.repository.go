package repository

import (
	"context"
	"errors"
	"time"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/pkg/pg"
)

var ErrScheduledMessageNotFound = errors.New("scheduled message not found")

type ScheduledMessageRepository struct {
	*pg.DB
}

func NewScheduledMessageRepository(db *pg.DB) *ScheduledMessageRepository {
	return &ScheduledMessageRepository{
		db,
	}
}

func (r *ScheduledMessageRepository) Create(ctx context.Context, m *model.ScheduledMessage) (*model.ScheduledMessage, error) {
	entity := toScheduledMessageEntity(m)
	if entity.Status == "" {
		entity.Status = string(model.ScheduledMessageStatusPending)
	}

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toScheduledMessageModel(entity), nil
}

// ListDue returns a user's pending messages scheduled at or before the
// cutoff, oldest first.
func (r *ScheduledMessageRepository) ListDue(ctx context.Context, userID int64, cutoff time.Time) ([]*model.ScheduledMessage, error) {
	var entities []*ScheduledMessageEntity
	err := r.Read(ctx).
		Where("user_id = ? AND status = ? AND scheduled_at <= ?",
			userID, string(model.ScheduledMessageStatusPending), cutoff).
		Order("scheduled_at ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toScheduledMessageModels(entities), nil
}

// MarkSent flips a pending message to sent. The status guard makes the
// flip at-most-once: a message already drained by a concurrent run is
// not re-sent, and the zero-rows case reports it.
func (r *ScheduledMessageRepository) MarkSent(ctx context.Context, id int64) error {
	result := r.Write(ctx).
		Model(&ScheduledMessageEntity{}).
		Where("id = ? AND status = ?", id, string(model.ScheduledMessageStatusPending)).
		Update("status", string(model.ScheduledMessageStatusSent))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrScheduledMessageNotFound
	}
	return nil
}

func (r *ScheduledMessageRepository) MarkFailed(ctx context.Context, id int64) error {
	result := r.Write(ctx).
		Model(&ScheduledMessageEntity{}).
		Where("id = ?", id).
		Update("status", string(model.ScheduledMessageStatusFailed))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrScheduledMessageNotFound
	}
	return nil
}

func (r *ScheduledMessageRepository) RepointOwner(ctx context.Context, fromUserID, toUserID int64) error {
	return r.Write(ctx).
		Model(&ScheduledMessageEntity{}).
		Where("user_id = ?", fromUserID).
		Update("user_id", toUserID).Error
}
