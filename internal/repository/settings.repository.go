package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/pkg/pg"
)

var ErrSettingsNotFound = errors.New("user settings not found")

type SettingsRepository struct {
	*pg.DB
}

func NewSettingsRepository(db *pg.DB) *SettingsRepository {
	return &SettingsRepository{
		db,
	}
}

// GetOrCreate returns the user's settings row, creating the default row
// on first access.
func (r *SettingsRepository) GetOrCreate(ctx context.Context, userID int64) (*model.UserSettings, error) {
	var entity UserSettingsEntity
	err := r.Read(ctx).Where("user_id = ?", userID).First(&entity).Error
	if err == nil {
		return toUserSettingsModel(&entity), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entity = UserSettingsEntity{UserID: userID}
	if err := r.Write(ctx).Create(&entity).Error; err != nil {
		return nil, err
	}
	return toUserSettingsModel(&entity), nil
}

func (r *SettingsRepository) Update(ctx context.Context, s *model.UserSettings) error {
	result := r.Write(ctx).
		Model(&UserSettingsEntity{}).
		Where("user_id = ?", s.UserID).
		Updates(map[string]interface{}{
			"hourly_rate":     s.HourlyRate,
			"primary_goal_id": s.PrimaryGoalID,
			"pin":             s.PIN,
			"app_lock":        s.AppLock,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSettingsNotFound
	}
	return nil
}

// ClearPrimaryGoal nulls the primary-goal pointer when it references the
// given goal. Goal deletion calls this in the same transaction, keeping
// the pointer invariant without a database constraint.
func (r *SettingsRepository) ClearPrimaryGoal(ctx context.Context, userID, goalID int64) error {
	return r.Write(ctx).
		Model(&UserSettingsEntity{}).
		Where("user_id = ? AND primary_goal_id = ?", userID, goalID).
		Update("primary_goal_id", nil).Error
}

// DeleteByUser drops the settings row outright. Reconciliation uses this
// for the ghost side so the primary's settings survive unchanged.
func (r *SettingsRepository) DeleteByUser(ctx context.Context, userID int64) error {
	return r.Write(ctx).Where("user_id = ?", userID).Delete(&UserSettingsEntity{}).Error
}
