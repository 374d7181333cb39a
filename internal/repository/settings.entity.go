package repository

import (
	"github.com/duitapp/ledger/internal/model"
)

type UserSettingsEntity struct {
	ID            int64   `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	UserID        int64   `db:"user_id"         gorm:"column:user_id;not null;unique"`
	HourlyRate    float64 `db:"hourly_rate"     gorm:"column:hourly_rate;not null;default:0"`
	PrimaryGoalID *int64  `db:"primary_goal_id" gorm:"column:primary_goal_id"`
	PIN           string  `db:"pin"             gorm:"column:pin;not null;default:''"`
	AppLock       bool    `db:"app_lock"        gorm:"column:app_lock;not null;default:false"`
}

func (UserSettingsEntity) TableName() string {
	return "user_settings"
}

func toUserSettingsEntity(m *model.UserSettings) *UserSettingsEntity {
	if m == nil {
		return nil
	}
	return &UserSettingsEntity{
		ID:            m.ID,
		UserID:        m.UserID,
		HourlyRate:    m.HourlyRate,
		PrimaryGoalID: m.PrimaryGoalID,
		PIN:           m.PIN,
		AppLock:       m.AppLock,
	}
}

func toUserSettingsModel(e *UserSettingsEntity) *model.UserSettings {
	if e == nil {
		return nil
	}
	return &model.UserSettings{
		ID:            e.ID,
		UserID:        e.UserID,
		HourlyRate:    e.HourlyRate,
		PrimaryGoalID: e.PrimaryGoalID,
		PIN:           e.PIN,
		AppLock:       e.AppLock,
	}
}
