package repository

import (
	"time"

	"github.com/duitapp/ledger/internal/model"
)

type GoalEntity struct {
	ID            int64      `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	UserID        int64      `db:"user_id"        gorm:"column:user_id;not null;index"`
	Name          string     `db:"name"           gorm:"column:name;not null"`
	TargetAmount  float64    `db:"target_amount"  gorm:"column:target_amount;not null"`
	CurrentAmount float64    `db:"current_amount" gorm:"column:current_amount;not null;default:0"`
	Deadline      *time.Time `db:"deadline"       gorm:"column:deadline"`
}

func (GoalEntity) TableName() string {
	return "goals"
}

func toGoalEntity(m *model.Goal) *GoalEntity {
	if m == nil {
		return nil
	}
	return &GoalEntity{
		ID:            m.ID,
		UserID:        m.UserID,
		Name:          m.Name,
		TargetAmount:  m.TargetAmount,
		CurrentAmount: m.CurrentAmount,
		Deadline:      m.Deadline,
	}
}

func toGoalModel(e *GoalEntity) *model.Goal {
	if e == nil {
		return nil
	}
	return &model.Goal{
		ID:            e.ID,
		UserID:        e.UserID,
		Name:          e.Name,
		TargetAmount:  e.TargetAmount,
		CurrentAmount: e.CurrentAmount,
		Deadline:      e.Deadline,
	}
}

func toGoalModels(entities []*GoalEntity) []*model.Goal {
	if entities == nil {
		return nil
	}
	models := make([]*model.Goal, len(entities))
	for i, e := range entities {
		models[i] = toGoalModel(e)
	}
	return models
}
