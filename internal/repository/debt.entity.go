package repository

import (
	"github.com/duitapp/ledger/internal/model"
)

type DebtEntity struct {
	ID              int64   `db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	UserID          int64   `db:"user_id"          gorm:"column:user_id;not null;index"`
	Amount          float64 `db:"amount"           gorm:"column:amount;not null"`
	CounterpartName string  `db:"counterpart_name" gorm:"column:counterpart_name;not null"`
	Status          string  `db:"status"           gorm:"column:status;not null;default:'unpaid'"`
}

func (DebtEntity) TableName() string {
	return "debts"
}

func toDebtEntity(m *model.Debt) *DebtEntity {
	if m == nil {
		return nil
	}
	return &DebtEntity{
		ID:              m.ID,
		UserID:          m.UserID,
		Amount:          m.Amount,
		CounterpartName: m.CounterpartName,
		Status:          string(m.Status),
	}
}

func toDebtModel(e *DebtEntity) *model.Debt {
	if e == nil {
		return nil
	}
	return &model.Debt{
		ID:              e.ID,
		UserID:          e.UserID,
		Amount:          e.Amount,
		CounterpartName: e.CounterpartName,
		Status:          model.DebtStatus(e.Status),
	}
}

func toDebtModels(entities []*DebtEntity) []*model.Debt {
	if entities == nil {
		return nil
	}
	models := make([]*model.Debt, len(entities))
	for i, e := range entities {
		models[i] = toDebtModel(e)
	}
	return models
}
