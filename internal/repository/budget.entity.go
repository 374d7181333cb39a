package repository

import (
	"github.com/duitapp/ledger/internal/model"
)

type BudgetEntity struct {
	ID         int64   `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	UserID     int64   `db:"user_id"     gorm:"column:user_id;not null;uniqueIndex:idx_budget_tuple"`
	CategoryID int64   `db:"category_id" gorm:"column:category_id;not null;uniqueIndex:idx_budget_tuple"`
	Month      int     `db:"month"       gorm:"column:month;not null;uniqueIndex:idx_budget_tuple"`
	Year       int     `db:"year"        gorm:"column:year;not null;uniqueIndex:idx_budget_tuple"`
	Amount     float64 `db:"amount"      gorm:"column:amount;not null"`
}

func (BudgetEntity) TableName() string {
	return "budgets"
}

func toBudgetEntity(m *model.Budget) *BudgetEntity {
	if m == nil {
		return nil
	}
	return &BudgetEntity{
		ID:         m.ID,
		UserID:     m.UserID,
		CategoryID: m.CategoryID,
		Month:      m.Month,
		Year:       m.Year,
		Amount:     m.Amount,
	}
}

func toBudgetModel(e *BudgetEntity) *model.Budget {
	if e == nil {
		return nil
	}
	return &model.Budget{
		ID:         e.ID,
		UserID:     e.UserID,
		CategoryID: e.CategoryID,
		Month:      e.Month,
		Year:       e.Year,
		Amount:     e.Amount,
	}
}

func toBudgetModels(entities []*BudgetEntity) []*model.Budget {
	if entities == nil {
		return nil
	}
	models := make([]*model.Budget, len(entities))
	for i, e := range entities {
		models[i] = toBudgetModel(e)
	}
	return models
}
