package repository

import (
	"github.com/duitapp/ledger/internal/model"
)

type InvestmentEntity struct {
	ID           int64   `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	UserID       int64   `db:"user_id"       gorm:"column:user_id;not null;index"`
	Name         string  `db:"name"          gorm:"column:name;not null"`
	Quantity     float64 `db:"quantity"      gorm:"column:quantity;not null"`
	AvgBuyPrice  float64 `db:"avg_buy_price" gorm:"column:avg_buy_price;not null"`
	CurrentPrice float64 `db:"current_price" gorm:"column:current_price;not null"`
	Platform     string  `db:"platform"      gorm:"column:platform;not null;default:''"`
}

func (InvestmentEntity) TableName() string {
	return "investments"
}

func toInvestmentEntity(m *model.Investment) *InvestmentEntity {
	if m == nil {
		return nil
	}
	return &InvestmentEntity{
		ID:           m.ID,
		UserID:       m.UserID,
		Name:         m.Name,
		Quantity:     m.Quantity,
		AvgBuyPrice:  m.AvgBuyPrice,
		CurrentPrice: m.CurrentPrice,
		Platform:     m.Platform,
	}
}

func toInvestmentModel(e *InvestmentEntity) *model.Investment {
	if e == nil {
		return nil
	}
	return &model.Investment{
		ID:           e.ID,
		UserID:       e.UserID,
		Name:         e.Name,
		Quantity:     e.Quantity,
		AvgBuyPrice:  e.AvgBuyPrice,
		CurrentPrice: e.CurrentPrice,
		Platform:     e.Platform,
	}
}

func toInvestmentModels(entities []*InvestmentEntity) []*model.Investment {
	if entities == nil {
		return nil
	}
	models := make([]*model.Investment, len(entities))
	for i, e := range entities {
		models[i] = toInvestmentModel(e)
	}
	return models
}
