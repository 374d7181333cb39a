package repository

import (
	"github.com/duitapp/ledger/internal/model"
)

type BillEntity struct {
	ID        int64   `db:"id"        gorm:"primaryKey;autoIncrement;column:id"`
	UserID    int64   `db:"user_id"   gorm:"column:user_id;not null;index"`
	Name      string  `db:"name"      gorm:"column:name;not null"`
	Amount    float64 `db:"amount"    gorm:"column:amount;not null"`
	DueDay    int     `db:"due_day"   gorm:"column:due_day;not null"`
	Frequency string  `db:"frequency" gorm:"column:frequency;not null"`
	IsPaid    bool    `db:"is_paid"   gorm:"column:is_paid;not null;default:false"`
}

func (BillEntity) TableName() string {
	return "bills"
}

func toBillEntity(m *model.Bill) *BillEntity {
	if m == nil {
		return nil
	}
	return &BillEntity{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		Amount:    m.Amount,
		DueDay:    m.DueDay,
		Frequency: string(m.Frequency),
		IsPaid:    m.IsPaid,
	}
}

func toBillModel(e *BillEntity) *model.Bill {
	if e == nil {
		return nil
	}
	return &model.Bill{
		ID:        e.ID,
		UserID:    e.UserID,
		Name:      e.Name,
		Amount:    e.Amount,
		DueDay:    e.DueDay,
		Frequency: model.BillFrequency(e.Frequency),
		IsPaid:    e.IsPaid,
	}
}

func toBillModels(entities []*BillEntity) []*model.Bill {
	if entities == nil {
		return nil
	}
	models := make([]*model.Bill, len(entities))
	for i, e := range entities {
		models[i] = toBillModel(e)
	}
	return models
}
