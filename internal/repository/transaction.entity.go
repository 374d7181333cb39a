package repository

import (
	"time"

	"github.com/duitapp/ledger/internal/model"
)

type TransactionEntity struct {
	ID            int64     `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	UserID        int64     `db:"user_id"        gorm:"column:user_id;not null;index"`
	CategoryID    int64     `db:"category_id"    gorm:"column:category_id;not null;index"`
	Amount        float64   `db:"amount"         gorm:"column:amount;not null"`
	Type          string    `db:"type"           gorm:"column:type;not null"`
	Description   string    `db:"description"    gorm:"column:description;not null;default:''"`
	Merchant      string    `db:"merchant"       gorm:"column:merchant;not null;default:''"`
	PaymentMethod string    `db:"payment_method" gorm:"column:payment_method;not null;default:''"`
	Verified      bool      `db:"verified"       gorm:"column:verified;not null;default:false"`
	OccurredAt    time.Time `db:"occurred_at"    gorm:"column:occurred_at;not null;index"`
	CreatedAt     time.Time `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
}

func (TransactionEntity) TableName() string {
	return "transactions"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	return &TransactionEntity{
		ID:            m.ID,
		UserID:        m.UserID,
		CategoryID:    m.CategoryID,
		Amount:        m.Amount,
		Type:          string(m.Type),
		Description:   m.Description,
		Merchant:      m.Merchant,
		PaymentMethod: m.PaymentMethod,
		Verified:      m.Verified,
		OccurredAt:    m.OccurredAt,
		CreatedAt:     m.CreatedAt,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		ID:            e.ID,
		UserID:        e.UserID,
		CategoryID:    e.CategoryID,
		Amount:        e.Amount,
		Type:          model.TransactionType(e.Type),
		Description:   e.Description,
		Merchant:      e.Merchant,
		PaymentMethod: e.PaymentMethod,
		Verified:      e.Verified,
		OccurredAt:    e.OccurredAt,
		CreatedAt:     e.CreatedAt,
	}
}

func toTransactionModels(entities []*TransactionEntity) []*model.Transaction {
	if entities == nil {
		return nil
	}
	models := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = toTransactionModel(e)
	}
	return models
}
