package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/pkg/pg"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	entity := toTransactionEntity(txn)

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toTransactionModel(entity), nil
}

// GetByID is owner-scoped: an id belonging to another user resolves as
// not found rather than leaking the row's existence.
func (r *TransactionRepository) GetByID(ctx context.Context, userID, id int64) (*model.Transaction, error) {
	var entity TransactionEntity
	err := r.Read(ctx).Where("id = ? AND user_id = ?", id, userID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return toTransactionModel(&entity), nil
}

func (r *TransactionRepository) Update(ctx context.Context, userID, id int64, u model.TransactionUpdate) error {
	fields := map[string]interface{}{}
	if u.CategoryID != nil {
		fields["category_id"] = *u.CategoryID
	}
	if u.Amount != nil {
		fields["amount"] = *u.Amount
	}
	if u.Type != nil {
		fields["type"] = string(*u.Type)
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.Merchant != nil {
		fields["merchant"] = *u.Merchant
	}
	if u.PaymentMethod != nil {
		fields["payment_method"] = *u.PaymentMethod
	}
	if u.Verified != nil {
		fields["verified"] = *u.Verified
	}
	if u.OccurredAt != nil {
		fields["occurred_at"] = *u.OccurredAt
	}
	if len(fields) == 0 {
		return nil
	}

	result := r.Write(ctx).
		Model(&TransactionEntity{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, userID, id int64) error {
	result := r.Write(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&TransactionEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error) {
	q := r.Read(ctx).Model(&TransactionEntity{}).Where("user_id = ?", f.UserID)

	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if len(f.Types) > 0 {
		q = q.Where("type IN ?", f.Types)
	}
	if f.From != nil {
		q = q.Where("occurred_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("occurred_at <= ?", *f.To)
	}

	// Count before pagination
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "occurred_at"
	if f.Desc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*TransactionEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toTransactionModels(entities), total, nil
}

// SumAmount aggregates a user's transactions of one type over a closed
// time window. Aggregation happens in SQL; nothing is fetched row-wise.
func (r *TransactionRepository) SumAmount(ctx context.Context, userID int64, typ model.TransactionType, from, to time.Time) (float64, error) {
	var sum *float64
	err := r.Read(ctx).
		Model(&TransactionEntity{}).
		Select("SUM(amount)").
		Where("user_id = ? AND type = ?", userID, string(typ)).
		Where("occurred_at >= ? AND occurred_at <= ?", from, to).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// SumCategoryExpense is the budget-fill aggregate: same-owner expense
// rows matching the category inside the window.
func (r *TransactionRepository) SumCategoryExpense(ctx context.Context, userID, categoryID int64, from, to time.Time) (float64, error) {
	var sum *float64
	err := r.Read(ctx).
		Model(&TransactionEntity{}).
		Select("SUM(amount)").
		Where("user_id = ? AND category_id = ? AND type = ?", userID, categoryID, string(model.TransactionTypeExpense)).
		Where("occurred_at >= ? AND occurred_at <= ?", from, to).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// SumPaymentMethodExpense aggregates expenses by payment-method tag over
// a window. The recap job uses it for the cash-burn check.
func (r *TransactionRepository) SumPaymentMethodExpense(ctx context.Context, userID int64, method string, from, to time.Time) (float64, error) {
	var sum *float64
	err := r.Read(ctx).
		Model(&TransactionEntity{}).
		Select("SUM(amount)").
		Where("user_id = ? AND payment_method = ? AND type = ?", userID, method, string(model.TransactionTypeExpense)).
		Where("occurred_at >= ? AND occurred_at <= ?", from, to).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// RepointOwner rewrites ownership of every row from one user to another.
// Only the reconciliation service may call this, inside its transaction.
func (r *TransactionRepository) RepointOwner(ctx context.Context, fromUserID, toUserID int64) error {
	return r.Write(ctx).
		Model(&TransactionEntity{}).
		Where("user_id = ?", fromUserID).
		Update("user_id", toUserID).Error
}
