package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/pkg/pg"
)

var ErrBillNotFound = errors.New("bill not found")

type BillRepository struct {
	*pg.DB
}

func NewBillRepository(db *pg.DB) *BillRepository {
	return &BillRepository{
		db,
	}
}

func (r *BillRepository) Create(ctx context.Context, b *model.Bill) (*model.Bill, error) {
	entity := toBillEntity(b)

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toBillModel(entity), nil
}

func (r *BillRepository) GetByID(ctx context.Context, userID, id int64) (*model.Bill, error) {
	var entity BillEntity
	err := r.Read(ctx).Where("id = ? AND user_id = ?", id, userID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	return toBillModel(&entity), nil
}

// GetByName resolves a bill by case-insensitive exact name match, for
// tool calls that reference bills by name rather than id.
func (r *BillRepository) GetByName(ctx context.Context, userID int64, name string) (*model.Bill, error) {
	var entity BillEntity
	err := r.Read(ctx).
		Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	return toBillModel(&entity), nil
}

func (r *BillRepository) List(ctx context.Context, userID int64) ([]*model.Bill, error) {
	var entities []*BillEntity
	err := r.Read(ctx).Where("user_id = ?", userID).Order("due_day ASC").Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toBillModels(entities), nil
}

func (r *BillRepository) Update(ctx context.Context, userID, id int64, u model.BillUpdate) error {
	fields := map[string]interface{}{}
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Amount != nil {
		fields["amount"] = *u.Amount
	}
	if u.DueDay != nil {
		fields["due_day"] = *u.DueDay
	}
	if u.Frequency != nil {
		fields["frequency"] = string(*u.Frequency)
	}
	if u.IsPaid != nil {
		fields["is_paid"] = *u.IsPaid
	}
	if len(fields) == 0 {
		return nil
	}

	result := r.Write(ctx).
		Model(&BillEntity{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBillNotFound
	}
	return nil
}

func (r *BillRepository) Delete(ctx context.Context, userID, id int64) error {
	result := r.Write(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&BillEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBillNotFound
	}
	return nil
}

func (r *BillRepository) RepointOwner(ctx context.Context, fromUserID, toUserID int64) error {
	return r.Write(ctx).
		Model(&BillEntity{}).
		Where("user_id = ?", fromUserID).
		Update("user_id", toUserID).Error
}
