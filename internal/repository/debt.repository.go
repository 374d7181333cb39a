package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/pkg/pg"
)

var ErrDebtNotFound = errors.New("debt not found")

type DebtRepository struct {
	*pg.DB
}

func NewDebtRepository(db *pg.DB) *DebtRepository {
	return &DebtRepository{
		db,
	}
}

func (r *DebtRepository) Create(ctx context.Context, d *model.Debt) (*model.Debt, error) {
	entity := toDebtEntity(d)
	if entity.Status == "" {
		entity.Status = string(model.DebtStatusUnpaid)
	}

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toDebtModel(entity), nil
}

func (r *DebtRepository) GetByID(ctx context.Context, userID, id int64) (*model.Debt, error) {
	var entity DebtEntity
	err := r.Read(ctx).Where("id = ? AND user_id = ?", id, userID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDebtNotFound
		}
		return nil, err
	}
	return toDebtModel(&entity), nil
}

func (r *DebtRepository) List(ctx context.Context, userID int64) ([]*model.Debt, error) {
	var entities []*DebtEntity
	err := r.Read(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toDebtModels(entities), nil
}

func (r *DebtRepository) SetStatus(ctx context.Context, userID, id int64, status model.DebtStatus) error {
	result := r.Write(ctx).
		Model(&DebtEntity{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDebtNotFound
	}
	return nil
}

func (r *DebtRepository) Delete(ctx context.Context, userID, id int64) error {
	result := r.Write(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&DebtEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDebtNotFound
	}
	return nil
}

func (r *DebtRepository) RepointOwner(ctx context.Context, fromUserID, toUserID int64) error {
	return r.Write(ctx).
		Model(&DebtEntity{}).
		Where("user_id = ?", fromUserID).
		Update("user_id", toUserID).Error
}
