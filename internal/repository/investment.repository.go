package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/pkg/pg"
)

var ErrInvestmentNotFound = errors.New("investment not found")

type InvestmentRepository struct {
	*pg.DB
}

func NewInvestmentRepository(db *pg.DB) *InvestmentRepository {
	return &InvestmentRepository{
		db,
	}
}

func (r *InvestmentRepository) Create(ctx context.Context, inv *model.Investment) (*model.Investment, error) {
	entity := toInvestmentEntity(inv)

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toInvestmentModel(entity), nil
}

func (r *InvestmentRepository) GetByID(ctx context.Context, userID, id int64) (*model.Investment, error) {
	var entity InvestmentEntity
	err := r.Read(ctx).Where("id = ? AND user_id = ?", id, userID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvestmentNotFound
		}
		return nil, err
	}
	return toInvestmentModel(&entity), nil
}

func (r *InvestmentRepository) List(ctx context.Context, userID int64) ([]*model.Investment, error) {
	var entities []*InvestmentEntity
	err := r.Read(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toInvestmentModels(entities), nil
}

func (r *InvestmentRepository) Update(ctx context.Context, userID, id int64, u model.InvestmentUpdate) error {
	fields := map[string]interface{}{}
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Quantity != nil {
		fields["quantity"] = *u.Quantity
	}
	if u.AvgBuyPrice != nil {
		fields["avg_buy_price"] = *u.AvgBuyPrice
	}
	if u.CurrentPrice != nil {
		fields["current_price"] = *u.CurrentPrice
	}
	if u.Platform != nil {
		fields["platform"] = *u.Platform
	}
	if len(fields) == 0 {
		return nil
	}

	result := r.Write(ctx).
		Model(&InvestmentEntity{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvestmentNotFound
	}
	return nil
}

func (r *InvestmentRepository) Delete(ctx context.Context, userID, id int64) error {
	result := r.Write(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&InvestmentEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvestmentNotFound
	}
	return nil
}

// SumValue aggregates quantity x current price in SQL for the net-worth
// read.
func (r *InvestmentRepository) SumValue(ctx context.Context, userID int64) (float64, error) {
	var sum *float64
	err := r.Read(ctx).
		Model(&InvestmentEntity{}).
		Select("SUM(quantity * current_price)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

func (r *InvestmentRepository) RepointOwner(ctx context.Context, fromUserID, toUserID int64) error {
	return r.Write(ctx).
		Model(&InvestmentEntity{}).
		Where("user_id = ?", fromUserID).
		Update("user_id", toUserID).Error
}
