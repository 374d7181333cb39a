package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/pkg/pg"
)

var ErrMerchantMappingNotFound = errors.New("merchant mapping not found")

type MerchantRepository struct {
	*pg.DB
}

func NewMerchantRepository(db *pg.DB) *MerchantRepository {
	return &MerchantRepository{
		db,
	}
}

// Upsert records or refreshes a learned merchant-to-category hint.
func (r *MerchantRepository) Upsert(ctx context.Context, userID int64, merchantName string, categoryID int64) error {
	entity := &MerchantMappingEntity{
		UserID:       userID,
		MerchantName: merchantName,
		CategoryID:   categoryID,
	}
	return r.Write(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "merchant_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"category_id"}),
		}).
		Create(entity).Error
}

func (r *MerchantRepository) Lookup(ctx context.Context, userID int64, merchantName string) (*model.MerchantMapping, error) {
	var entity MerchantMappingEntity
	err := r.Read(ctx).
		Where("user_id = ? AND LOWER(merchant_name) = LOWER(?)", userID, merchantName).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantMappingNotFound
		}
		return nil, err
	}
	return toMerchantMappingModel(&entity), nil
}

// RepointOwner transfers mappings during reconciliation. A merchant the
// target user already mapped keeps the target's categorization; the
// ghost's duplicate row is dropped.
func (r *MerchantRepository) RepointOwner(ctx context.Context, fromUserID, toUserID int64) error {
	err := r.Write(ctx).Exec(`
		DELETE FROM merchant_mappings
		WHERE user_id = ?
		  AND EXISTS (
			SELECT 1 FROM merchant_mappings m2
			WHERE m2.user_id = ?
			  AND m2.merchant_name = merchant_mappings.merchant_name
		  )`, fromUserID, toUserID).Error
	if err != nil {
		return err
	}

	return r.Write(ctx).
		Model(&MerchantMappingEntity{}).
		Where("user_id = ?", fromUserID).
		Update("user_id", toUserID).Error
}
