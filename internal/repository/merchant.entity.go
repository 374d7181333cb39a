package repository

import (
	"github.com/duitapp/ledger/internal/model"
)

type MerchantMappingEntity struct {
	ID           int64  `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	UserID       int64  `db:"user_id"       gorm:"column:user_id;not null;uniqueIndex:idx_merchant_user"`
	MerchantName string `db:"merchant_name" gorm:"column:merchant_name;not null;uniqueIndex:idx_merchant_user"`
	CategoryID   int64  `db:"category_id"   gorm:"column:category_id;not null"`
}

func (MerchantMappingEntity) TableName() string {
	return "merchant_mappings"
}

func toMerchantMappingModel(e *MerchantMappingEntity) *model.MerchantMapping {
	if e == nil {
		return nil
	}
	return &model.MerchantMapping{
		ID:           e.ID,
		UserID:       e.UserID,
		MerchantName: e.MerchantName,
		CategoryID:   e.CategoryID,
	}
}
