package repository

import (
	"github.com/duitapp/ledger/internal/model"
)

type CategoryEntity struct {
	ID    int64  `db:"id"    gorm:"primaryKey;autoIncrement;column:id"`
	Name  string `db:"name"  gorm:"column:name;not null;unique"`
	Type  string `db:"type"  gorm:"column:type;not null"`
	Color string `db:"color" gorm:"column:color;not null;default:''"`
	Icon  string `db:"icon"  gorm:"column:icon;not null;default:''"`
}

func (CategoryEntity) TableName() string {
	return "categories"
}

func toCategoryEntity(m *model.Category) *CategoryEntity {
	if m == nil {
		return nil
	}
	return &CategoryEntity{
		ID:    m.ID,
		Name:  m.Name,
		Type:  string(m.Type),
		Color: m.Color,
		Icon:  m.Icon,
	}
}

func toCategoryModel(e *CategoryEntity) *model.Category {
	if e == nil {
		return nil
	}
	return &model.Category{
		ID:    e.ID,
		Name:  e.Name,
		Type:  model.CategoryType(e.Type),
		Color: e.Color,
		Icon:  e.Icon,
	}
}

func toCategoryModels(entities []*CategoryEntity) []*model.Category {
	if entities == nil {
		return nil
	}
	models := make([]*model.Category, len(entities))
	for i, e := range entities {
		models[i] = toCategoryModel(e)
	}
	return models
}
