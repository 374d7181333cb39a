package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/pkg/pg"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository struct {
	*pg.DB
}

func NewCategoryRepository(db *pg.DB) *CategoryRepository {
	return &CategoryRepository{
		db,
	}
}

// Seed inserts the global category set. Existing names are left alone so
// reseeding is safe.
func (r *CategoryRepository) Seed(ctx context.Context, categories []*model.Category) error {
	for _, c := range categories {
		entity := toCategoryEntity(c)
		err := r.Write(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).
			Create(entity).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var entity CategoryEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return toCategoryModel(&entity), nil
}

// GetByName resolves a category by case-insensitive exact name match.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*model.Category, error) {
	var entity CategoryEntity
	err := r.Read(ctx).Where("LOWER(name) = LOWER(?)", name).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return toCategoryModel(&entity), nil
}

// GetDefault returns the designated fallback category. It must exist in
// the seeded set; a missing default is a deployment error.
func (r *CategoryRepository) GetDefault(ctx context.Context) (*model.Category, error) {
	return r.GetByName(ctx, model.DefaultCategoryName)
}

func (r *CategoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	var entities []*CategoryEntity
	if err := r.Read(ctx).Order("id ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toCategoryModels(entities), nil
}
