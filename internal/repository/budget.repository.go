package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/pkg/pg"
)

var ErrBudgetNotFound = errors.New("budget not found")

type BudgetRepository struct {
	*pg.DB
}

func NewBudgetRepository(db *pg.DB) *BudgetRepository {
	return &BudgetRepository{
		db,
	}
}

// Upsert creates the budget or, when one already exists for the same
// (user, category, month, year) tuple, overwrites its amount. Duplicates
// per tuple would double-count in aggregate views, so the store enforces
// merge-on-conflict instead of allowing them.
func (r *BudgetRepository) Upsert(ctx context.Context, b *model.Budget) (*model.Budget, error) {
	entity := toBudgetEntity(b)

	err := r.Write(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}, {Name: "month"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount"}),
		}).
		Create(entity).Error
	if err != nil {
		return nil, err
	}

	// On conflict the entity keeps a zero ID; re-read by tuple.
	if entity.ID == 0 {
		err = r.Write(ctx).
			Where("user_id = ? AND category_id = ? AND month = ? AND year = ?",
				b.UserID, b.CategoryID, b.Month, b.Year).
			First(entity).Error
		if err != nil {
			return nil, err
		}
	}

	return toBudgetModel(entity), nil
}

func (r *BudgetRepository) GetByID(ctx context.Context, userID, id int64) (*model.Budget, error) {
	var entity BudgetEntity
	err := r.Read(ctx).Where("id = ? AND user_id = ?", id, userID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, err
	}
	return toBudgetModel(&entity), nil
}

func (r *BudgetRepository) List(ctx context.Context, userID int64, month, year int) ([]*model.Budget, error) {
	var entities []*BudgetEntity
	err := r.Read(ctx).
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Order("id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toBudgetModels(entities), nil
}

func (r *BudgetRepository) UpdateAmount(ctx context.Context, userID, id int64, amount float64) error {
	result := r.Write(ctx).
		Model(&BudgetEntity{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("amount", amount)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBudgetNotFound
	}
	return nil
}

func (r *BudgetRepository) Delete(ctx context.Context, userID, id int64) error {
	result := r.Write(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&BudgetEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBudgetNotFound
	}
	return nil
}

// RepointOwner transfers budget ownership during reconciliation. When the
// target user already budgets the same tuple, the target's row wins and
// the source row is dropped, keeping the uniqueness invariant intact.
func (r *BudgetRepository) RepointOwner(ctx context.Context, fromUserID, toUserID int64) error {
	err := r.Write(ctx).Exec(`
		DELETE FROM budgets
		WHERE user_id = ?
		  AND EXISTS (
			SELECT 1 FROM budgets b2
			WHERE b2.user_id = ?
			  AND b2.category_id = budgets.category_id
			  AND b2.month = budgets.month
			  AND b2.year = budgets.year
		  )`, fromUserID, toUserID).Error
	if err != nil {
		return err
	}

	return r.Write(ctx).
		Model(&BudgetEntity{}).
		Where("user_id = ?", fromUserID).
		Update("user_id", toUserID).Error
}
