package repository

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/pkg/pg"
)

var (
	ErrGoalNotFound      = errors.New("goal not found")
	ErrInsufficientFunds = errors.New("goal balance insufficient")
)

type GoalRepository struct {
	*pg.DB
}

func NewGoalRepository(db *pg.DB) *GoalRepository {
	return &GoalRepository{
		db,
	}
}

func (r *GoalRepository) Create(ctx context.Context, g *model.Goal) (*model.Goal, error) {
	entity := toGoalEntity(g)

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toGoalModel(entity), nil
}

func (r *GoalRepository) GetByID(ctx context.Context, userID, id int64) (*model.Goal, error) {
	var entity GoalEntity
	err := r.Read(ctx).Where("id = ? AND user_id = ?", id, userID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return toGoalModel(&entity), nil
}

func (r *GoalRepository) List(ctx context.Context, userID int64) ([]*model.Goal, error) {
	var entities []*GoalEntity
	err := r.Read(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toGoalModels(entities), nil
}

// AddProgress is the guarded progress mutation: it locks the row, applies
// the delta and clamps the balance to [0, target]. A negative delta that
// would take the balance below zero fails with ErrInsufficientFunds and
// writes nothing. Returns the new balance.
func (r *GoalRepository) AddProgress(ctx context.Context, userID, id int64, delta float64) (float64, error) {
	var entity GoalEntity

	err := r.Write(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrGoalNotFound
		}
		return 0, err
	}

	next := entity.CurrentAmount + delta
	if next < 0 {
		return 0, ErrInsufficientFunds
	}
	if entity.TargetAmount > 0 {
		next = math.Min(next, entity.TargetAmount)
	}

	result := r.Write(ctx).
		Model(&GoalEntity{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("current_amount", next)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrGoalNotFound
	}

	return next, nil
}

// Update applies a manual edit. A CurrentAmount here is an explicit
// override and intentionally skips the AddProgress cap.
func (r *GoalRepository) Update(ctx context.Context, userID, id int64, u model.GoalUpdate) error {
	fields := map[string]interface{}{}
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.TargetAmount != nil {
		fields["target_amount"] = *u.TargetAmount
	}
	if u.CurrentAmount != nil {
		fields["current_amount"] = *u.CurrentAmount
	}
	if u.Deadline != nil {
		fields["deadline"] = *u.Deadline
	}
	if len(fields) == 0 {
		return nil
	}

	result := r.Write(ctx).
		Model(&GoalEntity{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (r *GoalRepository) Delete(ctx context.Context, userID, id int64) error {
	result := r.Write(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&GoalEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}

// InflateTargets multiplies every target of every goal owned by userID by
// factor, rounding the result up to a whole unit. The recap job applies
// this once per calendar month.
func (r *GoalRepository) InflateTargets(ctx context.Context, userID int64, factor float64) error {
	var entities []*GoalEntity
	if err := r.Write(ctx).Where("user_id = ?", userID).Find(&entities).Error; err != nil {
		return err
	}
	for _, e := range entities {
		next := math.Ceil(e.TargetAmount * factor)
		err := r.Write(ctx).
			Model(&GoalEntity{}).
			Where("id = ?", e.ID).
			Update("target_amount", next).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *GoalRepository) RepointOwner(ctx context.Context, fromUserID, toUserID int64) error {
	return r.Write(ctx).
		Model(&GoalEntity{}).
		Where("user_id = ?", fromUserID).
		Update("user_id", toUserID).Error
}
