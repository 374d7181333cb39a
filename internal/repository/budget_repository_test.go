package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duitapp/ledger/internal/model"
)

func TestBudgetRepository_Upsert(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewBudgetRepository(db)
	ctx := context.Background()

	t.Run("create budget", func(t *testing.T) {
		b, err := repo.Upsert(ctx, &model.Budget{
			UserID: 1, CategoryID: 3, Month: 2, Year: 2025, Amount: 2500000,
		})
		require.NoError(t, err)
		assert.NotZero(t, b.ID)
	})

	t.Run("same tuple merges instead of duplicating", func(t *testing.T) {
		first, err := repo.Upsert(ctx, &model.Budget{
			UserID: 2, CategoryID: 3, Month: 2, Year: 2025, Amount: 1000000,
		})
		require.NoError(t, err)

		second, err := repo.Upsert(ctx, &model.Budget{
			UserID: 2, CategoryID: 3, Month: 2, Year: 2025, Amount: 1500000,
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 1500000.0, second.Amount)

		list, err := repo.List(ctx, 2, 2, 2025)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("different month is a separate budget", func(t *testing.T) {
		_, err := repo.Upsert(ctx, &model.Budget{
			UserID: 2, CategoryID: 3, Month: 3, Year: 2025, Amount: 900000,
		})
		require.NoError(t, err)

		list, err := repo.List(ctx, 2, 3, 2025)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestBudgetRepository_OwnerScope(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewBudgetRepository(db)
	ctx := context.Background()

	b, err := repo.Upsert(ctx, &model.Budget{
		UserID: 1, CategoryID: 1, Month: 1, Year: 2025, Amount: 100,
	})
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, 2, b.ID)
	assert.ErrorIs(t, err, ErrBudgetNotFound)

	err = repo.Delete(ctx, 2, b.ID)
	assert.ErrorIs(t, err, ErrBudgetNotFound)

	list, err := repo.List(ctx, 2, 1, 2025)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBudgetRepository_RepointOwner(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewBudgetRepository(db)
	ctx := context.Background()

	// ghost has two budgets; primary already owns one colliding tuple
	_, err := repo.Upsert(ctx, &model.Budget{UserID: 7, CategoryID: 1, Month: 2, Year: 2025, Amount: 500})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, &model.Budget{UserID: 7, CategoryID: 2, Month: 2, Year: 2025, Amount: 600})
	require.NoError(t, err)
	primary, err := repo.Upsert(ctx, &model.Budget{UserID: 2, CategoryID: 1, Month: 2, Year: 2025, Amount: 900})
	require.NoError(t, err)

	require.NoError(t, repo.RepointOwner(ctx, 7, 2))

	list, err := repo.List(ctx, 2, 2, 2025)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// the colliding tuple kept the primary's amount
	kept, err := repo.GetByID(ctx, 2, primary.ID)
	require.NoError(t, err)
	assert.Equal(t, 900.0, kept.Amount)

	ghostLeft, err := repo.List(ctx, 7, 2, 2025)
	require.NoError(t, err)
	assert.Empty(t, ghostLeft)
}
