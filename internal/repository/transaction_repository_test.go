package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duitapp/ledger/internal/model"
)

func TestTransactionRepository_Create(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	t.Run("create transaction successfully", func(t *testing.T) {
		txn := &model.Transaction{
			UserID:     1,
			CategoryID: 2,
			Amount:     35000,
			Type:       model.TransactionTypeExpense,
			Description: "lunch",
			OccurredAt: time.Now(),
		}

		created, err := repo.Create(ctx, txn)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, txn.UserID, created.UserID)
		assert.Equal(t, txn.Amount, created.Amount)
		assert.NotZero(t, created.CreatedAt)
	})
}

func TestTransactionRepository_OwnerScope(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Transaction{
		UserID:     1,
		CategoryID: 1,
		Amount:     100,
		Type:       model.TransactionTypeExpense,
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	t.Run("owner sees the row", func(t *testing.T) {
		got, err := repo.GetByID(ctx, 1, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("another user gets not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 2, created.ID)
		assert.ErrorIs(t, err, ErrTransactionNotFound)
	})

	t.Run("another user cannot update", func(t *testing.T) {
		amount := 999.0
		err := repo.Update(ctx, 2, created.ID, model.TransactionUpdate{Amount: &amount})
		assert.ErrorIs(t, err, ErrTransactionNotFound)

		got, err := repo.GetByID(ctx, 1, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 100.0, got.Amount)
	})

	t.Run("another user cannot delete", func(t *testing.T) {
		err := repo.Delete(ctx, 2, created.ID)
		assert.ErrorIs(t, err, ErrTransactionNotFound)

		_, err = repo.GetByID(ctx, 1, created.ID)
		require.NoError(t, err)
	})
}

func TestTransactionRepository_List(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	userID := int64(100)
	base := time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, &model.Transaction{
			UserID:     userID,
			CategoryID: 1,
			Amount:     float64(10 * (i + 1)),
			Type:       model.TransactionTypeExpense,
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}
	// another user's row must never show up
	_, err := repo.Create(ctx, &model.Transaction{
		UserID:     200,
		CategoryID: 1,
		Amount:     1000,
		Type:       model.TransactionTypeExpense,
		OccurredAt: base,
	})
	require.NoError(t, err)

	t.Run("list is owner-scoped", func(t *testing.T) {
		items, total, err := repo.List(ctx, model.TransactionFilter{UserID: userID, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, items, 5)
		for _, it := range items {
			assert.Equal(t, userID, it.UserID)
		}
	})

	t.Run("list with pagination", func(t *testing.T) {
		items, total, err := repo.List(ctx, model.TransactionFilter{UserID: userID, Limit: 2, Offset: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, items, 2)
	})

	t.Run("list with time window", func(t *testing.T) {
		from := base.Add(1 * time.Hour)
		to := base.Add(3 * time.Hour)
		items, total, err := repo.List(ctx, model.TransactionFilter{UserID: userID, From: &from, To: &to, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, items, 3)
	})
}

func TestTransactionRepository_Sums(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	userID := int64(7)
	at := time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)
	seed := []struct {
		amount float64
		typ    model.TransactionType
		cat    int64
		method string
	}{
		{35000, model.TransactionTypeExpense, 1, "cash"},
		{15000, model.TransactionTypeExpense, 1, "card"},
		{50000, model.TransactionTypeExpense, 2, "cash"},
		{7000000, model.TransactionTypeIncome, 3, ""},
	}
	for _, s := range seed {
		_, err := repo.Create(ctx, &model.Transaction{
			UserID:        userID,
			CategoryID:    s.cat,
			Amount:        s.amount,
			Type:          s.typ,
			PaymentMethod: s.method,
			OccurredAt:    at,
		})
		require.NoError(t, err)
	}

	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 28, 23, 59, 59, 999000000, time.UTC)

	t.Run("sum by type", func(t *testing.T) {
		expense, err := repo.SumAmount(ctx, userID, model.TransactionTypeExpense, from, to)
		require.NoError(t, err)
		assert.Equal(t, 100000.0, expense)

		income, err := repo.SumAmount(ctx, userID, model.TransactionTypeIncome, from, to)
		require.NoError(t, err)
		assert.Equal(t, 7000000.0, income)
	})

	t.Run("sum by category", func(t *testing.T) {
		spent, err := repo.SumCategoryExpense(ctx, userID, 1, from, to)
		require.NoError(t, err)
		assert.Equal(t, 50000.0, spent)
	})

	t.Run("sum by payment method", func(t *testing.T) {
		cash, err := repo.SumPaymentMethodExpense(ctx, userID, "cash", from, to)
		require.NoError(t, err)
		assert.Equal(t, 85000.0, cash)
	})

	t.Run("empty window sums to zero", func(t *testing.T) {
		sum, err := repo.SumAmount(ctx, userID, model.TransactionTypeExpense,
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC))
		require.NoError(t, err)
		assert.Zero(t, sum)
	})

	t.Run("sum never includes other users", func(t *testing.T) {
		sum, err := repo.SumAmount(ctx, 999, model.TransactionTypeExpense, from, to)
		require.NoError(t, err)
		assert.Zero(t, sum)
	})
}

func TestTransactionRepository_RepointOwner(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, &model.Transaction{
			UserID:     7,
			CategoryID: 1,
			Amount:     100,
			Type:       model.TransactionTypeExpense,
			OccurredAt: time.Now(),
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &model.Transaction{
		UserID:     2,
		CategoryID: 1,
		Amount:     500,
		Type:       model.TransactionTypeExpense,
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, repo.RepointOwner(ctx, 7, 2))

	_, total, err := repo.List(ctx, model.TransactionFilter{UserID: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	_, total, err = repo.List(ctx, model.TransactionFilter{UserID: 7, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}
