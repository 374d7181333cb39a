package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/internal/repository"
	"github.com/duitapp/ledger/pkg/pg"
)

func newTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.UserEntity{},
		&repository.CategoryEntity{},
		&repository.TransactionEntity{},
		&repository.BudgetEntity{},
		&repository.GoalEntity{},
		&repository.BillEntity{},
		&repository.InvestmentEntity{},
		&repository.DebtEntity{},
		&repository.ScheduledMessageEntity{},
		&repository.UserSettingsEntity{},
		&repository.MerchantMappingEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	v := reflect.ValueOf(pgDB).Elem()
	for _, name := range []string{"read", "write"} {
		f := v.FieldByName(name)
		f = reflect.NewAt(f.Type(), f.Addr().UnsafePointer()).Elem()
		f.Set(reflect.ValueOf(db))
	}
	return pgDB
}

type reconcileFixture struct {
	db           *pg.DB
	users        *repository.UserRepository
	settings     *repository.SettingsRepository
	transactions *repository.TransactionRepository
	goals        *repository.GoalRepository
	budgets      *repository.BudgetRepository
}

func newReconcileFixture(t *testing.T) *reconcileFixture {
	db := newTestDB(t)
	return &reconcileFixture{
		db:           db,
		users:        repository.NewUserRepository(db),
		settings:     repository.NewSettingsRepository(db),
		transactions: repository.NewTransactionRepository(db),
		goals:        repository.NewGoalRepository(db),
		budgets:      repository.NewBudgetRepository(db),
	}
}

func (f *reconcileFixture) service(extra ...Repointer) *ReconcileService {
	owned := append([]Repointer{f.transactions, f.goals, f.budgets}, extra...)
	return NewReconcileService(f.db, f.users, f.settings, owned...)
}

func TestReconcileService_Merge(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	email := "owner@example.com"
	primary, err := f.users.Create(ctx, &model.User{Email: &email, PasswordHash: "hash"})
	require.NoError(t, err)

	ghost, err := f.users.CreateGhost(ctx, 42, "bot contact")
	require.NoError(t, err)

	// rows the ghost accumulated before the account was claimed
	_, err = f.transactions.Create(ctx, &model.Transaction{
		UserID: ghost.ID, CategoryID: 1, Type: model.TransactionTypeExpense,
		Amount: 120, Description: "coffee", OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	_, err = f.goals.Create(ctx, &model.Goal{UserID: ghost.ID, Name: "bike", TargetAmount: 900})
	require.NoError(t, err)
	_, err = f.settings.GetOrCreate(ctx, ghost.ID)
	require.NoError(t, err)

	// the primary's own row must survive untouched
	own, err := f.transactions.Create(ctx, &model.Transaction{
		UserID: primary.ID, CategoryID: 1, Type: model.TransactionTypeIncome,
		Amount: 500, Description: "salary", OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, f.service().Merge(ctx, primary.ID, 42))

	t.Run("ghost rows now belong to the primary", func(t *testing.T) {
		txns, total, err := f.transactions.List(ctx, model.TransactionFilter{UserID: primary.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		ids := []int64{txns[0].ID, txns[1].ID}
		assert.Contains(t, ids, own.ID)

		goals, err := f.goals.List(ctx, primary.ID)
		require.NoError(t, err)
		assert.Len(t, goals, 1)
	})

	t.Run("ghost account is gone", func(t *testing.T) {
		_, err := f.users.GetByID(ctx, ghost.ID)
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("chat id routes to the primary", func(t *testing.T) {
		got, err := f.users.GetByChatID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, primary.ID, got.ID)
	})

	t.Run("merge is idempotent once attached", func(t *testing.T) {
		require.NoError(t, f.service().Merge(ctx, primary.ID, 42))
	})
}

func TestReconcileService_Merge_UnclaimedChatID(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	email := "owner@example.com"
	primary, err := f.users.Create(ctx, &model.User{Email: &email, PasswordHash: "hash"})
	require.NoError(t, err)

	require.NoError(t, f.service().Merge(ctx, primary.ID, 77))

	got, err := f.users.GetByChatID(ctx, 77)
	require.NoError(t, err)
	assert.Equal(t, primary.ID, got.ID)
}

func TestReconcileService_Merge_ClaimedAccountConflict(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	emailA := "a@example.com"
	primary, err := f.users.Create(ctx, &model.User{Email: &emailA, PasswordHash: "hash"})
	require.NoError(t, err)

	chatID := int64(55)
	emailB := "b@example.com"
	holder, err := f.users.Create(ctx, &model.User{Email: &emailB, PasswordHash: "hash", ChatID: &chatID})
	require.NoError(t, err)
	_, err = f.transactions.Create(ctx, &model.Transaction{
		UserID: holder.ID, CategoryID: 1, Type: model.TransactionTypeExpense,
		Amount: 10, Description: "theirs", OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	err = f.service().Merge(ctx, primary.ID, 55)
	assert.ErrorIs(t, err, ErrConflict)

	t.Run("nothing moved", func(t *testing.T) {
		_, total, err := f.transactions.List(ctx, model.TransactionFilter{UserID: holder.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		got, err := f.users.GetByChatID(ctx, 55)
		require.NoError(t, err)
		assert.Equal(t, holder.ID, got.ID)
	})
}

func TestReconcileService_Merge_MissingPrimary(t *testing.T) {
	f := newReconcileFixture(t)
	err := f.service().Merge(context.Background(), 9999, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

type failingRepointer struct{}

func (failingRepointer) RepointOwner(ctx context.Context, fromUserID, toUserID int64) error {
	return errors.New("boom")
}

func TestReconcileService_Merge_RollsBackOnFailure(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	email := "owner@example.com"
	primary, err := f.users.Create(ctx, &model.User{Email: &email, PasswordHash: "hash"})
	require.NoError(t, err)

	ghost, err := f.users.CreateGhost(ctx, 42, "")
	require.NoError(t, err)
	_, err = f.transactions.Create(ctx, &model.Transaction{
		UserID: ghost.ID, CategoryID: 1, Type: model.TransactionTypeExpense,
		Amount: 120, Description: "coffee", OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	err = f.service(failingRepointer{}).Merge(ctx, primary.ID, 42)
	require.Error(t, err)

	t.Run("earlier repoints rolled back", func(t *testing.T) {
		_, total, err := f.transactions.List(ctx, model.TransactionFilter{UserID: ghost.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("ghost still exists and holds the chat id", func(t *testing.T) {
		got, err := f.users.GetByChatID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, ghost.ID, got.ID)
	})
}
