package dispatcher

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/internal/repository"
	"github.com/duitapp/ledger/pkg/pg"
	"github.com/duitapp/ledger/pkg/redis"
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

type fixture struct {
	db           *pg.DB
	dispatcher   *Dispatcher
	transactions *repository.TransactionRepository
	budgets      *repository.BudgetRepository
	goals        *repository.GoalRepository
	bills        *repository.BillRepository
	investments  *repository.InvestmentRepository
	categories   *repository.CategoryRepository
	merchants    *repository.MerchantRepository
	food         *model.Category
	other        *model.Category
}

func newFixture(t *testing.T, idempotency *IdempotencyStore) *fixture {
	db := newTestDB(t)
	ctx := context.Background()

	categories := repository.NewCategoryRepository(db)
	err := categories.Seed(ctx, []*model.Category{
		{Name: "Food", Type: model.CategoryTypeExpense},
		{Name: "Salary", Type: model.CategoryTypeIncome},
		{Name: model.DefaultCategoryName, Type: model.CategoryTypeExpense},
	})
	require.NoError(t, err)

	food, err := categories.GetByName(ctx, "Food")
	require.NoError(t, err)
	other, err := categories.GetDefault(ctx)
	require.NoError(t, err)

	f := &fixture{
		db:           db,
		transactions: repository.NewTransactionRepository(db),
		budgets:      repository.NewBudgetRepository(db),
		goals:        repository.NewGoalRepository(db),
		bills:        repository.NewBillRepository(db),
		investments:  repository.NewInvestmentRepository(db),
		categories:   categories,
		merchants:    repository.NewMerchantRepository(db),
		food:         food,
		other:        other,
	}
	f.dispatcher = New(db, f.transactions, f.budgets, f.goals, f.bills, f.investments,
		categories, f.merchants, repository.NewSettingsRepository(db), idempotency)
	return f
}

func args(t *testing.T, v interface{}) json.RawMessage {
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestDispatcher_UnknownTool(t *testing.T) {
	f := newFixture(t, nil)

	out, err := f.dispatcher.Execute(context.Background(), 1, ToolCall{
		Name:      "transfer_everything",
		Arguments: json.RawMessage(`{}`),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusInvalidInput, out.Status)
}

func TestDispatcher_MalformedArguments(t *testing.T) {
	f := newFixture(t, nil)

	out, err := f.dispatcher.Execute(context.Background(), 1, ToolCall{
		Name:      "record_transaction",
		Arguments: json.RawMessage(`{"amount": "lots"`),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusInvalidInput, out.Status)
}

func TestDispatcher_RecordTransaction(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	t.Run("expense against a budgeted category reports the fill", func(t *testing.T) {
		_, err := f.budgets.Upsert(ctx, &model.Budget{
			UserID: 1, CategoryID: f.food.ID, Month: 2, Year: 2025, Amount: 2500000,
		})
		require.NoError(t, err)

		out, err := f.dispatcher.Execute(ctx, 1, ToolCall{
			Name: "record_transaction",
			Arguments: args(t, map[string]interface{}{
				"amount":      35000,
				"category":    "food",
				"description": "lunch",
				"occurred_at": "2025-02-14T12:00:00Z",
			}),
		})
		require.NoError(t, err)
		require.Equal(t, StatusApplied, out.Status)
		assert.Equal(t, "Food", out.Facts["category"])
		assert.InDelta(t, 1.4, out.Facts["budget_percent"].(float64), 0.0001)
		assert.Contains(t, out.Message, "1.4")
	})

	t.Run("missing type defaults to expense", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 2, ToolCall{
			Name:      "record_transaction",
			Arguments: args(t, map[string]interface{}{"amount": 100}),
		})
		require.NoError(t, err)
		require.Equal(t, StatusApplied, out.Status)
		assert.Equal(t, "expense", out.Facts["type"])
	})

	t.Run("unknown category lands in the default bucket", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 2, ToolCall{
			Name:      "record_transaction",
			Arguments: args(t, map[string]interface{}{"amount": 50, "category": "spelunking"}),
		})
		require.NoError(t, err)
		require.Equal(t, StatusApplied, out.Status)
		assert.Equal(t, f.other.Name, out.Facts["category"])
	})

	t.Run("zero amount needs clarification", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 2, ToolCall{
			Name:      "record_transaction",
			Arguments: args(t, map[string]interface{}{"description": "no amount"}),
		})
		require.NoError(t, err)
		assert.Equal(t, StatusInvalidInput, out.Status)
	})
}

func TestDispatcher_MerchantHints(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	t.Run("categorized record teaches the merchant", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 1, ToolCall{
			Name: "record_transaction",
			Arguments: args(t, map[string]interface{}{
				"amount": 45000, "category": "Food", "merchant": "Warung Padang",
			}),
		})
		require.NoError(t, err)
		require.Equal(t, StatusApplied, out.Status)

		m, err := f.merchants.Lookup(ctx, 1, "Warung Padang")
		require.NoError(t, err)
		assert.Equal(t, f.food.ID, m.CategoryID)
	})

	t.Run("bare merchant resolves through the learned hint", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 1, ToolCall{
			Name: "record_transaction",
			Arguments: args(t, map[string]interface{}{
				"amount": 30000, "merchant": "warung padang",
			}),
		})
		require.NoError(t, err)
		require.Equal(t, StatusApplied, out.Status)
		assert.Equal(t, "Food", out.Facts["category"])
	})

	t.Run("unknown merchant falls to the default bucket", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 1, ToolCall{
			Name: "record_transaction",
			Arguments: args(t, map[string]interface{}{
				"amount": 20000, "merchant": "Toko Misterius",
			}),
		})
		require.NoError(t, err)
		require.Equal(t, StatusApplied, out.Status)
		assert.Equal(t, f.other.Name, out.Facts["category"])

		_, err = f.merchants.Lookup(ctx, 1, "Toko Misterius")
		assert.ErrorIs(t, err, repository.ErrMerchantMappingNotFound)
	})

	t.Run("hints stay per user", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 2, ToolCall{
			Name: "record_transaction",
			Arguments: args(t, map[string]interface{}{
				"amount": 30000, "merchant": "Warung Padang",
			}),
		})
		require.NoError(t, err)
		require.Equal(t, StatusApplied, out.Status)
		assert.Equal(t, f.other.Name, out.Facts["category"])
	})
}

func TestDispatcher_DeleteMissingWritesNothing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	out, err := f.dispatcher.Execute(ctx, 1, ToolCall{
		Name:      "delete_transaction",
		Arguments: args(t, map[string]interface{}{"id": 9999}),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, out.Status)

	_, total, err := f.transactions.List(ctx, model.TransactionFilter{UserID: 1})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestDispatcher_OwnershipScope(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	txn, err := f.transactions.Create(ctx, &model.Transaction{
		UserID: 1, CategoryID: f.food.ID, Type: model.TransactionTypeExpense,
		Amount: 75, Description: "mine", OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	out, err := f.dispatcher.Execute(ctx, 2, ToolCall{
		Name:      "delete_transaction",
		Arguments: args(t, map[string]interface{}{"id": txn.ID}),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, out.Status)

	_, err = f.transactions.GetByID(ctx, 1, txn.ID)
	assert.NoError(t, err)
}

func TestDispatcher_ReallocateGoalFunds(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	from, err := f.goals.Create(ctx, &model.Goal{UserID: 1, Name: "vacation", TargetAmount: 1000, CurrentAmount: 400})
	require.NoError(t, err)
	to, err := f.goals.Create(ctx, &model.Goal{UserID: 1, Name: "laptop", TargetAmount: 2000, CurrentAmount: 100})
	require.NoError(t, err)

	t.Run("moves funds atomically", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 1, ToolCall{
			Name: "reallocate_goal_funds",
			Arguments: args(t, map[string]interface{}{
				"from_goal_id": from.ID, "to_goal_id": to.ID, "amount": 150,
			}),
		})
		require.NoError(t, err)
		require.Equal(t, StatusApplied, out.Status)
		assert.Equal(t, 250.0, out.Facts["from_goal_balance"])
		assert.Equal(t, 250.0, out.Facts["to_goal_balance"])
	})

	t.Run("missing destination aborts without a debit", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 1, ToolCall{
			Name: "reallocate_goal_funds",
			Arguments: args(t, map[string]interface{}{
				"from_goal_id": from.ID, "to_goal_id": 9999, "amount": 50,
			}),
		})
		require.NoError(t, err)
		assert.Equal(t, StatusNotFound, out.Status)

		g, err := f.goals.GetByID(ctx, 1, from.ID)
		require.NoError(t, err)
		assert.Equal(t, 250.0, g.CurrentAmount)
	})

	t.Run("insufficient source balance needs clarification", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 1, ToolCall{
			Name: "reallocate_goal_funds",
			Arguments: args(t, map[string]interface{}{
				"from_goal_id": from.ID, "to_goal_id": to.ID, "amount": 5000,
			}),
		})
		require.NoError(t, err)
		assert.Equal(t, StatusInvalidInput, out.Status)

		g, err := f.goals.GetByID(ctx, 1, from.ID)
		require.NoError(t, err)
		assert.Equal(t, 250.0, g.CurrentAmount)
	})
}

func TestDispatcher_ReallocateGoalFundsToBalance(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	goal, err := f.goals.Create(ctx, &model.Goal{UserID: 1, Name: "vacation", TargetAmount: 1000000, CurrentAmount: 400000})
	require.NoError(t, err)

	t.Run("debits the goal and books the money as income", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 1, ToolCall{
			Name: "reallocate_goal_funds",
			Arguments: args(t, map[string]interface{}{
				"from_goal_id": goal.ID, "amount": 200000, "target": "balance",
			}),
		})
		require.NoError(t, err)
		require.Equal(t, StatusApplied, out.Status)
		assert.Equal(t, 200000.0, out.Facts["from_goal_balance"])
		assert.NotZero(t, out.Facts["transaction_id"])

		g, err := f.goals.GetByID(ctx, 1, goal.ID)
		require.NoError(t, err)
		assert.Equal(t, 200000.0, g.CurrentAmount)

		txns, total, err := f.transactions.List(ctx, model.TransactionFilter{UserID: 1})
		require.NoError(t, err)
		require.EqualValues(t, 1, total)
		assert.Equal(t, model.TransactionTypeIncome, txns[0].Type)
		assert.Equal(t, 200000.0, txns[0].Amount)
	})

	t.Run("named category lands on the income row", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 1, ToolCall{
			Name: "reallocate_goal_funds",
			Arguments: args(t, map[string]interface{}{
				"from_goal_id": goal.ID, "amount": 50000, "target": "balance", "category": "salary",
			}),
		})
		require.NoError(t, err)
		require.Equal(t, StatusApplied, out.Status)
		assert.Equal(t, "Salary", out.Facts["category"])
	})

	t.Run("insufficient balance writes no income row", func(t *testing.T) {
		_, before, err := f.transactions.List(ctx, model.TransactionFilter{UserID: 1})
		require.NoError(t, err)

		out, err := f.dispatcher.Execute(ctx, 1, ToolCall{
			Name: "reallocate_goal_funds",
			Arguments: args(t, map[string]interface{}{
				"from_goal_id": goal.ID, "amount": 9000000, "target": "balance",
			}),
		})
		require.NoError(t, err)
		assert.Equal(t, StatusInvalidInput, out.Status)

		_, after, err := f.transactions.List(ctx, model.TransactionFilter{UserID: 1})
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("unknown target needs clarification", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 1, ToolCall{
			Name: "reallocate_goal_funds",
			Arguments: args(t, map[string]interface{}{
				"from_goal_id": goal.ID, "amount": 100, "target": "wallet",
			}),
		})
		require.NoError(t, err)
		assert.Equal(t, StatusInvalidInput, out.Status)
	})
}

func TestDispatcher_DeleteGoalClearsPrimaryPointer(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	settings := repository.NewSettingsRepository(f.db)
	goal, err := f.goals.Create(ctx, &model.Goal{UserID: 1, Name: "house", TargetAmount: 100000})
	require.NoError(t, err)

	s, err := settings.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	s.PrimaryGoalID = &goal.ID
	require.NoError(t, settings.Update(ctx, s))

	out, err := f.dispatcher.Execute(ctx, 1, ToolCall{
		Name:      "delete_goal",
		Arguments: args(t, map[string]interface{}{"id": goal.ID}),
	})
	require.NoError(t, err)
	require.Equal(t, StatusApplied, out.Status)

	got, err := settings.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got.PrimaryGoalID)
}

func TestDispatcher_PayBill(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	bill, err := f.bills.Create(ctx, &model.Bill{
		UserID: 1, Name: "Internet", Amount: 300000, DueDay: 5, Frequency: model.BillFrequencyMonthly,
	})
	require.NoError(t, err)

	t.Run("by name with ledger debit", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 1, ToolCall{
			Name:      "pay_bill",
			Arguments: args(t, map[string]interface{}{"name": "internet", "record_expense": true}),
		})
		require.NoError(t, err)
		require.Equal(t, StatusApplied, out.Status)

		got, err := f.bills.GetByID(ctx, 1, bill.ID)
		require.NoError(t, err)
		assert.True(t, got.IsPaid)

		_, total, err := f.transactions.List(ctx, model.TransactionFilter{UserID: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("paying again is a no-op", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 1, ToolCall{
			Name:      "pay_bill",
			Arguments: args(t, map[string]interface{}{"id": bill.ID, "record_expense": true}),
		})
		require.NoError(t, err)
		require.Equal(t, StatusApplied, out.Status)
		assert.Equal(t, true, out.Facts["already_paid"])

		_, total, err := f.transactions.List(ctx, model.TransactionFilter{UserID: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})
}

func TestDispatcher_Idempotency(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	connName := t.Name() + "-" + mr.Addr()
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	f := newFixture(t, NewIdempotencyStore(adapter, time.Hour))
	ctx := context.Background()

	call := ToolCall{
		Name:           "record_transaction",
		Arguments:      args(t, map[string]interface{}{"amount": 120, "category": "food"}),
		IdempotencyKey: "msg-abc-1",
	}

	first, err := f.dispatcher.Execute(ctx, 1, call)
	require.NoError(t, err)
	require.Equal(t, StatusApplied, first.Status)

	second, err := f.dispatcher.Execute(ctx, 1, call)
	require.NoError(t, err)
	assert.Equal(t, first.Message, second.Message)

	_, total, err := f.transactions.List(ctx, model.TransactionFilter{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	t.Run("different user same key is not a duplicate", func(t *testing.T) {
		out, err := f.dispatcher.Execute(ctx, 2, call)
		require.NoError(t, err)
		require.Equal(t, StatusApplied, out.Status)

		_, total, err := f.transactions.List(ctx, model.TransactionFilter{UserID: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})
}
