package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/duitapp/ledger/internal/model"
)

type MockStatsTransactionRepository struct {
	mock.Mock
}

func (m *MockStatsTransactionRepository) SumAmount(ctx context.Context, userID int64, typ model.TransactionType, from, to time.Time) (float64, error) {
	args := m.Called(ctx, userID, typ, from, to)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockStatsTransactionRepository) SumCategoryExpense(ctx context.Context, userID, categoryID int64, from, to time.Time) (float64, error) {
	args := m.Called(ctx, userID, categoryID, from, to)
	return args.Get(0).(float64), args.Error(1)
}

type MockStatsBudgetRepository struct {
	mock.Mock
}

func (m *MockStatsBudgetRepository) List(ctx context.Context, userID int64, month, year int) ([]*model.Budget, error) {
	args := m.Called(ctx, userID, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Budget), args.Error(1)
}

type MockStatsGoalRepository struct {
	mock.Mock
}

func (m *MockStatsGoalRepository) List(ctx context.Context, userID int64) ([]*model.Goal, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Goal), args.Error(1)
}

type MockStatsInvestmentRepository struct {
	mock.Mock
}

func (m *MockStatsInvestmentRepository) SumValue(ctx context.Context, userID int64) (float64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(float64), args.Error(1)
}

func TestMonthWindow(t *testing.T) {
	from, to := MonthWindow(2024, time.February)

	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), from)
	// leap year, window ends inside Feb 29
	assert.Equal(t, time.February, to.Month())
	assert.Equal(t, 29, to.Day())
	assert.True(t, to.Before(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestStatsService_MonthlySummary(t *testing.T) {
	txnRepo := new(MockStatsTransactionRepository)
	service := NewStatsService(txnRepo, nil, nil, nil)
	ctx := context.Background()

	from, to := MonthWindow(2025, time.March)
	txnRepo.On("SumAmount", ctx, int64(1), model.TransactionTypeIncome, from, to).Return(5000.0, nil)
	txnRepo.On("SumAmount", ctx, int64(1), model.TransactionTypeExpense, from, to).Return(1800.0, nil)

	got, err := service.MonthlySummary(ctx, 1, 2025, time.March)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, got.Income)
	assert.Equal(t, 1800.0, got.Expense)
	assert.Equal(t, 3200.0, got.Balance)
	txnRepo.AssertExpectations(t)
}

func TestStatsService_MonthlySummary_Empty(t *testing.T) {
	txnRepo := new(MockStatsTransactionRepository)
	service := NewStatsService(txnRepo, nil, nil, nil)
	ctx := context.Background()

	txnRepo.On("SumAmount", ctx, int64(1), model.TransactionTypeIncome, mock.Anything, mock.Anything).Return(0.0, nil)
	txnRepo.On("SumAmount", ctx, int64(1), model.TransactionTypeExpense, mock.Anything, mock.Anything).Return(0.0, nil)

	got, err := service.MonthlySummary(ctx, 1, 2025, time.January)
	require.NoError(t, err)
	assert.Zero(t, got.Income)
	assert.Zero(t, got.Expense)
	assert.Zero(t, got.Balance)
}

func TestStatsService_BudgetProgress(t *testing.T) {
	txnRepo := new(MockStatsTransactionRepository)
	budgetRepo := new(MockStatsBudgetRepository)
	service := NewStatsService(txnRepo, budgetRepo, nil, nil)
	ctx := context.Background()

	budgets := []*model.Budget{
		{ID: 1, UserID: 1, CategoryID: 10, Month: 2, Year: 2025, Amount: 2500000},
		{ID: 2, UserID: 1, CategoryID: 11, Month: 2, Year: 2025, Amount: 0},
	}
	budgetRepo.On("List", ctx, int64(1), 2, 2025).Return(budgets, nil)

	from, to := MonthWindow(2025, time.February)
	txnRepo.On("SumCategoryExpense", ctx, int64(1), int64(10), from, to).Return(35000.0, nil)
	txnRepo.On("SumCategoryExpense", ctx, int64(1), int64(11), from, to).Return(900.0, nil)

	got, err := service.BudgetProgress(ctx, 1, 2025, time.February)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 35000.0, got[0].Spent)
	assert.InDelta(t, 1.4, got[0].Percent, 0.0001)

	t.Run("zero budget amount yields zero percent", func(t *testing.T) {
		assert.Equal(t, 900.0, got[1].Spent)
		assert.Zero(t, got[1].Percent)
	})
}

func TestStatsService_GoalProgress(t *testing.T) {
	goalRepo := new(MockStatsGoalRepository)
	service := NewStatsService(nil, nil, goalRepo, nil)
	ctx := context.Background()

	goals := []*model.Goal{
		{ID: 1, UserID: 1, Name: "laptop", TargetAmount: 1000, CurrentAmount: 1000},
		{ID: 2, UserID: 1, Name: "someday", TargetAmount: 0, CurrentAmount: 50},
	}
	goalRepo.On("List", ctx, int64(1)).Return(goals, nil)

	got, err := service.GoalProgress(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 100.0, got[0].Percent)
	assert.Zero(t, got[1].Percent)
}

func TestStatsService_NetWorth(t *testing.T) {
	txnRepo := new(MockStatsTransactionRepository)
	goalRepo := new(MockStatsGoalRepository)
	invRepo := new(MockStatsInvestmentRepository)
	service := NewStatsService(txnRepo, nil, goalRepo, invRepo)
	ctx := context.Background()

	txnRepo.On("SumAmount", ctx, int64(1), model.TransactionTypeIncome, mock.Anything, mock.Anything).Return(9000.0, nil)
	txnRepo.On("SumAmount", ctx, int64(1), model.TransactionTypeExpense, mock.Anything, mock.Anything).Return(4000.0, nil)
	goalRepo.On("List", ctx, int64(1)).Return([]*model.Goal{
		{CurrentAmount: 300},
		{CurrentAmount: 200},
	}, nil)
	invRepo.On("SumValue", ctx, int64(1)).Return(1500.0, nil)

	got, err := service.NetWorth(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, got.CashBalance)
	assert.Equal(t, 500.0, got.GoalSavings)
	assert.Equal(t, 1500.0, got.InvestmentValue)
	assert.Equal(t, 7000.0, got.Total)
}
