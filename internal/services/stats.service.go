package services

import (
	"context"
	"time"

	"github.com/duitapp/ledger/internal/model"
)

// StatsTransactionRepository is the ledger aggregate surface the stats
// engine reads from. Sums come back as 0 for empty windows.
type StatsTransactionRepository interface {
	SumAmount(ctx context.Context, userID int64, typ model.TransactionType, from, to time.Time) (float64, error)
	SumCategoryExpense(ctx context.Context, userID, categoryID int64, from, to time.Time) (float64, error)
}

type StatsBudgetRepository interface {
	List(ctx context.Context, userID int64, month, year int) ([]*model.Budget, error)
}

type StatsGoalRepository interface {
	List(ctx context.Context, userID int64) ([]*model.Goal, error)
}

type StatsInvestmentRepository interface {
	SumValue(ctx context.Context, userID int64) (float64, error)
}

// StatsService derives every figure from the ledger on each call. Nothing
// here is cached or stored: two calls with the same rows return the same
// numbers, and a mutation is visible to the very next read.
type StatsService struct {
	transactionRepo StatsTransactionRepository
	budgetRepo      StatsBudgetRepository
	goalRepo        StatsGoalRepository
	investmentRepo  StatsInvestmentRepository
}

func NewStatsService(transactionRepo StatsTransactionRepository, budgetRepo StatsBudgetRepository, goalRepo StatsGoalRepository, investmentRepo StatsInvestmentRepository) *StatsService {
	return &StatsService{
		transactionRepo: transactionRepo,
		budgetRepo:      budgetRepo,
		goalRepo:        goalRepo,
		investmentRepo:  investmentRepo,
	}
}

type MonthlySummary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// MonthWindow returns the inclusive bounds of a calendar month: the first
// instant of day one through the last millisecond of the final day.
func MonthWindow(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Millisecond)
	return from, to
}

// DayWindow returns the inclusive bounds of one calendar day.
func DayWindow(day time.Time) (time.Time, time.Time) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1).Add(-time.Millisecond)
	return from, to
}

func (s *StatsService) MonthlySummary(ctx context.Context, userID int64, year int, month time.Month) (*MonthlySummary, error) {
	from, to := MonthWindow(year, month)
	return s.summarize(ctx, userID, from, to)
}

// DailySummary is MonthlySummary narrowed to a single day. The recap job
// uses it for the daily digest figures.
func (s *StatsService) DailySummary(ctx context.Context, userID int64, day time.Time) (*MonthlySummary, error) {
	from, to := DayWindow(day)
	return s.summarize(ctx, userID, from, to)
}

func (s *StatsService) summarize(ctx context.Context, userID int64, from, to time.Time) (*MonthlySummary, error) {
	income, err := s.transactionRepo.SumAmount(ctx, userID, model.TransactionTypeIncome, from, to)
	if err != nil {
		return nil, err
	}
	expense, err := s.transactionRepo.SumAmount(ctx, userID, model.TransactionTypeExpense, from, to)
	if err != nil {
		return nil, err
	}
	return &MonthlySummary{
		Income:  income,
		Expense: expense,
		Balance: income - expense,
	}, nil
}

func (s *StatsService) BudgetSpent(ctx context.Context, userID, categoryID int64, year int, month time.Month) (float64, error) {
	from, to := MonthWindow(year, month)
	return s.transactionRepo.SumCategoryExpense(ctx, userID, categoryID, from, to)
}

func (s *StatsService) BudgetProgress(ctx context.Context, userID int64, year int, month time.Month) ([]*model.BudgetProgress, error) {
	budgets, err := s.budgetRepo.List(ctx, userID, int(month), year)
	if err != nil {
		return nil, err
	}

	from, to := MonthWindow(year, month)
	out := make([]*model.BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		spent, err := s.transactionRepo.SumCategoryExpense(ctx, userID, b.CategoryID, from, to)
		if err != nil {
			return nil, err
		}
		p := &model.BudgetProgress{Budget: *b, Spent: spent}
		if b.Amount > 0 {
			p.Percent = spent / b.Amount * 100
		}
		out = append(out, p)
	}
	return out, nil
}

type GoalProgress struct {
	model.Goal
	Percent float64 `json:"percent"`
}

func (s *StatsService) GoalProgress(ctx context.Context, userID int64) ([]*GoalProgress, error) {
	goals, err := s.goalRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, &GoalProgress{Goal: *g, Percent: g.Percent()})
	}
	return out, nil
}

type NetWorth struct {
	CashBalance     float64 `json:"cash_balance"`
	GoalSavings     float64 `json:"goal_savings"`
	InvestmentValue float64 `json:"investment_value"`
	Total           float64 `json:"total"`
}

// NetWorth is the all-time balance plus everything parked in goals and
// the market value of current holdings.
func (s *StatsService) NetWorth(ctx context.Context, userID int64) (*NetWorth, error) {
	var allTimeFrom time.Time
	allTimeTo := time.Now().UTC().AddDate(100, 0, 0)

	income, err := s.transactionRepo.SumAmount(ctx, userID, model.TransactionTypeIncome, allTimeFrom, allTimeTo)
	if err != nil {
		return nil, err
	}
	expense, err := s.transactionRepo.SumAmount(ctx, userID, model.TransactionTypeExpense, allTimeFrom, allTimeTo)
	if err != nil {
		return nil, err
	}

	goals, err := s.goalRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	var savings float64
	for _, g := range goals {
		savings += g.CurrentAmount
	}

	investments, err := s.investmentRepo.SumValue(ctx, userID)
	if err != nil {
		return nil, err
	}

	nw := &NetWorth{
		CashBalance:     income - expense,
		GoalSavings:     savings,
		InvestmentValue: investments,
	}
	nw.Total = nw.CashBalance + nw.GoalSavings + nw.InvestmentValue
	return nw, nil
}
