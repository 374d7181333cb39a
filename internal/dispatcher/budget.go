package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/internal/repository"
)

type createBudgetArgs struct {
	Amount     float64 `json:"amount"`
	Category   string  `json:"category"`
	CategoryID int64   `json:"category_id"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
}

func (d *Dispatcher) createBudget(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args createBudgetArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.Amount < 0 {
		return invalidInput("amount must not be negative", nil), nil
	}

	now := time.Now().UTC()
	if args.Month == 0 {
		args.Month = int(now.Month())
	}
	if args.Year == 0 {
		args.Year = now.Year()
	}
	if args.Month < 1 || args.Month > 12 {
		return invalidInput("month must be between 1 and 12",
			map[string]interface{}{"month": args.Month}), nil
	}

	category, err := d.resolveCategory(ctx, args.Category, args.CategoryID)
	if err != nil {
		return nil, err
	}

	budget, err := d.budgets.Upsert(ctx, &model.Budget{
		UserID:     userID,
		CategoryID: category.ID,
		Month:      args.Month,
		Year:       args.Year,
		Amount:     args.Amount,
	})
	if err != nil {
		return nil, err
	}

	return applied(
		fmt.Sprintf("set %s budget to %s for %d/%d", category.Name, formatAmount(budget.Amount), budget.Month, budget.Year),
		map[string]interface{}{
			"budget_id": budget.ID,
			"category":  category.Name,
			"amount":    budget.Amount,
			"month":     budget.Month,
			"year":      budget.Year,
		}), nil
}

type updateBudgetArgs struct {
	ID     int64    `json:"id"`
	Amount *float64 `json:"amount"`
}

func (d *Dispatcher) updateBudget(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args updateBudgetArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.ID == 0 {
		return invalidInput("budget id is required", nil), nil
	}
	if args.Amount == nil {
		return invalidInput("amount is required", nil), nil
	}
	if *args.Amount < 0 {
		return invalidInput("amount must not be negative", nil), nil
	}

	if err := d.budgets.UpdateAmount(ctx, userID, args.ID, *args.Amount); err != nil {
		if errors.Is(err, repository.ErrBudgetNotFound) {
			return notFound("no such budget", map[string]interface{}{"budget_id": args.ID}), nil
		}
		return nil, err
	}

	return applied(fmt.Sprintf("updated budget %d to %s", args.ID, formatAmount(*args.Amount)),
		map[string]interface{}{"budget_id": args.ID, "amount": *args.Amount}), nil
}

type deleteBudgetArgs struct {
	ID int64 `json:"id"`
}

func (d *Dispatcher) deleteBudget(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args deleteBudgetArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.ID == 0 {
		return invalidInput("budget id is required", nil), nil
	}

	if err := d.budgets.Delete(ctx, userID, args.ID); err != nil {
		if errors.Is(err, repository.ErrBudgetNotFound) {
			return notFound("no such budget", map[string]interface{}{"budget_id": args.ID}), nil
		}
		return nil, err
	}

	return applied(fmt.Sprintf("deleted budget %d", args.ID),
		map[string]interface{}{"budget_id": args.ID}), nil
}
