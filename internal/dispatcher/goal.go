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

type createGoalArgs struct {
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	Deadline      string  `json:"deadline"`
}

func (d *Dispatcher) createGoal(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args createGoalArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.Name == "" {
		return invalidInput("goal name is required", nil), nil
	}
	if args.TargetAmount < 0 || args.CurrentAmount < 0 {
		return invalidInput("amounts must not be negative", nil), nil
	}

	var deadline *time.Time
	if args.Deadline != "" {
		parsed, err := time.Parse(time.RFC3339, args.Deadline)
		if err != nil {
			return invalidInput("deadline must be RFC 3339",
				map[string]interface{}{"deadline": args.Deadline}), nil
		}
		deadline = &parsed
	}

	goal, err := d.goals.Create(ctx, &model.Goal{
		UserID:        userID,
		Name:          args.Name,
		TargetAmount:  args.TargetAmount,
		CurrentAmount: args.CurrentAmount,
		Deadline:      deadline,
	})
	if err != nil {
		return nil, err
	}

	return applied(
		fmt.Sprintf("created goal %q with target %s", goal.Name, formatAmount(goal.TargetAmount)),
		map[string]interface{}{
			"goal_id":       goal.ID,
			"name":          goal.Name,
			"target_amount": goal.TargetAmount,
		}), nil
}

type updateGoalArgs struct {
	ID            int64    `json:"id"`
	Name          *string  `json:"name"`
	TargetAmount  *float64 `json:"target_amount"`
	CurrentAmount *float64 `json:"current_amount"`
	AddAmount     *float64 `json:"add_amount"`
}

// updateGoal handles both manual edits and progress deltas. A delta goes
// through the guarded repository mutation so automatic progress is capped
// at the target; an explicit current_amount is a deliberate override.
func (d *Dispatcher) updateGoal(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args updateGoalArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.ID == 0 {
		return invalidInput("goal id is required", nil), nil
	}
	if args.AddAmount != nil && args.CurrentAmount != nil {
		return invalidInput("add_amount and current_amount are mutually exclusive", nil), nil
	}

	if args.AddAmount != nil {
		balance, err := d.goals.AddProgress(ctx, userID, args.ID, *args.AddAmount)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrGoalNotFound):
				return notFound("no such goal", map[string]interface{}{"goal_id": args.ID}), nil
			case errors.Is(err, repository.ErrInsufficientFunds):
				return invalidInput("goal balance cannot go below zero",
					map[string]interface{}{"goal_id": args.ID}), nil
			}
			return nil, err
		}
		return applied(fmt.Sprintf("goal %d balance is now %s", args.ID, formatAmount(balance)),
			map[string]interface{}{"goal_id": args.ID, "current_amount": balance}), nil
	}

	update := model.GoalUpdate{
		Name:          args.Name,
		TargetAmount:  args.TargetAmount,
		CurrentAmount: args.CurrentAmount,
	}
	if update.Name == nil && update.TargetAmount == nil && update.CurrentAmount == nil {
		return invalidInput("nothing to update", nil), nil
	}

	if err := d.goals.Update(ctx, userID, args.ID, update); err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return notFound("no such goal", map[string]interface{}{"goal_id": args.ID}), nil
		}
		return nil, err
	}

	return applied(fmt.Sprintf("updated goal %d", args.ID),
		map[string]interface{}{"goal_id": args.ID}), nil
}

type deleteGoalArgs struct {
	ID int64 `json:"id"`
}

func (d *Dispatcher) deleteGoal(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args deleteGoalArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.ID == 0 {
		return invalidInput("goal id is required", nil), nil
	}

	// Dropping a goal also drops a primary-goal pointer at it; the two
	// writes commit together.
	err := d.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := d.goals.Delete(ctx, userID, args.ID); err != nil {
			return err
		}
		return d.settings.ClearPrimaryGoal(ctx, userID, args.ID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return notFound("no such goal", map[string]interface{}{"goal_id": args.ID}), nil
		}
		return nil, err
	}

	return applied(fmt.Sprintf("deleted goal %d", args.ID),
		map[string]interface{}{"goal_id": args.ID}), nil
}

type reallocateGoalFundsArgs struct {
	FromGoalID int64   `json:"from_goal_id"`
	ToGoalID   int64   `json:"to_goal_id"`
	Target     string  `json:"target"` // goal | balance
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
}

// reallocateGoalFunds moves saved money out of a goal atomically, either
// into another goal or back to the main balance as an income row. The
// destination is validated before any debit so a typo'd target cannot
// leave money in flight.
func (d *Dispatcher) reallocateGoalFunds(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args reallocateGoalFundsArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.FromGoalID == 0 {
		return invalidInput("from_goal_id is required", nil), nil
	}
	if args.Amount <= 0 {
		return invalidInput("amount must be positive", nil), nil
	}

	switch args.Target {
	case "", "goal":
	case "balance":
		return d.reallocateToBalance(ctx, userID, args)
	default:
		return invalidInput("target must be goal or balance",
			map[string]interface{}{"target": args.Target}), nil
	}

	if args.ToGoalID == 0 {
		return invalidInput("to_goal_id is required for a goal target", nil), nil
	}
	if args.FromGoalID == args.ToGoalID {
		return invalidInput("source and destination must differ", nil), nil
	}

	var fromBalance, toBalance float64
	err := d.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := d.goals.GetByID(ctx, userID, args.ToGoalID); err != nil {
			return err
		}

		var err error
		fromBalance, err = d.goals.AddProgress(ctx, userID, args.FromGoalID, -args.Amount)
		if err != nil {
			return err
		}

		toBalance, err = d.goals.AddProgress(ctx, userID, args.ToGoalID, args.Amount)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrGoalNotFound):
			return notFound("no such goal", map[string]interface{}{
				"from_goal_id": args.FromGoalID,
				"to_goal_id":   args.ToGoalID,
			}), nil
		case errors.Is(err, repository.ErrInsufficientFunds):
			return invalidInput("source goal balance is insufficient",
				map[string]interface{}{"from_goal_id": args.FromGoalID, "amount": args.Amount}), nil
		}
		return nil, err
	}

	return applied(
		fmt.Sprintf("moved %s from goal %d to goal %d", formatAmount(args.Amount), args.FromGoalID, args.ToGoalID),
		map[string]interface{}{
			"from_goal_id":      args.FromGoalID,
			"to_goal_id":        args.ToGoalID,
			"amount":            args.Amount,
			"from_goal_balance": fromBalance,
			"to_goal_balance":   toBalance,
		}), nil
}

// reallocateToBalance debits the goal and records the money as ledger
// income in one transaction. The category resolves before the debit, so a
// failed lookup aborts with the goal untouched.
func (d *Dispatcher) reallocateToBalance(ctx context.Context, userID int64, args reallocateGoalFundsArgs) (*Outcome, error) {
	category, err := d.resolveCategory(ctx, args.Category, 0)
	if err != nil {
		return nil, err
	}

	var fromBalance float64
	var txn *model.Transaction
	err = d.db.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		fromBalance, err = d.goals.AddProgress(ctx, userID, args.FromGoalID, -args.Amount)
		if err != nil {
			return err
		}

		txn, err = d.transactions.Create(ctx, &model.Transaction{
			UserID:      userID,
			CategoryID:  category.ID,
			Amount:      args.Amount,
			Type:        model.TransactionTypeIncome,
			Description: "withdrawn from goal",
			OccurredAt:  time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrGoalNotFound):
			return notFound("no such goal", map[string]interface{}{"from_goal_id": args.FromGoalID}), nil
		case errors.Is(err, repository.ErrInsufficientFunds):
			return invalidInput("source goal balance is insufficient",
				map[string]interface{}{"from_goal_id": args.FromGoalID, "amount": args.Amount}), nil
		}
		return nil, err
	}

	return applied(
		fmt.Sprintf("moved %s from goal %d back to your balance", formatAmount(args.Amount), args.FromGoalID),
		map[string]interface{}{
			"from_goal_id":      args.FromGoalID,
			"amount":            args.Amount,
			"from_goal_balance": fromBalance,
			"transaction_id":    txn.ID,
			"category":          category.Name,
		}), nil
}
