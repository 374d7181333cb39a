package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/internal/repository"
)

type recordInvestmentArgs struct {
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	AvgBuyPrice  float64 `json:"avg_buy_price"`
	CurrentPrice float64 `json:"current_price"`
	Platform     string  `json:"platform"`
}

func (d *Dispatcher) recordInvestment(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args recordInvestmentArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.Name == "" {
		return invalidInput("investment name is required", nil), nil
	}
	if args.Quantity <= 0 {
		return invalidInput("quantity must be positive", nil), nil
	}
	if args.AvgBuyPrice < 0 || args.CurrentPrice < 0 {
		return invalidInput("prices must not be negative", nil), nil
	}
	if args.CurrentPrice == 0 {
		args.CurrentPrice = args.AvgBuyPrice
	}

	inv, err := d.investments.Create(ctx, &model.Investment{
		UserID:       userID,
		Name:         args.Name,
		Quantity:     args.Quantity,
		AvgBuyPrice:  args.AvgBuyPrice,
		CurrentPrice: args.CurrentPrice,
		Platform:     args.Platform,
	})
	if err != nil {
		return nil, err
	}

	return applied(
		fmt.Sprintf("recorded %s x%s worth %s", inv.Name, formatAmount(inv.Quantity), formatAmount(inv.Value())),
		map[string]interface{}{
			"investment_id": inv.ID,
			"name":          inv.Name,
			"quantity":      inv.Quantity,
			"value":         inv.Value(),
		}), nil
}

type updateInvestmentArgs struct {
	ID           int64    `json:"id"`
	Name         *string  `json:"name"`
	Quantity     *float64 `json:"quantity"`
	AvgBuyPrice  *float64 `json:"avg_buy_price"`
	CurrentPrice *float64 `json:"current_price"`
	Platform     *string  `json:"platform"`
}

func (d *Dispatcher) updateInvestment(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args updateInvestmentArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.ID == 0 {
		return invalidInput("investment id is required", nil), nil
	}
	if args.Quantity != nil && *args.Quantity <= 0 {
		return invalidInput("quantity must be positive", nil), nil
	}
	if (args.AvgBuyPrice != nil && *args.AvgBuyPrice < 0) ||
		(args.CurrentPrice != nil && *args.CurrentPrice < 0) {
		return invalidInput("prices must not be negative", nil), nil
	}

	update := model.InvestmentUpdate{
		Name:         args.Name,
		Quantity:     args.Quantity,
		AvgBuyPrice:  args.AvgBuyPrice,
		CurrentPrice: args.CurrentPrice,
		Platform:     args.Platform,
	}

	if err := d.investments.Update(ctx, userID, args.ID, update); err != nil {
		if errors.Is(err, repository.ErrInvestmentNotFound) {
			return notFound("no such investment", map[string]interface{}{"investment_id": args.ID}), nil
		}
		return nil, err
	}

	return applied(fmt.Sprintf("updated investment %d", args.ID),
		map[string]interface{}{"investment_id": args.ID}), nil
}

type deleteInvestmentArgs struct {
	ID int64 `json:"id"`
}

func (d *Dispatcher) deleteInvestment(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args deleteInvestmentArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.ID == 0 {
		return invalidInput("investment id is required", nil), nil
	}

	if err := d.investments.Delete(ctx, userID, args.ID); err != nil {
		if errors.Is(err, repository.ErrInvestmentNotFound) {
			return notFound("no such investment", map[string]interface{}{"investment_id": args.ID}), nil
		}
		return nil, err
	}

	return applied(fmt.Sprintf("deleted investment %d", args.ID),
		map[string]interface{}{"investment_id": args.ID}), nil
}
