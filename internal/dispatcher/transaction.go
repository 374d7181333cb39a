package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/internal/repository"
	"github.com/duitapp/ledger/internal/services"
	"github.com/duitapp/ledger/pkg/logger"
)

type recordTransactionArgs struct {
	Amount        float64 `json:"amount"`
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	CategoryID    int64   `json:"category_id"`
	Merchant      string  `json:"merchant"`
	PaymentMethod string  `json:"payment_method"`
	OccurredAt    string  `json:"occurred_at"`
}

func (d *Dispatcher) recordTransaction(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args recordTransactionArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}

	if args.Amount <= 0 {
		return invalidInput("amount must be positive", nil), nil
	}

	typ := model.TransactionType(args.Type)
	if args.Type == "" {
		typ = model.TransactionTypeExpense
	}
	if !typ.Valid() {
		return invalidInput("type must be expense, income or transfer",
			map[string]interface{}{"type": args.Type}), nil
	}

	occurredAt := time.Now().UTC()
	if args.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, args.OccurredAt)
		if err != nil {
			return invalidInput("occurred_at must be RFC 3339",
				map[string]interface{}{"occurred_at": args.OccurredAt}), nil
		}
		occurredAt = parsed
	}

	category, explicit, err := d.categoryForRecord(ctx, userID, args.Category, args.CategoryID, args.Merchant)
	if err != nil {
		return nil, err
	}

	description := args.Description
	if description == "" {
		description = category.Name
	}

	txn, err := d.transactions.Create(ctx, &model.Transaction{
		UserID:        userID,
		CategoryID:    category.ID,
		Amount:        args.Amount,
		Type:          typ,
		Description:   description,
		Merchant:      args.Merchant,
		PaymentMethod: args.PaymentMethod,
		OccurredAt:    occurredAt,
	})
	if err != nil {
		return nil, err
	}

	facts := map[string]interface{}{
		"transaction_id": txn.ID,
		"amount":         txn.Amount,
		"type":           string(txn.Type),
		"category":       category.Name,
	}
	message := fmt.Sprintf("recorded %s of %s for %s", txn.Type, formatAmount(txn.Amount), category.Name)

	// An expense against a budgeted category also reports the fill, so the
	// conversation can answer "how am I doing" in the same breath.
	if typ == model.TransactionTypeExpense {
		if percent, ok, err := d.budgetFill(ctx, userID, category.ID, occurredAt); err != nil {
			return nil, err
		} else if ok {
			facts["budget_percent"] = percent
			message += fmt.Sprintf(", %s budget %s%% used", category.Name, formatAmount(percent))
		}
	}

	// A merchant recorded under a caller-chosen category becomes a hint
	// for the next time that merchant shows up uncategorized. Losing the
	// hint never fails the recording.
	if explicit && args.Merchant != "" {
		if err := d.merchants.Upsert(ctx, userID, args.Merchant, category.ID); err != nil {
			logger.Warn("merchant hint not saved",
				"user_id", userID, "merchant", args.Merchant, "error", err)
		}
	}

	return applied(message, facts), nil
}

// categoryForRecord resolves a recording's category: the shared fallback
// chain first, then the learned merchant hints before settling on the
// default bucket. The second return reports whether the caller's own
// category input resolved, which is what makes the record worth learning
// from.
func (d *Dispatcher) categoryForRecord(ctx context.Context, userID int64, name string, id int64, merchant string) (*model.Category, bool, error) {
	if name != "" {
		if c, err := d.categories.GetByName(ctx, name); err == nil {
			return c, true, nil
		}
	}
	if id != 0 {
		if c, err := d.categories.GetByID(ctx, id); err == nil {
			return c, true, nil
		}
	}
	if merchant != "" {
		if m, err := d.merchants.Lookup(ctx, userID, merchant); err == nil {
			if c, err := d.categories.GetByID(ctx, m.CategoryID); err == nil {
				return c, false, nil
			}
		}
	}
	c, err := d.categories.GetDefault(ctx)
	return c, false, err
}

// budgetFill derives the spent percentage of the budget covering this
// category in the transaction's month. Second return is false when no
// budget exists for the tuple or the budget amount is zero.
func (d *Dispatcher) budgetFill(ctx context.Context, userID, categoryID int64, at time.Time) (float64, bool, error) {
	budgets, err := d.budgets.List(ctx, userID, int(at.Month()), at.Year())
	if err != nil {
		return 0, false, err
	}
	var budget *model.Budget
	for _, b := range budgets {
		if b.CategoryID == categoryID {
			budget = b
			break
		}
	}
	if budget == nil || budget.Amount <= 0 {
		return 0, false, nil
	}

	from, to := services.MonthWindow(at.Year(), at.Month())
	spent, err := d.transactions.SumCategoryExpense(ctx, userID, categoryID, from, to)
	if err != nil {
		return 0, false, err
	}
	return spent / budget.Amount * 100, true, nil
}

type updateTransactionArgs struct {
	ID            int64    `json:"id"`
	Amount        *float64 `json:"amount"`
	Type          *string  `json:"type"`
	Description   *string  `json:"description"`
	Category      string   `json:"category"`
	CategoryID    int64    `json:"category_id"`
	PaymentMethod *string  `json:"payment_method"`
}

func (d *Dispatcher) updateTransaction(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args updateTransactionArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.ID == 0 {
		return invalidInput("transaction id is required", nil), nil
	}
	if args.Amount != nil && *args.Amount <= 0 {
		return invalidInput("amount must be positive", nil), nil
	}

	update := model.TransactionUpdate{
		Amount:        args.Amount,
		Description:   args.Description,
		PaymentMethod: args.PaymentMethod,
	}
	if args.Type != nil {
		typ := model.TransactionType(*args.Type)
		if !typ.Valid() {
			return invalidInput("type must be expense, income or transfer",
				map[string]interface{}{"type": *args.Type}), nil
		}
		update.Type = &typ
	}
	if args.Category != "" || args.CategoryID != 0 {
		category, err := d.resolveCategory(ctx, args.Category, args.CategoryID)
		if err != nil {
			return nil, err
		}
		update.CategoryID = &category.ID
	}

	if err := d.transactions.Update(ctx, userID, args.ID, update); err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return notFound("no such transaction", map[string]interface{}{"transaction_id": args.ID}), nil
		}
		return nil, err
	}

	return applied(fmt.Sprintf("updated transaction %d", args.ID),
		map[string]interface{}{"transaction_id": args.ID}), nil
}

type deleteTransactionArgs struct {
	ID int64 `json:"id"`
}

func (d *Dispatcher) deleteTransaction(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args deleteTransactionArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.ID == 0 {
		return invalidInput("transaction id is required", nil), nil
	}

	if err := d.transactions.Delete(ctx, userID, args.ID); err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return notFound("no such transaction", map[string]interface{}{"transaction_id": args.ID}), nil
		}
		return nil, err
	}

	return applied(fmt.Sprintf("deleted transaction %d", args.ID),
		map[string]interface{}{"transaction_id": args.ID}), nil
}
