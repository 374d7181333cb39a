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

type createBillArgs struct {
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	DueDay    int     `json:"due_day"`
	Frequency string  `json:"frequency"`
}

func (d *Dispatcher) createBill(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args createBillArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.Name == "" {
		return invalidInput("bill name is required", nil), nil
	}
	if args.Amount <= 0 {
		return invalidInput("amount must be positive", nil), nil
	}
	if args.DueDay < 1 || args.DueDay > 31 {
		return invalidInput("due_day must be between 1 and 31",
			map[string]interface{}{"due_day": args.DueDay}), nil
	}

	frequency := model.BillFrequency(args.Frequency)
	if args.Frequency == "" {
		frequency = model.BillFrequencyMonthly
	}
	if !frequency.Valid() {
		return invalidInput("frequency must be monthly, weekly or yearly",
			map[string]interface{}{"frequency": args.Frequency}), nil
	}

	bill, err := d.bills.Create(ctx, &model.Bill{
		UserID:    userID,
		Name:      args.Name,
		Amount:    args.Amount,
		DueDay:    args.DueDay,
		Frequency: frequency,
	})
	if err != nil {
		return nil, err
	}

	return applied(
		fmt.Sprintf("created %s bill %q of %s due on day %d", bill.Frequency, bill.Name, formatAmount(bill.Amount), bill.DueDay),
		map[string]interface{}{
			"bill_id": bill.ID,
			"name":    bill.Name,
			"amount":  bill.Amount,
			"due_day": bill.DueDay,
		}), nil
}

type updateBillArgs struct {
	ID        int64    `json:"id"`
	Name      *string  `json:"name"`
	Amount    *float64 `json:"amount"`
	DueDay    *int     `json:"due_day"`
	Frequency *string  `json:"frequency"`
	IsPaid    *bool    `json:"is_paid"`
}

func (d *Dispatcher) updateBill(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args updateBillArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.ID == 0 {
		return invalidInput("bill id is required", nil), nil
	}
	if args.Amount != nil && *args.Amount <= 0 {
		return invalidInput("amount must be positive", nil), nil
	}
	if args.DueDay != nil && (*args.DueDay < 1 || *args.DueDay > 31) {
		return invalidInput("due_day must be between 1 and 31", nil), nil
	}

	update := model.BillUpdate{
		Name:   args.Name,
		Amount: args.Amount,
		DueDay: args.DueDay,
		IsPaid: args.IsPaid,
	}
	if args.Frequency != nil {
		frequency := model.BillFrequency(*args.Frequency)
		if !frequency.Valid() {
			return invalidInput("frequency must be monthly, weekly or yearly",
				map[string]interface{}{"frequency": *args.Frequency}), nil
		}
		update.Frequency = &frequency
	}

	if err := d.bills.Update(ctx, userID, args.ID, update); err != nil {
		if errors.Is(err, repository.ErrBillNotFound) {
			return notFound("no such bill", map[string]interface{}{"bill_id": args.ID}), nil
		}
		return nil, err
	}

	return applied(fmt.Sprintf("updated bill %d", args.ID),
		map[string]interface{}{"bill_id": args.ID}), nil
}

type deleteBillArgs struct {
	ID int64 `json:"id"`
}

func (d *Dispatcher) deleteBill(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args deleteBillArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.ID == 0 {
		return invalidInput("bill id is required", nil), nil
	}

	if err := d.bills.Delete(ctx, userID, args.ID); err != nil {
		if errors.Is(err, repository.ErrBillNotFound) {
			return notFound("no such bill", map[string]interface{}{"bill_id": args.ID}), nil
		}
		return nil, err
	}

	return applied(fmt.Sprintf("deleted bill %d", args.ID),
		map[string]interface{}{"bill_id": args.ID}), nil
}

type payBillArgs struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	RecordExpense bool   `json:"record_expense"`
	Category      string `json:"category"`
	PaymentMethod string `json:"payment_method"`
}

// payBill marks a bill paid, addressed by id or by name. With
// record_expense the ledger debit lands in the same transaction: a paid
// flag without its expense row never survives a failure.
func (d *Dispatcher) payBill(ctx context.Context, userID int64, raw json.RawMessage) (*Outcome, error) {
	var args payBillArgs
	if out := decodeArgs(raw, &args); out != nil {
		return out, nil
	}
	if args.ID == 0 && args.Name == "" {
		return invalidInput("bill id or name is required", nil), nil
	}

	var bill *model.Bill
	var err error
	if args.ID != 0 {
		bill, err = d.bills.GetByID(ctx, userID, args.ID)
	} else {
		bill, err = d.bills.GetByName(ctx, userID, args.Name)
	}
	if err != nil {
		if errors.Is(err, repository.ErrBillNotFound) {
			return notFound("no such bill",
				map[string]interface{}{"bill_id": args.ID, "name": args.Name}), nil
		}
		return nil, err
	}
	if bill.IsPaid {
		return applied(fmt.Sprintf("bill %q is already paid", bill.Name),
			map[string]interface{}{"bill_id": bill.ID, "already_paid": true}), nil
	}

	paid := true
	var txnID int64
	err = d.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := d.bills.Update(ctx, userID, bill.ID, model.BillUpdate{IsPaid: &paid}); err != nil {
			return err
		}
		if !args.RecordExpense {
			return nil
		}

		category, err := d.resolveCategory(ctx, args.Category, 0)
		if err != nil {
			return err
		}
		txn, err := d.transactions.Create(ctx, &model.Transaction{
			UserID:        userID,
			CategoryID:    category.ID,
			Amount:        bill.Amount,
			Type:          model.TransactionTypeExpense,
			Description:   bill.Name,
			PaymentMethod: args.PaymentMethod,
			OccurredAt:    time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		txnID = txn.ID
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrBillNotFound) {
			return notFound("no such bill", map[string]interface{}{"bill_id": bill.ID}), nil
		}
		return nil, err
	}

	facts := map[string]interface{}{
		"bill_id": bill.ID,
		"name":    bill.Name,
		"amount":  bill.Amount,
	}
	message := fmt.Sprintf("marked bill %q paid", bill.Name)
	if args.RecordExpense {
		facts["transaction_id"] = txnID
		message += fmt.Sprintf(" and recorded expense of %s", formatAmount(bill.Amount))
	}
	return applied(message, facts), nil
}
