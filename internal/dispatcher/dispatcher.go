package dispatcher

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/pkg/logger"
	"github.com/duitapp/ledger/pkg/prom"
)

type Status string

const (
	// StatusApplied means the mutation committed.
	StatusApplied Status = "applied"
	// StatusNotFound means the target row does not exist for this user.
	// Nothing was written.
	StatusNotFound Status = "not_found"
	// StatusInvalidInput means the call cannot be acted on as given and
	// the caller should be asked to clarify. Nothing was written.
	StatusInvalidInput Status = "invalid_input"
)

// ToolCall is one mutation request from the conversation layer. Arguments
// is untrusted JSON; every field is validated before it touches the ledger.
type ToolCall struct {
	Name           string          `json:"name"`
	Arguments      json.RawMessage `json:"arguments"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

// Outcome is the deterministic result of a tool call. Message is rendered
// from Facts with fixed templates, so the same ledger state and the same
// call always produce the same text.
type Outcome struct {
	Status  Status                 `json:"status"`
	Message string                 `json:"message"`
	Facts   map[string]interface{} `json:"facts,omitempty"`
}

type handlerFunc func(ctx context.Context, userID int64, args json.RawMessage) (*Outcome, error)

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	Update(ctx context.Context, userID, id int64, u model.TransactionUpdate) error
	Delete(ctx context.Context, userID, id int64) error
	SumCategoryExpense(ctx context.Context, userID, categoryID int64, from, to time.Time) (float64, error)
}

type BudgetRepository interface {
	Upsert(ctx context.Context, b *model.Budget) (*model.Budget, error)
	List(ctx context.Context, userID int64, month, year int) ([]*model.Budget, error)
	UpdateAmount(ctx context.Context, userID, id int64, amount float64) error
	Delete(ctx context.Context, userID, id int64) error
}

type GoalRepository interface {
	Create(ctx context.Context, g *model.Goal) (*model.Goal, error)
	GetByID(ctx context.Context, userID, id int64) (*model.Goal, error)
	AddProgress(ctx context.Context, userID, id int64, delta float64) (float64, error)
	Update(ctx context.Context, userID, id int64, u model.GoalUpdate) error
	Delete(ctx context.Context, userID, id int64) error
}

type BillRepository interface {
	Create(ctx context.Context, b *model.Bill) (*model.Bill, error)
	GetByID(ctx context.Context, userID, id int64) (*model.Bill, error)
	GetByName(ctx context.Context, userID int64, name string) (*model.Bill, error)
	Update(ctx context.Context, userID, id int64, u model.BillUpdate) error
	Delete(ctx context.Context, userID, id int64) error
}

type InvestmentRepository interface {
	Create(ctx context.Context, inv *model.Investment) (*model.Investment, error)
	Update(ctx context.Context, userID, id int64, u model.InvestmentUpdate) error
	Delete(ctx context.Context, userID, id int64) error
}

type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	GetByName(ctx context.Context, name string) (*model.Category, error)
	GetDefault(ctx context.Context) (*model.Category, error)
}

type MerchantRepository interface {
	Upsert(ctx context.Context, userID int64, merchantName string, categoryID int64) error
	Lookup(ctx context.Context, userID int64, merchantName string) (*model.MerchantMapping, error)
}

type SettingsRepository interface {
	ClearPrimaryGoal(ctx context.Context, userID, goalID int64) error
}

// Dispatcher routes structured tool calls to ledger mutations. Every call
// is scoped to one user, resolves to exactly one of the three outcome
// statuses, and either fully commits or leaves the ledger untouched.
type Dispatcher struct {
	db           Transactor
	transactions TransactionRepository
	budgets      BudgetRepository
	goals        GoalRepository
	bills        BillRepository
	investments  InvestmentRepository
	categories   CategoryRepository
	merchants    MerchantRepository
	settings     SettingsRepository
	idempotency  *IdempotencyStore
	handlers     map[string]handlerFunc
}

func New(db Transactor, transactions TransactionRepository, budgets BudgetRepository, goals GoalRepository, bills BillRepository, investments InvestmentRepository, categories CategoryRepository, merchants MerchantRepository, settings SettingsRepository, idempotency *IdempotencyStore) *Dispatcher {
	d := &Dispatcher{
		db:           db,
		transactions: transactions,
		budgets:      budgets,
		goals:        goals,
		bills:        bills,
		investments:  investments,
		categories:   categories,
		merchants:    merchants,
		settings:     settings,
		idempotency:  idempotency,
	}
	d.handlers = map[string]handlerFunc{
		"record_transaction": d.recordTransaction,
		"update_transaction": d.updateTransaction,
		"delete_transaction": d.deleteTransaction,

		"create_budget": d.createBudget,
		"update_budget": d.updateBudget,
		"delete_budget": d.deleteBudget,

		"create_goal":           d.createGoal,
		"update_goal":           d.updateGoal,
		"delete_goal":           d.deleteGoal,
		"reallocate_goal_funds": d.reallocateGoalFunds,

		"create_bill": d.createBill,
		"update_bill": d.updateBill,
		"delete_bill": d.deleteBill,
		"pay_bill":    d.payBill,

		"record_investment": d.recordInvestment,
		"update_investment": d.updateInvestment,
		"delete_investment": d.deleteInvestment,
	}
	return d
}

// creatableTools are the tools that insert new rows. Only these honor an
// idempotency key: updates and deletes are naturally safe to replay.
var creatableTools = map[string]bool{
	"record_transaction": true,
	"create_budget":      true,
	"create_goal":        true,
	"create_bill":        true,
	"record_investment":  true,
}

// Execute runs one tool call for one user. An unknown tool name and a
// malformed argument payload are invalid_input, never an error: the
// conversation layer turns those into clarification prompts. A non-nil
// error means infrastructure failed and nothing was committed.
func (d *Dispatcher) Execute(ctx context.Context, userID int64, call ToolCall) (*Outcome, error) {
	handler, ok := d.handlers[strings.TrimSpace(call.Name)]
	if !ok {
		out := invalidInput("unknown tool", map[string]interface{}{"tool": call.Name})
		prom.ObserveToolCall(call.Name, string(out.Status))
		return out, nil
	}

	if d.idempotency != nil && call.IdempotencyKey != "" && creatableTools[call.Name] {
		if prior, ok := d.idempotency.Lookup(userID, call.IdempotencyKey); ok {
			logger.Debug("duplicate tool call suppressed",
				"user_id", userID, "tool", call.Name, "idempotency_key", call.IdempotencyKey)
			prom.ObserveToolCall(call.Name, "duplicate")
			return prior, nil
		}
	}

	out, err := handler(ctx, userID, call.Arguments)
	if err != nil {
		prom.ObserveToolCall(call.Name, "error")
		return nil, err
	}

	if d.idempotency != nil && call.IdempotencyKey != "" && creatableTools[call.Name] && out.Status == StatusApplied {
		d.idempotency.Store(userID, call.IdempotencyKey, out)
	}

	prom.ObserveToolCall(call.Name, string(out.Status))
	return out, nil
}

func applied(message string, facts map[string]interface{}) *Outcome {
	return &Outcome{Status: StatusApplied, Message: message, Facts: facts}
}

func notFound(message string, facts map[string]interface{}) *Outcome {
	return &Outcome{Status: StatusNotFound, Message: message, Facts: facts}
}

func invalidInput(message string, facts map[string]interface{}) *Outcome {
	return &Outcome{Status: StatusInvalidInput, Message: message, Facts: facts}
}

// decodeArgs unmarshals the raw argument payload. A decode failure is the
// caller's problem, reported as invalid_input through the second return.
func decodeArgs(raw json.RawMessage, into interface{}) *Outcome {
	if len(raw) == 0 {
		return invalidInput("missing arguments", nil)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return invalidInput("malformed arguments", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

// formatAmount prints a money or percent figure without trailing zero
// noise, so message templates stay stable across integer-valued floats.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// resolveCategory maps loose category input to a real category id. Name
// match wins, a valid explicit id is honored next, and everything else
// lands in the default bucket so a record is never dropped over taxonomy.
func (d *Dispatcher) resolveCategory(ctx context.Context, name string, id int64) (*model.Category, error) {
	if name != "" {
		c, err := d.categories.GetByName(ctx, name)
		if err == nil {
			return c, nil
		}
	}
	if id != 0 {
		c, err := d.categories.GetByID(ctx, id)
		if err == nil {
			return c, nil
		}
	}
	return d.categories.GetDefault(ctx)
}
