package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fasthttp/router"

	"github.com/duitapp/ledger/internal/dispatcher"
	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/internal/repository"
	xhttp "github.com/duitapp/ledger/pkg/http"
	"github.com/duitapp/ledger/pkg/logger"
)

const webhookSecretHeader = "X-Webhook-Secret"

type WebhookUserService interface {
	GetByChatID(ctx context.Context, chatID int64) (*model.User, error)
	CreateGhost(ctx context.Context, chatID int64, name string) (*model.User, error)
}

type WebhookDispatcher interface {
	Execute(ctx context.Context, userID int64, call dispatcher.ToolCall) (*dispatcher.Outcome, error)
}

type WebhookDebtService interface {
	Create(ctx context.Context, d *model.Debt) (*model.Debt, error)
}

type WebhookReminderService interface {
	Create(ctx context.Context, m *model.ScheduledMessage) (*model.ScheduledMessage, error)
}

// WebhookHandler ingests the extraction service's structured records for
// messaging-bot traffic. The sender is identified by chat id alone; an
// unknown chat id gets a ghost account on the spot so no message is ever
// dropped for lack of a user row.
type WebhookHandler struct {
	secret        string
	users         WebhookUserService
	dispatcher    WebhookDispatcher
	debts         WebhookDebtService
	reminders     WebhookReminderService
	cashThreshold float64
}

func RegisterWebhookRoutes(e *router.Group, h *WebhookHandler) {
	e.POST("/webhook/intent", h.HandleIntent)
}

func NewWebhookHandler(secret string, users WebhookUserService, d WebhookDispatcher, debts WebhookDebtService, reminders WebhookReminderService, cashThreshold float64) *WebhookHandler {
	return &WebhookHandler{
		secret:        secret,
		users:         users,
		dispatcher:    d,
		debts:         debts,
		reminders:     reminders,
		cashThreshold: cashThreshold,
	}
}

type webhookRequest struct {
	ChatID     int64  `json:"chat_id"`
	SenderName string `json:"sender_name"`
	MessageID  string `json:"message_id"`
	model.Intent
}

type webhookResponse struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Facts   map[string]interface{} `json:"facts,omitempty"`
}

func (h *WebhookHandler) HandleIntent(ctx *xhttp.RequestCtx) {
	provided := ctx.Request.Header.Peek(webhookSecretHeader)
	if subtle.ConstantTimeCompare(provided, []byte(h.secret)) != 1 {
		writeError(ctx, xhttp.StatusUnauthorized, "invalid webhook secret")
		return
	}

	var req webhookRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.ChatID == 0 {
		writeError(ctx, xhttp.StatusBadRequest, "chat_id is required")
		return
	}

	user, err := h.users.GetByChatID(ctx, req.ChatID)
	if errors.Is(err, repository.ErrUserNotFound) {
		user, err = h.users.CreateGhost(ctx, req.ChatID, req.SenderName)
	}
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	call, resp := h.toToolCall(&req)
	if resp != nil {
		writeJSON(ctx, xhttp.StatusOK, *resp)
		return
	}
	if call == nil {
		// debt intents bypass the dispatcher table
		h.handleDebt(ctx, user.ID, &req)
		return
	}

	outcome, err := h.dispatcher.Execute(ctx, user.ID, *call)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	if outcome.Status == dispatcher.StatusApplied && call.Name == "record_transaction" {
		h.flagLargeCashWithdrawal(ctx, user.ID, call.Arguments)
	}

	writeJSON(ctx, xhttp.StatusOK, webhookResponse{
		Status:  string(outcome.Status),
		Message: outcome.Message,
		Facts:   outcome.Facts,
	})
}

// toToolCall normalizes the untrusted record into a dispatcher call.
// A non-nil response means the record could not be acted on and the bot
// should ask for clarification instead.
func (h *WebhookHandler) toToolCall(req *webhookRequest) (*dispatcher.ToolCall, *webhookResponse) {
	if req.IsToolCall() {
		return &dispatcher.ToolCall{
			Name:           req.ToolName,
			Arguments:      req.Arguments,
			IdempotencyKey: req.MessageID,
		}, nil
	}

	switch req.Kind {
	case model.IntentTransaction:
		if req.Amount == nil || *req.Amount <= 0 {
			return nil, &webhookResponse{
				Status:  string(dispatcher.StatusInvalidInput),
				Message: "how much was it?",
			}
		}
		args := map[string]interface{}{"amount": *req.Amount}
		if req.TransactionType != nil {
			args["type"] = strings.ToLower(*req.TransactionType)
		}
		if req.Category != nil {
			args["category"] = *req.Category
		}
		if req.Description != nil {
			args["description"] = *req.Description
		}
		raw, _ := json.Marshal(args)
		return &dispatcher.ToolCall{
			Name:           "record_transaction",
			Arguments:      raw,
			IdempotencyKey: req.MessageID,
		}, nil

	case model.IntentDebt:
		return nil, nil

	case model.IntentQuery:
		return nil, &webhookResponse{
			Status:  string(dispatcher.StatusInvalidInput),
			Message: "I can't answer questions here yet, check your dashboard for the numbers.",
		}

	default:
		return nil, &webhookResponse{
			Status:  string(dispatcher.StatusInvalidInput),
			Message: "I could not understand that, try rephrasing it.",
		}
	}
}

func (h *WebhookHandler) handleDebt(ctx *xhttp.RequestCtx, userID int64, req *webhookRequest) {
	if req.Amount == nil || *req.Amount == 0 || req.DebtorName == nil || *req.DebtorName == "" {
		writeJSON(ctx, xhttp.StatusOK, webhookResponse{
			Status:  string(dispatcher.StatusInvalidInput),
			Message: "who owes whom, and how much?",
		})
		return
	}

	debt, err := h.debts.Create(ctx, &model.Debt{
		UserID:          userID,
		Amount:          *req.Amount,
		CounterpartName: *req.DebtorName,
		Status:          model.DebtStatusUnpaid,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	writeJSON(ctx, xhttp.StatusOK, webhookResponse{
		Status:  string(dispatcher.StatusApplied),
		Message: fmt.Sprintf("noted a debt of %v with %s", debt.Amount, debt.CounterpartName),
		Facts:   map[string]interface{}{"debt_id": debt.ID, "amount": debt.Amount},
	})
}

type cashWithdrawalArgs struct {
	Amount        float64 `json:"amount"`
	Type          string  `json:"type"`
	PaymentMethod string  `json:"payment_method"`
}

// flagLargeCashWithdrawal queues a follow-up reminder when a recorded
// expense looks like a big cash withdrawal. The reminder rides the next
// recap digest; failing to queue it never fails the recording itself.
func (h *WebhookHandler) flagLargeCashWithdrawal(ctx *xhttp.RequestCtx, userID int64, raw json.RawMessage) {
	if h.cashThreshold <= 0 {
		return
	}

	var args cashWithdrawalArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return
	}
	if !strings.EqualFold(args.PaymentMethod, "cash") || args.Amount < h.cashThreshold {
		return
	}
	if args.Type != "" && args.Type != string(model.TransactionTypeExpense) {
		return
	}

	_, err := h.reminders.Create(ctx, &model.ScheduledMessage{
		UserID:      userID,
		Payload:     fmt.Sprintf("You withdrew %v in cash. What was it for? Reply to itemize it.", args.Amount),
		ScheduledAt: time.Now().UTC(),
		Status:      model.ScheduledMessageStatusPending,
	})
	if err != nil {
		logger.Warn("cash withdrawal reminder not queued", "user_id", userID, "error", err)
	}
}
