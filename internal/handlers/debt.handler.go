package handlers

import (
	"context"

	"github.com/fasthttp/router"

	"github.com/duitapp/ledger/internal/model"
	xhttp "github.com/duitapp/ledger/pkg/http"
)

type DebtService interface {
	Create(ctx context.Context, d *model.Debt) (*model.Debt, error)
	List(ctx context.Context, userID int64) ([]*model.Debt, error)
	SetStatus(ctx context.Context, userID, id int64, status model.DebtStatus) error
	Delete(ctx context.Context, userID, id int64) error
}

type DebtHandler struct {
	svc DebtService
}

func RegisterDebtRoutes(e *router.Group, h *DebtHandler) {
	e.GET("/debts", authenticated(h.List))
	e.POST("/debts", authenticated(h.Create))
	e.POST("/debts/{id}/settle", authenticated(h.Settle))
	e.DELETE("/debts/{id}", authenticated(h.Delete))
}

func NewDebtHandler(svc DebtService) *DebtHandler {
	return &DebtHandler{
		svc: svc,
	}
}

type createDebtRequest struct {
	Amount          float64 `json:"amount"`
	CounterpartName string  `json:"counterpart_name"`
}

func (h *DebtHandler) Create(ctx *xhttp.RequestCtx, userID int64) {
	var req createDebtRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	p := model.DebtCreateRequest{
		UserID:          userID,
		Amount:          req.Amount,
		CounterpartName: req.CounterpartName,
	}
	if err := p.Validate(); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	debt, err := h.svc.Create(ctx, &model.Debt{
		UserID:          p.UserID,
		Amount:          p.Amount,
		CounterpartName: p.CounterpartName,
		Status:          model.DebtStatusUnpaid,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, debt)
}

func (h *DebtHandler) List(ctx *xhttp.RequestCtx, userID int64) {
	debts, err := h.svc.List(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, debts)
}

func (h *DebtHandler) Settle(ctx *xhttp.RequestCtx, userID int64) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.SetStatus(ctx, userID, id, model.DebtStatusPaid); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "settled"})
}

func (h *DebtHandler) Delete(ctx *xhttp.RequestCtx, userID int64) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Delete(ctx, userID, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "deleted"})
}
