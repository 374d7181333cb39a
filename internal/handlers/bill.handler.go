package handlers

import (
	"context"

	"github.com/fasthttp/router"

	"github.com/duitapp/ledger/internal/model"
	xhttp "github.com/duitapp/ledger/pkg/http"
)

type BillService interface {
	Create(ctx context.Context, b *model.Bill) (*model.Bill, error)
	GetByID(ctx context.Context, userID, id int64) (*model.Bill, error)
	List(ctx context.Context, userID int64) ([]*model.Bill, error)
	Update(ctx context.Context, userID, id int64, u model.BillUpdate) error
	Delete(ctx context.Context, userID, id int64) error
}

type BillHandler struct {
	svc BillService
}

func RegisterBillRoutes(e *router.Group, h *BillHandler) {
	e.GET("/bills", authenticated(h.List))
	e.POST("/bills", authenticated(h.Create))
	e.PATCH("/bills/{id}", authenticated(h.Update))
	e.DELETE("/bills/{id}", authenticated(h.Delete))
}

func NewBillHandler(svc BillService) *BillHandler {
	return &BillHandler{
		svc: svc,
	}
}

type createBillRequest struct {
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	DueDay    int     `json:"due_day"`
	Frequency string  `json:"frequency"`
}

func (h *BillHandler) Create(ctx *xhttp.RequestCtx, userID int64) {
	var req createBillRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	frequency := model.BillFrequency(req.Frequency)
	if req.Frequency == "" {
		frequency = model.BillFrequencyMonthly
	}

	p := model.BillCreateRequest{
		UserID:    userID,
		Name:      req.Name,
		Amount:    req.Amount,
		DueDay:    req.DueDay,
		Frequency: frequency,
	}
	if err := p.Validate(); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	bill, err := h.svc.Create(ctx, &model.Bill{
		UserID:    p.UserID,
		Name:      p.Name,
		Amount:    p.Amount,
		DueDay:    p.DueDay,
		Frequency: p.Frequency,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, bill)
}

func (h *BillHandler) List(ctx *xhttp.RequestCtx, userID int64) {
	bills, err := h.svc.List(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, bills)
}

type updateBillRequest struct {
	Name      *string  `json:"name"`
	Amount    *float64 `json:"amount"`
	DueDay    *int     `json:"due_day"`
	Frequency *string  `json:"frequency"`
	IsPaid    *bool    `json:"is_paid"`
}

func (h *BillHandler) Update(ctx *xhttp.RequestCtx, userID int64) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}

	var req updateBillRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Amount != nil && *req.Amount <= 0 {
		writeError(ctx, xhttp.StatusBadRequest, "amount must be positive")
		return
	}
	if req.DueDay != nil && (*req.DueDay < 1 || *req.DueDay > 31) {
		writeError(ctx, xhttp.StatusBadRequest, "due_day must be between 1 and 31")
		return
	}

	update := model.BillUpdate{
		Name:   req.Name,
		Amount: req.Amount,
		DueDay: req.DueDay,
		IsPaid: req.IsPaid,
	}
	if req.Frequency != nil {
		frequency := model.BillFrequency(*req.Frequency)
		if !frequency.Valid() {
			writeError(ctx, xhttp.StatusBadRequest, "frequency must be monthly, weekly or yearly")
			return
		}
		update.Frequency = &frequency
	}

	if err := h.svc.Update(ctx, userID, id, update); err != nil {
		writeServiceError(ctx, err)
		return
	}

	bill, err := h.svc.GetByID(ctx, userID, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, bill)
}

func (h *BillHandler) Delete(ctx *xhttp.RequestCtx, userID int64) {
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
