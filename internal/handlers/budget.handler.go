package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"

	"github.com/duitapp/ledger/internal/model"
	xhttp "github.com/duitapp/ledger/pkg/http"
)

type BudgetService interface {
	Upsert(ctx context.Context, b *model.Budget) (*model.Budget, error)
	List(ctx context.Context, userID int64, month, year int) ([]*model.Budget, error)
	UpdateAmount(ctx context.Context, userID, id int64, amount float64) error
	Delete(ctx context.Context, userID, id int64) error
}

type BudgetHandler struct {
	svc        BudgetService
	categories CategoryResolver
}

func RegisterBudgetRoutes(e *router.Group, h *BudgetHandler) {
	e.GET("/budgets", authenticated(h.List))
	e.POST("/budgets", authenticated(h.Create))
	e.PATCH("/budgets/{id}", authenticated(h.Update))
	e.DELETE("/budgets/{id}", authenticated(h.Delete))
}

func NewBudgetHandler(svc BudgetService, categories CategoryResolver) *BudgetHandler {
	return &BudgetHandler{
		svc:        svc,
		categories: categories,
	}
}

type createBudgetRequest struct {
	CategoryID int64   `json:"category_id"`
	Category   string  `json:"category"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	Amount     float64 `json:"amount"`
}

// Create upserts: a second budget for the same category and month merges
// into the existing row instead of duplicating it.
func (h *BudgetHandler) Create(ctx *xhttp.RequestCtx, userID int64) {
	var req createBudgetRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	now := time.Now().UTC()
	if req.Month == 0 {
		req.Month = int(now.Month())
	}
	if req.Year == 0 {
		req.Year = now.Year()
	}

	categoryID := req.CategoryID
	if categoryID == 0 && req.Category != "" {
		category, err := h.categories.GetByName(ctx, req.Category)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		categoryID = category.ID
	}

	p := model.BudgetCreateRequest{
		UserID:     userID,
		CategoryID: categoryID,
		Month:      req.Month,
		Year:       req.Year,
		Amount:     req.Amount,
	}
	if err := p.Validate(); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	budget, err := h.svc.Upsert(ctx, &model.Budget{
		UserID:     p.UserID,
		CategoryID: p.CategoryID,
		Month:      p.Month,
		Year:       p.Year,
		Amount:     p.Amount,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, budget)
}

func (h *BudgetHandler) List(ctx *xhttp.RequestCtx, userID int64) {
	now := time.Now().UTC()
	month := queryInt(ctx, "month")
	year := queryInt(ctx, "year")
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}

	budgets, err := h.svc.List(ctx, userID, month, year)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, budgets)
}

type updateBudgetRequest struct {
	Amount float64 `json:"amount"`
}

func (h *BudgetHandler) Update(ctx *xhttp.RequestCtx, userID int64) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}

	var req updateBudgetRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Amount < 0 {
		writeError(ctx, xhttp.StatusBadRequest, "amount must not be negative")
		return
	}

	if err := h.svc.UpdateAmount(ctx, userID, id, req.Amount); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "updated"})
}

func (h *BudgetHandler) Delete(ctx *xhttp.RequestCtx, userID int64) {
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
