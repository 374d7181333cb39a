package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/fasthttp/router"

	"github.com/duitapp/ledger/internal/model"
	xhttp "github.com/duitapp/ledger/pkg/http"
)

type TransactionService interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	GetByID(ctx context.Context, userID, id int64) (*model.Transaction, error)
	List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error)
	Update(ctx context.Context, userID, id int64, u model.TransactionUpdate) error
	Delete(ctx context.Context, userID, id int64) error
}

type CategoryResolver interface {
	GetByName(ctx context.Context, name string) (*model.Category, error)
	GetDefault(ctx context.Context) (*model.Category, error)
}

type TransactionHandler struct {
	svc        TransactionService
	categories CategoryResolver
}

func RegisterTransactionRoutes(e *router.Group, h *TransactionHandler) {
	e.GET("/transactions", authenticated(h.List))
	e.GET("/transactions/{id}", authenticated(h.Get))
	e.POST("/transactions", authenticated(h.Create))
	e.PATCH("/transactions/{id}", authenticated(h.Update))
	e.DELETE("/transactions/{id}", authenticated(h.Delete))
}

func NewTransactionHandler(svc TransactionService, categories CategoryResolver) *TransactionHandler {
	return &TransactionHandler{
		svc:        svc,
		categories: categories,
	}
}

type createTransactionRequest struct {
	CategoryID    int64   `json:"category_id"`
	Category      string  `json:"category"`
	Amount        float64 `json:"amount"`
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	Merchant      string  `json:"merchant"`
	PaymentMethod string  `json:"payment_method"`
	OccurredAt    string  `json:"occurred_at"`
}

type transactionListResponse struct {
	Items []*model.Transaction `json:"items"`
	Total int64                `json:"total"`
}

func (h *TransactionHandler) Create(ctx *xhttp.RequestCtx, userID int64) {
	var req createTransactionRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	typ := model.TransactionType(req.Type)
	if req.Type == "" {
		typ = model.TransactionTypeExpense
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != "" {
		t, err := parseTime(req.OccurredAt)
		if err != nil {
			writeError(ctx, xhttp.StatusBadRequest, "occurred_at must be RFC 3339 or YYYY-MM-DD")
			return
		}
		occurredAt = t
	}

	categoryID := req.CategoryID
	if categoryID == 0 {
		category, err := h.resolveCategory(ctx, req.Category)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		categoryID = category.ID
	}

	p := model.TransactionCreateRequest{
		UserID:        userID,
		CategoryID:    categoryID,
		Amount:        req.Amount,
		Type:          typ,
		Description:   req.Description,
		Merchant:      req.Merchant,
		PaymentMethod: req.PaymentMethod,
		OccurredAt:    occurredAt,
	}
	if err := p.Validate(); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	txn, err := h.svc.Create(ctx, &model.Transaction{
		UserID:        p.UserID,
		CategoryID:    p.CategoryID,
		Amount:        p.Amount,
		Type:          p.Type,
		Description:   p.Description,
		Merchant:      p.Merchant,
		PaymentMethod: p.PaymentMethod,
		OccurredAt:    p.OccurredAt,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, txn)
}

func (h *TransactionHandler) resolveCategory(ctx *xhttp.RequestCtx, name string) (*model.Category, error) {
	if name != "" {
		if c, err := h.categories.GetByName(ctx, name); err == nil {
			return c, nil
		}
	}
	return h.categories.GetDefault(ctx)
}

func (h *TransactionHandler) Get(ctx *xhttp.RequestCtx, userID int64) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}

	txn, err := h.svc.GetByID(ctx, userID, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, txn)
}

func (h *TransactionHandler) List(ctx *xhttp.RequestCtx, userID int64) {
	f := model.TransactionFilter{UserID: userID}

	if v := query(ctx, "category_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.CategoryID = &id
		}
	}
	if v := query(ctx, "type"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				f.Types = append(f.Types, model.TransactionType(part))
			}
		}
	}
	if v := query(ctx, "from"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.From = &t
		}
	}
	if v := query(ctx, "to"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.To = &t
		}
	}
	f.Limit = queryInt(ctx, "limit")
	f.Offset = queryInt(ctx, "offset")
	if strings.EqualFold(query(ctx, "order"), "desc") {
		f.Desc = true
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, transactionListResponse{Items: items, Total: total})
}

type updateTransactionRequest struct {
	CategoryID    *int64   `json:"category_id"`
	Amount        *float64 `json:"amount"`
	Type          *string  `json:"type"`
	Description   *string  `json:"description"`
	Merchant      *string  `json:"merchant"`
	PaymentMethod *string  `json:"payment_method"`
	Verified      *bool    `json:"verified"`
	OccurredAt    *string  `json:"occurred_at"`
}

func (h *TransactionHandler) Update(ctx *xhttp.RequestCtx, userID int64) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}

	var req updateTransactionRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Amount != nil && *req.Amount <= 0 {
		writeError(ctx, xhttp.StatusBadRequest, "amount must be positive")
		return
	}

	update := model.TransactionUpdate{
		CategoryID:    req.CategoryID,
		Amount:        req.Amount,
		Description:   req.Description,
		Merchant:      req.Merchant,
		PaymentMethod: req.PaymentMethod,
		Verified:      req.Verified,
	}
	if req.Type != nil {
		typ := model.TransactionType(*req.Type)
		if !typ.Valid() {
			writeError(ctx, xhttp.StatusBadRequest, "type must be expense, income or transfer")
			return
		}
		update.Type = &typ
	}
	if req.OccurredAt != nil {
		t, err := parseTime(*req.OccurredAt)
		if err != nil {
			writeError(ctx, xhttp.StatusBadRequest, "occurred_at must be RFC 3339 or YYYY-MM-DD")
			return
		}
		update.OccurredAt = &t
	}

	if err := h.svc.Update(ctx, userID, id, update); err != nil {
		writeServiceError(ctx, err)
		return
	}

	txn, err := h.svc.GetByID(ctx, userID, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, txn)
}

func (h *TransactionHandler) Delete(ctx *xhttp.RequestCtx, userID int64) {
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
