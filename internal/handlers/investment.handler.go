package handlers

import (
	"context"

	"github.com/fasthttp/router"

	"github.com/duitapp/ledger/internal/model"
	xhttp "github.com/duitapp/ledger/pkg/http"
)

type InvestmentService interface {
	Create(ctx context.Context, inv *model.Investment) (*model.Investment, error)
	GetByID(ctx context.Context, userID, id int64) (*model.Investment, error)
	List(ctx context.Context, userID int64) ([]*model.Investment, error)
	Update(ctx context.Context, userID, id int64, u model.InvestmentUpdate) error
	Delete(ctx context.Context, userID, id int64) error
}

type InvestmentHandler struct {
	svc InvestmentService
}

func RegisterInvestmentRoutes(e *router.Group, h *InvestmentHandler) {
	e.GET("/investments", authenticated(h.List))
	e.POST("/investments", authenticated(h.Create))
	e.PATCH("/investments/{id}", authenticated(h.Update))
	e.DELETE("/investments/{id}", authenticated(h.Delete))
}

func NewInvestmentHandler(svc InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{
		svc: svc,
	}
}

// investmentView adds the derived value and profit to the stored fields.
type investmentView struct {
	*model.Investment
	Value  float64 `json:"value"`
	Profit float64 `json:"profit"`
}

func toInvestmentView(inv *model.Investment) investmentView {
	return investmentView{Investment: inv, Value: inv.Value(), Profit: inv.Profit()}
}

type createInvestmentRequest struct {
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	AvgBuyPrice  float64 `json:"avg_buy_price"`
	CurrentPrice float64 `json:"current_price"`
	Platform     string  `json:"platform"`
}

func (h *InvestmentHandler) Create(ctx *xhttp.RequestCtx, userID int64) {
	var req createInvestmentRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.CurrentPrice == 0 {
		req.CurrentPrice = req.AvgBuyPrice
	}

	p := model.InvestmentCreateRequest{
		UserID:       userID,
		Name:         req.Name,
		Quantity:     req.Quantity,
		AvgBuyPrice:  req.AvgBuyPrice,
		CurrentPrice: req.CurrentPrice,
		Platform:     req.Platform,
	}
	if err := p.Validate(); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	inv, err := h.svc.Create(ctx, &model.Investment{
		UserID:       p.UserID,
		Name:         p.Name,
		Quantity:     p.Quantity,
		AvgBuyPrice:  p.AvgBuyPrice,
		CurrentPrice: p.CurrentPrice,
		Platform:     p.Platform,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, toInvestmentView(inv))
}

func (h *InvestmentHandler) List(ctx *xhttp.RequestCtx, userID int64) {
	investments, err := h.svc.List(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	views := make([]investmentView, 0, len(investments))
	for _, inv := range investments {
		views = append(views, toInvestmentView(inv))
	}
	writeJSON(ctx, xhttp.StatusOK, views)
}

type updateInvestmentRequest struct {
	Name         *string  `json:"name"`
	Quantity     *float64 `json:"quantity"`
	AvgBuyPrice  *float64 `json:"avg_buy_price"`
	CurrentPrice *float64 `json:"current_price"`
	Platform     *string  `json:"platform"`
}

func (h *InvestmentHandler) Update(ctx *xhttp.RequestCtx, userID int64) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}

	var req updateInvestmentRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		writeError(ctx, xhttp.StatusBadRequest, "quantity must be positive")
		return
	}

	update := model.InvestmentUpdate{
		Name:         req.Name,
		Quantity:     req.Quantity,
		AvgBuyPrice:  req.AvgBuyPrice,
		CurrentPrice: req.CurrentPrice,
		Platform:     req.Platform,
	}

	if err := h.svc.Update(ctx, userID, id, update); err != nil {
		writeServiceError(ctx, err)
		return
	}

	inv, err := h.svc.GetByID(ctx, userID, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, toInvestmentView(inv))
}

func (h *InvestmentHandler) Delete(ctx *xhttp.RequestCtx, userID int64) {
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
