package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"

	"github.com/duitapp/ledger/internal/model"
	"github.com/duitapp/ledger/internal/services"
	xhttp "github.com/duitapp/ledger/pkg/http"
)

type StatsEngine interface {
	MonthlySummary(ctx context.Context, userID int64, year int, month time.Month) (*services.MonthlySummary, error)
	BudgetProgress(ctx context.Context, userID int64, year int, month time.Month) ([]*model.BudgetProgress, error)
	GoalProgress(ctx context.Context, userID int64) ([]*services.GoalProgress, error)
	NetWorth(ctx context.Context, userID int64) (*services.NetWorth, error)
}

// StatsHandler exposes the derived figures. Everything here is computed
// from the ledger at request time.
type StatsHandler struct {
	svc StatsEngine
}

func RegisterStatsRoutes(e *router.Group, h *StatsHandler) {
	e.GET("/stats/summary", authenticated(h.MonthlySummary))
	e.GET("/stats/budgets", authenticated(h.BudgetProgress))
	e.GET("/stats/goals", authenticated(h.GoalProgress))
	e.GET("/stats/net-worth", authenticated(h.NetWorth))
}

func NewStatsHandler(svc StatsEngine) *StatsHandler {
	return &StatsHandler{
		svc: svc,
	}
}

func monthYearFromQuery(ctx *xhttp.RequestCtx) (int, time.Month) {
	now := time.Now().UTC()
	year := queryInt(ctx, "year")
	month := queryInt(ctx, "month")
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		month = int(now.Month())
	}
	return year, time.Month(month)
}

func (h *StatsHandler) MonthlySummary(ctx *xhttp.RequestCtx, userID int64) {
	year, month := monthYearFromQuery(ctx)

	summary, err := h.svc.MonthlySummary(ctx, userID, year, month)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, summary)
}

func (h *StatsHandler) BudgetProgress(ctx *xhttp.RequestCtx, userID int64) {
	year, month := monthYearFromQuery(ctx)

	progress, err := h.svc.BudgetProgress(ctx, userID, year, month)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, progress)
}

func (h *StatsHandler) GoalProgress(ctx *xhttp.RequestCtx, userID int64) {
	progress, err := h.svc.GoalProgress(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, progress)
}

func (h *StatsHandler) NetWorth(ctx *xhttp.RequestCtx, userID int64) {
	worth, err := h.svc.NetWorth(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, worth)
}
