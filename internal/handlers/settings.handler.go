package handlers

import (
	"context"

	"github.com/fasthttp/router"

	"github.com/duitapp/ledger/internal/model"
	xhttp "github.com/duitapp/ledger/pkg/http"
)

type SettingsService interface {
	GetOrCreate(ctx context.Context, userID int64) (*model.UserSettings, error)
	Update(ctx context.Context, s *model.UserSettings) error
}

type SettingsGoalService interface {
	GetByID(ctx context.Context, userID, id int64) (*model.Goal, error)
}

type SettingsHandler struct {
	svc   SettingsService
	goals SettingsGoalService
}

func RegisterSettingsRoutes(e *router.Group, h *SettingsHandler) {
	e.GET("/settings", authenticated(h.Get))
	e.PUT("/settings", authenticated(h.Update))
}

func NewSettingsHandler(svc SettingsService, goals SettingsGoalService) *SettingsHandler {
	return &SettingsHandler{
		svc:   svc,
		goals: goals,
	}
}

func (h *SettingsHandler) Get(ctx *xhttp.RequestCtx, userID int64) {
	settings, err := h.svc.GetOrCreate(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, settings)
}

type updateSettingsRequest struct {
	HourlyRate    *float64 `json:"hourly_rate"`
	PrimaryGoalID *int64   `json:"primary_goal_id"`
	PIN           *string  `json:"pin"`
	AppLock       *bool    `json:"app_lock"`
}

func (h *SettingsHandler) Update(ctx *xhttp.RequestCtx, userID int64) {
	var req updateSettingsRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	settings, err := h.svc.GetOrCreate(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			writeError(ctx, xhttp.StatusBadRequest, "hourly_rate must not be negative")
			return
		}
		settings.HourlyRate = *req.HourlyRate
	}
	if req.PrimaryGoalID != nil {
		// the pointer must land on a goal this user owns
		if *req.PrimaryGoalID != 0 {
			if _, err := h.goals.GetByID(ctx, userID, *req.PrimaryGoalID); err != nil {
				writeServiceError(ctx, err)
				return
			}
			settings.PrimaryGoalID = req.PrimaryGoalID
		} else {
			settings.PrimaryGoalID = nil
		}
	}
	if req.PIN != nil {
		settings.PIN = *req.PIN
	}
	if req.AppLock != nil {
		settings.AppLock = *req.AppLock
	}

	if err := h.svc.Update(ctx, settings); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, settings)
}
