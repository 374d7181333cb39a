package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"

	"github.com/duitapp/ledger/internal/model"
	xhttp "github.com/duitapp/ledger/pkg/http"
)

type GoalService interface {
	Create(ctx context.Context, g *model.Goal) (*model.Goal, error)
	GetByID(ctx context.Context, userID, id int64) (*model.Goal, error)
	List(ctx context.Context, userID int64) ([]*model.Goal, error)
	AddProgress(ctx context.Context, userID, id int64, delta float64) (float64, error)
	Update(ctx context.Context, userID, id int64, u model.GoalUpdate) error
	Delete(ctx context.Context, userID, id int64) error
}

type GoalSettingsService interface {
	ClearPrimaryGoal(ctx context.Context, userID, goalID int64) error
}

type GoalTransactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type GoalHandler struct {
	svc      GoalService
	settings GoalSettingsService
	db       GoalTransactor
}

func RegisterGoalRoutes(e *router.Group, h *GoalHandler) {
	e.GET("/goals", authenticated(h.List))
	e.POST("/goals", authenticated(h.Create))
	e.PATCH("/goals/{id}", authenticated(h.Update))
	e.DELETE("/goals/{id}", authenticated(h.Delete))
	e.POST("/goals/{id}/deposit", authenticated(h.Deposit))
	e.POST("/goals/{id}/withdraw", authenticated(h.Withdraw))
}

func NewGoalHandler(svc GoalService, settings GoalSettingsService, db GoalTransactor) *GoalHandler {
	return &GoalHandler{
		svc:      svc,
		settings: settings,
		db:       db,
	}
}

type createGoalRequest struct {
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	Deadline      string  `json:"deadline"`
}

func (h *GoalHandler) Create(ctx *xhttp.RequestCtx, userID int64) {
	var req createGoalRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	var deadline *time.Time
	if req.Deadline != "" {
		t, err := parseTime(req.Deadline)
		if err != nil {
			writeError(ctx, xhttp.StatusBadRequest, "deadline must be RFC 3339 or YYYY-MM-DD")
			return
		}
		deadline = &t
	}

	p := model.GoalCreateRequest{
		UserID:        userID,
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      deadline,
	}
	if err := p.Validate(); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	goal, err := h.svc.Create(ctx, &model.Goal{
		UserID:        p.UserID,
		Name:          p.Name,
		TargetAmount:  p.TargetAmount,
		CurrentAmount: p.CurrentAmount,
		Deadline:      p.Deadline,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, goal)
}

func (h *GoalHandler) List(ctx *xhttp.RequestCtx, userID int64) {
	goals, err := h.svc.List(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, goals)
}

type updateGoalRequest struct {
	Name          *string  `json:"name"`
	TargetAmount  *float64 `json:"target_amount"`
	CurrentAmount *float64 `json:"current_amount"`
	Deadline      *string  `json:"deadline"`
}

func (h *GoalHandler) Update(ctx *xhttp.RequestCtx, userID int64) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}

	var req updateGoalRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	update := model.GoalUpdate{
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
	}
	if req.Deadline != nil {
		t, err := parseTime(*req.Deadline)
		if err != nil {
			writeError(ctx, xhttp.StatusBadRequest, "deadline must be RFC 3339 or YYYY-MM-DD")
			return
		}
		update.Deadline = &t
	}

	if err := h.svc.Update(ctx, userID, id, update); err != nil {
		writeServiceError(ctx, err)
		return
	}

	goal, err := h.svc.GetByID(ctx, userID, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, goal)
}

// Delete drops the goal and, in the same transaction, any primary-goal
// pointer referencing it.
func (h *GoalHandler) Delete(ctx *xhttp.RequestCtx, userID int64) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}

	err = h.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := h.svc.Delete(txCtx, userID, id); err != nil {
			return err
		}
		return h.settings.ClearPrimaryGoal(txCtx, userID, id)
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "deleted"})
}

type goalProgressRequest struct {
	Amount float64 `json:"amount"`
}

type goalProgressResponse struct {
	GoalID        int64   `json:"goal_id"`
	CurrentAmount float64 `json:"current_amount"`
}

func (h *GoalHandler) Deposit(ctx *xhttp.RequestCtx, userID int64) {
	h.applyProgress(ctx, userID, 1)
}

func (h *GoalHandler) Withdraw(ctx *xhttp.RequestCtx, userID int64) {
	h.applyProgress(ctx, userID, -1)
}

func (h *GoalHandler) applyProgress(ctx *xhttp.RequestCtx, userID int64, sign float64) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid id")
		return
	}

	var req goalProgressRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Amount <= 0 {
		writeError(ctx, xhttp.StatusBadRequest, "amount must be positive")
		return
	}

	balance, err := h.svc.AddProgress(ctx, userID, id, sign*req.Amount)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, goalProgressResponse{GoalID: id, CurrentAmount: balance})
}
