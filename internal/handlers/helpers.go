package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/duitapp/ledger/internal/repository"
	"github.com/duitapp/ledger/internal/services"
	xhttp "github.com/duitapp/ledger/pkg/http"
)

// userIDHeader carries the authenticated user id, set by the edge proxy
// after session validation. Handlers never trust ids from request bodies.
const userIDHeader = "X-User-ID"

// authenticated wraps a handler with the user-id requirement.
func authenticated(h func(ctx *xhttp.RequestCtx, userID int64)) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		raw := string(ctx.Request.Header.Peek(userIDHeader))
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			writeError(ctx, xhttp.StatusUnauthorized, "missing or invalid user identity")
			return
		}
		h(ctx, userID)
	}
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError translates the error taxonomy to a status code. Owner
// mismatches surface as plain 404s.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case isNotFound(err):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		writeError(ctx, xhttp.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, repository.ErrInsufficientFunds):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	default:
		writeError(ctx, xhttp.StatusInternalServerError, err.Error())
	}
}

func isNotFound(err error) bool {
	for _, target := range []error{
		services.ErrNotFound,
		repository.ErrUserNotFound,
		repository.ErrTransactionNotFound,
		repository.ErrBudgetNotFound,
		repository.ErrGoalNotFound,
		repository.ErrBillNotFound,
		repository.ErrInvestmentNotFound,
		repository.ErrDebtNotFound,
		repository.ErrCategoryNotFound,
		repository.ErrSettingsNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	raw, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(raw, 10, 64)
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func queryInt(ctx *xhttp.RequestCtx, key string) int {
	n, _ := strconv.Atoi(query(ctx, key))
	return n
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
