package handlers

import (
	"context"

	"github.com/fasthttp/router"

	xhttp "github.com/duitapp/ledger/pkg/http"
)

type IdentityService interface {
	Merge(ctx context.Context, primaryUserID int64, chatID int64) error
}

type IdentityHandler struct {
	svc IdentityService
}

func RegisterIdentityRoutes(e *router.Group, h *IdentityHandler) {
	e.POST("/identity/merge", authenticated(h.Merge))
}

func NewIdentityHandler(svc IdentityService) *IdentityHandler {
	return &IdentityHandler{
		svc: svc,
	}
}

type mergeRequest struct {
	ChatID int64 `json:"chat_id"`
}

// Merge claims a chat identity for the authenticated account. A chat id
// held by another credentialed account comes back as a conflict.
func (h *IdentityHandler) Merge(ctx *xhttp.RequestCtx, userID int64) {
	var req mergeRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.ChatID == 0 {
		writeError(ctx, xhttp.StatusBadRequest, "chat_id is required")
		return
	}

	if err := h.svc.Merge(ctx, userID, req.ChatID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "merged"})
}
