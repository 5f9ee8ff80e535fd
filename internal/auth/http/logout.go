package http

import (
	"net/http"

	"github.com/oakmontlabs/gatehouse/internal/auth/service"
	"github.com/oakmontlabs/gatehouse/pkg/httpx"
	"github.com/oakmontlabs/gatehouse/pkg/slogx"
)

// LogoutHandler serves POST /v1/auth/logout. Every credential the principal
// holds is revoked, not just the presented one.
type LogoutHandler struct {
	AccountService *service.AccountService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		rejectAuth(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	session, _ := DeviceSessionFromContext(ctx)

	if err := h.AccountService.Logout(ctx, claims.Subject, session); err != nil {
		slogx.FromContext(ctx).Error("logout failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
