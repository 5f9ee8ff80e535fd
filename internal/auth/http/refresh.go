package http

import (
	"encoding/json"
	"net/http"

	"github.com/oakmontlabs/gatehouse/internal/auth/service"
	"github.com/oakmontlabs/gatehouse/pkg/httpx"
)

// RefreshHandler serves POST /v1/auth/refresh. Refresh tokens rotate: the
// presented token is consumed and a fresh pair returned.
type RefreshHandler struct {
	AccountService *service.AccountService
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		rejectAuth(w, r, http.StatusUnauthorized, "token not found")
		return
	}

	session, _ := DeviceSessionFromContext(ctx)

	pair, err := h.AccountService.Refresh(ctx, req.RefreshToken, session)
	if err != nil {
		writeTokenError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}
