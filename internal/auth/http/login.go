package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oakmontlabs/gatehouse/internal/auth/service"
	"github.com/oakmontlabs/gatehouse/pkg/httpx"
	"github.com/oakmontlabs/gatehouse/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login. The device gate has already
// normalized the device headers by the time this runs.
type LoginHandler struct {
	AccountService *service.AccountService
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Identifier == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "identifier and password are required")
		return
	}

	session, _ := DeviceSessionFromContext(ctx)

	pair, err := h.AccountService.Login(ctx, req.Identifier, req.Password, session)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			rejectAuth(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		slogx.FromContext(ctx).Error("login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}
