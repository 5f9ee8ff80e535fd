package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oakmontlabs/gatehouse/internal/auth/service"
	"github.com/oakmontlabs/gatehouse/pkg/httpx"
	"github.com/oakmontlabs/gatehouse/pkg/slogx"
)

// PasswordHandler serves the password reset flow.
//
// POST /v1/auth/password/forgot hands back a reset token while the one-time
// code travels out of band; POST /v1/auth/password/reset requires both. The
// forgot endpoint answers identically for known and unknown identifiers.
type PasswordHandler struct {
	AccountService *service.AccountService
}

type forgotRequest struct {
	Identifier string `json:"identifier"`
}

type resetRequest struct {
	ResetToken  string `json:"reset_token"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (h *PasswordHandler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req forgotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Identifier == "" {
		httpx.WriteError(w, http.StatusBadRequest, "identifier is required")
		return
	}

	token, err := h.AccountService.ForgotPassword(ctx, req.Identifier)
	if err != nil {
		slogx.FromContext(ctx).Error("password forgot failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, map[string]string{"reset_token": token})
}

func (h *PasswordHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ResetToken == "" || req.Code == "" || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "reset_token, code and new_password are required")
		return
	}

	session, _ := DeviceSessionFromContext(ctx)

	if err := h.AccountService.ResetPassword(ctx, req.ResetToken, req.Code, req.NewPassword, session); err != nil {
		if errors.Is(err, service.ErrInvalidCode) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid code")
			return
		}
		writeTokenError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "password reset"})
}
