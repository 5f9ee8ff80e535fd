package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oakmontlabs/gatehouse/internal/auth/service"
	"github.com/oakmontlabs/gatehouse/internal/auth/store"
	"github.com/oakmontlabs/gatehouse/pkg/httpx"
	"github.com/oakmontlabs/gatehouse/pkg/slogx"
)

// VerifyHandler serves the contact verification flow for the authenticated
// principal.
type VerifyHandler struct {
	AccountService *service.AccountService
	Store          store.Store
}

type confirmRequest struct {
	VerifyToken string `json:"verify_token"`
	Code        string `json:"code"`
}

func (h *VerifyHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		rejectAuth(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	p, err := h.Store.Principals().GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rejectAuth(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		slogx.FromContext(ctx).Error("verification request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := h.AccountService.RequestVerification(ctx, p)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyVerified) {
			httpx.WriteError(w, http.StatusConflict, "already verified")
			return
		}
		slogx.FromContext(ctx).Error("verification request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, map[string]string{"verify_token": token})
}

func (h *VerifyHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VerifyToken == "" || req.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "verify_token and code are required")
		return
	}

	session, _ := DeviceSessionFromContext(ctx)

	if err := h.AccountService.ConfirmVerification(ctx, req.VerifyToken, req.Code, session); err != nil {
		if errors.Is(err, service.ErrInvalidCode) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid code")
			return
		}
		writeTokenError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}
