package http

import (
	"errors"
	"net/http"

	"github.com/oakmontlabs/gatehouse/internal/auth/service"
	"github.com/oakmontlabs/gatehouse/pkg/httpx"
	"github.com/oakmontlabs/gatehouse/pkg/slogx"
)

// writeTokenError maps token validation sentinels onto their stable 401
// responses. Anything unexpected is a 500 and logged with the real error.
func writeTokenError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrTokenNotFound):
		rejectAuth(w, r, http.StatusUnauthorized, "token not found")
	case errors.Is(err, service.ErrTokenExpired):
		rejectAuth(w, r, http.StatusUnauthorized, "token expired")
	case errors.Is(err, service.ErrInvalidToken):
		rejectAuth(w, r, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, service.ErrUnauthorized):
		rejectAuth(w, r, http.StatusUnauthorized, "unauthorized")
	default:
		slogx.FromContext(r.Context()).Error("token operation failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
