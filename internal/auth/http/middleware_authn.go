package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/internal/auth/service"
	"github.com/oakmontlabs/gatehouse/pkg/httpx"
	"github.com/oakmontlabs/gatehouse/pkg/slogx"
)

// Authenticate verifies the Authorization header carries a live token of the
// expected kind and attaches the claims, authority record, and raw value to
// the request context.
//
// A missing header, or one not using the Bearer scheme, is indistinguishable
// from a missing token. All authentication failures are 401; the message
// says which phase rejected the credential but nothing more.
func Authenticate(tokens *service.TokenService, kind domain.TokenKind) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := bearerToken(r)
			if !ok {
				rejectAuth(w, r, http.StatusUnauthorized, "token not found")
				return
			}

			claims, rec, err := tokens.Validate(ctx, raw, kind)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrTokenExpired):
					rejectAuth(w, r, http.StatusUnauthorized, "token expired")
				case errors.Is(err, service.ErrInvalidToken):
					rejectAuth(w, r, http.StatusUnauthorized, "invalid token")
				case errors.Is(err, service.ErrUnauthorized):
					rejectAuth(w, r, http.StatusUnauthorized, "unauthorized")
				default:
					slogx.FromContext(ctx).Error("token validation failed", "error", err)
					httpx.WriteError(w, http.StatusInternalServerError, "internal error")
				}
				return
			}

			ctx = context.WithValue(ctx, claimsKey{}, claims)
			ctx = context.WithValue(ctx, tokenKey{}, rec)
			ctx = context.WithValue(ctx, rawTokenKey{}, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// rejectAuth writes the failure and logs it. Authentication failures are
// logged because they are the interesting anomalies; the message is the same
// stable string the client sees.
func rejectAuth(w http.ResponseWriter, r *http.Request, status int, message string) {
	slogx.FromContext(r.Context()).Warn("request rejected",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"message", message,
	)
	httpx.WriteError(w, status, message)
}
