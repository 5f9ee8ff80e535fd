package http

import (
	"errors"
	"net/http"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/internal/auth/service"
	"github.com/oakmontlabs/gatehouse/pkg/httpx"
	"github.com/oakmontlabs/gatehouse/pkg/slogx"
)

// RequireGrants enforces that the authenticated principal's role holds every
// permission each requirement names. It must run after Authenticate.
func RequireGrants(perms *service.PermissionService, requirements ...domain.Requirement) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			claims, ok := ClaimsFromContext(ctx)
			if !ok {
				rejectAuth(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}

			if err := perms.HasPermission(ctx, requirements, claims.RoleID); err != nil {
				if errors.Is(err, service.ErrPermissionDenied) {
					rejectAuth(w, r, http.StatusForbidden, "forbidden")
					return
				}
				slogx.FromContext(ctx).Error("permission resolution failed", "error", err)
				httpx.WriteError(w, http.StatusInternalServerError, "internal error")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
