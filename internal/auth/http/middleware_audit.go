package http

import (
	"net/http"

	"github.com/oakmontlabs/gatehouse/pkg/auditx"
	"github.com/oakmontlabs/gatehouse/pkg/httpx"
)

// AuditIP stamps the originating client IP into the request context so
// storage writes during this request can attribute themselves. It runs in
// the global chain; outside a request the attribution is simply empty.
func AuditIP() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auditx.WithClientIP(r.Context(), httpx.ClientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
