// Package http exposes the authentication service over HTTP. Handlers are
// thin: they parse, call a service, and map sentinel errors onto stable
// status codes and minimal bodies.
package http

import (
	"context"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/pkg/jwtx"
)

type claimsKey struct{}
type tokenKey struct{}
type rawTokenKey struct{}
type deviceSessionKey struct{}

// ClaimsFromContext returns the verified claims attached by Authenticate.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(jwtx.Claims)
	return c, ok
}

// TokenFromContext returns the authority record attached by Authenticate.
func TokenFromContext(ctx context.Context) (domain.Token, bool) {
	t, ok := ctx.Value(tokenKey{}).(domain.Token)
	return t, ok
}

// RawTokenFromContext returns the raw bearer value attached by Authenticate.
func RawTokenFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(rawTokenKey{}).(string)
	return raw, ok
}

// DeviceSessionFromContext returns the normalized device session attached by
// DeviceGate.
func DeviceSessionFromContext(ctx context.Context) (domain.DeviceSession, bool) {
	s, ok := ctx.Value(deviceSessionKey{}).(domain.DeviceSession)
	return s, ok
}
