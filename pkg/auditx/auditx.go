// Package auditx carries per-request audit attribution through the context.
//
// The originating client IP is attached once at the HTTP boundary and read by
// store drivers when they stamp created_by_ip / updated_by_ip /
// deleted_by_ip columns. There is deliberately no process-wide slot: two
// concurrent requests must never observe each other's attribution.
package auditx

import "context"

type ctxKey struct{}

// WithClientIP returns a context carrying the originating client IP for the
// in-flight request.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ip)
}

// ClientIP returns the originating client IP attached to ctx, or "" when the
// write happens outside a request (bootstrap, housekeeping).
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(ctxKey{}).(string)
	return ip
}
