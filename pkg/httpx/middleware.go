// Package httpx provides shared HTTP plumbing: middleware chaining, JSON
// responses, client IP resolution, and per-IP rate limiting.
package httpx

import "net/http"

// Middleware wraps a handler with cross-cutting behaviour.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h so the first listed middleware runs first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
