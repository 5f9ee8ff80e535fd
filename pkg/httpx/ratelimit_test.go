package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimitByIPBlocksAfterBurst(t *testing.T) {
	t.Parallel()

	cfg := RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), RateLimitByIP(cfg))

	for i := range 3 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.RemoteAddr = "192.0.2.1:4000"
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitByIPKeysPerClient(t *testing.T) {
	t.Parallel()

	cfg := RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), RateLimitByIP(cfg))

	first := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	first.RemoteAddr = "192.0.2.10:1000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	// A different client is unaffected by the first client's bucket.
	second := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	second.RemoteAddr = "192.0.2.11:1000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIPResolution(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.5:1234"
	require.Equal(t, "10.0.0.5", ClientIP(r))

	r.Header.Set("X-Real-IP", "203.0.113.9")
	require.Equal(t, "203.0.113.9", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	require.Equal(t, "198.51.100.4", ClientIP(r))
}
