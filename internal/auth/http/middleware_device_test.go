package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/pkg/cryptox"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "http-test-*")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func runDeviceGate(t *testing.T, headers map[string]string) (*httptest.ResponseRecorder, domain.DeviceSession, bool) {
	t.Helper()

	var (
		session domain.DeviceSession
		reached bool
	)
	handler := DeviceGate()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, reached = DeviceSessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, session, reached
}

func deviceErrors(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()

	var body struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Errors
}

func TestDeviceGateRequiresDeviceType(t *testing.T) {
	rec, _, reached := runDeviceGate(t, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, reached)

	rec, _, reached = runDeviceGate(t, map[string]string{"device-type": "toaster"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, reached)
}

func TestDeviceGateWebMinimal(t *testing.T) {
	rec, session, reached := runDeviceGate(t, map[string]string{
		"device-type": "web",
		"User-Agent":  "Mozilla/5.0",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, reached)
	require.Equal(t, domain.DeviceTypeWeb, session.DeviceType)

	// device-name falls back to the user agent for browsers.
	require.Equal(t, "Mozilla/5.0", session.DeviceName)
	require.Empty(t, session.DeviceID)
}

func TestDeviceGateNativeRequiresAllFields(t *testing.T) {
	rec, _, reached := runDeviceGate(t, map[string]string{"device-type": "android"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, reached)

	// One failure per missing field, in deterministic order.
	require.Equal(t, []string{
		"device-id is required",
		"device-name is required",
		"app-version is required",
	}, deviceErrors(t, rec))
}

func TestDeviceGateNativeSingleMissingField(t *testing.T) {
	rec, _, _ := runDeviceGate(t, map[string]string{
		"device-type": "ios",
		"device-id":   "dev-1",
		"app-version": "1.4.2",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, []string{"device-name is required"}, deviceErrors(t, rec))
}

func TestDeviceGateNativeComplete(t *testing.T) {
	rec, session, reached := runDeviceGate(t, map[string]string{
		"device-type": "iOS", // case-insensitive
		"device-id":   "dev-1",
		"device-name": "iPhone",
		"app-version": "1.4.2",
		"timezone":    "Australia/Sydney",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, reached)
	require.Equal(t, domain.DeviceTypeIOS, session.DeviceType)
	require.Equal(t, "dev-1", session.DeviceID)
	require.Equal(t, "Australia/Sydney", session.Timezone)
}

func TestDeviceGateTimezoneAlwaysOptional(t *testing.T) {
	rec, session, _ := runDeviceGate(t, map[string]string{
		"device-type": "android",
		"device-id":   "dev-2",
		"device-name": "Pixel",
		"app-version": "2.0.0",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, session.Timezone)
}
