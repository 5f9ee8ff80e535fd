package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/pkg/httpx"
)

// fieldRules is the per-field requiredness table for one device type.
type fieldRules struct {
	deviceID   bool
	deviceName bool
	appVersion bool
}

// rulesFor maps a device type to its requiredness table. Browsers cannot
// supply stable hardware identifiers, so everything is optional for web;
// native clients must identify themselves fully. Timezone is never required.
func rulesFor(dt domain.DeviceType) fieldRules {
	switch dt {
	case domain.DeviceTypeWeb:
		return fieldRules{}
	default:
		return fieldRules{deviceID: true, deviceName: true, appVersion: true}
	}
}

// DeviceGate validates and normalizes the device-identification headers
// before any authenticated work runs. On success a normalized DeviceSession
// is attached to the request context; on failure the request is rejected
// with 400 and one required-message per missing field, in header order.
//
// Device header failures are client mistakes, not anomalies, so they are not
// logged.
func DeviceGate() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dt, ok := domain.ParseDeviceType(r.Header.Get("device-type"))
			if !ok {
				writeDeviceErrors(w, []string{"device-type must be one of ios, android, web"})
				return
			}

			deviceID := strings.TrimSpace(r.Header.Get("device-id"))
			deviceName := strings.TrimSpace(r.Header.Get("device-name"))
			appVersion := strings.TrimSpace(r.Header.Get("app-version"))
			timezone := strings.TrimSpace(r.Header.Get("timezone"))

			rules := rulesFor(dt)
			var missing []string
			if rules.deviceID && deviceID == "" {
				missing = append(missing, "device-id is required")
			}
			if rules.deviceName && deviceName == "" {
				missing = append(missing, "device-name is required")
			}
			if rules.appVersion && appVersion == "" {
				missing = append(missing, "app-version is required")
			}
			if len(missing) > 0 {
				writeDeviceErrors(w, missing)
				return
			}

			if dt == domain.DeviceTypeWeb && deviceName == "" {
				deviceName = r.UserAgent()
			}

			session := domain.DeviceSession{
				DeviceType: dt,
				DeviceID:   deviceID,
				DeviceName: deviceName,
				IP:         httpx.ClientIP(r),
				AppVersion: appVersion,
				Timezone:   timezone,
			}

			ctx := context.WithValue(r.Context(), deviceSessionKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeDeviceErrors(w http.ResponseWriter, messages []string) {
	httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"errors": messages})
}
