package domain

import (
	"strings"
	"time"
)

// DeviceType is the client platform family declared in device headers.
type DeviceType string

const (
	DeviceTypeIOS     DeviceType = "ios"
	DeviceTypeAndroid DeviceType = "android"
	DeviceTypeWeb     DeviceType = "web"
)

// ParseDeviceType normalizes a device-type header value. The boolean is
// false for anything outside the fixed enumeration.
func ParseDeviceType(s string) (DeviceType, bool) {
	switch DeviceType(strings.ToLower(strings.TrimSpace(s))) {
	case DeviceTypeIOS:
		return DeviceTypeIOS, true
	case DeviceTypeAndroid:
		return DeviceTypeAndroid, true
	case DeviceTypeWeb:
		return DeviceTypeWeb, true
	default:
		return "", false
	}
}

// Activity classifications recorded on device sessions.
const (
	ActivityLogin         = "login"
	ActivityRefresh       = "refresh"
	ActivityLogout        = "logout"
	ActivityPasswordReset = "password-reset"
	ActivityVerify        = "verify"
)

// DeviceSession is per-authentication-event metadata captured for audit and
// activity tracking. Rows are immutable once written.
type DeviceSession struct {
	ID          string
	PrincipalID string
	DeviceType  DeviceType
	DeviceID    string
	DeviceName  string
	IP          string
	AppVersion  string
	Timezone    string
	Activity    string
	CreatedAt   time.Time
	CreatedByIP string
}
