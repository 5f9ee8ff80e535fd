// Package jwtx signs and verifies the service's bearer tokens.
//
// All kinds (access, refresh, reset, verify) are HS256 JWTs over a single
// shared secret. Cryptographic verification here is only phase one of token
// validity; the authority store decides whether an un-expired token is still
// usable.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the signed token payload shared by every token kind.
type Claims struct {
	jwt.RegisteredClaims

	// Kind discriminates access/refresh/reset/verify tokens so one kind can
	// never be presented where another is expected.
	Kind string `json:"knd"`

	// Optional principal contact details.
	Email         string `json:"email,omitempty"`
	ContactNumber string `json:"contact_number,omitempty"`

	// Role of the principal at issue time.
	RoleID   string `json:"role_id,omitempty"`
	RoleName string `json:"role,omitempty"`

	// Code is the one-time code bound to reset/verify tokens.
	Code string `json:"otc,omitempty"`
}

// NewClaims builds minimally-correct claims for a token of the given kind.
// The jti is the authority-store record ID so revocation lookups and the
// signed value stay correlated.
func NewClaims(jti, subject, kind string, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
	}
}

// ExpiresAtTime returns the embedded expiry, or the zero time when absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
