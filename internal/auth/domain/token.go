package domain

import "time"

// TokenKind determines a token's TTL and the operation it gates.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
	TokenKindReset   TokenKind = "reset"
	TokenKindVerify  TokenKind = "verify"
)

// Token models the stored authority record for one issued credential. The
// raw signed value is never stored; records are keyed by its SHA-256
// fingerprint. A record that is absent or revoked makes the credential
// unusable regardless of its remaining cryptographic lifetime.
type Token struct {
	ID          string
	PrincipalID string
	Kind        TokenKind
	Fingerprint string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Revoked     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"` // always "Bearer"
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}
