package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
)

// Codec signs and verifies HS256 tokens with a shared secret.
type Codec struct {
	secret []byte
	issuer string
}

// NewCodec returns a Codec for the given shared secret. The issuer is
// stamped on signed claims and enforced on verification when non-empty.
func NewCodec(secret []byte, issuer string) *Codec {
	return &Codec{secret: secret, issuer: issuer}
}

// Issuer returns the configured issuer claim value.
func (c *Codec) Issuer() string { return c.issuer }

// Sign produces the compact signed form of the claims.
func (c *Codec) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify parses and cryptographically validates a raw token, returning its
// claims. Failures map onto the package sentinel errors so callers can
// distinguish a forged value from an elapsed one.
func (c *Codec) Verify(raw string) (Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	default:
		return ErrMalformed
	}
}
