package service

import (
	"context"
	"errors"
	"time"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/internal/auth/store"
	"github.com/oakmontlabs/gatehouse/pkg/cryptox"
	"github.com/oakmontlabs/gatehouse/pkg/idx"
	"github.com/oakmontlabs/gatehouse/pkg/jwtx"
)

var (
	ErrTokenNotFound = errors.New("token_not_found")
	ErrInvalidToken  = errors.New("invalid_token")
	ErrTokenExpired  = errors.New("token_expired")
	ErrUnauthorized  = errors.New("unauthorized")
)

// TokenTTLs holds the lifetime per token kind.
type TokenTTLs struct {
	Access  time.Duration
	Refresh time.Duration
	Reset   time.Duration
	Verify  time.Duration
}

// TokenService issues and validates the service's bearer tokens.
//
// Validation is two-phase: the codec proves the value was minted here and has
// not lapsed, then the authority store decides whether the credential is
// still usable. There is no cache between the two; a revocation acknowledged
// before a validation begins is observed by that validation.
type TokenService struct {
	Codec  *jwtx.Codec
	Tokens store.Tokens
	TTLs   TokenTTLs
}

func (s *TokenService) ttlFor(kind domain.TokenKind) time.Duration {
	switch kind {
	case domain.TokenKindAccess:
		return s.TTLs.Access
	case domain.TokenKindRefresh:
		return s.TTLs.Refresh
	case domain.TokenKindReset:
		return s.TTLs.Reset
	case domain.TokenKindVerify:
		return s.TTLs.Verify
	default:
		return s.TTLs.Access
	}
}

// IssuePair mints a fresh access+refresh pair for the principal and records
// both in the authority store.
func (s *TokenService) IssuePair(ctx context.Context, p domain.Principal, roleName string) (domain.TokenPair, error) {
	now := time.Now()

	access, accessExp, err := s.issue(ctx, p, domain.TokenKindAccess, roleName, "", now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, refreshExp, err := s.issue(ctx, p, domain.TokenKindRefresh, roleName, "", now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// IssueOneTime mints a reset or verify token carrying a one-time code claim.
// The raw token and the code travel separate channels; both are needed to
// complete the flow.
func (s *TokenService) IssueOneTime(ctx context.Context, p domain.Principal, kind domain.TokenKind, code string) (string, time.Time, error) {
	return s.issue(ctx, p, kind, "", code, time.Now())
}

func (s *TokenService) issue(
	ctx context.Context,
	p domain.Principal,
	kind domain.TokenKind,
	roleName, code string,
	now time.Time,
) (string, time.Time, error) {
	ttl := s.ttlFor(kind)
	id := idx.New().String()

	claims := jwtx.NewClaims(id, p.ID, string(kind), ttl, s.Codec.Issuer(), now)
	claims.Email = p.Email
	claims.ContactNumber = p.ContactNumber
	claims.RoleID = p.RoleID
	claims.RoleName = roleName
	claims.Code = code

	raw, err := s.Codec.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	rec := domain.Token{
		ID:          id,
		PrincipalID: p.ID,
		Kind:        kind,
		Fingerprint: cryptox.Fingerprint(raw),
		IssuedAt:    now.UTC(),
		ExpiresAt:   now.Add(ttl).UTC(),
	}
	if err := s.Tokens.Create(ctx, rec); err != nil {
		return "", time.Time{}, err
	}

	return raw, rec.ExpiresAt, nil
}

// Validate runs both validation phases for a raw token of the expected kind.
//
// Phase one failures report what the cryptography saw: ErrTokenExpired for a
// lapsed value, ErrInvalidToken for anything forged or mangled. Phase two
// failures are always ErrUnauthorized: an absent or revoked authority record
// makes the credential unusable no matter how much signed lifetime remains,
// as does presenting one kind where another is expected.
func (s *TokenService) Validate(ctx context.Context, raw string, kind domain.TokenKind) (jwtx.Claims, domain.Token, error) {
	claims, err := s.Codec.Verify(raw)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.Claims{}, domain.Token{}, ErrTokenExpired
		}
		return jwtx.Claims{}, domain.Token{}, ErrInvalidToken
	}

	if claims.Kind != string(kind) {
		return jwtx.Claims{}, domain.Token{}, ErrUnauthorized
	}

	rec, err := s.Tokens.GetByFingerprint(ctx, cryptox.Fingerprint(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return jwtx.Claims{}, domain.Token{}, ErrUnauthorized
		}
		return jwtx.Claims{}, domain.Token{}, err
	}
	if rec.Revoked {
		return jwtx.Claims{}, domain.Token{}, ErrUnauthorized
	}

	return claims, rec, nil
}

// Revoke invalidates a raw token. Revoking a token the store has never seen
// or has already dropped is not an error; the desired end state holds.
func (s *TokenService) Revoke(ctx context.Context, raw string) error {
	err := s.Tokens.Revoke(ctx, cryptox.Fingerprint(raw))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// RevokeAllForPrincipal invalidates every live credential the principal
// holds, across all kinds.
func (s *TokenService) RevokeAllForPrincipal(ctx context.Context, principalID string) error {
	return s.Tokens.RevokeAllForPrincipal(ctx, principalID)
}
