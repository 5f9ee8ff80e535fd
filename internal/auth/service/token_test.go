package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/internal/auth/store"
	"github.com/oakmontlabs/gatehouse/internal/auth/store/drivers/sqlite"
	"github.com/oakmontlabs/gatehouse/pkg/cryptox"
	"github.com/oakmontlabs/gatehouse/pkg/idx"
	"github.com/oakmontlabs/gatehouse/pkg/jwtx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test-*")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestTokenService(t *testing.T, s store.Store) *TokenService {
	t.Helper()

	return &TokenService{
		Codec:  jwtx.NewCodec([]byte("test-secret"), "gatehouse-test"),
		Tokens: s.Tokens(),
		TTLs: TokenTTLs{
			Access:  time.Hour,
			Refresh: 24 * time.Hour,
			Reset:   15 * time.Minute,
			Verify:  15 * time.Minute,
		},
	}
}

func createPrincipal(t *testing.T, s store.Store, email, password string) domain.Principal {
	t.Helper()
	ctx := context.Background()

	role, err := s.Roles().GetByName(ctx, "user")
	require.NoError(t, err)

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	p := domain.Principal{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
	}
	require.NoError(t, s.Principals().Create(ctx, p))
	return p
}

func TestIssuePairAndValidate(t *testing.T) {
	s := newTestStore(t)
	svc := newTestTokenService(t, s)
	ctx := context.Background()
	p := createPrincipal(t, s, "alice@example.com", "hunter2!")

	pair, err := svc.IssuePair(ctx, p, "user")
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, rec, err := svc.Validate(ctx, pair.AccessToken, domain.TokenKindAccess)
	require.NoError(t, err)
	require.Equal(t, p.ID, claims.Subject)
	require.Equal(t, "user", claims.RoleName)
	require.Equal(t, p.ID, rec.PrincipalID)
	require.Equal(t, domain.TokenKindAccess, rec.Kind)

	_, _, err = svc.Validate(ctx, pair.RefreshToken, domain.TokenKindRefresh)
	require.NoError(t, err)
}

func TestValidateRejectsRevoked(t *testing.T) {
	s := newTestStore(t)
	svc := newTestTokenService(t, s)
	ctx := context.Background()
	p := createPrincipal(t, s, "alice@example.com", "hunter2!")

	pair, err := svc.IssuePair(ctx, p, "user")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, pair.AccessToken))

	// The token still has plenty of signed lifetime left, but the authority
	// record says no.
	_, _, err = svc.Validate(ctx, pair.AccessToken, domain.TokenKindAccess)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateRejectsExpired(t *testing.T) {
	s := newTestStore(t)
	svc := newTestTokenService(t, s)
	svc.TTLs.Access = -time.Minute
	ctx := context.Background()
	p := createPrincipal(t, s, "alice@example.com", "hunter2!")

	pair, err := svc.IssuePair(ctx, p, "user")
	require.NoError(t, err)

	_, _, err = svc.Validate(ctx, pair.AccessToken, domain.TokenKindAccess)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateRejectsKindMismatch(t *testing.T) {
	s := newTestStore(t)
	svc := newTestTokenService(t, s)
	ctx := context.Background()
	p := createPrincipal(t, s, "alice@example.com", "hunter2!")

	pair, err := svc.IssuePair(ctx, p, "user")
	require.NoError(t, err)

	_, _, err = svc.Validate(ctx, pair.AccessToken, domain.TokenKindRefresh)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateRejectsForgery(t *testing.T) {
	s := newTestStore(t)
	svc := newTestTokenService(t, s)
	ctx := context.Background()

	_, _, err := svc.Validate(ctx, "not-a-jwt", domain.TokenKindAccess)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Signed under a different secret.
	other := newTestTokenService(t, s)
	other.Codec = jwtx.NewCodec([]byte("wrong-secret"), "gatehouse-test")
	p := createPrincipal(t, s, "alice@example.com", "hunter2!")
	pair, err := other.IssuePair(ctx, p, "user")
	require.NoError(t, err)

	_, _, err = svc.Validate(ctx, pair.AccessToken, domain.TokenKindAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateUnknownRecord(t *testing.T) {
	s := newTestStore(t)
	svc := newTestTokenService(t, s)
	ctx := context.Background()

	// Cryptographically valid but never recorded in the authority store.
	claims := jwtx.NewClaims(idx.New().String(), "p1", string(domain.TokenKindAccess), time.Hour, "gatehouse-test", time.Now())
	raw, err := svc.Codec.Sign(claims)
	require.NoError(t, err)

	_, _, err = svc.Validate(ctx, raw, domain.TokenKindAccess)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRevokeIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	svc := newTestTokenService(t, s)
	ctx := context.Background()
	p := createPrincipal(t, s, "alice@example.com", "hunter2!")

	pair, err := svc.IssuePair(ctx, p, "user")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, pair.AccessToken))
	require.NoError(t, svc.Revoke(ctx, pair.AccessToken))

	// Unknown raw values are also fine; the desired end state holds.
	require.NoError(t, svc.Revoke(ctx, "never-issued"))
}

func TestRevocationObservedByConcurrentValidates(t *testing.T) {
	s := newTestStore(t)
	svc := newTestTokenService(t, s)
	ctx := context.Background()
	p := createPrincipal(t, s, "alice@example.com", "hunter2!")

	pair, err := svc.IssuePair(ctx, p, "user")
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, pair.AccessToken))

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.Validate(ctx, pair.AccessToken, domain.TokenKindAccess)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.ErrorIs(t, err, ErrUnauthorized)
	}
}
