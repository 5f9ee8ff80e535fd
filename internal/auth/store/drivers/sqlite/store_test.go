package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/internal/auth/store"
	"github.com/oakmontlabs/gatehouse/pkg/auditx"
	"github.com/oakmontlabs/gatehouse/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedPrincipal(t *testing.T, s *Store) domain.Principal {
	t.Helper()

	role, err := s.Roles().GetByName(context.Background(), "user")
	require.NoError(t, err)

	p := domain.Principal{
		ID:           idx.New().String(),
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$stub",
		RoleID:       role.ID,
	}
	require.NoError(t, s.Principals().Create(context.Background(), p))
	return p
}

func TestMigrationsSeedLookupTables(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	roles, err := s.Roles().List(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)

	sections, err := s.Sections().List(ctx)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	perms, err := s.Permissions().List(ctx)
	require.NoError(t, err)
	require.Len(t, perms, 4)
}

func TestPrincipalLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := auditx.WithClientIP(context.Background(), "203.0.113.7")

	empty, err := s.Principals().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	p := seedPrincipal(t, s)

	got, err := s.Principals().GetByEmail(ctx, p.Email)
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)
	require.Nil(t, got.VerifiedAt)

	require.NoError(t, s.Principals().MarkVerified(ctx, p.ID))
	got, err = s.Principals().GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.VerifiedAt)

	require.NoError(t, s.Principals().UpdatePasswordHash(ctx, p.ID, "$argon2id$new"))
	got, err = s.Principals().GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "$argon2id$new", got.PasswordHash)

	_, err = s.Principals().GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestTokenRevocation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPrincipal(t, s)

	now := time.Now().UTC()
	tok := domain.Token{
		ID:          idx.New().String(),
		PrincipalID: p.ID,
		Kind:        domain.TokenKindAccess,
		Fingerprint: "fp-1",
		IssuedAt:    now,
		ExpiresAt:   now.Add(time.Hour),
	}
	require.NoError(t, s.Tokens().Create(ctx, tok))

	got, err := s.Tokens().GetByFingerprint(ctx, "fp-1")
	require.NoError(t, err)
	require.False(t, got.Revoked)
	require.Equal(t, domain.TokenKindAccess, got.Kind)

	require.NoError(t, s.Tokens().Revoke(ctx, "fp-1"))

	got, err = s.Tokens().GetByFingerprint(ctx, "fp-1")
	require.NoError(t, err)
	require.True(t, got.Revoked)

	// Revoking twice is harmless; a row is still matched.
	require.NoError(t, s.Tokens().Revoke(ctx, "fp-1"))

	require.ErrorIs(t, s.Tokens().Revoke(ctx, "fp-unknown"), store.ErrNotFound)
}

func TestTokenRevokeAllForPrincipal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPrincipal(t, s)

	now := time.Now().UTC()
	for _, fp := range []string{"fp-a", "fp-b"} {
		require.NoError(t, s.Tokens().Create(ctx, domain.Token{
			ID:          idx.New().String(),
			PrincipalID: p.ID,
			Kind:        domain.TokenKindRefresh,
			Fingerprint: fp,
			IssuedAt:    now,
			ExpiresAt:   now.Add(time.Hour),
		}))
	}

	require.NoError(t, s.Tokens().RevokeAllForPrincipal(ctx, p.ID))

	for _, fp := range []string{"fp-a", "fp-b"} {
		got, err := s.Tokens().GetByFingerprint(ctx, fp)
		require.NoError(t, err)
		require.True(t, got.Revoked)
	}
}

func TestTokenDeleteExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPrincipal(t, s)

	now := time.Now().UTC()
	require.NoError(t, s.Tokens().Create(ctx, domain.Token{
		ID:          idx.New().String(),
		PrincipalID: p.ID,
		Kind:        domain.TokenKindAccess,
		Fingerprint: "fp-stale",
		IssuedAt:    now.Add(-2 * time.Hour),
		ExpiresAt:   now.Add(-time.Hour),
	}))
	require.NoError(t, s.Tokens().Create(ctx, domain.Token{
		ID:          idx.New().String(),
		PrincipalID: p.ID,
		Kind:        domain.TokenKindAccess,
		Fingerprint: "fp-live",
		IssuedAt:    now,
		ExpiresAt:   now.Add(time.Hour),
	}))

	require.NoError(t, s.Tokens().DeleteExpired(ctx))

	_, err := s.Tokens().GetByFingerprint(ctx, "fp-stale")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Tokens().GetByFingerprint(ctx, "fp-live")
	require.NoError(t, err)
}

func TestGrantsCountDistinctPermissions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin, err := s.Roles().GetByName(ctx, "admin")
	require.NoError(t, err)
	dashboard, err := s.Sections().GetByName(ctx, "dashboard")
	require.NoError(t, err)
	view, err := s.Permissions().GetByName(ctx, "view")
	require.NoError(t, err)
	create, err := s.Permissions().GetByName(ctx, "create")
	require.NoError(t, err)

	for _, permID := range []string{view.ID, create.ID, view.ID} { // duplicate grant on view
		require.NoError(t, s.Grants().Create(ctx, domain.Grant{
			ID:           idx.New().String(),
			RoleID:       admin.ID,
			SectionID:    dashboard.ID,
			PermissionID: permID,
		}))
	}

	count, err := s.Grants().CountDistinctPermissions(ctx, admin.ID, "dashboard", []string{"view", "create"})
	require.NoError(t, err)
	require.Equal(t, 2, count)

	count, err = s.Grants().CountDistinctPermissions(ctx, admin.ID, "dashboard", []string{"view", "delete"})
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, err = s.Grants().CountDistinctPermissions(ctx, admin.ID, "accounts", []string{"view"})
	require.NoError(t, err)
	require.Equal(t, 0, count)

	count, err = s.Grants().CountDistinctPermissions(ctx, admin.ID, "dashboard", nil)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestDeviceSessionsAuditStamping(t *testing.T) {
	s := newTestStore(t)
	ctx := auditx.WithClientIP(context.Background(), "198.51.100.9")
	p := seedPrincipal(t, s)

	require.NoError(t, s.DeviceSessions().Create(ctx, domain.DeviceSession{
		ID:          idx.New().String(),
		PrincipalID: p.ID,
		DeviceType:  domain.DeviceTypeIOS,
		DeviceID:    "dev-1",
		DeviceName:  "iPhone",
		IP:          "198.51.100.9",
		AppVersion:  "1.4.2",
		Activity:    domain.ActivityLogin,
	}))

	sessions, err := s.DeviceSessions().ListByPrincipal(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "198.51.100.9", sessions[0].CreatedByIP)
	require.Equal(t, domain.DeviceTypeIOS, sessions[0].DeviceType)
	require.Equal(t, domain.ActivityLogin, sessions[0].Activity)

	require.NoError(t, s.DeviceSessions().DeleteOlderThan(ctx, time.Now().UTC().Add(time.Minute)))
	sessions, err = s.DeviceSessions().List(ctx)
	require.NoError(t, err)
	require.Empty(t, sessions)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPrincipal(t, s)

	wantErr := store.ErrAlreadyExists
	err := s.WithTx(ctx, func(tx store.Tx) error {
		now := time.Now().UTC()
		if err := tx.Tokens().Create(ctx, domain.Token{
			ID:          idx.New().String(),
			PrincipalID: p.ID,
			Kind:        domain.TokenKindAccess,
			Fingerprint: "fp-tx",
			IssuedAt:    now,
			ExpiresAt:   now.Add(time.Hour),
		}); err != nil {
			return err
		}
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	_, err = s.Tokens().GetByFingerprint(ctx, "fp-tx")
	require.ErrorIs(t, err, store.ErrNotFound)
}
