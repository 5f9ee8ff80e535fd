package sqlite

import (
	"context"
	"time"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/internal/auth/store"
	"github.com/oakmontlabs/gatehouse/pkg/auditx"
)

type tokensRepo struct {
	q querier
}

func (r *tokensRepo) Create(ctx context.Context, t domain.Token) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO tokens (id, principal_id, kind, fingerprint, issued_at, expires_at, revoked, created_at, updated_at, created_by_ip, updated_by_ip)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`,
		t.ID, t.PrincipalID, string(t.Kind), t.Fingerprint, t.IssuedAt.UTC(), t.ExpiresAt.UTC(),
		now, now, auditx.ClientIP(ctx), auditx.ClientIP(ctx))
	return err
}

func (r *tokensRepo) GetByFingerprint(ctx context.Context, fingerprint string) (domain.Token, error) {
	var (
		t    domain.Token
		kind string
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT id, principal_id, kind, fingerprint, issued_at, expires_at, revoked, created_at, updated_at
		 FROM tokens WHERE fingerprint = ?`, fingerprint).
		Scan(&t.ID, &t.PrincipalID, &kind, &t.Fingerprint, &t.IssuedAt, &t.ExpiresAt,
			&t.Revoked, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Token{}, mapNotFound(err)
	}
	t.Kind = domain.TokenKind(kind)
	return t, nil
}

func (r *tokensRepo) Revoke(ctx context.Context, fingerprint string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE tokens SET revoked = 1, updated_at = ?, updated_by_ip = ? WHERE fingerprint = ?`,
		time.Now().UTC(), auditx.ClientIP(ctx), fingerprint)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *tokensRepo) RevokeAllForPrincipal(ctx context.Context, principalID string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE tokens SET revoked = 1, updated_at = ?, updated_by_ip = ? WHERE principal_id = ? AND revoked = 0`,
		time.Now().UTC(), auditx.ClientIP(ctx), principalID)
	return err
}

func (r *tokensRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM tokens WHERE expires_at < ?`, time.Now().UTC())
	return err
}
