package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/pkg/auditx"
)

type principalsRepo struct {
	q querier
}

const principalColumns = `id, email, contact_number, password_hash, role_id, verified_at, created_at, updated_at`

func (r *principalsRepo) GetByID(ctx context.Context, id string) (domain.Principal, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE id = ?`, id)
	return scanPrincipal(row)
}

func (r *principalsRepo) GetByEmail(ctx context.Context, email string) (domain.Principal, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE email = ?`, email)
	return scanPrincipal(row)
}

func (r *principalsRepo) GetByContactNumber(ctx context.Context, number string) (domain.Principal, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE contact_number = ?`, number)
	return scanPrincipal(row)
}

func (r *principalsRepo) Create(ctx context.Context, p domain.Principal) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO principals (id, email, contact_number, password_hash, role_id, created_at, updated_at, created_by_ip, updated_by_ip)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, mapStringNull(p.Email), mapStringNull(p.ContactNumber), p.PasswordHash, p.RoleID,
		now, now, auditx.ClientIP(ctx), auditx.ClientIP(ctx))
	return err
}

func (r *principalsRepo) UpdatePasswordHash(ctx context.Context, principalID, newHash string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE principals SET password_hash = ?, updated_at = ?, updated_by_ip = ? WHERE id = ?`,
		newHash, time.Now().UTC(), auditx.ClientIP(ctx), principalID)
	return err
}

func (r *principalsRepo) MarkVerified(ctx context.Context, principalID string) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`UPDATE principals SET verified_at = ?, updated_at = ?, updated_by_ip = ? WHERE id = ?`,
		now, now, auditx.ClientIP(ctx), principalID)
	return err
}

func (r *principalsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM principals`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func scanPrincipal(row *sql.Row) (domain.Principal, error) {
	var (
		p        domain.Principal
		email    sql.NullString
		contact  sql.NullString
		verified sql.NullTime
	)
	err := row.Scan(&p.ID, &email, &contact, &p.PasswordHash, &p.RoleID, &verified, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	p.Email = mapNullString(email)
	p.ContactNumber = mapNullString(contact)
	p.VerifiedAt = mapNullTimePtr(verified)
	return p, nil
}
