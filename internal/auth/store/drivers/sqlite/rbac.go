package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/pkg/auditx"
)

type rolesRepo struct {
	q querier
}

func (r *rolesRepo) GetByID(ctx context.Context, id string) (domain.Role, error) {
	var role domain.Role
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM roles WHERE id = ?`, id).
		Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) GetByName(ctx context.Context, name string) (domain.Role, error) {
	var role domain.Role
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM roles WHERE name = ?`, name).
		Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) Create(ctx context.Context, role domain.Role) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO roles (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		role.ID, role.Name, now, now)
	return err
}

func (r *rolesRepo) List(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

type sectionsRepo struct {
	q querier
}

func (r *sectionsRepo) GetByName(ctx context.Context, name string) (domain.Section, error) {
	var s domain.Section
	err := r.q.QueryRowContext(ctx, `SELECT id, name FROM sections WHERE name = ?`, name).
		Scan(&s.ID, &s.Name)
	if err != nil {
		return domain.Section{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sectionsRepo) Create(ctx context.Context, s domain.Section) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO sections (id, name) VALUES (?, ?)`, s.ID, s.Name)
	return err
}

func (r *sectionsRepo) List(ctx context.Context) ([]domain.Section, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name FROM sections ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []domain.Section
	for rows.Next() {
		var s domain.Section
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

type permissionsRepo struct {
	q querier
}

func (r *permissionsRepo) GetByName(ctx context.Context, name string) (domain.Permission, error) {
	var p domain.Permission
	err := r.q.QueryRowContext(ctx, `SELECT id, name FROM permissions WHERE name = ?`, name).
		Scan(&p.ID, &p.Name)
	if err != nil {
		return domain.Permission{}, mapNotFound(err)
	}
	return p, nil
}

func (r *permissionsRepo) Create(ctx context.Context, p domain.Permission) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO permissions (id, name) VALUES (?, ?)`, p.ID, p.Name)
	return err
}

func (r *permissionsRepo) List(ctx context.Context) ([]domain.Permission, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name FROM permissions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

type grantsRepo struct {
	q querier
}

func (r *grantsRepo) Create(ctx context.Context, g domain.Grant) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO grants (id, role_id, section_id, permission_id, created_at, created_by_ip)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.RoleID, g.SectionID, g.PermissionID, time.Now().UTC(), auditx.ClientIP(ctx))
	return err
}

func (r *grantsRepo) List(ctx context.Context) ([]domain.Grant, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, role_id, section_id, permission_id, created_at, created_by_ip FROM grants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []domain.Grant
	for rows.Next() {
		var g domain.Grant
		if err := rows.Scan(&g.ID, &g.RoleID, &g.SectionID, &g.PermissionID, &g.CreatedAt, &g.CreatedByIP); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (r *grantsRepo) CountDistinctPermissions(
	ctx context.Context,
	roleID, section string,
	permissions []string,
) (int, error) {
	if len(permissions) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(permissions))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(permissions)+2)
	args = append(args, roleID, section)
	for _, p := range permissions {
		args = append(args, p)
	}

	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT p.name)
		 FROM grants g
		 JOIN sections s ON s.id = g.section_id
		 JOIN permissions p ON p.id = g.permission_id
		 WHERE g.role_id = ? AND s.name = ? AND p.name IN (`+placeholders+`)`,
		args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
