package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/pkg/auditx"
)

type deviceSessionsRepo struct {
	q querier
}

const deviceSessionColumns = `id, principal_id, device_type, device_id, device_name, ip, app_version, timezone, activity, created_at, created_by_ip`

func (r *deviceSessionsRepo) Create(ctx context.Context, s domain.DeviceSession) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO device_sessions (id, principal_id, device_type, device_id, device_name, ip, app_version, timezone, activity, created_at, created_by_ip)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.PrincipalID, string(s.DeviceType), s.DeviceID, s.DeviceName, s.IP,
		s.AppVersion, s.Timezone, string(s.Activity), time.Now().UTC(), auditx.ClientIP(ctx))
	return err
}

func (r *deviceSessionsRepo) ListByPrincipal(ctx context.Context, principalID string) ([]domain.DeviceSession, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+deviceSessionColumns+` FROM device_sessions WHERE principal_id = ? ORDER BY created_at DESC`,
		principalID)
	if err != nil {
		return nil, err
	}
	return scanDeviceSessions(rows)
}

func (r *deviceSessionsRepo) List(ctx context.Context) ([]domain.DeviceSession, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+deviceSessionColumns+` FROM device_sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return scanDeviceSessions(rows)
}

func (r *deviceSessionsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM device_sessions WHERE created_at < ?`, cutoff.UTC())
	return err
}

func scanDeviceSessions(rows *sql.Rows) ([]domain.DeviceSession, error) {
	defer rows.Close()

	var sessions []domain.DeviceSession
	for rows.Next() {
		var (
			s          domain.DeviceSession
			deviceType string
		)
		if err := rows.Scan(&s.ID, &s.PrincipalID, &deviceType, &s.DeviceID, &s.DeviceName,
			&s.IP, &s.AppVersion, &s.Timezone, &s.Activity, &s.CreatedAt, &s.CreatedByIP); err != nil {
			return nil, err
		}
		s.DeviceType = domain.DeviceType(deviceType)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
