package service

import (
	"context"
	"log/slog"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/internal/auth/store"
	"github.com/oakmontlabs/gatehouse/pkg/cryptox"
	"github.com/oakmontlabs/gatehouse/pkg/idx"
	"github.com/oakmontlabs/gatehouse/pkg/slogx"
)

// BootstrapService seeds the first administrator on an empty database so a
// fresh deployment has a working login.
type BootstrapService struct {
	Store store.Store

	AdminEmail    string
	AdminPassword string
}

// EnsureAdmin creates the admin principal and its full grant set when no
// principals exist yet. On a populated database it does nothing.
func (s *BootstrapService) EnsureAdmin(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	empty, err := s.Store.Principals().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}
	if s.AdminEmail == "" || s.AdminPassword == "" {
		l.Warn("database is empty but no bootstrap admin is configured")
		return nil
	}

	hash, err := cryptox.HashPassword(s.AdminPassword)
	if err != nil {
		return err
	}

	adminID := idx.New().String()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Roles().GetByName(ctx, "admin")
		if err != nil {
			return err
		}

		if err := tx.Principals().Create(ctx, domain.Principal{
			ID:           adminID,
			Email:        s.AdminEmail,
			PasswordHash: hash,
			RoleID:       role.ID,
		}); err != nil {
			return err
		}

		// The admin role starts with every permission in every section.
		sections, err := tx.Sections().List(ctx)
		if err != nil {
			return err
		}
		permissions, err := tx.Permissions().List(ctx)
		if err != nil {
			return err
		}

		for _, section := range sections {
			for _, permission := range permissions {
				if err := tx.Grants().Create(ctx, domain.Grant{
					ID:           idx.New().String(),
					RoleID:       role.ID,
					SectionID:    section.ID,
					PermissionID: permission.ID,
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.Info("bootstrapped admin principal",
		slog.String("principal_id", adminID),
		slog.String("email", s.AdminEmail),
	)
	return nil
}
