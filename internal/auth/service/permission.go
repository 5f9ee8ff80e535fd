package service

import (
	"context"
	"errors"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/internal/auth/store"
	"github.com/oakmontlabs/gatehouse/pkg/idx"
)

var (
	ErrPermissionDenied = errors.New("permission_denied")
	ErrUnknownReference = errors.New("unknown_reference")
)

// PermissionService resolves authorization requirements against the grants
// table and administers the grants themselves.
type PermissionService struct {
	Store store.Store
}

// HasPermission checks every requirement against the grants held by roleID
// and returns ErrPermissionDenied on the first shortfall. The check is a
// conjunction: all requirements must pass.
//
// Requirement.Role is advisory only. Resolution is keyed on the principal's
// actual role ID, so a principal whose role holds the grants passes even when
// the requirement names a different role.
func (s *PermissionService) HasPermission(ctx context.Context, requirements []domain.Requirement, roleID string) error {
	for _, req := range requirements {
		if req.Unrestricted {
			continue
		}

		wanted := dedupe(req.Permissions)
		held, err := s.Store.Grants().CountDistinctPermissions(ctx, roleID, req.Section, wanted)
		if err != nil {
			return err
		}
		if held != len(wanted) {
			return ErrPermissionDenied
		}
	}
	return nil
}

// GrantInput names a grant by role, section, and permission.
type GrantInput struct {
	Role       string `json:"role"`
	Section    string `json:"section"`
	Permission string `json:"permission"`
}

// CreateGrant records a new role-section-permission triple. Unknown names
// yield ErrUnknownReference.
func (s *PermissionService) CreateGrant(ctx context.Context, in GrantInput) (domain.Grant, error) {
	role, err := s.Store.Roles().GetByName(ctx, in.Role)
	if err != nil {
		return domain.Grant{}, mapUnknownRef(err)
	}
	section, err := s.Store.Sections().GetByName(ctx, in.Section)
	if err != nil {
		return domain.Grant{}, mapUnknownRef(err)
	}
	permission, err := s.Store.Permissions().GetByName(ctx, in.Permission)
	if err != nil {
		return domain.Grant{}, mapUnknownRef(err)
	}

	g := domain.Grant{
		ID:           idx.New().String(),
		RoleID:       role.ID,
		SectionID:    section.ID,
		PermissionID: permission.ID,
	}
	if err := s.Store.Grants().Create(ctx, g); err != nil {
		return domain.Grant{}, err
	}
	return g, nil
}

// ListGrants returns every recorded grant.
func (s *PermissionService) ListGrants(ctx context.Context) ([]domain.Grant, error) {
	return s.Store.Grants().List(ctx)
}

func mapUnknownRef(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrUnknownReference
	}
	return err
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
