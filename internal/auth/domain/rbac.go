package domain

import "time"

// Role is a named grouping of principals (e.g. "user", "admin").
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Section is a named functional area permissions apply within
// (e.g. "dashboard").
type Section struct {
	ID   string
	Name string
}

// Permission is a named capability (create/view/update/delete).
type Permission struct {
	ID   string
	Name string
}

// Grant asserts that a role may exercise a permission within a section.
// Duplicates are tolerated; resolution counts distinct permissions.
type Grant struct {
	ID           string
	RoleID       string
	SectionID    string
	PermissionID string
	CreatedAt    time.Time
	CreatedByIP  string
}

// Requirement is one entry of an authorization check: the named role must
// hold every listed permission within the section. The Unrestricted flag is
// the explicit form of the "empty permission list means no restriction"
// convention; the wire shape is normalized into it by NewRequirement.
type Requirement struct {
	Role         string
	Section      string
	Permissions  []string
	Unrestricted bool
}

// NewRequirement builds a Requirement, normalizing an empty permission list
// into the Unrestricted variant.
func NewRequirement(role, section string, permissions ...string) Requirement {
	if len(permissions) == 0 {
		return UnrestrictedRequirement(role)
	}
	return Requirement{Role: role, Section: section, Permissions: permissions}
}

// UnrestrictedRequirement passes resolution unconditionally for superuser
// class roles.
func UnrestrictedRequirement(role string) Requirement {
	return Requirement{Role: role, Unrestricted: true}
}
