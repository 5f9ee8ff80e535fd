// Package store defines the data access interfaces implemented by the
// concrete drivers under drivers/.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. It exposes sub-repositories to
// keep concerns tidy and testable.
type Store interface {
	Principals() Principals
	Roles() Roles
	Sections() Sections
	Permissions() Permissions
	Grants() Grants
	Tokens() Tokens
	DeviceSessions() DeviceSessions

	ApplyMigrations() error

	// WithTx executes fn within a transaction, rolling back when fn errors
	// and committing otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Principals interface {
	GetByID(ctx context.Context, id string) (domain.Principal, error)
	GetByEmail(ctx context.Context, email string) (domain.Principal, error)
	GetByContactNumber(ctx context.Context, number string) (domain.Principal, error)
	Create(ctx context.Context, p domain.Principal) error
	UpdatePasswordHash(ctx context.Context, principalID, newHash string) error
	MarkVerified(ctx context.Context, principalID string) error
	IsEmpty(ctx context.Context) (bool, error)
}

type Roles interface {
	GetByID(ctx context.Context, id string) (domain.Role, error)
	GetByName(ctx context.Context, name string) (domain.Role, error)
	Create(ctx context.Context, r domain.Role) error
	List(ctx context.Context) ([]domain.Role, error)
}

type Sections interface {
	GetByName(ctx context.Context, name string) (domain.Section, error)
	Create(ctx context.Context, s domain.Section) error
	List(ctx context.Context) ([]domain.Section, error)
}

type Permissions interface {
	GetByName(ctx context.Context, name string) (domain.Permission, error)
	Create(ctx context.Context, p domain.Permission) error
	List(ctx context.Context) ([]domain.Permission, error)
}

type Grants interface {
	Create(ctx context.Context, g domain.Grant) error
	List(ctx context.Context) ([]domain.Grant, error)

	// CountDistinctPermissions returns how many of the named permissions the
	// role actually holds within the section. Duplicate grants count once.
	CountDistinctPermissions(ctx context.Context, roleID, section string, permissions []string) (int, error)
}

// Tokens is the authority store for issued credentials. Implementations must
// provide read-after-write consistency: a Revoke acknowledged before a
// concurrent GetByFingerprint begins is observed by that call.
type Tokens interface {
	Create(ctx context.Context, t domain.Token) error
	GetByFingerprint(ctx context.Context, fingerprint string) (domain.Token, error)

	// Revoke flips the revoked flag. Revoking an unknown fingerprint returns
	// ErrNotFound; revoking twice is harmless.
	Revoke(ctx context.Context, fingerprint string) error

	RevokeAllForPrincipal(ctx context.Context, principalID string) error

	// DeleteExpired is storage hygiene only; soft-revocation is sufficient
	// for correctness.
	DeleteExpired(ctx context.Context) error
}

type DeviceSessions interface {
	Create(ctx context.Context, s domain.DeviceSession) error
	ListByPrincipal(ctx context.Context, principalID string) ([]domain.DeviceSession, error)
	List(ctx context.Context) ([]domain.DeviceSession, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) error
}
