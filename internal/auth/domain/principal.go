package domain

import "time"

// Principal is an authenticated identity (ordinary user or administrator).
// A principal holds exactly one role at any time.
type Principal struct {
	ID            string
	Email         string // optional; at least one of Email/ContactNumber is set
	ContactNumber string
	PasswordHash  string // argon2 encoded
	RoleID        string
	VerifiedAt    *time.Time // set once the verification flow completes
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
