package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleAgent StaffRole = "AGENT"
	StaffRoleAdmin StaffRole = "ADMIN"
)

// Valid reports whether r is a known role.
func (r StaffRole) Valid() bool {
	return r == StaffRoleAgent || r == StaffRoleAdmin
}

// Token represents issued authentication token metadata.
type Token struct {
	SubjectID string
	Role      StaffRole
	ExpiresAt time.Time
	IssuedAt  time.Time
}
