package domain

import "time"

// Role enumerates account roles. Tickets are submitted by USER accounts,
// handled by the two support tiers, and administered by ADMIN accounts.
type Role string

const (
	RoleUser       Role = "user"
	RoleFirstline  Role = "firstline"
	RoleSecondline Role = "secondline"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleFirstline, RoleSecondline, RoleAdmin:
		return true
	}
	return false
}

// IsSupport reports whether r is one of the support tiers.
func (r Role) IsSupport() bool {
	return r == RoleFirstline || r == RoleSecondline
}

// SupportTier returns the support level corresponding to a support role.
func (r Role) SupportTier() (SupportLevel, bool) {
	switch r {
	case RoleFirstline:
		return SupportLevelFirstline, true
	case RoleSecondline:
		return SupportLevelSecondline, true
	}
	return "", false
}

// User is the single identity model: submitters, support staff and admins
// differ only by role.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
