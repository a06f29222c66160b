package domain

import "time"

// Role enumerates the access roles known to the service.
type Role string

const (
	RoleDonor    Role = "donor"
	RolePatient  Role = "patient"
	RoleAdmin    Role = "admin"
	RoleHospital Role = "hospital"
)

// ParseRole validates a raw role string.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleDonor, RolePatient, RoleAdmin, RoleHospital:
		return Role(s), true
	}
	return "", false
}

// User represents a registered account (donor, patient, admin or hospital staff).
type User struct {
	ID            int
	Name          string
	Email         string
	PasswordHash  string
	PasswordSalt  string
	Age           int
	BloodGroup    BloodGroup
	Role          Role
	Address       string
	Phone         string
	WalletAddress string
	CreatedAt     time.Time
}

// Identity is the authenticated caller attached to a request context.
// Workflows consult it once at their entry point for role checks.
type Identity struct {
	UserID    int
	Role      Role
	WalletRef string
}

// Is reports whether the identity holds one of the given roles.
func (i Identity) Is(roles ...Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}
