package constants

import "fmt"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Error message templates for role checks
const (
	ErrOnlyAdminsCanAccess = "Only admins can access %s."
	ErrAuthRequired        = "Authentication required to access %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

// ==========================
// Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleAdmin,
		RoleStaff,
	}

	AdminOnly = []string{
		RoleAdmin,
	}
)

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
