package enums

import "fmt"

// UserRole represents the platform-level role a user acts under.
// A user may be created without a role; the one-time selection step
// assigns it and only an admin override can change it afterwards.
type UserRole string

const (
	UserRoleCustomer   UserRole = "customer"
	UserRoleDesigner   UserRole = "designer"
	UserRoleSeamstress UserRole = "seamstress"
	UserRoleAdmin      UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRoleDesigner,
	UserRoleSeamstress,
	UserRoleAdmin,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
