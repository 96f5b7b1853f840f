package auth

import "strings"

// UserRole is the access level stored with an account and carried in
// session tokens.
type UserRole string

const (
	RoleEditor UserRole = "editor"
	RoleAdmin  UserRole = "admin"
)

func (r UserRole) String() string {
	return string(r)
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleEditor, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAtLeast checks if this role meets the minimum required level
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	roleHierarchy := map[UserRole]int{
		RoleEditor: 0,
		RoleAdmin:  1,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleEditor,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type. It accepts
// the bare role name in any case and the legacy "ROLE_" prefixed form
// some upstream systems emit.
func ParseRole(roleStr string) (UserRole, bool) {
	normalized := strings.ToLower(strings.TrimSpace(roleStr))
	normalized = strings.TrimPrefix(normalized, "role_")
	role := UserRole(normalized)
	return role, role.IsValid()
}
