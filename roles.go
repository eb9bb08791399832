package auth

import "slices"

// Roles shipped with the retail service. Tokens carry roles as plain
// strings and guards compare them by equality; there is no hierarchy, so
// ADMIN does not imply MANAGER_BRANCH.
const (
	RoleAdmin         = "ADMIN"
	RoleManagerBranch = "MANAGER_BRANCH"
	RoleSeller        = "SELLER"
)

// GetAllRoles returns the known roles
func GetAllRoles() []string {
	return []string{
		RoleAdmin,
		RoleManagerBranch,
		RoleSeller,
	}
}

// IsKnownRole reports whether role is one of GetAllRoles
func IsKnownRole(role string) bool {
	return slices.Contains(GetAllRoles(), role)
}

// rolesAsAny is the form validation.In expects.
func rolesAsAny() []any {
	roles := GetAllRoles()
	out := make([]any, len(roles))
	for i, r := range roles {
		out[i] = r
	}
	return out
}
