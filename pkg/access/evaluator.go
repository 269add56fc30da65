package access

// HasPermission reports whether permission appears in any category of
// grants. Linear scan; grant maps are small (tens of entries).
func HasPermission(grants Grants, permission string) bool {
	for _, perms := range grants {
		for _, p := range perms {
			if p == permission {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission reports whether at least one of permissions is held.
func HasAnyPermission(grants Grants, permissions []string) bool {
	for _, p := range permissions {
		if HasPermission(grants, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every one of permissions is held.
// Vacuously true for an empty list.
func HasAllPermissions(grants Grants, permissions []string) bool {
	for _, p := range permissions {
		if !HasPermission(grants, p) {
			return false
		}
	}
	return true
}

// HasRole reports whether principal holds the named role. The match is
// case-sensitive and false for an absent principal.
func HasRole(principal *Principal, roleName string) bool {
	if principal == nil {
		return false
	}
	return principal.Role.Name == roleName
}

// roleLabels maps known role names to display labels.
var roleLabels = map[string]string{
	"admin":    "Administrator",
	"manager":  "Manager",
	"customer": "Customer",
}

// DisplayNameForRole returns the display label for a role name, falling
// back to the raw name for unknown roles.
func DisplayNameForRole(roleName string) string {
	if label, ok := roleLabels[roleName]; ok {
		return label
	}
	return roleName
}
