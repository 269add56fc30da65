package access

// Role is a named role with its human-readable label.
type Role struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Grants maps a category name to the permission strings held within it.
// Entries are unique within a category; ordering is irrelevant.
type Grants map[string][]string

// Principal is the authenticated user's identity plus authorization data.
type Principal struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	Permissions Grants `json:"permissions"`
}

// Valid reports whether p is a usable principal. A principal without a role
// is invalid and must never be produced by token decoding or the backend.
func (p *Principal) Valid() bool {
	return p != nil && p.Role.Name != ""
}
