package guard

import (
	"github.com/lodgekeep/concierge/pkg/access"
	"github.com/lodgekeep/concierge/pkg/session"
)

// Session is the slice of the session controller that guards consult.
type Session interface {
	Snapshot() session.Snapshot
	CheckAllPermissions(permissions []string) bool
	HasRole(roleName string) bool
}

// Requirement is an access condition: the principal must hold at least
// one of Roles (any role passes when the list is empty) and every one of
// Permissions. A zero Requirement demands only an authenticated session.
type Requirement struct {
	Roles       []string
	Permissions []string
}

// Satisfied reports whether the current session meets the requirement.
// Never true outside the authenticated state.
func (r Requirement) Satisfied(s Session) bool {
	if s.Snapshot().Status != session.StatusAuthenticated {
		return false
	}
	if len(r.Roles) > 0 {
		held := false
		for _, role := range r.Roles {
			if s.HasRole(role) {
				held = true
				break
			}
		}
		if !held {
			return false
		}
	}
	return s.CheckAllPermissions(r.Permissions)
}

// Destination is one (role, path) entry in the redirect priority list.
type Destination struct {
	Role string
	Path string
}

// Destinations resolves where to send an authenticated principal who is
// denied access. The list is ordered: the first entry whose role the
// principal holds wins, and unknown roles land on the fallback. One
// resolver serves every guard, so identical principals always redirect to
// the same place.
type Destinations struct {
	ordered  []Destination
	fallback string
}

// NewDestinations builds a resolver with the given priority list.
func NewDestinations(fallback string, ordered ...Destination) *Destinations {
	return &Destinations{ordered: ordered, fallback: fallback}
}

// DefaultDestinations is the role landing-page table for the Lodgekeep
// admin surfaces.
func DefaultDestinations() *Destinations {
	return NewDestinations("/",
		Destination{Role: "admin", Path: "/admin"},
		Destination{Role: "manager", Path: "/manage"},
		Destination{Role: "customer", Path: "/"},
	)
}

// Resolve returns the landing path for the principal's role.
func (d *Destinations) Resolve(principal *access.Principal) string {
	if principal == nil {
		return d.fallback
	}
	for _, dest := range d.ordered {
		if principal.Role.Name == dest.Role {
			return dest.Path
		}
	}
	return d.fallback
}
