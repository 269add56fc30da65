package access

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GrantTable maps a role name to the grants held by principals in that
// role. It is immutable configuration: the evaluator consumes it, nothing
// in this module computes or mutates it.
type GrantTable map[string]Grants

// GrantsForRole returns the grants for roleName, or empty grants for an
// unknown role.
func (t GrantTable) GrantsForRole(roleName string) Grants {
	if g, ok := t[roleName]; ok {
		return g
	}
	return Grants{}
}

// LoadGrantTable reads a grant table from a YAML file shaped as
//
//	admin:
//	  users:
//	    - user.view
//	    - user.create
//	  rooms:
//	    - room.view
func LoadGrantTable(path string) (GrantTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grant table: %w", err)
	}

	var table GrantTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse grant table: %w", err)
	}
	return table, nil
}

// DefaultGrantTable returns the built-in role taxonomy used by the
// Lodgekeep backend. Deployments override it with LoadGrantTable.
func DefaultGrantTable() GrantTable {
	return GrantTable{
		"admin": Grants{
			"users":     {"user.view", "user.create", "user.update", "user.delete"},
			"rooms":     {"room.view", "room.create", "room.update", "room.delete"},
			"amenities": {"amenity.view", "amenity.create", "amenity.update", "amenity.delete"},
		},
		"manager": Grants{
			"users":     {"user.view"},
			"rooms":     {"room.view", "room.update"},
			"amenities": {"amenity.view", "amenity.update"},
		},
		"customer": Grants{
			"rooms":     {"room.view"},
			"amenities": {"amenity.view"},
		},
	}
}
