package models

import "github.com/opsnet/unet/pkg/value"

// Location is a point in the fleet's physical/logical hierarchy (site,
// rack, room, ...). Parents are referenced by id, never owned: no cycles
// may exist, and traversal goes through the datastore.
type Location struct {
	ID           string
	Name         string
	LocationType string
	ParentID     *string
	Path         string
	CustomData   value.Value
}

// Validate checks the structural invariants of a single Location in
// isolation; cycle detection requires the full location set and is
// performed by the datastore back-ends when a location is created or
// updated.
func (l Location) Validate() error {
	verr := &ValidationError{Entity: "Location"}
	verr.add(l.Name != "", "name must be non-empty")
	verr.add(l.LocationType != "", "location_type must be non-empty")
	if l.ParentID == nil {
		verr.add(l.Path == l.Name, "a root location's path must equal its name")
	}
	return verr.orNil()
}

// PathFor computes a Location's path given its parent's resolved path.
// Root locations (nil ParentID) have path == name.
func PathFor(name string, parentPath *string) string {
	if parentPath == nil {
		return name
	}
	return *parentPath + "/" + name
}
