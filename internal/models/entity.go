package models

import "errors"

// EntityKind is the closed set of things turnout is tracked for. Using a kind
// enum instead of free-form string keys keeps the two reserved aggregates
// distinct from any named region at compile time.
type EntityKind int

const (
	// EntityRegion is a named foreign region (a country hosting diaspora precincts).
	EntityRegion EntityKind = iota
	// EntityDomestic is the derived home-country aggregate: global total minus abroad.
	EntityDomestic
	// EntityGlobalTotal is the authority's all-counties total.
	EntityGlobalTotal
)

// TotalKey is the reserved identifier for the global-total entity. It is
// lowercase on purpose so it can never collide with a region name, which the
// source publishes in uppercase.
const TotalKey = "total"

// Entity is one unit statistics are computed per: a named region, the
// domestic-only aggregate, or the global total.
type Entity struct {
	Kind EntityKind `json:"kind"`
	Name string     `json:"name"`
}

// Region returns the entity for a named foreign region.
func Region(name string) Entity {
	return Entity{Kind: EntityRegion, Name: name}
}

// Domestic returns the derived home-country entity. name is the home country's
// published name (used only for display and cache keys).
func Domestic(name string) Entity {
	return Entity{Kind: EntityDomestic, Name: name}
}

// GlobalTotal returns the all-counties total entity.
func GlobalTotal() Entity {
	return Entity{Kind: EntityGlobalTotal, Name: TotalKey}
}

// Key returns the stable identifier used for snapshot maps and cache keys.
func (e Entity) Key() string {
	if e.Kind == EntityGlobalTotal {
		return TotalKey
	}
	return e.Name
}

// Validate checks that the entity is well formed.
func (e Entity) Validate() error {
	if e.Name == "" {
		return errors.New("entity name must not be empty")
	}
	if e.Kind == EntityRegion && e.Name == TotalKey {
		return errors.New("region name collides with the reserved total identifier")
	}
	return nil
}
