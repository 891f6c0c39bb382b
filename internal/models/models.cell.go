// FilePath: internal/models/models.cell.go
package models

import (
	"regexp"
	"strings"
	"time"
)

// CellKind discriminates the two well-formed cell id shapes.
type CellKind string

const (
	// CellKindGeohash is a base-32 geohash of length 5-12.
	CellKindGeohash CellKind = "geohash"
	// CellKindBuilding is "b:" followed by a registered building slug.
	CellKindBuilding CellKind = "building"
)

// buildingPrefix tags building cell ids.
const buildingPrefix = "b:"

var (
	geohashPattern  = regexp.MustCompile(`^[0-9b-hjkmnp-z]{5,12}$`)
	buildingPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

// CellID is a validated cell identifier tagged with its kind so heat and
// stats resolution can dispatch without re-matching strings.
type CellID struct {
	Kind CellKind
	// Value is the canonical id as stored: the lowercased geohash, or the
	// full "b:<slug>" string for buildings.
	Value string
}

// Slug returns the building slug without the "b:" prefix. Empty for
// geohash cells.
func (c CellID) Slug() string {
	if c.Kind != CellKindBuilding {
		return ""
	}
	return strings.TrimPrefix(c.Value, buildingPrefix)
}

func (c CellID) String() string {
	return c.Value
}

// ParseCellID validates and canonicalizes a raw cell id. It returns false
// when the id matches neither shape.
func ParseCellID(raw string) (CellID, bool) {
	trimmed := strings.TrimSpace(raw)
	if slug, ok := strings.CutPrefix(trimmed, buildingPrefix); ok {
		if !buildingPattern.MatchString(slug) {
			return CellID{}, false
		}
		return CellID{Kind: CellKindBuilding, Value: buildingPrefix + slug}, true
	}
	lowered := strings.ToLower(trimmed)
	if !geohashPattern.MatchString(lowered) {
		return CellID{}, false
	}
	return CellID{Kind: CellKindGeohash, Value: lowered}, true
}

// Cell is the per-cell decay accumulator. Score holds the exponentially
// decayed activity value as of LastTS; readers decay it further to their
// own "now" before use.
type Cell struct {
	CellID string    `json:"cell_id" db:"cell_id"`
	Score  float64   `json:"score" db:"score"`
	LastTS time.Time `json:"last_ts" db:"last_ts"`
}

// Hit is one append-only presence event. Hits feed the k-anonymity window
// counts and the 7-day typical-hour baseline; they are never mutated.
type Hit struct {
	ID       string    `json:"id" db:"id"`
	CellID   string    `json:"cell_id" db:"cell_id"`
	DeviceID string    `json:"device_id" db:"device_id"`
	TS       time.Time `json:"ts" db:"ts"`
}
