// FilePath: internal/models/models.building.go
package models

// BuildingRadiusMeters is the fixed heat radius for building cells.
const BuildingRadiusMeters = 25.0

// Building is a named campus building with its registered map point.
// Building cells resolve here instead of through the geohash codec.
type Building struct {
	Slug      string  `json:"slug" db:"slug"`
	Name      string  `json:"name" db:"name"`
	Latitude  float64 `json:"lat" db:"latitude"`
	Longitude float64 `json:"lng" db:"longitude"`
}

// DefaultBuildings seeds the registry on first run.
var DefaultBuildings = []Building{
	{Slug: "eng-quad", Name: "Engineering Quad", Latitude: 37.42805, Longitude: -122.1723},
	{Slug: "main-quad", Name: "Main Quad", Latitude: 37.42745, Longitude: -122.1701},
}
