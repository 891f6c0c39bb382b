// FilePath: internal/models/api.models.queries.go
package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HeatQuery carries the decoded /heat query string.
type HeatQuery struct {
	BBox   string `schema:"bbox,required"`
	Min    int    `schema:"min"`
	Window int    `schema:"window"`
	Debug  int    `schema:"debug"`
}

// StatsQuery carries the decoded /stats query string.
type StatsQuery struct {
	CellID string `schema:"cellId,required"`
}

// BBox is a west,south,east,north bounding box.
type BBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

// Contains reports whether the point lies inside the box, edges included.
func (b BBox) Contains(lat, lng float64) bool {
	return lng >= b.West && lng <= b.East && lat >= b.South && lat <= b.North
}

// ParseBBox parses a "west,south,east,north" string of finite floats.
func ParseBBox(raw string) (BBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return BBox{}, fmt.Errorf("bbox needs 4 comma-separated values, got %d", len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return BBox{}, fmt.Errorf("bbox component %d is not a finite number", i)
		}
		vals[i] = v
	}
	return BBox{West: vals[0], South: vals[1], East: vals[2], North: vals[3]}, nil
}

// HeatPoint is one resolved heat-map point. CellID is populated only for
// debug queries; the privacy default strips it.
type HeatPoint struct {
	CellID string  `json:"cellId,omitempty"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Score  float64 `json:"score"`
	Radius float64 `json:"radius"`
}

// IngestResult echoes the resolved cell and timestamp plus the updated
// aggregate state.
type IngestResult struct {
	OK       bool    `json:"ok"`
	CellID   string  `json:"cellId"`
	TS       int64   `json:"ts"`
	Score    float64 `json:"score"`
	Presence int64   `json:"presence"`
}

// CellStats is the /stats response body.
type CellStats struct {
	OK              bool        `json:"ok"`
	CellID          string      `json:"cellId"`
	BuildingName    string      `json:"buildingName,omitempty"`
	Score           float64     `json:"score"`
	LastTS          int64       `json:"lastTs"`
	LastHourHits    int64       `json:"lastHourHits"`
	TypicalHits     float64     `json:"typicalHits"`
	Delta           float64     `json:"delta"`
	CurrentPresence int64       `json:"currentPresence"`
	Vibes           []VibeTally `json:"vibes"`
	MyVibe          string      `json:"myVibe,omitempty"`
}
