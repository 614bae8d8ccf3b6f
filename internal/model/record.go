// Package model defines the county observations plotted on the map.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// Position is a WGS-84 longitude/latitude pair.
type Position struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Finite reports whether both coordinates are finite.
func (p Position) Finite() bool {
	return !math.IsNaN(p.Lon) && !math.IsInf(p.Lon, 0) &&
		!math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0)
}

// Record is one county observation. Its bucket is derived from Value and never stored.
type Record struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	County   string   `json:"county"`
	State    string   `json:"state"`
	Value    float64  `json:"value"` // W/tCO2
	Category Category `json:"category"`
}

// ValidValue reports whether v is a usable metric: finite and non-negative.
func ValidValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Valid reports whether r can be classified and plotted.
func (r Record) Valid() bool {
	return ValidValue(r.Value) && r.Position.Finite() && r.Category.Valid()
}

// RecordID produces a deterministic ID from a record's identifying fields, so
// reloading the same workbook yields the same IDs.
func RecordID(state, county string, pos Position) string {
	input := fmt.Sprintf("%s|%s|%.5f|%.5f",
		strings.ToUpper(strings.TrimSpace(state)),
		strings.ToUpper(strings.TrimSpace(county)),
		pos.Lon, pos.Lat)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:8])
}
