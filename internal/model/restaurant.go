package model

import (
    "strings"
    "time"
)

// Restaurant represents a venue whose tables can be booked.  Cuisines
// and amenities are persisted as comma-separated strings exactly like
// the seed data provides them; use CuisineList and AmenityList to get
// trimmed slices.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name.
//  Area      – neighbourhood label used for area searches.
//  Latitude  – degrees, WGS84.
//  Longitude – degrees, WGS84.
//  Cuisines  – comma-separated cuisine names.
//  Amenities – comma-separated amenity names.
//  Rating    – average rating shown to guests.
//  CreatedAt – creation timestamp.
type Restaurant struct {
    ID        uint64    // restaurants.id
    Name      string    // restaurants.name
    Area      string    // restaurants.area
    Latitude  float64   // restaurants.latitude
    Longitude float64   // restaurants.longitude
    Cuisines  string    // restaurants.cuisines
    Amenities string    // restaurants.amenities
    Rating    float64   // restaurants.rating
    CreatedAt time.Time // restaurants.created_at
}

// CuisineList splits Cuisines on commas and drops empty entries.
func (r Restaurant) CuisineList() []string { return SplitList(r.Cuisines) }

// AmenityList splits Amenities on commas and drops empty entries.
func (r Restaurant) AmenityList() []string { return SplitList(r.Amenities) }

// SplitList turns "a, b,,c" into ["a" "b" "c"].  It never returns nil.
func SplitList(s string) []string {
    out := []string{}
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}
