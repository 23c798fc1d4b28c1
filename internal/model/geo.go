// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "fmt"

// GeoInfo is a transient IP geolocation result. It is never persisted;
// a nil *GeoInfo means the lookup failed or was skipped, which is a valid
// state ("unknown"), not an error.
type GeoInfo struct {
	Country string  `json:"country"`
	City    string  `json:"city"`
	Region  string  `json:"region"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Location returns a "city, region, country" display string, skipping
// empty components.
func (g *GeoInfo) Location() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{g.City, g.Region, g.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Unknown"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}

// MapImageURL returns a static map image URL centered on the coordinates.
// The URL is only referenced in webhook payloads; no HTTP call is made here.
func (g *GeoInfo) MapImageURL() string {
	return fmt.Sprintf(
		"https://staticmap.openstreetmap.de/staticmap.php?center=%.4f,%.4f&zoom=10&size=400x200&markers=%.4f,%.4f,red-pushpin",
		g.Lat, g.Lon, g.Lat, g.Lon)
}
