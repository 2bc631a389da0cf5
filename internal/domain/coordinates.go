package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Geographic coordinates in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SentinelCoordinates marks a location whose geocode failed.
var SentinelCoordinates = Coordinates{}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Valid reports whether latitude and longitude are within range.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinates) IsSentinel() bool { return c == SentinelCoordinates }

// Key renders the coordinates with fixed precision so that equal points
// always produce the same text.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

func (c Coordinates) String() string { return c.Key() }

// UnmarshalJSON accepts {"lat": .., "lon": ..} as well as a [lat, lon] pair.
func (c *Coordinates) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	if len(b) > 0 && b[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(b, &pair); err != nil {
			return fmt.Errorf("coordinates: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("coordinates: want [lat, lon], got %d values", len(pair))
		}
		*c = Coordinates{Lat: pair[0], Lon: pair[1]}
		return nil
	}

	type plain Coordinates
	var obj plain
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("coordinates: %w", err)
	}
	*c = Coordinates(obj)
	return nil
}
