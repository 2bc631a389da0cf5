package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidInput = errors.New("invalid input")

// Normalize trims the destination's text fields, lowercases its profile and
// checks the optional hints. The returned copy is safe to score.
func (d Destination) Normalize() (Destination, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return d, fmt.Errorf("%w: destination name cannot be empty", ErrInvalidInput)
	}

	d.Group = strings.TrimSpace(d.Group)

	if d.Profile != "" {
		p, err := ParseProfile(string(d.Profile))
		if err != nil {
			return d, fmt.Errorf("destination %q: %w", d.Name, err)
		}
		d.Profile = p
	}

	if d.Weight != nil && (math.IsNaN(*d.Weight) || math.IsInf(*d.Weight, 0)) {
		return d, fmt.Errorf("%w: destination %q: weight must be finite", ErrInvalidInput, d.Name)
	}

	for _, clock := range []string{d.DepartureTimeTo, d.DepartureTimeFrom} {
		if clock == "" {
			continue
		}
		if _, _, err := ParseClock(clock); err != nil {
			return d, fmt.Errorf("%w: destination %q: %v", ErrInvalidInput, d.Name, err)
		}
	}

	if d.DayOfWeek != "" {
		if _, err := ParseWeekday(d.DayOfWeek); err != nil {
			return d, fmt.Errorf("%w: destination %q: %v", ErrInvalidInput, d.Name, err)
		}
	}

	if d.Coords != nil && !d.Coords.Valid() {
		return d, fmt.Errorf("%w: destination %q: coordinates %s out of range", ErrInvalidInput, d.Name, d.Coords)
	}

	return d, nil
}

// NormalizeDestinations normalizes every destination and rejects duplicate
// names.
func NormalizeDestinations(in []Destination) ([]Destination, error) {
	out := make([]Destination, 0, len(in))
	seen := make(map[string]bool, len(in))

	for i, d := range in {
		n, err := d.Normalize()
		if err != nil {
			return nil, fmt.Errorf("destination #%d: %w", i+1, err)
		}
		if seen[n.Name] {
			return nil, fmt.Errorf("%w: duplicate destination %q", ErrInvalidInput, n.Name)
		}
		seen[n.Name] = true
		out = append(out, n)
	}
	return out, nil
}

// NormalizeOrigins trims names and rejects empty or duplicate ones.
func NormalizeOrigins(in []Origin) ([]Origin, error) {
	out := make([]Origin, 0, len(in))
	seen := make(map[string]bool, len(in))

	for i, o := range in {
		o.Name = strings.TrimSpace(o.Name)
		if o.Name == "" {
			return nil, fmt.Errorf("%w: origin #%d: name cannot be empty", ErrInvalidInput, i+1)
		}
		if o.Coords != nil && !o.Coords.Valid() {
			return nil, fmt.Errorf("%w: origin %q: coordinates %s out of range", ErrInvalidInput, o.Name, o.Coords)
		}
		if seen[o.Name] {
			return nil, fmt.Errorf("%w: duplicate origin %q", ErrInvalidInput, o.Name)
		}
		seen[o.Name] = true
		out = append(out, o)
	}
	return out, nil
}
