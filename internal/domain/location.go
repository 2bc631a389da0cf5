package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Destination is a place visited regularly from a candidate origin.
//
// Weight is optional: nil means 1.0. Zero and negative weights are kept
// as given. Destinations sharing a Group are alternatives of which only
// the cheapest one counts.
type Destination struct {
	Name              string       `json:"name"`
	Weight            *float64     `json:"weight,omitempty"`
	Group             string       `json:"group,omitempty"`
	Profile           Profile      `json:"transport_mode,omitempty"`
	DepartureTimeTo   string       `json:"departure_time_to,omitempty"`
	DepartureTimeFrom string       `json:"departure_time_from,omitempty"`
	DayOfWeek         string       `json:"day_of_week,omitempty"`
	Coords            *Coordinates `json:"coords,omitempty"`
}

// EffectiveWeight returns the configured weight or 1.0.
func (d Destination) EffectiveWeight() float64 {
	if d.Weight == nil {
		return 1.0
	}
	return *d.Weight
}

// Grouped reports whether the destination competes within a group.
func (d Destination) Grouped() bool { return strings.TrimSpace(d.Group) != "" }

// Origin is a candidate location being evaluated.
type Origin struct {
	Name   string       `json:"name"`
	Coords *Coordinates `json:"coords,omitempty"`
}

// Weight returns a pointer to w, for building destinations in code.
func Weight(w float64) *float64 { return &w }

// ParseClock parses an "HH:MM" time of day.
func ParseClock(s string) (hour, minute int, err error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("parse clock %q: expected HH:MM", s)
	}

	hour, err = strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("parse clock %q: invalid hour", s)
	}

	minute, err = strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("parse clock %q: invalid minute", s)
	}

	return hour, minute, nil
}

// ParseWeekday accepts full or three-letter English day names, any case.
func ParseWeekday(s string) (time.Weekday, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if norm == name || (len(norm) == 3 && strings.HasPrefix(name, norm)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("parse weekday %q: unknown day", s)
}
