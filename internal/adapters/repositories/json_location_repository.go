package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"homerank/internal/domain"
)

// JSONLocationRepository reads destinations and origins from two JSON files.
// The files are read on every call so edits are picked up without restart.
type JSONLocationRepository struct {
	DestinationsPath string
	OriginsPath      string
}

func NewJSONLocationRepository(destinationsPath, originsPath string) *JSONLocationRepository {
	return &JSONLocationRepository{DestinationsPath: destinationsPath, OriginsPath: originsPath}
}

func (r *JSONLocationRepository) ListDestinations(_ context.Context) ([]domain.Destination, error) {
	f, err := os.Open(r.DestinationsPath)
	if err != nil {
		return nil, fmt.Errorf("list destinations: open %q: %w", r.DestinationsPath, err)
	}
	defer f.Close()

	dests, err := DecodeDestinations(f)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %q: %w", r.DestinationsPath, err)
	}
	return dests, nil
}

func (r *JSONLocationRepository) ListOrigins(_ context.Context) ([]domain.Origin, error) {
	f, err := os.Open(r.OriginsPath)
	if err != nil {
		return nil, fmt.Errorf("list origins: open %q: %w", r.OriginsPath, err)
	}
	defer f.Close()

	origins, err := DecodeOrigins(f)
	if err != nil {
		return nil, fmt.Errorf("list origins: %q: %w", r.OriginsPath, err)
	}
	return origins, nil
}

// DecodeDestinations parses a JSON array of destination objects and
// normalizes them.
func DecodeDestinations(r io.Reader) ([]domain.Destination, error) {
	var raw []domain.Destination
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return domain.NormalizeDestinations(raw)
}

// DecodeOrigins parses a JSON array whose items are either plain names or
// origin objects.
func DecodeOrigins(r io.Reader) ([]domain.Origin, error) {
	var raw []originItem
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	origins := make([]domain.Origin, len(raw))
	for i, item := range raw {
		origins[i] = domain.Origin(item)
	}
	return domain.NormalizeOrigins(origins)
}

type originItem domain.Origin

func (o *originItem) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		*o = originItem{Name: name}
		return nil
	}

	var obj struct {
		Name   string              `json:"name"`
		Coords *domain.Coordinates `json:"coords"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj.Name == "" {
		return errors.New("origin object needs a name")
	}
	*o = originItem{Name: obj.Name, Coords: obj.Coords}
	return nil
}
