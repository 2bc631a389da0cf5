package routing

import (
	"fmt"
	"strings"
	"time"

	"homerank/internal/domain"
	"homerank/internal/platform/obs"
	"homerank/internal/ports"
)

// Kind names a provider variant.
type Kind string

const (
	KindValhalla Kind = "valhalla"
	KindGoogle   Kind = "google"
	KindORS      Kind = "ors"
	KindOffline  Kind = "offline"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindValhalla, KindGoogle, KindORS, KindOffline:
		return k, nil
	default:
		return "", fmt.Errorf("unknown routing provider %q", s)
	}
}

// Settings carries everything any variant may need.
type Settings struct {
	Kind Kind

	ValhallaURL         string
	NominatimURL        string
	NominatimRatePerSec float64
	UserAgent           string

	GoogleAPIKey  string
	GoogleBaseURL string
	Location      *time.Location

	ORSAPIKey  string
	ORSBaseURL string
	ORSCountry string

	GazetteerPath string

	HTTPTimeout time.Duration
}

// New builds the provider variant selected by s.Kind. Errors here are
// configuration errors.
func New(s Settings, counters *obs.Counters) (ports.RoutingProvider, error) {
	switch s.Kind {
	case KindValhalla:
		client := newHTTPClient(s.HTTPTimeout, counters, map[string]string{"User-Agent": s.UserAgent})
		geocoder := NewNominatimGeocoder(s.NominatimURL, s.NominatimRatePerSec, client)
		p, err := NewValhallaProvider(s.ValhallaURL, geocoder, client)
		if err != nil {
			return nil, fmt.Errorf("new valhalla provider: %w", err)
		}
		return p, nil

	case KindGoogle:
		client := newHTTPClient(s.HTTPTimeout, counters, nil)
		p, err := NewGoogleProvider(s.GoogleAPIKey, s.GoogleBaseURL, s.Location, client)
		if err != nil {
			return nil, fmt.Errorf("new google provider: %w", err)
		}
		return p, nil

	case KindORS:
		client := newHTTPClient(s.HTTPTimeout, counters, map[string]string{"Authorization": s.ORSAPIKey})
		p, err := NewORSProvider(s.ORSAPIKey, s.ORSBaseURL, s.ORSCountry, client)
		if err != nil {
			return nil, fmt.Errorf("new ors provider: %w", err)
		}
		return p, nil

	case KindOffline:
		var gazetteer map[string]domain.Coordinates
		if s.GazetteerPath != "" {
			g, err := LoadGazetteer(s.GazetteerPath)
			if err != nil {
				return nil, fmt.Errorf("new offline provider: %w", err)
			}
			gazetteer = g
		}
		return NewOfflineEstimator(gazetteer), nil

	default:
		return nil, fmt.Errorf("new provider: unknown kind %q", s.Kind)
	}
}
