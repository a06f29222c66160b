package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// ErrUnavailable is returned when the resolver is not initialized.
var ErrUnavailable = errors.New("geoip resolver unavailable")

// LocationResolver resolves approximate coordinates from IP addresses. Used
// as a fallback for nearby-hospital searches when the client supplies no
// coordinates of its own.
type LocationResolver interface {
	Location(ip string) (lat, lng float64, err error)
}

// Resolver provides city-level lookups backed by a MaxMind GeoIP2 database.
type Resolver struct {
	reader *geoip2.Reader
}

// NewResolver opens the GeoIP database at the given path. When the path is empty, nil is returned.
func NewResolver(path string) (LocationResolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// Location returns the approximate coordinates for the provided IP.
func (r *Resolver) Location(ip string) (float64, float64, error) {
	if r == nil || r.reader == nil {
		return 0, 0, ErrUnavailable
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return 0, 0, fmt.Errorf("geoip: invalid ip %q", ip)
	}
	record, err := r.reader.City(parsed)
	if err != nil {
		return 0, 0, fmt.Errorf("geoip: lookup city: %w", err)
	}
	if record == nil || (record.Location.Latitude == 0 && record.Location.Longitude == 0) {
		return 0, 0, ErrUnavailable
	}
	return record.Location.Latitude, record.Location.Longitude, nil
}

// Close closes the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
