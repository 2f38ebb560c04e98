// Package geo resolves coarse client location from an IP address.
package geo

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/oschwald/geoip2-golang/v2"
)

// Location is the coarse location of a client.
type Location struct {
	Country string // ISO 3166-1 alpha-2
	City    string
}

// Locator looks up the location of an IP address.
// A nil Location with a nil error means the address is unknown.
type Locator interface {
	Lookup(ctx context.Context, ip string) (*Location, error)
	Name() string
}

// MaxMindLocator reads a local GeoLite2/GeoIP2 City database.
type MaxMindLocator struct {
	db *geoip2.Reader
}

// OpenMaxMind opens the City database at path.
func OpenMaxMind(path string) (*MaxMindLocator, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database %s: %w", path, err)
	}
	return &MaxMindLocator{db: db}, nil
}

func (m *MaxMindLocator) Lookup(_ context.Context, ip string) (*Location, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return nil, fmt.Errorf("invalid ip address %q: %w", ip, err)
	}
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsUnspecified() {
		return nil, nil
	}

	record, err := m.db.City(addr.Unmap())
	if err != nil {
		return nil, fmt.Errorf("geoip lookup failed: %w", err)
	}
	if !record.HasData() {
		return nil, nil
	}

	return &Location{
		Country: record.Country.ISOCode,
		City:    record.City.Names.English,
	}, nil
}

func (m *MaxMindLocator) Name() string {
	return "maxmind"
}

// Close releases the database.
func (m *MaxMindLocator) Close() error {
	return m.db.Close()
}

// NoopLocator is used when no database is configured.
type NoopLocator struct{}

func (NoopLocator) Lookup(context.Context, string) (*Location, error) {
	return nil, nil
}

func (NoopLocator) Name() string {
	return "none"
}
