// Package geo turns request network metadata into a click location.
package geo

import (
	"context"
	"log"
	"net"
	"net/url"
	"strings"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
	"github.com/wadjakorntonsri/deeplinker/pkg/ports"
)

// ClientIP returns the first X-Forwarded-For entry, then X-Real-IP, else Unknown
func ClientIP(meta domain.NetworkMeta) string {
	if meta.ForwardedFor != "" {
		first, _, _ := strings.Cut(meta.ForwardedFor, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(meta.RealIP); ip != "" {
		return ip
	}
	return domain.Unknown
}

// Enricher resolves a visitor location from a lookup service and proxy hints
type Enricher struct {
	locator ports.GeoLocator
}

// NewEnricher accepts a nil locator, in which case only header hints are used
func NewEnricher(locator ports.GeoLocator) *Enricher {
	return &Enricher{locator: locator}
}

// Enrich never fails. Lookup errors are logged and every unresolved field is Unknown.
func (e *Enricher) Enrich(ctx context.Context, meta domain.NetworkMeta) domain.Location {
	ip := ClientIP(meta)
	loc := hintLocation(meta)
	loc.IP = ip

	if e.locator == nil || !routable(ip) {
		return loc.Normalize()
	}

	found, err := e.locator.Lookup(ctx, ip)
	if err != nil {
		log.Printf("geo lookup for %s failed: %v", ip, err)
		return loc.Normalize()
	}

	// lookup results win over proxy hints
	if found.Country != "" {
		loc.Country = found.Country
	}
	if found.Region != "" {
		loc.Region = found.Region
	}
	if found.City != "" {
		loc.City = found.City
	}
	if found.Company != "" {
		loc.Company = found.Company
	}
	return loc.Normalize()
}

func hintLocation(meta domain.NetworkMeta) domain.Location {
	city := meta.City
	if decoded, err := url.QueryUnescape(city); err == nil {
		city = decoded
	}
	return domain.Location{
		Country: strings.TrimSpace(meta.Country),
		Region:  strings.TrimSpace(meta.Region),
		City:    strings.TrimSpace(city),
		Company: strings.TrimSpace(meta.Network),
	}
}

func routable(ip string) bool {
	if ip == domain.Unknown {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return !parsed.IsLoopback() && !parsed.IsPrivate() && !parsed.IsUnspecified()
}
