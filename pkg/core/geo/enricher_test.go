package geo

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
)

type stubLocator struct {
	loc   domain.Location
	err   error
	calls int
}

func (s *stubLocator) Lookup(_ context.Context, _ string) (domain.Location, error) {
	s.calls++
	return s.loc, s.err
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name     string
		meta     domain.NetworkMeta
		expected string
	}{
		{"forwarded list", domain.NetworkMeta{ForwardedFor: "203.0.113.7, 10.0.0.1", RealIP: "198.51.100.2"}, "203.0.113.7"},
		{"real ip fallback", domain.NetworkMeta{RealIP: "198.51.100.2"}, "198.51.100.2"},
		{"blank forwarded entry", domain.NetworkMeta{ForwardedFor: " ,10.0.0.1", RealIP: "198.51.100.2"}, "198.51.100.2"},
		{"nothing", domain.NetworkMeta{}, domain.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClientIP(tt.meta))
		})
	}
}

func TestEnrichLookupWinsOverHints(t *testing.T) {
	locator := &stubLocator{loc: domain.Location{Country: "TH", City: "Bangkok", Company: "AS Example"}}
	e := NewEnricher(locator)

	loc := e.Enrich(context.Background(), domain.NetworkMeta{
		ForwardedFor: "203.0.113.7",
		Country:      "US",
		Region:       "CA",
		City:         "San%20Francisco",
	})

	assert.Equal(t, 1, locator.calls)
	assert.Equal(t, domain.Location{
		Country: "TH",
		Region:  "CA",
		City:    "Bangkok",
		IP:      "203.0.113.7",
		Company: "AS Example",
	}, loc)
}

func TestEnrichHintsOnlyWhenLookupFails(t *testing.T) {
	locator := &stubLocator{err: errors.New("timeout")}
	e := NewEnricher(locator)

	loc := e.Enrich(context.Background(), domain.NetworkMeta{
		ForwardedFor: "203.0.113.7",
		Country:      "US",
		City:         "San%20Francisco",
	})

	assert.Equal(t, "US", loc.Country)
	assert.Equal(t, "San Francisco", loc.City)
	assert.Equal(t, domain.Unknown, loc.Region)
	assert.Equal(t, domain.Unknown, loc.Company)
}

func TestEnrichSkipsLookupForLocalAddresses(t *testing.T) {
	locator := &stubLocator{loc: domain.Location{Country: "TH"}}
	e := NewEnricher(locator)

	for _, ip := range []string{"127.0.0.1", "::1", "10.1.2.3", "not-an-ip"} {
		loc := e.Enrich(context.Background(), domain.NetworkMeta{RealIP: ip})
		assert.Equal(t, domain.Unknown, loc.Country)
		assert.Equal(t, ip, loc.IP)
	}
	assert.Zero(t, locator.calls)
}

func TestEnrichWithoutAnything(t *testing.T) {
	loc := NewEnricher(nil).Enrich(context.Background(), domain.NetworkMeta{})
	assert.Equal(t, domain.UnknownLocation(), loc)
}

func TestMetaFromHeader(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderForwardedFor, "203.0.113.7")
	h.Set(HeaderCFCountry, "DE")
	h.Set(HeaderNetwork, "Example GmbH")

	meta := MetaFromHeader(h)
	assert.Equal(t, "DE", meta.Country)
	assert.Equal(t, "Example GmbH", meta.Network)

	h.Set(HeaderCountry, "FR")
	assert.Equal(t, "FR", MetaFromHeader(h).Country)
}
