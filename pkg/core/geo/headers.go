package geo

import (
	"net/http"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
)

// Proxy headers carrying the visitor address and location hints
const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderRealIP       = "X-Real-IP"
	HeaderCountry      = "X-Vercel-IP-Country"
	HeaderRegion       = "X-Vercel-IP-Country-Region"
	HeaderCity         = "X-Vercel-IP-City"
	HeaderCFCountry    = "CF-IPCountry"
	HeaderNetwork      = "X-Network-Name"
)

// MetaFromHeader collects network metadata from request headers
func MetaFromHeader(h http.Header) domain.NetworkMeta {
	country := h.Get(HeaderCountry)
	if country == "" {
		country = h.Get(HeaderCFCountry)
	}
	return domain.NetworkMeta{
		ForwardedFor: h.Get(HeaderForwardedFor),
		RealIP:       h.Get(HeaderRealIP),
		Country:      country,
		Region:       h.Get(HeaderRegion),
		City:         h.Get(HeaderCity),
		Network:      h.Get(HeaderNetwork),
	}
}
