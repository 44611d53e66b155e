// Package geoip looks up visitor locations through an ip-api compatible HTTP service.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
	"github.com/wadjakorntonsri/deeplinker/pkg/ports"
)

const fields = "status,message,countryCode,regionName,city,isp,org"

// Client calls GET {baseURL}/{ip}?fields=...
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type response struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	CountryCode string `json:"countryCode"`
	RegionName  string `json:"regionName"`
	City        string `json:"city"`
	ISP         string `json:"isp"`
	Org         string `json:"org"`
}

func (c *Client) Lookup(ctx context.Context, ip string) (domain.Location, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=%s", c.baseURL, url.PathEscape(ip), fields)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Location{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Location{}, fmt.Errorf("geo lookup: unexpected status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Location{}, fmt.Errorf("geo lookup: decode: %w", err)
	}
	if body.Status != "success" {
		return domain.Location{}, fmt.Errorf("geo lookup: %s", body.Message)
	}

	company := body.Org
	if company == "" {
		company = body.ISP
	}
	return domain.Location{
		Country: body.CountryCode,
		Region:  body.RegionName,
		City:    body.City,
		IP:      ip,
		Company: company,
	}, nil
}

var _ ports.GeoLocator = (*Client)(nil)
