package place

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Geocoder resolves a free-text query to a coordinate. found=false means
// the provider answered but knows no such place, which is a normal outcome
// rather than an error.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat, lon float64, found bool, err error)
}

var _ Geocoder = (*NominatimGeocoder)(nil)

// NominatimGeocoder geocodes through the OSM Nominatim search API.
type NominatimGeocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
	timeout   time.Duration
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func NewNominatimGeocoder(baseURL, userAgent string, timeout time.Duration) *NominatimGeocoder {
	return &NominatimGeocoder{
		client:    &http.Client{},
		baseURL:   baseURL,
		userAgent: userAgent,
		timeout:   timeout,
	}
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (float64, float64, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, 0, false, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, false, fmt.Errorf("geocode returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, false, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, false, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("geocode returned invalid latitude %q", results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("geocode returned invalid longitude %q", results[0].Lon)
	}
	return lat, lon, true, nil
}
