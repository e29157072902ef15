package place

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/localexplorer/itinerary-api/internal/types"
)

// POIProvider is one nearby-POI search capability. Providers are tried in
// a fixed priority order by the resolver; any transport or shape problem
// is returned as an error and treated as a soft failure upstream.
type POIProvider interface {
	Name() string
	Search(ctx context.Context, lat, lon float64, radiusM, limit int) ([]types.Place, error)
}

var _ POIProvider = (*OverpassProvider)(nil)

// OverpassProvider queries one Overpass API endpoint.
type OverpassProvider struct {
	client    *http.Client
	endpoint  string
	userAgent string
	timeout   time.Duration
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *overpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// coords returns the element's own coordinates, falling back to the
// way/relation center.
func (el overpassElement) coords() (*float64, *float64) {
	if el.Lat != nil && el.Lon != nil {
		return el.Lat, el.Lon
	}
	if el.Center != nil {
		return &el.Center.Lat, &el.Center.Lon
	}
	return nil, nil
}

func NewOverpassProvider(endpoint, userAgent string, timeout time.Duration) *OverpassProvider {
	return &OverpassProvider{
		client:    &http.Client{},
		endpoint:  endpoint,
		userAgent: userAgent,
		timeout:   timeout,
	}
}

func (p *OverpassProvider) Name() string {
	return p.endpoint
}

func (p *OverpassProvider) Search(ctx context.Context, lat, lon float64, radiusM, limit int) ([]types.Place, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	query := buildOverpassQuery(lat, lon, radiusM, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("returned status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "json") {
		// Overpass mirrors answer rate-limit errors as HTML with a 200.
		return nil, fmt.Errorf("returned non-JSON content type %q", ct)
	}

	var data overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	places := make([]types.Place, 0, len(data.Elements))
	for _, el := range data.Elements {
		if place := normalizeElement(el); place != nil {
			places = append(places, *place)
		}
	}
	return places, nil
}

func buildOverpassQuery(lat, lon float64, radiusM, limit int) string {
	around := fmt.Sprintf("(around:%d,%f,%f)", radiusM, lat, lon)
	return fmt.Sprintf(`[out:json][timeout:25];
(
  node["name"]["tourism"~"attraction|museum|gallery"]%[1]s;
  way["name"]["tourism"~"attraction|museum|gallery"]%[1]s;
  relation["name"]["tourism"~"attraction|museum|gallery"]%[1]s;
  node["name"]["leisure"="park"]%[1]s;
);
out center %[2]d;
`, around, limit)
}
