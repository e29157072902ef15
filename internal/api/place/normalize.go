package place

import (
	"strconv"
	"strings"

	"github.com/localexplorer/itinerary-api/internal/types"
)

// categoryTagKeys is the ordered list of provider tag keys consulted for a
// display category; the first present key wins.
var categoryTagKeys = []string{"tourism", "amenity", "leisure"}

// displayCategories maps raw provider tag values to display categories.
// Unmapped values are title-cased and used verbatim.
var displayCategories = map[string]string{
	"museum":     "Museum",
	"attraction": "Attraction",
	"gallery":    "Gallery",
	"park":       "Park",
	"cafe":       "Cafe",
	"restaurant": "Food",
}

func categoryFromTags(tags map[string]string) *string {
	for _, key := range categoryTagKeys {
		raw, ok := tags[key]
		if !ok || raw == "" {
			continue
		}
		if display, ok := displayCategories[raw]; ok {
			return &display
		}
		titled := strings.ToUpper(raw[:1]) + raw[1:]
		return &titled
	}
	return nil
}

// addressTagKeys are the structured address components, joined with spaces.
var addressTagKeys = []string{"addr:housenumber", "addr:street", "addr:city"}

func addressFromTags(tags map[string]string) string {
	var parts []string
	for _, key := range addressTagKeys {
		if v := tags[key]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return tags["addr:full"]
}

// normalizeElement maps one raw provider element to a Place. Elements
// without a name yield nil and are dropped silently.
func normalizeElement(el overpassElement) *types.Place {
	name := el.Tags["name"]
	if name == "" {
		return nil
	}

	p := &types.Place{
		Provider:   "osm",
		ProviderID: el.Type + "/" + strconv.FormatInt(el.ID, 10),
		Name:       name,
		Address:    addressFromTags(el.Tags),
		Category:   categoryFromTags(el.Tags),
	}

	lat, lon := el.coords()
	if lat != nil && lon != nil {
		p.Lat = lat
		p.Lon = lon
	}
	return p
}
