package planner

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/localexplorer/itinerary-api/internal/types"
)

// AssignDays splits places into daysCount buckets. When at least two places
// carry coordinates, places are sorted by their polar angle around the
// centroid and dealt round-robin, so spatially adjacent places land in the
// same or neighbouring day; places without coordinates follow round-robin
// with their own counter. With fewer than two located places the whole set
// is sorted by (category, name) and dealt round-robin instead.
//
// Invariants: exactly daysCount buckets are returned (possibly empty) and
// every input place appears in exactly one bucket. daysCount must be >= 1.
func AssignDays(places []types.Place, daysCount int) [][]types.Place {
	buckets := make([][]types.Place, daysCount)

	withCoords, withoutCoords := splitByCoords(places)

	if len(withCoords) >= 2 {
		center := centroid(withCoords)

		sorted := append([]types.Place(nil), withCoords...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sweepAngle(sorted[i], center) < sweepAngle(sorted[j], center)
		})

		for i, p := range sorted {
			buckets[i%daysCount] = append(buckets[i%daysCount], p)
		}
		for i, p := range withoutCoords {
			buckets[i%daysCount] = append(buckets[i%daysCount], p)
		}
		return buckets
	}

	sorted := append([]types.Place(nil), places...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := sorted[i].CategoryOrEmpty(), sorted[j].CategoryOrEmpty()
		if ci != cj {
			return ci < cj
		}
		return sorted[i].Name < sorted[j].Name
	})
	for i, p := range sorted {
		buckets[i%daysCount] = append(buckets[i%daysCount], p)
	}
	return buckets
}

// splitByCoords partitions places into those with both coordinates and the
// remainder, both preserving input order.
func splitByCoords(places []types.Place) (with, without []types.Place) {
	for _, p := range places {
		if p.HasCoords() {
			with = append(with, p)
		} else {
			without = append(without, p)
		}
	}
	return with, without
}

func point(p types.Place) orb.Point {
	return orb.Point{*p.Lon, *p.Lat}
}

// centroid is the arithmetic mean of the coordinates, the reference point
// for the angular sweep.
func centroid(places []types.Place) orb.Point {
	var sumLon, sumLat float64
	for _, p := range places {
		sumLon += *p.Lon
		sumLat += *p.Lat
	}
	n := float64(len(places))
	return orb.Point{sumLon / n, sumLat / n}
}

func sweepAngle(p types.Place, center orb.Point) float64 {
	pt := point(p)
	return math.Atan2(pt.Lat()-center.Lat(), pt.Lon()-center.Lon())
}
