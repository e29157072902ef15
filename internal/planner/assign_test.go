package planner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localexplorer/itinerary-api/internal/types"
)

func located(name string, lat, lon float64) types.Place {
	return types.Place{Name: name, Lat: &lat, Lon: &lon}
}

func unlocated(name string, category string) types.Place {
	p := types.Place{Name: name}
	if category != "" {
		p.Category = &category
	}
	return p
}

func flatten(buckets [][]types.Place) []types.Place {
	var out []types.Place
	for _, b := range buckets {
		out = append(out, b...)
	}
	return out
}

func TestAssignDays(t *testing.T) {
	t.Run("EveryPlaceInExactlyOneBucket", func(t *testing.T) {
		places := []types.Place{
			located("a", 48.86, 2.35),
			located("b", 48.87, 2.36),
			located("c", 48.85, 2.34),
			unlocated("d", "Museum"),
			located("e", 48.88, 2.33),
		}

		buckets := AssignDays(places, 3)
		require.Len(t, buckets, 3)

		all := flatten(buckets)
		assert.Len(t, all, len(places))
		seen := map[string]int{}
		for _, p := range all {
			seen[p.Name]++
		}
		for _, p := range places {
			assert.Equal(t, 1, seen[p.Name], "place %s should appear exactly once", p.Name)
		}
	})

	t.Run("ZeroPlacesYieldsEmptyBuckets", func(t *testing.T) {
		buckets := AssignDays(nil, 4)
		require.Len(t, buckets, 4)
		for _, b := range buckets {
			assert.Empty(t, b)
		}
	})

	t.Run("SingleDayGetsEverything", func(t *testing.T) {
		places := []types.Place{
			located("a", 48.86, 2.35),
			located("b", 48.87, 2.36),
			located("c", 48.85, 2.34),
		}
		buckets := AssignDays(places, 1)
		require.Len(t, buckets, 1)
		assert.Len(t, buckets[0], 3)
	})

	t.Run("BucketSizesDifferByAtMostOne", func(t *testing.T) {
		var places []types.Place
		for i := 0; i < 11; i++ {
			places = append(places, located(fmt.Sprintf("p%d", i), 48.8+float64(i)*0.01, 2.3+float64(i)*0.01))
		}

		buckets := AssignDays(places, 3)
		min, max := len(buckets[0]), len(buckets[0])
		for _, b := range buckets {
			if len(b) < min {
				min = len(b)
			}
			if len(b) > max {
				max = len(b)
			}
		}
		assert.LessOrEqual(t, max-min, 1)
	})

	t.Run("AngularSweepGroupsNeighbours", func(t *testing.T) {
		// Four points on a circle around the origin, one per quadrant,
		// listed out of order. The sweep sorts them by angle, so the
		// round-robin deal is deterministic: angles -3π/4, -π/4, π/4,
		// 3π/4 → west-south, east-south, east-north, west-north.
		places := []types.Place{
			located("east-north", 1, 1),
			located("west-south", -1, -1),
			located("west-north", 1, -1),
			located("east-south", -1, 1),
		}

		buckets := AssignDays(places, 2)
		require.Len(t, buckets, 2)
		require.Len(t, buckets[0], 2)
		require.Len(t, buckets[1], 2)
		assert.Equal(t, "west-south", buckets[0][0].Name)
		assert.Equal(t, "east-north", buckets[0][1].Name)
		assert.Equal(t, "east-south", buckets[1][0].Name)
		assert.Equal(t, "west-north", buckets[1][1].Name)
	})

	t.Run("CoordinatelessPlacesRoundRobinIndependently", func(t *testing.T) {
		places := []types.Place{
			located("a", 48.86, 2.35),
			located("b", 48.87, 2.36),
			unlocated("x", ""),
			unlocated("y", ""),
			unlocated("z", ""),
		}

		buckets := AssignDays(places, 3)
		// Unlocated places use their own counter, so x lands in day 0
		// even though located places already consumed days 0 and 1.
		assert.Contains(t, names(buckets[0]), "x")
		assert.Contains(t, names(buckets[1]), "y")
		assert.Contains(t, names(buckets[2]), "z")
	})

	t.Run("FallbackSortsByCategoryThenName", func(t *testing.T) {
		places := []types.Place{
			unlocated("louvre", "Museum"),
			unlocated("cafe-b", "Cafe"),
			unlocated("cafe-a", "Cafe"),
			unlocated("no-category", ""),
		}

		buckets := AssignDays(places, 2)
		// Sorted order: no-category (empty sorts first), cafe-a, cafe-b,
		// louvre; dealt alternately.
		assert.Equal(t, []string{"no-category", "cafe-b"}, names(buckets[0]))
		assert.Equal(t, []string{"cafe-a", "louvre"}, names(buckets[1]))
	})

	t.Run("SingleLocatedPlaceUsesFallback", func(t *testing.T) {
		places := []types.Place{
			located("b-located", 48.86, 2.35),
			unlocated("a-museum", "Museum"),
		}

		buckets := AssignDays(places, 2)
		// One located place is not enough for a sweep; everything goes
		// through the (category, name) sort. The located place has no
		// category so it sorts first.
		assert.Equal(t, []string{"b-located"}, names(buckets[0]))
		assert.Equal(t, []string{"a-museum"}, names(buckets[1]))
	})

	t.Run("DeterministicAcrossRuns", func(t *testing.T) {
		places := []types.Place{
			located("a", 48.86, 2.35),
			located("b", 48.87, 2.36),
			located("c", 48.85, 2.34),
			located("d", 48.88, 2.33),
			unlocated("e", "Park"),
		}

		first := AssignDays(places, 3)
		second := AssignDays(places, 3)
		assert.Equal(t, first, second)
	})
}

func names(places []types.Place) []string {
	out := make([]string, 0, len(places))
	for _, p := range places {
		out = append(out, p.Name)
	}
	return out
}
