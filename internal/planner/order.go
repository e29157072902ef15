package planner

import (
	"math"

	"github.com/paulmach/orb/planar"

	"github.com/localexplorer/itinerary-api/internal/types"
)

// OrderDay orders the places of a single day bucket with a greedy
// nearest-neighbour walk. Places without coordinates keep their original
// relative order and trail at the end. With two or fewer located places
// there is nothing to gain, so the input order is kept.
//
// The walk starts at the first located place in input order and at each
// step moves to the closest unvisited place by squared planar distance
// (ties go to the first encountered). Squared distance is enough for
// relative ordering at city scale and skips the trigonometry.
func OrderDay(day []types.Place) []types.Place {
	pts, rest := splitByCoords(day)

	out := make([]types.Place, 0, len(day))
	if len(pts) <= 2 {
		out = append(out, pts...)
		return append(out, rest...)
	}

	visited := make([]bool, len(pts))
	current := 0
	visited[0] = true
	out = append(out, pts[0])

	for len(out) < len(pts) {
		best := -1
		bestDist := math.Inf(1)
		for i, candidate := range pts {
			if visited[i] {
				continue
			}
			d := planar.DistanceSquared(point(pts[current]), point(candidate))
			if d < bestDist {
				bestDist = d
				best = i
			}
		}
		visited[best] = true
		current = best
		out = append(out, pts[best])
	}

	return append(out, rest...)
}
