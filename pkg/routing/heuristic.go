package routing

import (
	"fmt"

	"geo_astar/pkg/geo"
	"geo_astar/pkg/graph"
)

// Heuristic estimates the remaining cost from candidate to target. A* returns
// optimal paths only when the estimate never exceeds the true cost and is
// consistent with the edge costs; this is not checked.
type Heuristic[N, E any] func(g *graph.SparseGraph[N, E], target, candidate int) float64

// GeoDistance is the great-circle distance in meters between the [lon, lat]
// positions of candidate and target.
func GeoDistance[N geo.Locator, E any](g *graph.SparseGraph[N, E], target, candidate int) float64 {
	return geo.Distance(g.Node(candidate).Data.Point(), g.Node(target).Data.Point())
}

// EuclideanDistance is the straight-line distance between planar positions.
func EuclideanDistance[N geo.Locator, E any](g *graph.SparseGraph[N, E], target, candidate int) float64 {
	return geo.Euclidean(g.Node(candidate).Data.Point(), g.Node(target).Data.Point())
}

// ManhattanDistance is the taxicab distance between planar positions. It is
// admissible only on graphs whose edges follow the axes.
func ManhattanDistance[N geo.Locator, E any](g *graph.SparseGraph[N, E], target, candidate int) float64 {
	return geo.Manhattan(g.Node(candidate).Data.Point(), g.Node(target).Data.Point())
}

// Zero always returns 0, which turns A* into Dijkstra's algorithm.
func Zero[N, E any](*graph.SparseGraph[N, E], int, int) float64 { return 0 }

// HeuristicByName returns the heuristic registered under name: "haversine",
// "euclidean", "manhattan" or "zero".
func HeuristicByName[N geo.Locator, E any](name string) (Heuristic[N, E], error) {
	switch name {
	case "haversine", "geo":
		return GeoDistance[N, E], nil
	case "euclidean":
		return EuclideanDistance[N, E], nil
	case "manhattan":
		return ManhattanDistance[N, E], nil
	case "zero", "dijkstra":
		return Zero[N, E], nil
	}
	return nil, fmt.Errorf("unknown heuristic %q", name)
}
