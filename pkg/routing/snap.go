package routing

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"geo_astar/pkg/geo"
	"geo_astar/pkg/graph"
)

// DefaultMaxSnapMeters is the snap radius used when none is configured.
const DefaultMaxSnapMeters = 500.0

var (
	// ErrPointTooFar is returned when the query point is too far from any road.
	ErrPointTooFar = errors.New("point too far from road")
	// ErrEmptyGraph is returned when there is no active node to snap to.
	ErrEmptyGraph = errors.New("graph has no active nodes")
)

// SnapResult is a query point snapped to a graph node.
type SnapResult struct {
	Node int     // node index in the graph
	Dist float64 // meters from the query point to the node
}

// Snapper finds the nearest active node to a coordinate. Points are stored
// as [lon, lat] boxes with min == max.
type Snapper struct {
	tree    rtree.RTreeG[int]
	points  []orb.Point
	maxDist float64
}

// NewSnapper indexes every active node of g. The snapper does not observe
// later mutations of g.
func NewSnapper[N geo.Locator, E any](g *graph.SparseGraph[N, E], maxDist float64) *Snapper {
	s := &Snapper{
		points:  make([]orb.Point, g.NumNodes()),
		maxDist: maxDist,
	}
	for n := range g.Nodes() {
		p := n.Data.Point()
		s.points[n.Index] = p
		s.tree.Insert(p, p, n.Index)
	}
	return s
}

// Len returns the number of indexed nodes.
func (s *Snapper) Len() int { return s.tree.Len() }

// Snap returns the node nearest to (lat, lng).
func (s *Snapper) Snap(lat, lng float64) (SnapResult, error) {
	if s.tree.Len() == 0 {
		return SnapResult{}, ErrEmptyGraph
	}

	query := orb.Point{lng, lat}
	best := SnapResult{Node: -1, Dist: math.Inf(1)}
	s.tree.Nearby(scaledBoxDist(query), func(_, _ [2]float64, idx int, _ float64) bool {
		best = SnapResult{Node: idx, Dist: geo.Distance(query, s.points[idx])}
		return false
	})

	if best.Node < 0 || best.Dist > s.maxDist {
		return SnapResult{}, ErrPointTooFar
	}
	return best, nil
}

// scaledBoxDist orders boxes by squared equirectangular distance from q,
// shrinking longitude differences by cos(lat) so the first item visited is
// the nearest on the ground for the distances a snap radius allows.
func scaledBoxDist(q orb.Point) func(min, max [2]float64, data int, item bool) float64 {
	kx := math.Cos(q[1] * math.Pi / 180)
	return func(min, max [2]float64, _ int, _ bool) float64 {
		dx := (q[0] - clamp(q[0], min[0], max[0])) * kx
		dy := q[1] - clamp(q[1], min[1], max[1])
		return dx*dx + dy*dy
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
