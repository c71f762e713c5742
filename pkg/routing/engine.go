package routing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"geo_astar/pkg/graph"
	"geo_astar/pkg/logging"
)

// ErrNoRoute is returned when no route exists between the two points.
var ErrNoRoute = errors.New("no route found")

// EndpointError reports which query point, "start" or "end", could not be
// snapped.
type EndpointError struct {
	Endpoint string
	Err      error
}

func (e *EndpointError) Error() string { return "snap " + e.Endpoint + ": " + e.Err.Error() }

func (e *EndpointError) Unwrap() error { return e.Err }

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Segment is a run of consecutive edges on the same OSM way.
type Segment struct {
	WayID          int64
	Highway        string
	DistanceMeters float64
	Geometry       []LatLng
}

// RouteResult is the output of a route query.
type RouteResult struct {
	TotalDistanceMeters float64
	Segments            []Segment
	Nodes               []int // graph node indices along the path
	Settled             int   // nodes expanded by the search
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, start, end LatLng) (*RouteResult, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxSnapDistance sets how far, in meters, a query point may be from
// the nearest node.
func WithMaxSnapDistance(meters float64) Option {
	return func(e *Engine) { e.maxSnap = meters }
}

// WithHeuristic sets the A* heuristic.
func WithHeuristic(h Heuristic[graph.RoadNode, graph.RoadInfo]) Option {
	return func(e *Engine) { e.heuristic = h }
}

// WithLogger sets the logger used for per-query debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = logging.OrDiscard(l) }
}

// Engine implements Router with A* over a road graph.
type Engine struct {
	g         *graph.RoadGraph
	snapper   *Snapper
	heuristic Heuristic[graph.RoadNode, graph.RoadInfo]
	maxSnap   float64
	logger    *slog.Logger
}

// NewEngine creates a routing engine over g. g must not be mutated while
// the engine is in use.
func NewEngine(g *graph.RoadGraph, opts ...Option) *Engine {
	e := &Engine{
		g:         g,
		heuristic: GeoDistance[graph.RoadNode, graph.RoadInfo],
		maxSnap:   DefaultMaxSnapMeters,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.snapper = NewSnapper(g, e.maxSnap)
	return e
}

// Route computes the shortest path between two points.
func (e *Engine) Route(ctx context.Context, start, end LatLng) (*RouteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	startSnap, err := e.snapper.Snap(start.Lat, start.Lng)
	if err != nil {
		return nil, &EndpointError{Endpoint: "start", Err: err}
	}
	endSnap, err := e.snapper.Snap(end.Lat, end.Lng)
	if err != nil {
		return nil, &EndpointError{Endpoint: "end", Err: err}
	}

	t0 := time.Now()
	search := NewAStarSearch(e.g, startSnap.Node, endSnap.Node, e.heuristic)
	path := search.PathToTarget()

	e.logger.Debug("astar",
		"source", startSnap.Node,
		"target", endSnap.Node,
		"settled", search.NodesSettled(),
		"hops", max(len(path)-1, 0),
		"elapsed", time.Since(t0),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, ErrNoRoute
	}

	return &RouteResult{
		TotalDistanceMeters: search.CostToTarget(),
		Segments:            e.buildSegments(path),
		Nodes:               path,
		Settled:             search.NodesSettled(),
	}, nil
}

// buildSegments groups the path's edges into runs sharing a way ID. A
// single-node path yields one zero-length segment.
func (e *Engine) buildSegments(path []int) []Segment {
	first := e.latLng(path[0])
	if len(path) == 1 {
		return []Segment{{Geometry: []LatLng{first}}}
	}

	var segs []Segment
	for i := 0; i+1 < len(path); i++ {
		edge := e.g.Edge(path[i], path[i+1])
		way := int64(edge.Data.WayID)

		if len(segs) == 0 || segs[len(segs)-1].WayID != way {
			segs = append(segs, Segment{
				WayID:    way,
				Highway:  edge.Data.Highway,
				Geometry: []LatLng{e.latLng(path[i])},
			})
		}
		cur := &segs[len(segs)-1]
		cur.DistanceMeters += edge.Cost
		cur.Geometry = append(cur.Geometry, e.latLng(path[i+1]))
	}
	return segs
}

func (e *Engine) latLng(idx int) LatLng {
	p := e.g.Node(idx).Data.Loc
	return LatLng{Lat: p.Lat(), Lng: p.Lon()}
}
