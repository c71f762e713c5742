package graph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Node is a graph vertex. Index is the node's slot in the graph and never
// changes once assigned; Data is the caller's payload.
type Node[N any] struct {
	Index int
	Data  N
}

// Edge is a directed arc From -> To with a non-negative Cost.
type Edge[E any] struct {
	From int
	To   int
	Cost float64
	Data E
}

// Equal reports whether both edges connect the same nodes at the same cost.
// Payloads are not compared.
func (e Edge[E]) Equal(other Edge[E]) bool {
	return e.From == other.From && e.To == other.To && e.Cost == other.Cost
}

// Reverse returns the edge To -> From with the same cost and payload.
func (e Edge[E]) Reverse() Edge[E] {
	return Edge[E]{From: e.To, To: e.From, Cost: e.Cost, Data: e.Data}
}

// RoadNode is the payload of a road network node.
type RoadNode struct {
	OSMID osm.NodeID
	Loc   orb.Point // [lon, lat]
}

// Point returns the node location.
func (n RoadNode) Point() orb.Point { return n.Loc }

// RoadInfo is the payload of a road network edge.
type RoadInfo struct {
	WayID   osm.WayID
	Highway string
}

// RoadGraph is a directed road network with edge costs in meters.
type RoadGraph = SparseGraph[RoadNode, RoadInfo]
