package graph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	osmparser "geo_astar/pkg/osm"
)

// Build creates a directed road graph from parsed OSM edges. Node indices are
// assigned in order of first appearance in the edge list; edge costs are the
// segment lengths in meters.
func Build(result *osmparser.ParseResult) *RoadGraph {
	g := NewSparseGraph[RoadNode, RoadInfo](true)
	index := make(map[osm.NodeID]int)

	nodeIndex := func(id osm.NodeID) int {
		if idx, ok := index[id]; ok {
			return idx
		}
		idx := g.NextFreeNodeIndex()
		g.AddNode(Node[RoadNode]{
			Index: idx,
			Data: RoadNode{
				OSMID: id,
				Loc:   orb.Point{result.NodeLon[id], result.NodeLat[id]},
			},
		})
		index[id] = idx
		return idx
	}

	for _, e := range result.Edges {
		from := nodeIndex(e.FromNodeID)
		to := nodeIndex(e.ToNodeID)
		if from == to {
			continue
		}
		g.AddEdge(Edge[RoadInfo]{
			From: from,
			To:   to,
			Cost: e.Meters,
			Data: RoadInfo{WayID: e.WayID, Highway: e.Highway},
		})
	}

	return g
}
