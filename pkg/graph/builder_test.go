package graph

import (
	"testing"

	"github.com/paulmach/osm"

	osmparser "geo_astar/pkg/osm"
)

func TestBuildSimpleGraph(t *testing.T) {
	// Triangle: 100 -> 200 -> 300 -> 100
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 100, ToNodeID: 200, Meters: 1000, WayID: 1, Highway: "primary"},
			{FromNodeID: 200, ToNodeID: 300, Meters: 2000, WayID: 1, Highway: "primary"},
			{FromNodeID: 300, ToNodeID: 100, Meters: 3000, WayID: 2, Highway: "service"},
		},
		NodeLat: map[osm.NodeID]float64{100: 1.0, 200: 1.1, 300: 1.0},
		NodeLon: map[osm.NodeID]float64{100: 103.0, 200: 103.0, 300: 103.1},
	}

	g := Build(result)

	if !g.IsDigraph() {
		t.Fatal("road graph should be directed")
	}
	if g.NumNodes() != 3 {
		t.Fatalf("NumNodes = %d, want 3", g.NumNodes())
	}
	if g.NumEdges() != 3 {
		t.Fatalf("NumEdges = %d, want 3", g.NumEdges())
	}

	// Indices follow first appearance.
	for i, want := range []osm.NodeID{100, 200, 300} {
		if got := g.Node(i).Data.OSMID; got != want {
			t.Errorf("Node(%d).OSMID = %d, want %d", i, got, want)
		}
	}

	n := g.Node(1).Data
	if n.Loc.Lat() != 1.1 || n.Loc.Lon() != 103.0 {
		t.Errorf("Node(1) location = %v, want [103.0 1.1]", n.Loc)
	}

	var total float64
	for node := range g.Nodes() {
		count := 0
		for e := range g.Edges(node.Index) {
			total += e.Cost
			count++
		}
		if count != 1 {
			t.Errorf("Node %d has %d edges, want 1", node.Index, count)
		}
	}
	if total != 6000 {
		t.Errorf("total cost = %f, want 6000", total)
	}

	e := g.Edge(2, 0)
	if e.Data.WayID != 2 || e.Data.Highway != "service" {
		t.Errorf("Edge(2,0).Data = %+v, want way 2 service", e.Data)
	}
}

func TestBuildEmptyGraph(t *testing.T) {
	result := &osmparser.ParseResult{
		NodeLat: map[osm.NodeID]float64{},
		NodeLon: map[osm.NodeID]float64{},
	}

	g := Build(result)

	if !g.IsEmpty() {
		t.Errorf("NumNodes = %d, want 0", g.NumNodes())
	}
	if g.NumEdges() != 0 {
		t.Errorf("NumEdges = %d, want 0", g.NumEdges())
	}
}

func TestBuildDropsDuplicatesAndLoops(t *testing.T) {
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 1, ToNodeID: 2, Meters: 500},
			{FromNodeID: 2, ToNodeID: 1, Meters: 500},
			// A second way sharing the same segment.
			{FromNodeID: 1, ToNodeID: 2, Meters: 700},
			{FromNodeID: 2, ToNodeID: 2, Meters: 0},
		},
		NodeLat: map[osm.NodeID]float64{1: 1.0, 2: 1.1},
		NodeLon: map[osm.NodeID]float64{1: 103.0, 2: 103.1},
	}

	g := Build(result)

	if g.NumNodes() != 2 {
		t.Fatalf("NumNodes = %d, want 2", g.NumNodes())
	}
	if g.NumEdges() != 2 {
		t.Fatalf("NumEdges = %d, want 2", g.NumEdges())
	}
	if c := g.Edge(0, 1).Cost; c != 500 {
		t.Errorf("Edge(0,1).Cost = %f, want 500 (first segment kept)", c)
	}
}
