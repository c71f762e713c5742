package routing

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geo_astar/pkg/geo"
	"geo_astar/pkg/graph"
)

type place struct{ at orb.Point }

func (p place) Point() orb.Point { return p.at }

type placeGraph = graph.SparseGraph[place, struct{}]

func addPlaces(g *placeGraph, points ...orb.Point) {
	for _, p := range points {
		g.AddNode(graph.Node[place]{Index: g.NextFreeNodeIndex(), Data: place{at: p}})
	}
}

// geoGraph is the five-node graph
//
//	0 --- 1
//	|     |
//	2 --- 3
//	 \   /
//	   4
//
// with undirected edges weighted by great-circle distance.
func geoGraph(t *testing.T) *placeGraph {
	t.Helper()
	g := graph.NewSparseGraph[place, struct{}](false)
	addPlaces(g,
		orb.Point{30, 39},
		orb.Point{22, 19},
		orb.Point{38, 70},
		orb.Point{30, 79},
		orb.Point{43, 89},
	)
	for _, pair := range [][2]int{{0, 1}, {0, 2}, {2, 3}, {1, 3}, {2, 4}, {3, 4}} {
		from, to := pair[0], pair[1]
		cost := geo.Distance(g.Node(from).Data.at, g.Node(to).Data.at)
		g.AddEdge(graph.Edge[struct{}]{From: from, To: to, Cost: cost})
	}
	return g
}

// bruteForceCost returns the cheapest simple-path cost from source to target
// by exhaustive DFS, or +Inf when unreachable.
func bruteForceCost[N, E any](g *graph.SparseGraph[N, E], source, target int) float64 {
	best := math.Inf(1)
	visited := make([]bool, g.NumNodes())
	var dfs func(n int, cost float64)
	dfs = func(n int, cost float64) {
		if n == target {
			best = min(best, cost)
			return
		}
		visited[n] = true
		for e := range g.Edges(n) {
			if !visited[e.To] {
				dfs(e.To, cost+e.Cost)
			}
		}
		visited[n] = false
	}
	dfs(source, 0)
	return best
}

func pathCost[N, E any](t *testing.T, g *graph.SparseGraph[N, E], path []int) float64 {
	t.Helper()
	var total float64
	for i := 0; i+1 < len(path); i++ {
		require.True(t, g.IsEdgePresent(path[i], path[i+1]), "path hop %d -> %d is not an edge", path[i], path[i+1])
		total += g.Edge(path[i], path[i+1]).Cost
	}
	return total
}

func TestAStarGeographicOptimal(t *testing.T) {
	g := geoGraph(t)
	s := NewAStarSearch(g, 0, 4, GeoDistance[place, struct{}])

	path := s.PathToTarget()
	require.True(t, s.Reached())
	assert.Equal(t, []int{0, 2, 4}, path)

	want := bruteForceCost(g, 0, 4)
	assert.InDelta(t, want, s.CostToTarget(), 1e-6)
	assert.InDelta(t, pathCost(t, g, path), s.CostToTarget(), 1e-6)
}

func TestAStarMatchesDijkstra(t *testing.T) {
	g := geoGraph(t)
	for source := range g.NumNodes() {
		for target := range g.NumNodes() {
			astar := NewAStarSearch(g, source, target, GeoDistance[place, struct{}])
			dijkstra := NewAStarSearch(g, source, target, Zero[place, struct{}])

			assert.InDelta(t, dijkstra.CostToTarget(), astar.CostToTarget(), 1e-6, "%d -> %d", source, target)
			assert.InDelta(t, bruteForceCost(g, source, target), astar.CostToTarget(), 1e-6, "%d -> %d", source, target)
			assert.LessOrEqual(t, astar.NodesSettled(), dijkstra.NodesSettled(), "%d -> %d", source, target)
		}
	}
}

func TestAStarNoPath(t *testing.T) {
	g := graph.NewSparseGraph[place, struct{}](false)
	addPlaces(g, orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{5, 5}, orb.Point{6, 5})
	g.AddEdge(graph.Edge[struct{}]{From: 0, To: 1, Cost: 1})
	g.AddEdge(graph.Edge[struct{}]{From: 2, To: 3, Cost: 1})

	s := NewAStarSearch(g, 0, 3, EuclideanDistance[place, struct{}])

	assert.False(t, s.Reached())
	assert.Empty(t, s.PathToTarget())
	assert.Nil(t, s.SPT()[3])
	assert.Equal(t, 2, s.NodesSettled(), "both nodes of the source component are expanded")
}

func TestAStarDirectedRespectsDirection(t *testing.T) {
	g := graph.NewSparseGraph[place, struct{}](true)
	addPlaces(g, orb.Point{0, 0}, orb.Point{1, 0})
	g.AddEdge(graph.Edge[struct{}]{From: 0, To: 1, Cost: 1})

	assert.Equal(t, []int{0, 1}, NewAStarSearch(g, 0, 1, EuclideanDistance[place, struct{}]).PathToTarget())
	assert.Empty(t, NewAStarSearch(g, 1, 0, EuclideanDistance[place, struct{}]).PathToTarget())
}

func TestAStarSourceIsTarget(t *testing.T) {
	g := geoGraph(t)
	s := NewAStarSearch(g, 2, 2, GeoDistance[place, struct{}])

	assert.Equal(t, []int{2}, s.PathToTarget())
	assert.Equal(t, 0.0, s.CostToTarget())
	assert.Equal(t, 1, s.NodesSettled())
}

func TestAStarNegativeTarget(t *testing.T) {
	g := geoGraph(t)
	s := NewAStarSearch(g, 0, -1, GeoDistance[place, struct{}])

	assert.False(t, s.Reached())
	assert.Empty(t, s.PathToTarget())
	assert.Equal(t, 0.0, s.CostToTarget())
	assert.Equal(t, 0, s.NodesSettled())
}

func TestAStarInvalidEndpoints(t *testing.T) {
	g := geoGraph(t)
	h := GeoDistance[place, struct{}]
	assert.Panics(t, func() { NewAStarSearch(g, -1, 0, h) })
	assert.Panics(t, func() { NewAStarSearch(g, 5, 0, h) })
	assert.Panics(t, func() { NewAStarSearch(g, 0, 5, h) })
}

func TestAStarRelaxesFrontier(t *testing.T) {
	// The direct edge 0 -> 3 is discovered first but the detour through
	// 1 and 2 is cheaper, so node 3's frontier edge must be replaced.
	g := graph.NewSparseGraph[place, struct{}](true)
	addPlaces(g, orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{2, 0}, orb.Point{3, 0})
	g.AddEdge(graph.Edge[struct{}]{From: 0, To: 3, Cost: 10})
	g.AddEdge(graph.Edge[struct{}]{From: 0, To: 1, Cost: 1})
	g.AddEdge(graph.Edge[struct{}]{From: 1, To: 2, Cost: 1})
	g.AddEdge(graph.Edge[struct{}]{From: 2, To: 3, Cost: 1})

	s := NewAStarSearch(g, 0, 3, EuclideanDistance[place, struct{}])

	assert.Equal(t, []int{0, 1, 2, 3}, s.PathToTarget())
	assert.Equal(t, 3.0, s.CostToTarget())
	spt := s.SPT()
	require.NotNil(t, spt[3])
	assert.Equal(t, 2, spt[3].From)
	assert.Nil(t, spt[0], "source has no tree edge")
}

func TestAStarEdgeBackToSourceIgnored(t *testing.T) {
	g := graph.NewSparseGraph[place, struct{}](false)
	addPlaces(g, orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{2, 0})
	g.AddEdge(graph.Edge[struct{}]{From: 0, To: 1, Cost: 1})
	g.AddEdge(graph.Edge[struct{}]{From: 1, To: 2, Cost: 1})

	s := NewAStarSearch(g, 0, 2, EuclideanDistance[place, struct{}])

	assert.Equal(t, []int{0, 1, 2}, s.PathToTarget())
	assert.Equal(t, 2.0, s.CostToTarget())
	assert.Nil(t, s.SPT()[0])
}

func TestAStarSkipsRemovedNodes(t *testing.T) {
	g := geoGraph(t)
	g.RemoveNode(2)

	s := NewAStarSearch(g, 0, 4, GeoDistance[place, struct{}])
	assert.Equal(t, []int{0, 1, 3, 4}, s.PathToTarget())
	assert.InDelta(t, pathCost(t, g, s.PathToTarget()), s.CostToTarget(), 1e-6)
}

func TestAStarManhattanGrid(t *testing.T) {
	// 4x4 grid with unit axis-aligned edges; Manhattan is exact here.
	const size = 4
	g := graph.NewSparseGraph[place, struct{}](false)
	for y := range size {
		for x := range size {
			addPlaces(g, orb.Point{float64(x), float64(y)})
		}
	}
	id := func(x, y int) int { return y*size + x }
	for y := range size {
		for x := range size {
			if x+1 < size {
				g.AddEdge(graph.Edge[struct{}]{From: id(x, y), To: id(x+1, y), Cost: 1})
			}
			if y+1 < size {
				g.AddEdge(graph.Edge[struct{}]{From: id(x, y), To: id(x, y+1), Cost: 1})
			}
		}
	}
	// Wall off most of column 2.
	g.RemoveNodes(id(2, 0), id(2, 1), id(2, 2))

	s := NewAStarSearch(g, id(0, 0), id(3, 0), ManhattanDistance[place, struct{}])
	path := s.PathToTarget()
	require.NotEmpty(t, path)
	assert.Equal(t, 9.0, s.CostToTarget())
	assert.Len(t, path, 10)
	assert.Equal(t, bruteForceCost(g, id(0, 0), id(3, 0)), s.CostToTarget())
}

func TestAStarRandomGraphsAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := range 20 {
		g := graph.NewSparseGraph[place, struct{}](trial%2 == 0)
		const n = 8
		for range n {
			addPlaces(g, orb.Point{rng.Float64() * 10, rng.Float64() * 10})
		}
		for range 16 {
			from, to := rng.IntN(n), rng.IntN(n)
			if from == to {
				continue
			}
			// Straight-line distance times a detour factor keeps the
			// Euclidean heuristic admissible.
			d := geo.Euclidean(g.Node(from).Data.at, g.Node(to).Data.at)
			g.AddEdge(graph.Edge[struct{}]{From: from, To: to, Cost: d * (1 + rng.Float64())})
		}

		s := NewAStarSearch(g, 0, n-1, EuclideanDistance[place, struct{}])
		want := bruteForceCost(g, 0, n-1)
		if math.IsInf(want, 1) {
			assert.Empty(t, s.PathToTarget(), "trial %d", trial)
			continue
		}
		assert.InDelta(t, want, s.CostToTarget(), 1e-9, "trial %d", trial)
		assert.InDelta(t, want, pathCost(t, g, s.PathToTarget()), 1e-9, "trial %d", trial)
	}
}

func TestHeuristicByName(t *testing.T) {
	for _, name := range []string{"haversine", "geo", "euclidean", "manhattan", "zero", "dijkstra"} {
		h, err := HeuristicByName[place, struct{}](name)
		require.NoError(t, err, name)
		require.NotNil(t, h, name)
	}

	_, err := HeuristicByName[place, struct{}]("bogus")
	assert.Error(t, err)

	g := geoGraph(t)
	h, _ := HeuristicByName[place, struct{}]("zero")
	assert.Equal(t, 0.0, h(g, 4, 0))
}

func BenchmarkAStarGrid(b *testing.B) {
	const size = 64
	g := graph.NewSparseGraph[place, struct{}](false)
	for y := range size {
		for x := range size {
			addPlaces(g, orb.Point{float64(x), float64(y)})
		}
	}
	for y := range size {
		for x := range size {
			n := y*size + x
			if x+1 < size {
				g.AddEdge(graph.Edge[struct{}]{From: n, To: n + 1, Cost: 1})
			}
			if y+1 < size {
				g.AddEdge(graph.Edge[struct{}]{From: n, To: n + size, Cost: 1})
			}
		}
	}

	for b.Loop() {
		NewAStarSearch(g, 0, size*size-1, ManhattanDistance[place, struct{}])
	}
}
