package routing

import (
	"fmt"
	"slices"

	"geo_astar/pkg/graph"
)

type searchState uint8

const (
	unvisited searchState = iota
	frontier
	settled
)

// AStarSearch is a single A* query over a SparseGraph. The search runs to
// completion inside NewAStarSearch; the accessors only read its results.
type AStarSearch[N, E any] struct {
	g *graph.SparseGraph[N, E]

	// gCosts[n] is the best known cost from source to n.
	gCosts []float64
	// fCosts[n] is gCosts[n] plus the heuristic estimate from n to target.
	// The priority queue is keyed on it.
	fCosts []float64

	spt      []*graph.Edge[E] // edge that settled each node
	frontier []*graph.Edge[E] // best edge found so far per discovered node
	state    []searchState

	source, target int
	heuristic      Heuristic[N, E]
	settledCount   int
}

// NewAStarSearch searches g for the cheapest path from source to target.
// A negative target means "no target": nothing is searched and the path is
// empty. The graph must not be mutated while the search runs.
func NewAStarSearch[N, E any](g *graph.SparseGraph[N, E], source, target int, h Heuristic[N, E]) *AStarSearch[N, E] {
	n := g.NumNodes()
	if source < 0 || source >= n {
		panic(fmt.Sprintf("routing: NewAStarSearch: source %d out of range [0, %d)", source, n))
	}
	if target >= n {
		panic(fmt.Sprintf("routing: NewAStarSearch: target %d out of range [0, %d)", target, n))
	}

	s := &AStarSearch[N, E]{
		g:         g,
		gCosts:    make([]float64, n),
		fCosts:    make([]float64, n),
		spt:       make([]*graph.Edge[E], n),
		frontier:  make([]*graph.Edge[E], n),
		state:     make([]searchState, n),
		source:    source,
		target:    target,
		heuristic: h,
	}
	if target >= 0 {
		s.search()
	}
	return s
}

func (s *AStarSearch[N, E]) search() {
	pq := NewIndexedPriorityQueue(s.fCosts, s.g.NumNodes())

	s.fCosts[s.source] = s.heuristic(s.g, s.target, s.source)
	s.state[s.source] = frontier
	pq.Insert(s.source)

	for !pq.Empty() {
		next := pq.Pop()

		// Move from the frontier into the shortest path tree.
		s.spt[next] = s.frontier[next]
		s.state[next] = settled
		s.settledCount++

		if next == s.target {
			return
		}

		for e := range s.g.Edges(next) {
			to := e.To
			gCost := s.gCosts[next] + e.Cost

			switch s.state[to] {
			case unvisited:
				s.gCosts[to] = gCost
				s.fCosts[to] = gCost + s.heuristic(s.g, s.target, to)
				s.frontier[to] = &e
				s.state[to] = frontier
				pq.Insert(to)

			case frontier:
				if gCost < s.gCosts[to] {
					s.gCosts[to] = gCost
					s.fCosts[to] = gCost + s.heuristic(s.g, s.target, to)
					s.frontier[to] = &e
					pq.ChangePriority(to)
				}
			}
		}
	}
}

// SPT returns the shortest path tree indexed by node: the edge through which
// each settled node was reached, nil for the source and for unsettled nodes.
func (s *AStarSearch[N, E]) SPT() []*graph.Edge[E] { return s.spt }

// Reached reports whether the target was settled.
func (s *AStarSearch[N, E]) Reached() bool {
	return s.target >= 0 && s.state[s.target] == settled
}

// PathToTarget returns the node indices from source to target, or an empty
// path when there is no target or it could not be reached.
func (s *AStarSearch[N, E]) PathToTarget() []int {
	if !s.Reached() {
		return []int{}
	}

	path := []int{s.target}
	for nd := s.target; nd != s.source && s.spt[nd] != nil; {
		nd = s.spt[nd].From
		path = append(path, nd)
	}
	slices.Reverse(path)
	return path
}

// CostToTarget returns the cost of the path to target. It is only meaningful
// when Reached reports true.
func (s *AStarSearch[N, E]) CostToTarget() float64 {
	if s.target < 0 {
		return 0
	}
	return s.gCosts[s.target]
}

// NodesSettled returns the number of nodes expanded by the search.
func (s *AStarSearch[N, E]) NodesSettled() int { return s.settledCount }
