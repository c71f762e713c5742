package graph

import (
	"fmt"
	"iter"
	"math"
	"slices"
)

type nodeState uint8

const (
	stateActive nodeState = iota
	stateRemoved
)

// SparseGraph is an adjacency-list graph with index-stable node slots.
//
// Removing a node marks its slot as removed instead of shrinking storage, so
// every other index stays valid. A removed slot can later be reactivated with
// a node carrying the same index. Precondition violations (bad indices,
// duplicate node IDs, missing edges) panic.
//
// A SparseGraph is not safe for concurrent mutation.
type SparseGraph[N, E any] struct {
	nodes   []Node[N]
	state   []nodeState
	edges   [][]Edge[E]
	digraph bool
}

// NewSparseGraph creates an empty graph. Undirected graphs mirror every edge.
func NewSparseGraph[N, E any](digraph bool) *SparseGraph[N, E] {
	return &SparseGraph[N, E]{digraph: digraph}
}

// IsDigraph reports whether the graph is directed.
func (g *SparseGraph[N, E]) IsDigraph() bool { return g.digraph }

// NextFreeNodeIndex returns the index the next appended node must carry.
func (g *SparseGraph[N, E]) NextFreeNodeIndex() int { return len(g.nodes) }

// Node returns the node stored at idx, active or not.
func (g *SparseGraph[N, E]) Node(idx int) Node[N] {
	if idx < 0 || idx >= len(g.nodes) {
		panic(fmt.Sprintf("graph: Node: index %d out of range [0, %d)", idx, len(g.nodes)))
	}
	return g.nodes[idx]
}

// Edge returns the edge from -> to. Both endpoints must be active and the
// edge must exist.
func (g *SparseGraph[N, E]) Edge(from, to int) Edge[E] {
	if !g.IsNodePresent(from) {
		panic(fmt.Sprintf("graph: Edge: invalid from index %d", from))
	}
	if !g.IsNodePresent(to) {
		panic(fmt.Sprintf("graph: Edge: invalid to index %d", to))
	}
	for _, e := range g.edges[from] {
		if e.To == to {
			return e
		}
	}
	panic(fmt.Sprintf("graph: Edge: no edge %d -> %d", from, to))
}

// AddNode appends n, or reactivates a removed slot when n.Index is already
// inside storage. It returns the next free node index.
func (g *SparseGraph[N, E]) AddNode(n Node[N]) int {
	if n.Index >= 0 && n.Index < len(g.nodes) {
		if g.state[n.Index] != stateRemoved {
			panic(fmt.Sprintf("graph: AddNode: duplicate node index %d", n.Index))
		}
		g.nodes[n.Index] = n
		g.state[n.Index] = stateActive
		return len(g.nodes)
	}

	if n.Index != len(g.nodes) {
		panic(fmt.Sprintf("graph: AddNode: invalid index %d, next free is %d", n.Index, len(g.nodes)))
	}
	g.nodes = append(g.nodes, n)
	g.state = append(g.state, stateActive)
	g.edges = append(g.edges, nil)
	return len(g.nodes)
}

// RemoveNode marks the node at idx as removed and drops every edge touching
// it.
func (g *SparseGraph[N, E]) RemoveNode(idx int) {
	g.RemoveNodes(idx)
}

// RemoveNodes removes several nodes at once. Directed graphs sweep their
// adjacency lists a single time for the whole batch.
func (g *SparseGraph[N, E]) RemoveNodes(idxs ...int) {
	for _, idx := range idxs {
		if idx < 0 || idx >= len(g.nodes) {
			panic(fmt.Sprintf("graph: RemoveNode: invalid node index %d", idx))
		}
		g.state[idx] = stateRemoved
	}

	if g.digraph {
		g.cullInvalidEdges()
		return
	}

	for _, idx := range idxs {
		for _, e := range g.edges[idx] {
			if e.To == idx {
				continue
			}
			g.edges[e.To] = deleteEdgeTo(g.edges[e.To], idx)
		}
		g.edges[idx] = nil
	}
}

// cullInvalidEdges drops every edge whose endpoint has been removed.
func (g *SparseGraph[N, E]) cullInvalidEdges() {
	for i, list := range g.edges {
		g.edges[i] = slices.DeleteFunc(list, func(e Edge[E]) bool {
			return g.state[e.From] == stateRemoved || g.state[e.To] == stateRemoved
		})
	}
}

// AddEdge inserts e unless an edge with the same endpoints already exists.
// Undirected graphs also insert the reverse edge. Edges touching a removed
// node are ignored.
func (g *SparseGraph[N, E]) AddEdge(e Edge[E]) {
	if e.From < 0 || e.From >= len(g.nodes) || e.To < 0 || e.To >= len(g.nodes) {
		panic(fmt.Sprintf("graph: AddEdge: invalid node index %d -> %d", e.From, e.To))
	}
	if e.Cost < 0 || math.IsNaN(e.Cost) {
		panic(fmt.Sprintf("graph: AddEdge: invalid cost %v on %d -> %d", e.Cost, e.From, e.To))
	}

	if g.state[e.From] != stateActive || g.state[e.To] != stateActive {
		return
	}

	if g.uniqueEdge(e.From, e.To) {
		g.edges[e.From] = append(g.edges[e.From], e)
	}
	if !g.digraph && g.uniqueEdge(e.To, e.From) {
		g.edges[e.To] = append(g.edges[e.To], e.Reverse())
	}
}

func (g *SparseGraph[N, E]) uniqueEdge(from, to int) bool {
	return !slices.ContainsFunc(g.edges[from], func(e Edge[E]) bool { return e.To == to })
}

// RemoveEdge deletes from -> to, and to -> from on undirected graphs.
// Removing a missing edge is a no-op.
func (g *SparseGraph[N, E]) RemoveEdge(from, to int) {
	if from < 0 || from >= len(g.nodes) || to < 0 || to >= len(g.nodes) {
		panic(fmt.Sprintf("graph: RemoveEdge: invalid node index %d -> %d", from, to))
	}
	if !g.digraph {
		g.edges[to] = deleteEdgeTo(g.edges[to], from)
	}
	g.edges[from] = deleteEdgeTo(g.edges[from], to)
}

func deleteEdgeTo[E any](list []Edge[E], to int) []Edge[E] {
	i := slices.IndexFunc(list, func(e Edge[E]) bool { return e.To == to })
	if i < 0 {
		return list
	}
	return slices.Delete(list, i, i+1)
}

// NumNodes returns the number of node slots, including removed ones.
func (g *SparseGraph[N, E]) NumNodes() int { return len(g.nodes) }

// NumActiveNodes returns the number of nodes that have not been removed.
func (g *SparseGraph[N, E]) NumActiveNodes() int {
	count := 0
	for _, s := range g.state {
		if s == stateActive {
			count++
		}
	}
	return count
}

// NumEdges returns the number of directed edges stored.
func (g *SparseGraph[N, E]) NumEdges() int {
	count := 0
	for _, list := range g.edges {
		count += len(list)
	}
	return count
}

// IsEmpty reports whether no node slot was ever added.
func (g *SparseGraph[N, E]) IsEmpty() bool { return len(g.nodes) == 0 }

// IsNodePresent reports whether idx names an active node.
func (g *SparseGraph[N, E]) IsNodePresent(idx int) bool {
	return idx >= 0 && idx < len(g.nodes) && g.state[idx] == stateActive
}

// IsEdgePresent reports whether both endpoints are active and from -> to exists.
func (g *SparseGraph[N, E]) IsEdgePresent(from, to int) bool {
	if !g.IsNodePresent(from) || !g.IsNodePresent(to) {
		return false
	}
	return !g.uniqueEdge(from, to)
}

// Edges returns the outgoing edges of idx. Each call yields a fresh sequence.
func (g *SparseGraph[N, E]) Edges(idx int) iter.Seq[Edge[E]] {
	if idx < 0 || idx >= len(g.nodes) {
		panic(fmt.Sprintf("graph: Edges: index %d out of range [0, %d)", idx, len(g.nodes)))
	}
	return func(yield func(Edge[E]) bool) {
		for _, e := range g.edges[idx] {
			if !yield(e) {
				return
			}
		}
	}
}

// Nodes returns the active nodes in index order.
func (g *SparseGraph[N, E]) Nodes() iter.Seq[Node[N]] {
	return func(yield func(Node[N]) bool) {
		for i, n := range g.nodes {
			if g.state[i] != stateActive {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}
