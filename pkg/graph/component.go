package graph

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []int
	rank   []byte
	size   []int
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n int) *UnionFind {
	parent := make([]int, n)
	size := make([]int, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x.
func (uf *UnionFind) Find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y int) bool {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Size returns the number of elements in x's set.
func (uf *UnionFind) Size(x int) int { return uf.size[uf.Find(x)] }

// LargestComponent returns the active node indices of the largest weakly
// connected component, in index order.
func LargestComponent[N, E any](g *SparseGraph[N, E]) []int {
	if g.NumActiveNodes() == 0 {
		return nil
	}

	uf := NewUnionFind(g.NumNodes())
	for n := range g.Nodes() {
		for e := range g.Edges(n.Index) {
			uf.Union(e.From, e.To)
		}
	}

	bestRoot, bestSize := -1, 0
	for n := range g.Nodes() {
		root := uf.Find(n.Index)
		if s := uf.size[root]; s > bestSize {
			bestRoot, bestSize = root, s
		}
	}

	nodes := make([]int, 0, bestSize)
	for n := range g.Nodes() {
		if uf.Find(n.Index) == bestRoot {
			nodes = append(nodes, n.Index)
		}
	}
	return nodes
}

// PruneToComponent removes every active node not listed in keep. Indices of
// kept nodes do not change. It returns the number of nodes removed.
func PruneToComponent[N, E any](g *SparseGraph[N, E], keep []int) int {
	kept := make([]bool, g.NumNodes())
	for _, idx := range keep {
		kept[idx] = true
	}

	var drop []int
	for n := range g.Nodes() {
		if !kept[n.Index] {
			drop = append(drop, n.Index)
		}
	}
	if len(drop) > 0 {
		g.RemoveNodes(drop...)
	}
	return len(drop)
}
