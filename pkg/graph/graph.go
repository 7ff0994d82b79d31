package graph

// Graph is an immutable adjacency-list contact network. Node ids are dense
// integers in [0, NodeCount). Once built it is never mutated, so it is safe
// to share across concurrently running trials without synchronization.
type Graph struct {
	n   int
	m   int
	adj [][]int
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return g.n }

// ArcCount returns the number of directed arcs in the graph.
func (g *Graph) ArcCount() int { return g.m }

// Degree returns the out-degree of node u.
func (g *Graph) Degree(u int) int { return len(g.adj[u]) }

// Neighbors returns the adjacency list of node u. Callers must not modify
// the returned slice.
func (g *Graph) Neighbors(u int) []int { return g.adj[u] }

// Builder accumulates arcs and produces an immutable Graph. It is intended
// for tests and programmatic construction; file input goes through Load.
type Builder struct {
	n    int
	arcs [][2]int
}

// NewBuilder creates a builder for a graph with n nodes.
func NewBuilder(n int) *Builder {
	return &Builder{n: n}
}

// AddArc records a directed arc from u to v.
func (b *Builder) AddArc(u, v int) *Builder {
	b.arcs = append(b.arcs, [2]int{u, v})
	return b
}

// AddEdge records an undirected edge as two opposing arcs.
func (b *Builder) AddEdge(u, v int) *Builder {
	return b.AddArc(u, v).AddArc(v, u)
}

// Build validates the accumulated arcs and returns the graph.
func (b *Builder) Build() (*Graph, error) {
	if b.n <= 0 {
		return nil, ErrEmptyGraph
	}
	g := &Graph{
		n:   b.n,
		m:   len(b.arcs),
		adj: make([][]int, b.n),
	}
	for _, arc := range b.arcs {
		u, v := arc[0], arc[1]
		if u < 0 || u >= b.n || v < 0 || v >= b.n {
			return nil, ErrNodeOutOfRange
		}
		g.adj[u] = append(g.adj[u], v)
	}
	return g, nil
}

// Ring returns an undirected cycle 0-1-...-(n-1)-0. Used heavily in tests.
func Ring(n int) (*Graph, error) {
	b := NewBuilder(n)
	for u := 0; u < n; u++ {
		b.AddEdge(u, (u+1)%n)
	}
	return b.Build()
}
