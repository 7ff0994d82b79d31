package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Parse reads a graph in the plain text adjacency format:
//
//	<nodes> <arcs>
//	<u> <v>
//	...
//
// Each arc line appends v to u's adjacency list. Undirected networks list
// both directions explicitly.
func Parse(r io.Reader) (*Graph, error) {
	br := bufio.NewReader(r)

	var n, m int
	if _, err := fmt.Fscan(br, &n, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	if n <= 0 {
		return nil, ErrEmptyGraph
	}
	if m < 0 {
		return nil, ErrMalformedHeader
	}

	g := &Graph{
		n:   n,
		m:   m,
		adj: make([][]int, n),
	}
	for i := 0; i < m; i++ {
		var u, v int
		if _, err := fmt.Fscan(br, &u, &v); err != nil {
			return nil, fmt.Errorf("%w: read %d of %d arcs: %v", ErrArcCountMismatch, i, m, err)
		}
		if u < 0 || u >= n || v < 0 || v >= n {
			return nil, fmt.Errorf("%w: arc %d (%d -> %d), nodes %d", ErrNodeOutOfRange, i, u, v, n)
		}
		g.adj[u] = append(g.adj[u], v)
	}
	return g, nil
}

// Load opens path and parses it with Parse.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open graph file: %w", err)
	}
	defer f.Close()

	g, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse graph file %s: %w", path, err)
	}
	return g, nil
}
