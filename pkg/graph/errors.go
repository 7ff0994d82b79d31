package graph

import "errors"

var (
	// ErrEmptyGraph indicates a graph with no nodes.
	ErrEmptyGraph = errors.New("graph must have at least one node")

	// ErrNodeOutOfRange indicates an arc endpoint outside [0, n).
	ErrNodeOutOfRange = errors.New("node id out of range")

	// ErrMalformedHeader indicates a graph file whose first line is not
	// "<nodes> <arcs>".
	ErrMalformedHeader = errors.New("malformed graph header")

	// ErrArcCountMismatch indicates a graph file with fewer arc lines than
	// its header declares.
	ErrArcCountMismatch = errors.New("arc count does not match header")
)
