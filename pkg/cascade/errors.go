package cascade

import "errors"

var (
	// ErrInvalidProbability indicates a transmission probability outside [0, 1].
	ErrInvalidProbability = errors.New("transmission probability must be in [0, 1]")

	// ErrNilGraph indicates an engine constructed without a contact network.
	ErrNilGraph = errors.New("contact graph is required")

	// ErrNilCondition indicates an engine constructed without an initial condition.
	ErrNilCondition = errors.New("initial condition is required")

	// ErrNoSeeds indicates an initial condition with an empty infected set.
	ErrNoSeeds = errors.New("initial condition has no infected nodes")

	// ErrTooManySeeds indicates an initial infected set covering every node.
	ErrTooManySeeds = errors.New("initially infected nodes must number fewer than total nodes")

	// ErrSeedOutOfRange indicates an initially infected node id outside [0, n).
	ErrSeedOutOfRange = errors.New("initially infected node id out of range")

	// ErrDuplicateSeed indicates a repeated node id in the initial infected set.
	ErrDuplicateSeed = errors.New("duplicate node id in initial infected set")

	// ErrInvalidBound indicates a non-positive stop bound.
	ErrInvalidBound = errors.New("stop bound must be positive")

	// ErrUnknownCriterion indicates an unrecognized stop-criterion name.
	ErrUnknownCriterion = errors.New("unknown stop criterion")

	// ErrMalformedConditions indicates an unparseable initial-condition list.
	ErrMalformedConditions = errors.New("malformed initial condition list")

	// ErrMalformedBounds indicates an unparseable bound list.
	ErrMalformedBounds = errors.New("malformed bound list")

	// ErrBoundIDMismatch indicates a bound record whose epidemic id does not
	// match its initial condition.
	ErrBoundIDMismatch = errors.New("bound list id does not match initial condition id")
)
