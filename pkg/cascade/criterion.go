package cascade

import "fmt"

// StopCriterion selects how a trial's bound is interpreted. Exactly one
// criterion applies per initial condition.
type StopCriterion int

const (
	// MaxTime bounds the elapsed simulation time: a provider infected after
	// the bound is never processed.
	MaxTime StopCriterion = iota

	// MaxInfected bounds the total infected count: the trial stops the
	// instant the count reaches the bound.
	MaxInfected
)

// String returns the criterion name used as a trace-file suffix.
func (c StopCriterion) String() string {
	switch c {
	case MaxTime:
		return "maxdepth"
	case MaxInfected:
		return "maxsize"
	default:
		return fmt.Sprintf("StopCriterion(%d)", int(c))
	}
}

// ParseCriterion converts a criterion name back to its variant.
func ParseCriterion(s string) (StopCriterion, error) {
	switch s {
	case "maxdepth":
		return MaxTime, nil
	case "maxsize":
		return MaxInfected, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCriterion, s)
	}
}
