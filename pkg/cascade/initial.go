package cascade

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
)

// InitialCondition defines one epidemic: which nodes start infected and when
// the trial stops. The ID is the key used to match bound-list records and to
// tag trace output.
type InitialCondition struct {
	ID        int
	Infected  []int
	Bound     int
	Criterion StopCriterion
}

// Trivial returns the default initial condition used when no list is
// supplied: a single epidemic with node 0 infected.
func Trivial() *InitialCondition {
	return &InitialCondition{ID: 0, Infected: []int{0}}
}

// Validate checks the condition against a graph of nodeCount nodes.
func (ic *InitialCondition) Validate(nodeCount int) error {
	if len(ic.Infected) == 0 {
		return fmt.Errorf("epidemic %d: %w", ic.ID, ErrNoSeeds)
	}
	if len(ic.Infected) >= nodeCount {
		return fmt.Errorf("epidemic %d: %w (%d of %d)", ic.ID, ErrTooManySeeds, len(ic.Infected), nodeCount)
	}
	seen := make(map[int]bool, len(ic.Infected))
	for _, v := range ic.Infected {
		if v < 0 || v >= nodeCount {
			return fmt.Errorf("epidemic %d: %w: node %d", ic.ID, ErrSeedOutOfRange, v)
		}
		if seen[v] {
			return fmt.Errorf("epidemic %d: %w: node %d", ic.ID, ErrDuplicateSeed, v)
		}
		seen[v] = true
	}
	if ic.Bound <= 0 {
		return fmt.Errorf("epidemic %d: %w (got %d)", ic.ID, ErrInvalidBound, ic.Bound)
	}
	return nil
}

// RandomSeeds picks k distinct node ids uniformly from [0, n). When k exceeds
// n/2 it draws the complement instead, so the expected number of rejected
// draws stays small for dense seedings.
func RandomSeeds(k, n int, rng *rand.Rand) ([]int, error) {
	if k <= 0 {
		return nil, ErrNoSeeds
	}
	if k >= n {
		return nil, fmt.Errorf("%w (%d of %d)", ErrTooManySeeds, k, n)
	}

	draw := k
	if k > n/2 {
		draw = n - k
	}
	marked := make([]bool, n)
	for i := 0; i < draw; i++ {
		v := rng.Intn(n)
		for marked[v] {
			v = rng.Intn(n)
		}
		marked[v] = true
	}

	seeds := make([]int, 0, k)
	invert := k > n/2
	for v := 0; v < n; v++ {
		if marked[v] != invert {
			seeds = append(seeds, v)
		}
	}
	return seeds, nil
}

// ImportConditions reads an initial-condition list:
//
//	<number of epidemics>
//	<epidemic id> <N> <node 1> ... <node N>
//	...
//
// When randomNodes is zero the node ids are read from each record. When it is
// non-zero the per-record node list is omitted and N seeds are drawn at
// random from [0, randomNodes) instead.
func ImportConditions(r io.Reader, randomNodes int, rng *rand.Rand) ([]*InitialCondition, error) {
	br := bufio.NewReader(r)

	var count int
	if _, err := fmt.Fscan(br, &count); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedConditions, err)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: non-positive epidemic count %d", ErrMalformedConditions, count)
	}

	conditions := make([]*InitialCondition, 0, count)
	for i := 0; i < count; i++ {
		var id, numInfected int
		if _, err := fmt.Fscan(br, &id, &numInfected); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedConditions, i, err)
		}
		if numInfected <= 0 {
			return nil, fmt.Errorf("%w: record %d: non-positive infected count %d", ErrMalformedConditions, i, numInfected)
		}

		ic := &InitialCondition{ID: id}
		if randomNodes > 0 {
			seeds, err := RandomSeeds(numInfected, randomNodes, rng)
			if err != nil {
				return nil, fmt.Errorf("epidemic %d: %w", id, err)
			}
			ic.Infected = seeds
		} else {
			ic.Infected = make([]int, numInfected)
			for j := 0; j < numInfected; j++ {
				if _, err := fmt.Fscan(br, &ic.Infected[j]); err != nil {
					return nil, fmt.Errorf("%w: record %d node %d: %v", ErrMalformedConditions, i, j, err)
				}
			}
		}
		conditions = append(conditions, ic)
	}
	return conditions, nil
}

// ImportBounds reads a bound list of `<id> <bound>` lines and applies it to
// the conditions in order. Record ids must match condition ids one-to-one.
func ImportBounds(conditions []*InitialCondition, criterion StopCriterion, r io.Reader) error {
	br := bufio.NewReader(r)
	for i, ic := range conditions {
		var id, bound int
		if _, err := fmt.Fscan(br, &id, &bound); err != nil {
			return fmt.Errorf("%w: record %d: %v", ErrMalformedBounds, i, err)
		}
		if id != ic.ID {
			return fmt.Errorf("%w: record %d has id %d, expected %d", ErrBoundIDMismatch, i, id, ic.ID)
		}
		ic.Bound = bound
		ic.Criterion = criterion
	}
	return nil
}

// ApplyGlobalBound sets the same bound and criterion on every condition.
func ApplyGlobalBound(conditions []*InitialCondition, criterion StopCriterion, bound int) {
	for _, ic := range conditions {
		ic.Bound = bound
		ic.Criterion = criterion
	}
}
