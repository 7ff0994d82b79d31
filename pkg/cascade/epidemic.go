package cascade

import (
	"fmt"
	"math/rand"

	"github.com/dd0wney/epicascade/pkg/graph"
)

// TraceSink receives one record per successful transmission attempt,
// including attempts directed at already-infected or recovered nodes. The
// engine emits records sequentially; implementations shared across trials
// must serialize appends themselves.
type TraceSink interface {
	Record(t, provider, client, epidemicID int) error
}

// nopSink discards records. Used when trace output is disabled.
type nopSink struct{}

func (nopSink) Record(t, provider, client, epidemicID int) error { return nil }

// NopSink returns a sink that discards every record.
func NopSink() TraceSink { return nopSink{} }

// Epidemic is one running trial: an SIR cascade where each infected node is
// infectious for exactly one time step. The graph is shared and read-only;
// everything else, including the random source, is owned by this instance.
type Epidemic struct {
	id        int
	p         float64
	bound     int
	criterion StopCriterion
	g         *graph.Graph
	rng       *rand.Rand
	sink      TraceSink

	t             int
	infectedAt    []int
	infectedCount int
	cascadeLinks  int
	active        *ActiveSet
}

// NewEpidemic seeds a trial from an initial condition. Every seed node is
// marked infected at t=1 and enqueued as an active provider. The rng must be
// private to this trial; sharing one generator across concurrent trials
// destroys reproducibility.
func NewEpidemic(p float64, g *graph.Graph, ic *InitialCondition, rng *rand.Rand, sink TraceSink) (*Epidemic, error) {
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}
	if g == nil {
		return nil, ErrNilGraph
	}
	if ic == nil {
		return nil, ErrNilCondition
	}
	if err := ic.Validate(g.NodeCount()); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = NopSink()
	}

	e := &Epidemic{
		id:         ic.ID,
		p:          p,
		bound:      ic.Bound,
		criterion:  ic.Criterion,
		g:          g,
		rng:        rng,
		sink:       sink,
		t:          1,
		infectedAt: make([]int, g.NodeCount()),
		active:     NewActiveSet(g.NodeCount()),
	}
	for _, v := range ic.Infected {
		e.infectedAt[v] = 1
		e.active.Push(v)
	}
	e.infectedCount = len(ic.Infected)
	return e, nil
}

// Run drives the cascade to completion. Each popped provider gets exactly one
// pass over its neighbor list (the one-step infectious window of the SIR
// rule), then is spent forever. Every successful Bernoulli draw emits a trace
// record, whether or not the client was already infected: the attempt log is
// the product, not just the infection tree.
//
// Under MaxTime, popping a provider infected after the bound ends the trial.
// Under MaxInfected, the trial ends the instant the infected count reaches
// the bound, skipping the triggering provider's remaining neighbors. That
// truncation is part of the output contract and must not be "fixed".
func (e *Epidemic) Run() error {
	for !e.active.Empty() {
		provider := e.active.Pop()
		t := e.infectedAt[provider]
		if e.criterion == MaxTime && e.bound < t {
			return nil
		}
		for _, client := range e.g.Neighbors(provider) {
			if e.rng.Float64() >= e.p {
				continue
			}
			if e.infectedAt[client] == 0 {
				e.infectedAt[client] = t + 1
				e.active.Push(client)
				e.infectedCount++
				e.cascadeLinks++
				e.t = t
				if e.criterion == MaxInfected && e.infectedCount == e.bound {
					if err := e.sink.Record(t, provider, client, e.id); err != nil {
						return fmt.Errorf("epidemic %d: trace record: %w", e.id, err)
					}
					return nil
				}
			} else if e.infectedAt[client] == t+1 {
				// Attempt on a node some other provider infected in the
				// same round: still a causal cascade edge.
				e.cascadeLinks++
			}
			if err := e.sink.Record(t, provider, client, e.id); err != nil {
				return fmt.Errorf("epidemic %d: trace record: %w", e.id, err)
			}
		}
	}
	return nil
}

// ID returns the epidemic id of this trial.
func (e *Epidemic) ID() int { return e.id }

// Time returns the last time step at which a new infection occurred.
func (e *Epidemic) Time() int { return e.t }

// InfectedCount returns the number of nodes infected so far.
func (e *Epidemic) InfectedCount() int { return e.infectedCount }

// CascadeLinks returns the number of realized cascade edges: transmissions
// whose receiver was infected at exactly the provider's time plus one.
func (e *Epidemic) CascadeLinks() int { return e.cascadeLinks }

// InfectedAt returns the time step at which node v became infected, or 0 if
// it never was. Once non-zero the value never changes.
func (e *Epidemic) InfectedAt(v int) int { return e.infectedAt[v] }
