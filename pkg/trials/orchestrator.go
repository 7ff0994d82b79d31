// Package trials runs batches of independent epidemic trials over one shared
// contact graph, distributing initial conditions across a fixed pool of
// workers.
package trials

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dd0wney/epicascade/pkg/cascade"
	"github.com/dd0wney/epicascade/pkg/graph"
	"github.com/dd0wney/epicascade/pkg/logging"
	"github.com/dd0wney/epicascade/pkg/metrics"
)

// ErrNoConditions indicates a run with an empty initial-condition list.
var ErrNoConditions = errors.New("no initial conditions to run")

// StatusSink receives the optional per-trial summary records. Implementations
// shared across workers must serialize appends.
type StatusSink interface {
	TrialStarted(epidemicID, trial, t, infected, nodes int) error
	TrialStopped(epidemicID, trial, t, infected, nodes, links int) error
}

// Options configures a batch run.
type Options struct {
	Probability float64
	Samples     int // trials per initial condition, >= 1
	Workers     int // worker goroutines, >= 1
	Seed        int64

	Trace   cascade.TraceSink // nil disables trace output
	Status  StatusSink        // nil disables status output
	Logger  logging.Logger    // nil disables logging
	Metrics *metrics.Registry // nil disables metrics
}

// Orchestrator distributes initial conditions across workers. Each condition
// is claimed by exactly one worker, which runs all of its trials
// sequentially; epidemic run time varies too much for a static pre-split to
// balance, so workers pull the next unclaimed condition instead.
type Orchestrator struct {
	g          *graph.Graph
	conditions []*cascade.InitialCondition
	opts       Options

	next    atomic.Int64
	aborted atomic.Bool

	mu       sync.Mutex
	firstErr error
}

// New validates every initial condition up front and returns an orchestrator.
// Precondition violations are fatal before any trial starts; there is no
// partial-run state to resume.
func New(g *graph.Graph, conditions []*cascade.InitialCondition, opts Options) (*Orchestrator, error) {
	if g == nil {
		return nil, cascade.ErrNilGraph
	}
	if len(conditions) == 0 {
		return nil, ErrNoConditions
	}
	if opts.Probability < 0 || opts.Probability > 1 {
		return nil, fmt.Errorf("%w: %v", cascade.ErrInvalidProbability, opts.Probability)
	}
	if opts.Samples < 1 {
		opts.Samples = 1
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	for _, ic := range conditions {
		if err := ic.Validate(g.NodeCount()); err != nil {
			return nil, err
		}
	}
	return &Orchestrator{g: g, conditions: conditions, opts: opts}, nil
}

// Run executes every trial and blocks until all workers drain. The first
// error aborts the remaining conditions; trials already in flight run to
// completion.
func (o *Orchestrator) Run() error {
	if o.opts.Metrics != nil {
		o.opts.Metrics.EpidemicsRemaining.Set(float64(len(o.conditions)))
	}

	var wg sync.WaitGroup
	for w := 0; w < o.opts.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			o.work(worker)
		}(w)
	}
	wg.Wait()

	o.mu.Lock()
	defer o.mu.Unlock()
	return o.firstErr
}

func (o *Orchestrator) work(worker int) {
	log := o.opts.Logger.With(logging.Int("worker", worker))
	for {
		j := int(o.next.Add(1)) - 1
		if j >= len(o.conditions) || o.aborted.Load() {
			return
		}
		if err := o.runCondition(j, log); err != nil {
			o.fail(err)
			return
		}
	}
}

// runCondition runs all samples of condition j and then releases its seed
// storage, mirroring the lifecycle of the condition list: built once,
// consumed by its trials, then dropped.
func (o *Orchestrator) runCondition(j int, log logging.Logger) error {
	ic := o.conditions[j]
	log.Info("running epidemic",
		logging.EpidemicID(ic.ID),
		logging.Probability(o.opts.Probability),
		logging.Criterion(ic.Criterion.String()),
		logging.Bound(ic.Bound),
	)

	if o.opts.Metrics != nil {
		o.opts.Metrics.ActiveWorkers.Inc()
		defer o.opts.Metrics.ActiveWorkers.Dec()
		defer o.opts.Metrics.EpidemicsRemaining.Dec()
	}

	for i := 1; i <= o.opts.Samples; i++ {
		if err := o.runTrial(j, i, ic); err != nil {
			return err
		}
	}

	ic.Infected = nil
	return nil
}

func (o *Orchestrator) runTrial(j, i int, ic *cascade.InitialCondition) error {
	sink := o.opts.Trace
	if sink == nil {
		sink = cascade.NopSink()
	}
	counted := &recordCounter{sink: sink}

	e, err := cascade.NewEpidemic(o.opts.Probability, o.g, ic, rand.New(rand.NewSource(o.trialSeed(j, i))), counted)
	if err != nil {
		return err
	}

	if o.opts.Status != nil {
		if err := o.opts.Status.TrialStarted(e.ID(), i, e.Time(), e.InfectedCount(), o.g.NodeCount()); err != nil {
			return fmt.Errorf("status output: %w", err)
		}
	}

	start := time.Now()
	if err := e.Run(); err != nil {
		return err
	}

	if o.opts.Metrics != nil {
		o.opts.Metrics.RecordTrial(ic.Criterion.String(), time.Since(start), e.InfectedCount(), e.CascadeLinks(), counted.n)
	}
	if o.opts.Status != nil {
		if err := o.opts.Status.TrialStopped(e.ID(), i, e.Time(), e.InfectedCount(), o.g.NodeCount(), e.CascadeLinks()); err != nil {
			return fmt.Errorf("status output: %w", err)
		}
	}
	return nil
}

// recordCounter counts the trace records one trial emits on their way to the
// shared sink. Each trial gets its own counter, so no locking is needed.
type recordCounter struct {
	sink cascade.TraceSink
	n    int
}

func (rc *recordCounter) Record(t, provider, client, epidemicID int) error {
	rc.n++
	return rc.sink.Record(t, provider, client, epidemicID)
}

// trialSeed derives a private RNG stream for trial i of condition j. The
// derivation depends only on (j, i) and the base seed, so a rerun reproduces
// every trial regardless of how conditions land on workers.
func (o *Orchestrator) trialSeed(j, i int) int64 {
	k := uint64(int64(j)*int64(o.opts.Samples) + int64(i))
	return o.opts.Seed ^ int64(k*0x9E3779B97F4A7C15)
}

func (o *Orchestrator) fail(err error) {
	o.aborted.Store(true)
	o.mu.Lock()
	if o.firstErr == nil {
		o.firstErr = err
	}
	o.mu.Unlock()
	o.opts.Logger.Error("run aborted", logging.Error(err))
}
