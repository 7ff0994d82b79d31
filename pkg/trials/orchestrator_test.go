package trials

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/epicascade/pkg/cascade"
	"github.com/dd0wney/epicascade/pkg/graph"
	"github.com/dd0wney/epicascade/pkg/metrics"
)

// memSink collects trace records from all workers.
type memSink struct {
	mu    sync.Mutex
	lines []string
}

func (m *memSink) Record(t, provider, client, epidemicID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, fmt.Sprintf("%d %d %d %d", t, provider, client, epidemicID))
	return nil
}

func (m *memSink) sorted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.lines...)
	sort.Strings(out)
	return out
}

// memStatus records trial lifecycle events.
type memStatus struct {
	mu      sync.Mutex
	started int
	stopped int
}

func (m *memStatus) TrialStarted(epidemicID, trial, t, infected, nodes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started++
	return nil
}

func (m *memStatus) TrialStopped(epidemicID, trial, t, infected, nodes, links int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped++
	return nil
}

func testConditions(n int) []*cascade.InitialCondition {
	conditions := make([]*cascade.InitialCondition, n)
	for i := range conditions {
		conditions[i] = &cascade.InitialCondition{
			ID:        i,
			Infected:  []int{i},
			Bound:     100,
			Criterion: cascade.MaxTime,
		}
	}
	return conditions
}

func TestOrchestratorRunsEveryTrial(t *testing.T) {
	g, err := graph.Ring(10)
	require.NoError(t, err)

	status := &memStatus{}
	orch, err := New(g, testConditions(6), Options{
		Probability: 0.5,
		Samples:     3,
		Workers:     4,
		Seed:        11,
		Status:      status,
	})
	require.NoError(t, err)
	require.NoError(t, orch.Run())

	assert.Equal(t, 18, status.started)
	assert.Equal(t, 18, status.stopped)
}

func TestOrchestratorReleasesSeedStorage(t *testing.T) {
	g, err := graph.Ring(5)
	require.NoError(t, err)

	conditions := testConditions(3)
	orch, err := New(g, conditions, Options{Probability: 0.5, Workers: 2, Seed: 1})
	require.NoError(t, err)
	require.NoError(t, orch.Run())

	for _, ic := range conditions {
		assert.Nil(t, ic.Infected, "epidemic %d seed storage not released", ic.ID)
	}
}

func TestOrchestratorTracePerEpidemicIsComplete(t *testing.T) {
	// p=1 on a ring floods every node; each epidemic id must contribute a
	// full trace regardless of worker interleaving.
	g, err := graph.Ring(6)
	require.NoError(t, err)

	sink := &memSink{}
	orch, err := New(g, testConditions(4), Options{
		Probability: 1.0,
		Workers:     4,
		Seed:        7,
		Trace:       sink,
	})
	require.NoError(t, err)
	require.NoError(t, orch.Run())

	perEpidemic := map[string]int{}
	for _, line := range sink.sorted() {
		id := line[strings.LastIndex(line, " ")+1:]
		perEpidemic[id]++
	}
	require.Len(t, perEpidemic, 4)
	// Full flood on an undirected ring: every arc is attempted exactly once.
	for id, count := range perEpidemic {
		assert.Equal(t, 12, count, "epidemic %s", id)
	}
}

func TestOrchestratorDeterministicAcrossWorkerCounts(t *testing.T) {
	// The trial seed derivation depends only on (condition, trial), so the
	// record multiset is identical no matter how many workers run.
	g, err := graph.Ring(12)
	require.NoError(t, err)

	run := func(workers int) []string {
		sink := &memSink{}
		orch, err := New(g, testConditions(5), Options{
			Probability: 0.4,
			Samples:     2,
			Workers:     workers,
			Seed:        99,
			Trace:       sink,
		})
		require.NoError(t, err)
		require.NoError(t, orch.Run())
		return sink.sorted()
	}

	assert.Equal(t, run(1), run(4))
}

func TestTrialSeedDerivation(t *testing.T) {
	g, err := graph.Ring(4)
	require.NoError(t, err)

	orch, err := New(g, testConditions(3), Options{
		Probability: 0.5,
		Samples:     1000,
		Workers:     1,
		Seed:        42,
	})
	require.NoError(t, err)

	// Stable: the same (condition, trial) pair always yields the same seed.
	assert.Equal(t, orch.trialSeed(2, 17), orch.trialSeed(2, 17))

	// Distinct across pairs, including indices whose mixed product wraps
	// the 64-bit range.
	seen := map[int64]bool{}
	for j := 0; j < 3; j++ {
		for i := 1; i <= 1000; i++ {
			s := orch.trialSeed(j, i)
			assert.False(t, seen[s], "seed collision at condition %d trial %d", j, i)
			seen[s] = true
		}
	}
}

func TestOrchestratorCountsTraceRecords(t *testing.T) {
	// p=1 floods a ring, so the record count is known exactly: every arc
	// of every epidemic is attempted once.
	g, err := graph.Ring(6)
	require.NoError(t, err)

	sink := &memSink{}
	reg := metrics.NewRegistry()
	orch, err := New(g, testConditions(4), Options{
		Probability: 1.0,
		Workers:     2,
		Seed:        7,
		Trace:       sink,
		Metrics:     reg,
	})
	require.NoError(t, err)
	require.NoError(t, orch.Run())

	assert.Equal(t, float64(len(sink.sorted())), testutil.ToFloat64(reg.TraceRecordsTotal))
	assert.Equal(t, 48.0, testutil.ToFloat64(reg.TraceRecordsTotal))
}

func TestOrchestratorValidation(t *testing.T) {
	g, err := graph.Ring(4)
	require.NoError(t, err)

	_, err = New(nil, testConditions(1), Options{Probability: 0.5})
	assert.ErrorIs(t, err, cascade.ErrNilGraph)

	_, err = New(g, nil, Options{Probability: 0.5})
	assert.ErrorIs(t, err, ErrNoConditions)

	_, err = New(g, testConditions(1), Options{Probability: 1.5})
	assert.ErrorIs(t, err, cascade.ErrInvalidProbability)

	bad := testConditions(1)
	bad[0].Infected = []int{99}
	_, err = New(g, bad, Options{Probability: 0.5})
	assert.ErrorIs(t, err, cascade.ErrSeedOutOfRange)
}

// failingStatus fails every report.
type failingStatus struct{}

func (failingStatus) TrialStarted(epidemicID, trial, t, infected, nodes int) error {
	return errors.New("disk full")
}

func (failingStatus) TrialStopped(epidemicID, trial, t, infected, nodes, links int) error {
	return errors.New("disk full")
}

func TestOrchestratorSurfacesSinkFailure(t *testing.T) {
	g, err := graph.Ring(4)
	require.NoError(t, err)

	orch, err := New(g, testConditions(3), Options{
		Probability: 0.5,
		Workers:     2,
		Seed:        1,
		Status:      failingStatus{},
	})
	require.NoError(t, err)

	err = orch.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
