package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/epicascade/pkg/cascade"
	"github.com/dd0wney/epicascade/pkg/config"
	"github.com/dd0wney/epicascade/pkg/graph"
)

func parseRunFlags(t *testing.T, args ...string) (config.RunConfig, error) {
	t.Helper()
	cmd := newRunCmd()
	require.NoError(t, cmd.ParseFlags(args))
	return resolveConfig(cmd)
}

func TestResolveConfigFromFlags(t *testing.T) {
	cfg, err := parseRunFlags(t,
		"-p", "0.3", "-g", "net.graph", "-t", "12", "-s", "4", "-w", "2", "--seed", "5")
	require.NoError(t, err)

	assert.Equal(t, 0.3, cfg.Probability)
	assert.Equal(t, "net.graph", cfg.GraphPath)
	assert.Equal(t, 12, cfg.MaxTime)
	assert.Equal(t, 4, cfg.Samples)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, int64(5), cfg.Seed)
}

func TestResolveConfigBoundListCriteria(t *testing.T) {
	cfg, err := parseRunFlags(t, "-p", "0.3", "-g", "g", "--max-infected-list", "b.txt")
	require.NoError(t, err)
	assert.Equal(t, "b.txt", cfg.BoundsPath)
	assert.Equal(t, "maxsize", cfg.BoundsCriterion)

	cfg, err = parseRunFlags(t, "-p", "0.3", "-g", "g", "--max-time-list", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", cfg.BoundsPath)
	assert.Equal(t, "maxdepth", cfg.BoundsCriterion)
}

func TestResolveConfigRejectsConflictingBounds(t *testing.T) {
	_, err := parseRunFlags(t, "-p", "0.3", "-g", "g", "-t", "5", "--max-infected-list", "b.txt")
	assert.ErrorIs(t, err, config.ErrConflictingBounds)

	_, err = parseRunFlags(t, "-p", "0.3", "-g", "g",
		"--max-time-list", "a.txt", "--max-infected-list", "b.txt")
	assert.ErrorIs(t, err, config.ErrConflictingBounds)
}

func TestResolveConfigRejectsMissingBound(t *testing.T) {
	_, err := parseRunFlags(t, "-p", "0.3", "-g", "g")
	assert.ErrorIs(t, err, config.ErrNoBound)
}

func TestResolveConfigFileWithFlagOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("probability: 0.9\ngraph: from-file\nmax_time: 3\n"), 0o644))

	cfg, err := parseRunFlags(t, "--config", path, "-p", "0.25")
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.Probability)
	assert.Equal(t, "from-file", cfg.GraphPath)
	assert.Equal(t, 3, cfg.MaxTime)
}

func TestLoadConditionsDefault(t *testing.T) {
	g, err := graph.Ring(4)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.MaxTime = 5
	conditions, criterion, err := loadConditions(cfg, g, 1)
	require.NoError(t, err)

	require.Len(t, conditions, 1)
	assert.Equal(t, []int{0}, conditions[0].Infected)
	assert.Equal(t, 5, conditions[0].Bound)
	assert.Equal(t, cascade.MaxTime, criterion)
}

func TestLoadConditionsFromFiles(t *testing.T) {
	dir := t.TempDir()
	condPath := filepath.Join(dir, "conditions.txt")
	boundPath := filepath.Join(dir, "bounds.txt")
	require.NoError(t, os.WriteFile(condPath, []byte("2\n1 1 0\n2 2 1 3\n"), 0o644))
	require.NoError(t, os.WriteFile(boundPath, []byte("1 4\n2 3\n"), 0o644))

	g, err := graph.Ring(6)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.ConditionsPath = condPath
	cfg.BoundsPath = boundPath
	cfg.BoundsCriterion = "maxsize"

	conditions, criterion, err := loadConditions(cfg, g, 1)
	require.NoError(t, err)
	assert.Equal(t, cascade.MaxInfected, criterion)
	require.Len(t, conditions, 2)
	assert.Equal(t, []int{1, 3}, conditions[1].Infected)
	assert.Equal(t, 4, conditions[0].Bound)
	assert.Equal(t, 3, conditions[1].Bound)
}

func TestRunSimulationEndToEnd(t *testing.T) {
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "net.graph")
	// 4-node ring, both arc directions listed.
	require.NoError(t, os.WriteFile(graphPath,
		[]byte("4 8\n0 1\n1 0\n1 2\n2 1\n2 3\n3 2\n3 0\n0 3\n"), 0o644))

	cfg := config.Default()
	cfg.Probability = 1.0
	cfg.GraphPath = graphPath
	cfg.MaxTime = 10
	cfg.Seed = 42
	cfg.TracePath = filepath.Join(dir, "run")
	require.NoError(t, cfg.Validate())

	require.NoError(t, runSimulation(cfg))

	data, err := os.ReadFile(filepath.Join(dir, "run-maxdepth.trace"))
	require.NoError(t, err)
	// p=1 on a 4-node ring floods all 8 arcs.
	assert.Len(t, splitLines(string(data)), 8)
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
