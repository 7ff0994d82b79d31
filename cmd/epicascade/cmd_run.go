package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dd0wney/epicascade/pkg/cascade"
	"github.com/dd0wney/epicascade/pkg/config"
	"github.com/dd0wney/epicascade/pkg/graph"
	"github.com/dd0wney/epicascade/pkg/logging"
	"github.com/dd0wney/epicascade/pkg/metrics"
	"github.com/dd0wney/epicascade/pkg/trace"
	"github.com/dd0wney/epicascade/pkg/trials"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a batch of epidemic trials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return runSimulation(cfg)
		},
	}

	cmd.Flags().String("config", "", "YAML configuration file; flags override it")
	cmd.Flags().Float64P("probability", "p", 0, "Transmission probability in (0, 1]")
	cmd.Flags().StringP("graph", "g", "", "Contact network file")
	cmd.Flags().StringP("conditions", "i", "", "Initial-condition list; default is one epidemic seeded at node 0")
	cmd.Flags().Bool("random", false, "Draw each condition's infected set at random")
	cmd.Flags().IntP("max-time", "t", 0, "Global elapsed-time bound applied to every epidemic")
	cmd.Flags().String("max-time-list", "", "Per-epidemic elapsed-time bound list")
	cmd.Flags().String("max-infected-list", "", "Per-epidemic infected-count bound list")
	cmd.Flags().IntP("samples", "s", 1, "Independent trials per initial condition")
	cmd.Flags().IntP("workers", "w", 0, "Worker goroutines; 0 means CPU count")
	cmd.Flags().Int64("seed", 0, "Base random seed; 0 draws one from the clock")
	cmd.Flags().StringP("trace", "o", "", "Base path for trace output")
	cmd.Flags().Bool("compress", false, "Compress trace output with snappy")
	cmd.Flags().BoolP("status", "e", false, "Emit per-trial status records")
	cmd.Flags().String("status-output", "", "Status output path; default is stdout")
	cmd.Flags().String("metrics-addr", "", "Expose Prometheus metrics on this address")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")

	return cmd
}

// resolveConfig layers flag values over the config file over the defaults.
func resolveConfig(cmd *cobra.Command) (config.RunConfig, error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("probability") {
		cfg.Probability, _ = flags.GetFloat64("probability")
	}
	if flags.Changed("graph") {
		cfg.GraphPath, _ = flags.GetString("graph")
	}
	if flags.Changed("conditions") {
		cfg.ConditionsPath, _ = flags.GetString("conditions")
	}
	if flags.Changed("random") {
		cfg.RandomSeeding, _ = flags.GetBool("random")
	}
	if flags.Changed("max-time") {
		cfg.MaxTime, _ = flags.GetInt("max-time")
	}
	if flags.Changed("max-time-list") {
		cfg.BoundsPath, _ = flags.GetString("max-time-list")
		cfg.BoundsCriterion = cascade.MaxTime.String()
	}
	if flags.Changed("max-infected-list") {
		if cfg.BoundsPath != "" && flags.Changed("max-time-list") {
			return cfg, config.ErrConflictingBounds
		}
		cfg.BoundsPath, _ = flags.GetString("max-infected-list")
		cfg.BoundsCriterion = cascade.MaxInfected.String()
	}
	if flags.Changed("samples") {
		cfg.Samples, _ = flags.GetInt("samples")
	}
	if flags.Changed("workers") {
		if w, _ := flags.GetInt("workers"); w > 0 {
			cfg.Workers = w
		}
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("trace") {
		cfg.TracePath, _ = flags.GetString("trace")
	}
	if flags.Changed("compress") {
		cfg.CompressTrace, _ = flags.GetBool("compress")
	}
	if flags.Changed("status") {
		cfg.StatusEnabled, _ = flags.GetBool("status")
	}
	if flags.Changed("status-output") {
		cfg.StatusPath, _ = flags.GetString("status-output")
		cfg.StatusEnabled = true
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runSimulation(cfg config.RunConfig) error {
	logger := logging.NewDefaultLogger()
	logger.SetLevel(logging.ParseLevel(cfg.LogLevel))

	seed := cfg.EffectiveSeed()
	log := logger.With(logging.RunID(uuid.NewString()))
	log.Info("starting run",
		logging.Probability(cfg.Probability),
		logging.Int("samples", cfg.Samples),
		logging.Workers(cfg.Workers),
		logging.Seed(seed),
	)

	g, err := graph.Load(cfg.GraphPath)
	if err != nil {
		return err
	}
	log.Info("graph loaded", logging.Path(cfg.GraphPath), logging.Nodes(g.NodeCount()), logging.Arcs(g.ArcCount()))

	conditions, criterion, err := loadConditions(cfg, g, seed)
	if err != nil {
		return err
	}
	log.Info("conditions loaded", logging.Int("epidemics", len(conditions)), logging.Criterion(criterion.String()))

	reg := metrics.NewRegistry()
	reg.ObserveGraph(g.NodeCount(), g.ArcCount())
	if cfg.MetricsAddr != "" {
		errc := make(chan error, 1)
		srv := reg.Serve(cfg.MetricsAddr, errc)
		defer srv.Close()
		go func() {
			if err := <-errc; err != nil {
				log.Error("metrics endpoint failed", logging.Error(err))
			}
		}()
		log.Info("metrics endpoint up", logging.String("addr", cfg.MetricsAddr))
	}

	var traceSink cascade.TraceSink
	if cfg.TracePath != "" {
		path := trace.Path(cfg.TracePath, criterion.String())
		open := trace.NewFileSink
		if cfg.CompressTrace {
			path = trace.CompressedPath(cfg.TracePath, criterion.String())
			open = trace.NewSnappySink
		}
		fs, err := open(path)
		if err != nil {
			return err
		}
		defer fs.Close()
		traceSink = fs
		log.Info("trace output open", logging.Path(path))
	}

	var status trials.StatusSink
	if cfg.StatusEnabled {
		var sw *trace.StatusWriter
		if cfg.StatusPath != "" {
			sw, err = trace.NewStatusWriter(cfg.StatusPath)
			if err != nil {
				return err
			}
		} else {
			sw = trace.NewStatusStdout()
		}
		defer sw.Close()
		status = sw
	}

	orch, err := trials.New(g, conditions, trials.Options{
		Probability: cfg.Probability,
		Samples:     cfg.Samples,
		Workers:     cfg.Workers,
		Seed:        seed,
		Trace:       traceSink,
		Status:      status,
		Logger:      log,
		Metrics:     reg,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	if err := orch.Run(); err != nil {
		return err
	}
	log.Info("run complete", logging.Duration("elapsed", time.Since(start)))
	return nil
}

// loadConditions builds the initial-condition list and resolves the run's
// stop criterion, either from the global max-time bound or from the bound
// list.
func loadConditions(cfg config.RunConfig, g *graph.Graph, seed int64) ([]*cascade.InitialCondition, cascade.StopCriterion, error) {
	var conditions []*cascade.InitialCondition
	if cfg.ConditionsPath == "" {
		conditions = []*cascade.InitialCondition{cascade.Trivial()}
	} else {
		f, err := os.Open(cfg.ConditionsPath)
		if err != nil {
			return nil, 0, fmt.Errorf("open initial-condition list: %w", err)
		}
		randomNodes := 0
		if cfg.RandomSeeding {
			randomNodes = g.NodeCount()
		}
		conditions, err = cascade.ImportConditions(f, randomNodes, rand.New(rand.NewSource(seed)))
		f.Close()
		if err != nil {
			return nil, 0, err
		}
	}

	if cfg.MaxTime > 0 {
		cascade.ApplyGlobalBound(conditions, cascade.MaxTime, cfg.MaxTime)
		return conditions, cascade.MaxTime, nil
	}

	criterion, err := cascade.ParseCriterion(cfg.BoundsCriterion)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(cfg.BoundsPath)
	if err != nil {
		return nil, 0, fmt.Errorf("open bound list: %w", err)
	}
	defer f.Close()
	if err := cascade.ImportBounds(conditions, criterion, f); err != nil {
		return nil, 0, err
	}
	return conditions, criterion, nil
}
