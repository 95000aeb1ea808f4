package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samuelfneumann/gorl/agent"
	"github.com/samuelfneumann/gorl/agent/random"
	"github.com/samuelfneumann/gorl/checkpoint"
	"github.com/samuelfneumann/gorl/config"
	"github.com/samuelfneumann/gorl/environment"
	"github.com/samuelfneumann/gorl/environment/gridworld"
	"github.com/samuelfneumann/gorl/environment/tictactoe"
	"github.com/samuelfneumann/gorl/experiment"
	"github.com/samuelfneumann/gorl/experiment/metrics"
	"github.com/samuelfneumann/gorl/experiment/report"
	"github.com/samuelfneumann/gorl/experiment/trackers"
	"github.com/samuelfneumann/gorl/network"
	"github.com/samuelfneumann/gorl/space"
	"github.com/samuelfneumann/gorl/utils/logging"
	"github.com/samuelfneumann/gorl/utils/progressbar"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type trainFlags struct {
	config    string
	agent     string
	episodes  int
	runs      int
	seed      uint64
	stepLimit int
	report    string
}

func newTrainCommand(g *globals) *cobra.Command {
	f := &trainFlags{}

	cmd := &cobra.Command{
		Use:       "train [grid|tictactoe]",
		Short:     "Train agents and save them to the agent store",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{config.Grid, config.TicTacToe},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd, g, args)
			if err != nil {
				return err
			}
			return train(cmd, g, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.config, "config", "c", "", "YAML run configuration")
	flags.StringVar(&f.agent, "agent", string(agent.QLearning),
		"agent type (QLearning, DeepQ)")
	flags.IntVarP(&f.episodes, "episodes", "n", 0, "number of episodes")
	flags.IntVar(&f.runs, "runs", 0, "number of independent runs")
	flags.Uint64Var(&f.seed, "seed", 0, "seed of the first run")
	flags.IntVar(&f.stepLimit, "step-limit", 0,
		"maximum steps per episode, 0 for no limit")
	flags.StringVar(&f.report, "report", "", "directory to write data and "+
		"charts to")
	return cmd
}

// load returns the run configuration, overriding the configuration file
// with any flags given
func (f *trainFlags) load(cmd *cobra.Command, g *globals,
	args []string) (config.Run, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if len(args) > 0 {
		cfg.Environment = args[0]
	}
	if flags.Changed("agent") {
		// The agent takes its registered default configuration
		if err := cfg.Agent.UnmarshalJSON([]byte(
			fmt.Sprintf(`{"type": %q}`, f.agent))); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("episodes") {
		cfg.Episodes = f.episodes
	}
	if flags.Changed("runs") {
		cfg.Runs = f.runs
	}
	if flags.Changed("seed") {
		cfg.Seed = f.seed
	}
	if flags.Changed("step-limit") {
		cfg.StepLimit = f.stepLimit
	}
	if flags.Changed("report") {
		cfg.Report.Dir = f.report
	}
	if flags.Changed("store") || flags.Changed("store-kind") ||
		cfg.Store == config.Default().Store {
		cfg.Store = config.StoreConfig{Kind: g.storeKind, Path: g.storePath}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	// Log settings of the configuration file apply unless given on the
	// command line or in the environment
	_, levelFromEnv := os.LookupEnv(EnvLogLevel)
	if f.config != "" && !flags.Changed("log-level") && !levelFromEnv &&
		!flags.Changed("log-format") {
		log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level,
			logging.Format(cfg.Log.Format))
		if err != nil {
			return cfg, err
		}
		g.log = log
	}
	return cfg, nil
}

// train trains agents as configured by cfg
func train(cmd *cobra.Command, g *globals, cfg config.Run) error {
	log := g.log.WithField("env", cfg.Environment)

	store, err := openStore(cfg.Store.Kind, cfg.Store.Path, log)
	if err != nil {
		return err
	}
	defer store.Close()

	t := trainer{
		cfg:     cfg,
		log:     log,
		store:   store,
		metrics: metrics.New(prometheus.NewRegistry()),
		cmd:     cmd,
	}

	switch cfg.Environment {
	case config.Grid:
		return trainRuns(t, func(seed uint64) (
			environment.Environment[gridworld.Position, gridworld.Direction],
			error) {
			grid, err := gridworld.New(cfg.Grid.Rows, cfg.Grid.Cols, seed)
			if err != nil {
				return nil, err
			}
			return grid, nil
		})
	case config.TicTacToe:
		return trainRuns(t, func(uint64) (
			environment.Environment[tictactoe.Board, tictactoe.Move], error) {
			return tictactoe.New(), nil
		})
	default:
		return fmt.Errorf("train: unknown environment %q", cfg.Environment)
	}
}

// trainer holds what every run of a training command shares
type trainer struct {
	cfg     config.Run
	log     logrus.FieldLogger
	store   checkpoint.Store
	metrics *metrics.Metrics
	cmd     *cobra.Command
}

// run is a single independent training run
type run[S space.State, A space.Elem] struct {
	id      string
	learner learner[S, A]
	exp     *experiment.TurnBased[S, A]
	returns *trackers.Return
	lengths *trackers.EpisodeLength
}

// trainRuns trains and saves all runs of t, creating the environment of
// each run with newEnv
func trainRuns[S space.StateBuilder[S], A space.Builder[A]](t trainer,
	newEnv func(seed uint64) (environment.Environment[S, A], error)) error {
	runs := make([]run[S, A], t.cfg.Runs)
	exps := make([]experiment.Experiment, t.cfg.Runs)

	for i := range runs {
		r, err := newRun(t, t.cfg.Seed+uint64(i), newEnv)
		if err != nil {
			return fmt.Errorf("train: %w", err)
		}
		runs[i], exps[i] = r, r.exp
	}

	if err := experiment.RunParallel(exps...); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if t.cfg.Runs == 1 {
		fmt.Fprintln(t.cmd.OutOrStdout())
	}

	for _, r := range runs {
		if err := t.store.Save(r.id+"/player-0", r.learner); err != nil {
			return fmt.Errorf("train: %w", err)
		}
		if err := t.report(r.id, r.exp, r.returns, r.learner); err != nil {
			return fmt.Errorf("train: %w", err)
		}

		t.log.WithFields(logrus.Fields{
			"run":     r.id,
			"episode": r.exp.Episodes(),
		}).Info("agent saved")
		fmt.Fprintln(t.cmd.OutOrStdout(), r.id)
	}

	// Serve the first run's agent by default
	if err := t.store.Save(latest(t.cfg.Environment),
		runs[0].learner); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	return nil
}

// newRun creates a run seeded with seed
func newRun[S space.StateBuilder[S], A space.Builder[A]](t trainer,
	seed uint64, newEnv func(seed uint64) (environment.Environment[S, A],
		error)) (run[S, A], error) {
	r := run[S, A]{id: uuid.NewString()}

	env, err := newEnv(seed)
	if err != nil {
		return r, err
	}
	if r.learner, err = newAgent[S, A](t.cfg.Agent, seed); err != nil {
		return r, err
	}

	agents := []agent.Agent[S, A]{r.learner}
	for len(agents) < env.StateSpace().PlayerCount() {
		if t.cfg.Opponent == config.Random {
			agents = append(agents, random.New[S, A](seed+1))
		} else {
			agents = append(agents, r.learner)
		}
	}

	opts := []experiment.Option{
		experiment.WithLogger(t.log),
		experiment.WithRunID(r.id),
		experiment.WithStepLimit(t.cfg.StepLimit),
		experiment.WithMetrics(t.metrics),
	}

	if dir := t.cfg.Report.Dir; dir != "" {
		if err := os.MkdirAll(filepath.Join(dir, r.id), 0o755); err != nil {
			return r, err
		}
		r.returns = trackers.NewReturn(filepath.Join(dir, r.id, "returns.bin"))
		r.lengths = trackers.NewEpisodeLength(
			filepath.Join(dir, r.id, "lengths.bin"))
		opts = append(opts, experiment.WithTrackers(r.returns, r.lengths))
	}

	if t.cfg.Checkpoint > 0 {
		c, err := checkpoint.NewNStep(t.cfg.Checkpoint, t.store, r.learner,
			checkpoint.FilenameEnumerator(0, r.id+"/checkpoint-", ""))
		if err != nil {
			return r, err
		}
		opts = append(opts, experiment.WithCheckpointers(c))
	}

	if t.cfg.Runs == 1 {
		bar := progressbar.New(t.cmd.OutOrStdout(), "training", 40,
			t.cfg.Episodes)
		opts = append(opts, experiment.WithProgressBar(bar))
	}

	r.exp, err = experiment.NewTurnBased(env, agents, t.cfg.Episodes,
		opts...)
	return r, err
}

// report writes the tracked data and charts of a run
func (t trainer) report(id string, exp experiment.Experiment,
	returns *trackers.Return, l agent.Typed) error {
	dir := t.cfg.Report.Dir
	if dir == "" {
		return nil
	}
	if err := exp.Save(); err != nil {
		return err
	}

	window := t.cfg.Report.Window
	var data [][]float64
	var series []report.Series
	for player := 0; returns.Returns(player) != nil; player++ {
		data = append(data, returns.Returns(player))
		series = append(series, report.Series{
			Name:   fmt.Sprintf("player %v", player),
			Values: returns.Returns(player),
		})
	}

	if err := report.PlotReturns(data, window,
		filepath.Join(dir, id, "returns.png")); err != nil {
		return err
	}
	if err := report.SaveReturnsChart(filepath.Join(dir, id, "returns.html"),
		"Episodic Return", series...); err != nil {
		return err
	}

	// Value agents also report the loss of their network
	if v, ok := l.(interface{ Network() *network.NeuralNet }); ok &&
		len(v.Network().History()) > 0 {
		return report.PlotLoss(v.Network().History(), window,
			filepath.Join(dir, id, "loss.png"))
	}
	return nil
}
