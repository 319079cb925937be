package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/percept-go/application"
	"github.com/felixgeelhaar/percept-go/domain/ledger"
	"github.com/felixgeelhaar/percept-go/infrastructure/config"
	"github.com/felixgeelhaar/percept-go/infrastructure/logging"
	badgerstore "github.com/felixgeelhaar/percept-go/infrastructure/storage/badger"
	"github.com/felixgeelhaar/percept-go/infrastructure/storage/filesystem"
	"github.com/felixgeelhaar/percept-go/infrastructure/storage/memory"
)

// runOptions holds options for the run command.
type runOptions struct {
	specPath      string
	percepts      []string
	maxSteps      int
	defaultAction string
	timeout       time.Duration
	jsonOutput    bool
	quiet         bool
}

// runSummary is the JSON shape of a finished episode.
type runSummary struct {
	EpisodeID string   `json:"episode_id"`
	Status    string   `json:"status"`
	Steps     int      `json:"steps"`
	Duration  string   `json:"duration"`
	Actions   []string `json:"actions"`
	Error     string   `json:"error,omitempty"`
}

// newRunCmd creates the run command.
func (a *App) newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [percepts...]",
		Short: "Run an agent over a sequence of percepts",
		Long: `Run an agent from a spec file over the given percepts.

Percepts are taken from the command line, or read from stdin
(whitespace-separated) when no arguments are given. Each percept is fed
to the agent in order and the resolved action is printed.

Examples:
  # Percepts as arguments
  percept run -c agent.yaml sunny rainy sunny

  # Percepts from stdin
  printf 'sunny\nrainy\n' | percept run -c agent.yaml

  # Bounded episode with a default action for unresolved percepts
  percept run -c agent.yaml --max-steps 10 --default-action close sunny

  # Machine-readable summary
  percept run -c agent.yaml --json sunny rainy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.percepts = args
			return a.runEpisode(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.specPath, "config", "c", "", "Path to agent spec file (required)")
	cmd.Flags().IntVar(&opts.maxSteps, "max-steps", 0, "Maximum episode steps (overrides spec)")
	cmd.Flags().StringVar(&opts.defaultAction, "default-action", "", "Action substituted for unresolved percepts (overrides spec)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Episode timeout")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the episode summary as JSON")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress per-step action output")

	_ = cmd.MarkFlagRequired("config")

	return cmd
}

// runEpisode executes one episode with the given options.
func (a *App) runEpisode(ctx context.Context, opts *runOptions) error {
	spec, err := config.NewLoader().LoadFile(opts.specPath)
	if err != nil {
		return fmt.Errorf("failed to load spec: %w", err)
	}

	initLogging(spec.Logging)

	decisionAgent, err := spec.BuildAgent()
	if err != nil {
		return fmt.Errorf("failed to build agent: %w", err)
	}

	percepts := opts.percepts
	if len(percepts) == 0 {
		percepts, err = readPercepts(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read percepts: %w", err)
		}
	}

	store, closeStore, err := openStore(spec.Storage)
	if err != nil {
		return fmt.Errorf("failed to open ledger store: %w", err)
	}
	defer closeStore()

	maxSteps := spec.Driver.MaxSteps
	if opts.maxSteps > 0 {
		maxSteps = opts.maxSteps
	}
	defaultAction := spec.Driver.DefaultAction
	if opts.defaultAction != "" {
		defaultAction = opts.defaultAction
	}

	sink := &application.CollectSink[string]{}
	driverOpts := []application.Option[string, string]{
		application.WithSink[string, string](sink),
		application.WithStore[string, string](store),
		application.WithStrategy[string, string](spec.Strategy),
		application.WithMaxSteps[string, string](maxSteps),
	}
	if defaultAction != "" {
		driverOpts = append(driverOpts, application.WithDefaultAction[string](defaultAction))
	}

	driver, err := application.NewDriver(
		decisionAgent,
		application.NewSliceSource(percepts...),
		driverOpts...,
	)
	if err != nil {
		return fmt.Errorf("failed to build driver: %w", err)
	}

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	episode, runErr := driver.Run(ctx)

	if opts.jsonOutput {
		return a.printJSON(episode, sink.Actions(), runErr)
	}

	if !opts.quiet {
		for _, action := range sink.Actions() {
			fmt.Fprintln(a.stdout, action)
		}
	}

	if runErr != nil {
		return fmt.Errorf("episode %s failed after %d steps: %w", episode.ID, episode.Steps, runErr)
	}

	fmt.Fprintf(a.stderr, "episode %s completed: %d steps in %s\n", episode.ID, episode.Steps, episode.Duration.Round(time.Microsecond))
	return nil
}

func (a *App) printJSON(episode *application.Episode, actions []string, runErr error) error {
	summary := runSummary{
		EpisodeID: episode.ID,
		Status:    string(episode.Status),
		Steps:     episode.Steps,
		Duration:  episode.Duration.String(),
		Actions:   actions,
	}
	if runErr != nil {
		summary.Error = runErr.Error()
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return err
	}
	return runErr
}

// readPercepts reads whitespace-separated percepts.
func readPercepts(f *os.File) ([]string, error) {
	var percepts []string
	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		percepts = append(percepts, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return percepts, nil
}

// initLogging configures the global logger from the spec.
func initLogging(spec config.LoggingSpec) {
	cfg := logging.DefaultConfig()
	if spec.Level != "" {
		cfg.Level = spec.Level
	}
	if spec.Format != "" {
		cfg.Format = spec.Format
	}
	cfg.Output = os.Stderr
	logging.Init(cfg)
}

// openStore builds the ledger store the spec asks for. The returned
// closer is a no-op for backends without resources to release.
func openStore(spec config.StorageSpec) (ledger.Store, func(), error) {
	switch spec.Backend {
	case "", "memory":
		return memory.NewEpisodeStore(), func() {}, nil
	case "filesystem":
		store, err := filesystem.NewEpisodeStore(spec.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "badger":
		store, err := badgerstore.NewEpisodeStore(badgerstore.DefaultConfig(), badgerstore.WithDir(spec.Path))
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logging.Warn().Add(logging.ErrorField(err)).Msg("failed to close ledger store")
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", spec.Backend)
	}
}
