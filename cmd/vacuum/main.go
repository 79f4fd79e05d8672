// Command vacuum solves vacuum-cleaner grid puzzles.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/brensch/vacuum/config"
	"github.com/brensch/vacuum/game"
	"github.com/brensch/vacuum/logging"
	"github.com/brensch/vacuum/search"
)

// app carries state shared by every subcommand.
type app struct {
	configPath    string
	logLevel      string
	logFormat     string
	heuristic     string
	validateOnPop bool

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "vacuum",
		Short:        "Find the cheapest cleaning route for vacuum grid puzzles",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text, json or pretty")
	flags.StringVar(&a.heuristic, "heuristic", "", "Heuristic: "+heuristicNames())
	flags.BoolVar(&a.validateOnPop, "validate-on-pop", false, "Skip frontier entries superseded by a cheaper path")

	root.AddCommand(
		newSolveCmd(a),
		newFetchCmd(a),
		newViewCmd(a),
		newServeCmd(a),
		newGenerateCmd(a),
	)
	return root
}

// setup loads configuration and applies flag overrides.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if flags.Changed("heuristic") {
		cfg.Search.Heuristic = a.heuristic
	}
	if flags.Changed("validate-on-pop") {
		cfg.Search.ValidateOnPop = a.validateOnPop
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Format, level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) solver() (*search.Solver, error) {
	sc, err := a.cfg.Search.ToSearch(a.logger)
	if err != nil {
		return nil, err
	}
	return search.New(sc), nil
}

func heuristicNames() string {
	var s string
	for i, h := range game.Heuristics() {
		if i > 0 {
			s += ", "
		}
		s += h.String()
	}
	return s
}
