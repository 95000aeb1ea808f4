// Package cli implements the gorl command line interface
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/samuelfneumann/gorl/utils/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Environment variables read by the CLI. They may also be set in the
// env file given by --env-file.
const (
	EnvStore     = "GORL_STORE"
	EnvStoreKind = "GORL_STORE_KIND"
	EnvLogLevel  = "GORL_LOG_LEVEL"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// globals holds the flags shared by every command
type globals struct {
	envFile   string
	logLevel  string
	logFormat string
	storeKind string
	storePath string

	log *logrus.Logger
}

// NewRootCommand returns the gorl command with all subcommands
func NewRootCommand() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "gorl",
		Short:         "Train and serve turn-based reinforcement learning agents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.envFile, "env-file", ".env",
		"file of environment variables to load")
	flags.StringVar(&g.logLevel, "log-level", "info",
		"log level (trace, debug, info, warn, error), or $"+EnvLogLevel)
	flags.StringVar(&g.logFormat, "log-format", "text",
		"log format (text, json)")
	flags.StringVar(&g.storeKind, "store-kind", "file",
		"agent store (file, badger), or $"+EnvStoreKind)
	flags.StringVar(&g.storePath, "store", "agents",
		"path of the agent store, or $"+EnvStore)

	root.AddCommand(
		newTrainCommand(g),
		newNetworkCommand(g),
		newServeCommand(g),
		newShowCommand(g),
	)
	return root
}

// setup loads the env file and creates the logger. Flags given on the
// command line take precedence over environment variables.
func (g *globals) setup(cmd *cobra.Command) error {
	err := godotenv.Load(g.envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not load %v: %w", g.envFile, err)
	}

	flags := cmd.Flags()
	fromEnv := func(flag, env string, value *string) {
		if v, ok := os.LookupEnv(env); ok && !flags.Changed(flag) {
			*value = v
		}
	}
	fromEnv("log-level", EnvLogLevel, &g.logLevel)
	fromEnv("store-kind", EnvStoreKind, &g.storeKind)
	fromEnv("store", EnvStore, &g.storePath)

	g.log, err = logging.New(cmd.ErrOrStderr(), g.logLevel,
		logging.Format(g.logFormat))
	return err
}

// Execute runs the gorl command and returns the exit code
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
		return ExitError
	}
	return ExitSuccess
}
