// Package cli provides the apisim CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/apisim/apisim/pkg/logging"
	"github.com/apisim/apisim/pkg/sim/design"
	"github.com/apisim/apisim/pkg/sim/retail"
	"github.com/apisim/apisim/pkg/sim/sourcing"
	"github.com/apisim/apisim/pkg/store"
)

var (
	// Persistent flags available to all subcommands
	logLevel  string
	logFormat string

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "apisim",
	Short: "apisim runs deterministic in-process SaaS API simulations",
	Long: `apisim hosts deterministic simulations of third-party SaaS APIs
(design tools, sourcing platforms, retail backends) backed by an
in-memory record store. State can be saved to and loaded from JSON or
YAML snapshot files, and seed datasets can be validated before use.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
}

// newLogger builds the logger configured by the persistent flags.
func newLogger() *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(logLevel),
		Format: logging.ParseFormat(logFormat),
	})
}

// simNames lists the simulations this binary knows how to construct.
var simNames = []string{"design", "retail", "sourcing"}

// newSimStore constructs the named simulation with its default seed and
// returns its backing store.
func newSimStore(name string) (*store.Store, error) {
	log := newLogger()
	switch name {
	case "design":
		return design.New(design.WithLogger(log)).Store(), nil
	case "retail":
		return retail.New(retail.WithLogger(log)).Store(), nil
	case "sourcing":
		return sourcing.New(sourcing.WithLogger(log)).Store(), nil
	default:
		return nil, fmt.Errorf("unknown simulation %q (one of: design, retail, sourcing)", name)
	}
}
