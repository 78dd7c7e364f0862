package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/diagraph/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "diagraph",
	Short: "diagraph is a dialog policy engine for authored dialog graphs",
	Long: `diagraph walks authored dialog graphs one turn at a time: it renders
system utterances, asks for variables, branches on logic templates and
updates the belief state.

Graphs are read from editor exports (.json, .yaml), SQLite databases
(.db) or Loam directories of node documents.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringP("source", "s", "", "Graph source: a graph file, a SQLite database or a Loam directory")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log every node the engine enters")
}

// setup builds the application from the persistent flags.
func setup(ctx context.Context, cmd *cobra.Command, withMetrics bool) (*cli.App, error) {
	flags := cmd.Flags()
	opts := cli.Options{Metrics: withMetrics}
	opts.ConfigPath, _ = flags.GetString("config")
	opts.Source, _ = flags.GetString("source")
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.Debug, _ = flags.GetBool("debug")
	return cli.Setup(ctx, opts)
}
