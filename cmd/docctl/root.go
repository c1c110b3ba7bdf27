package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"docflow/internal/app"
	"docflow/internal/config"
	"docflow/pkg/logger"
)

var version = "dev"

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docflow-ctl",
	Short: "docctl - operator CLI for the docflow document engine",
	Long: `docctl runs maintenance tasks against a docflow database.

Configuration is read from the environment and an optional .env file,
using the same keys as the server and the worker.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		if log, err = logger.New(logger.Config{Level: level, Development: true, OutputPaths: []string{"stderr"}}); err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		logger.SetDefault(log)
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

// withContainer opens the database for the duration of fn.
func withContainer(ctx context.Context, fn func(*app.Container) error) error {
	c, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
