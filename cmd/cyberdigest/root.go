package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hoanghai1803/cyberdigest/internal/config"
	"github.com/hoanghai1803/cyberdigest/internal/report"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cyberdigest",
		Short: "Summarize cybersecurity news into a markdown report",
		Long: `cyberdigest fetches keyword-matched stories from Hacker News and
BleepingComputer, summarizes each one with a language model, and writes a
timestamped markdown report under the log directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			a, err := newApp(cfg, nil)
			if err != nil {
				return err
			}

			path, err := a.builder.Run(cmd.Context())
			switch {
			case errors.Is(err, report.ErrNoKeywords), errors.Is(err, report.ErrNoStories):
				// Already logged; an empty run is not a failure.
				return nil
			case err != nil:
				return fmt.Errorf("running report: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", path)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.toml", "path to config file")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

// setupLogging installs the default slog handler, at debug level when asked.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
