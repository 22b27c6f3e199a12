package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rjeczalik/notify"
	"github.com/spf13/cobra"

	"github.com/harmony-labs/highrust/internal/config"
	"github.com/harmony-labs/highrust/internal/transpiler"
)

func newWatchCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a .hrs file and retranspile it on every change",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := path
			cfg, hasCfg := loadProjectOptions()
			if p == "" && hasCfg {
				if len(cfg.WatchPaths) > 0 {
					p = cfg.WatchPaths[0]
				} else {
					p = cfg.Input
				}
			}
			if p == "" {
				return fmt.Errorf("--path is required")
			}
			var cfgOpts *config.Options
			if hasCfg {
				cfgOpts = cfg
			}
			return runWatch(cmd, p, cfgOpts)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "path to the .hrs file to watch (required)")

	return cmd
}

// runWatch drives a notify event loop and serializes recompilation onto
// the caller's goroutine via the events channel, one TranspileFile call
// per observed write — concurrency lives here, never in the compiler core.
func runWatch(cmd *cobra.Command, path string, cfgOpts *config.Options) error {
	events := make(chan notify.EventInfo, 1)
	if err := notify.Watch(path, events, notify.Write); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	defer notify.Stop(events)

	plain := !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd())

	recompile := func() {
		runID := uuid.New().String()
		out := config.DefaultOutputPath(path)
		err := transpiler.TranspileFileWithConfig(path, out, cfgOpts)

		status := fmt.Sprintf("[%s] %s -> %s", runID[:8], path, out)
		if err != nil {
			status = fmt.Sprintf("[%s] %s: %s", runID[:8], path, err)
		}

		if plain {
			fmt.Fprintln(os.Stderr, status)
		} else {
			fmt.Fprintf(os.Stderr, "\r%s", status)
		}
	}

	recompile()
	for range events {
		recompile()
	}
	return nil
}
