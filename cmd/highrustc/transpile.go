package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harmony-labs/highrust/internal/config"
	"github.com/harmony-labs/highrust/internal/transpiler"
)

func newTranspileCmd() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "transpile",
		Short: "Transpile a single .hrs file into RS target text",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := input, output
			cfg, hasCfg := loadProjectOptions()
			if in == "" && hasCfg {
				in = cfg.Input
			}
			if out == "" && hasCfg {
				out = cfg.Output
			}
			if in == "" {
				return fmt.Errorf("--input is required")
			}

			var cfgOpts *config.Options
			if hasCfg {
				cfgOpts = cfg
			}

			if out == "" {
				// No --output and no config fallback: write the transpiled
				// text to stdout instead of deriving a file path.
				data, err := os.ReadFile(in)
				if err != nil {
					return fmt.Errorf("reading %s: %w", in, err)
				}
				rust, err := transpiler.TranspileSourceWithConfig(string(data), cfgOpts)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), rust)
				return nil
			}

			if err := transpiler.TranspileFileWithConfig(in, out, cfgOpts); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "path to the .hrs source file (required)")
	cmd.Flags().StringVar(&output, "output", "", "path to write the .rs output (writes to stdout when omitted)")

	return cmd
}
