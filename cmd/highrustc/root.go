package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/harmony-labs/highrust/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "highrustc",
		Short:         "Transpile HighRust (.hrs) source into RS target text",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(os.Stdout)

	root.AddCommand(newTranspileCmd())
	root.AddCommand(newVersionCmd())
	root.AddCommand(newWatchCmd())

	return root
}

// loadProjectOptions looks for a highrustc.yaml/.yml walking up from the
// current directory and returns its parsed Options, if any were found.
func loadProjectOptions() (*config.Options, bool) {
	path, err := config.FindOptions(".")
	if err != nil || path == "" {
		return nil, false
	}
	opts, err := config.LoadOptions(path)
	if err != nil {
		return nil, false
	}
	return opts, true
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the highrustc version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println(config.Version)
			return nil
		},
	}
}
