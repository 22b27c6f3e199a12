// Command highrustc transpiles HighRust (.hrs) source into RS target text.
package main

import "os"

func main() {
	// Execute already reports the error on stderr (SilenceErrors is off).
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
