// Command memescan runs the continuous memecoin signal engine: a
// periodic scan cycle that pulls candidate tokens from three discovery
// feeds, runs each through the full evaluation pipeline, and emits
// signals for whatever clears every gate.
package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	memescanlog "github.com/sawpanic/memescan/internal/log"
)

// version is stamped at build time via -ldflags; dev builds fall back to
// this placeholder.
var version = "dev"

func main() {
	var (
		logLevel string
		pretty   bool
	)

	rootCmd := &cobra.Command{
		Use:     "memescan",
		Short:   "Continuous memecoin signal engine",
		Version: version,
		Long: `memescan scans newly-listed and trending tokens on a fixed
interval, fuses market, holder, safety, and on-chain-clustering data per
candidate, and emits a signal for every candidate that clears the
screening, safety, and risk gates.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			memescanlog.Init(logLevel, pretty)
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Console-format logs instead of JSON")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
