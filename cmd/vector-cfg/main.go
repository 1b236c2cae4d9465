// Vector-cfg is a configuration utility for Anki Vector robots.
//
// It manages the robot configuration store: the per-robot connection and
// credential profiles (network address, identity GUID, TLS certificate,
// optional remote-host override) that SDK programs use to reach and
// authenticate with a robot.
//
// Usage:
//
//	vector-cfg [command] [flags]
//
// See 'vector-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkrall/vectorcfg/internal/logging"
	"github.com/mkrall/vectorcfg/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vector-cfg",
	Short: "Vector Robot Configuration Utility",
	Long: `A standalone utility for managing Anki Vector robot profiles.

Lists, inspects, and edits the robot configuration store
(~/.anki_vector/sdk_config.ini): per-robot connection addresses,
authentication GUIDs, and TLS certificates.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.InitializeFromEnv()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vector-cfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}
