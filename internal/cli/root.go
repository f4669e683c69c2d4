// Package cli implements the trayctl control commands.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trayctl",
	Short: "Control the CloudToLocalLLM tray daemon",
	Long: `Trayctl inspects and controls a running CloudToLocalLLM tray daemon.
It talks to the daemon over its local call channel.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add subcommands (alphabetical)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(versionCmd)
}
