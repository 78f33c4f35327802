// Package cmd provides the command-line interface for netsim.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "netsim",
	Short: "netsim runs message-exchange scenarios on the in-process network simulator.",
	Long: `netsim runs message-exchange scenarios on the in-process network ` +
		`simulator. Scenarios open virtual sockets in one simulation context ` +
		`and exchange opaque byte messages through it, with traces recorded ` +
		`to a database and a live monitoring server.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// A .env file may carry defaults such as NETSIM_MONITOR_PORT.
		// A missing file is fine.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
