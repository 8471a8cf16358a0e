// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "paned",
	Short: "paned - Host monitoring daemon with volumetric DoS detection",
	Long: `paned is a host-level monitoring daemon. It watches live network traffic
for volumetric denial-of-service attacks, polls container runtime statistics
and system resource usage, and reacts by persisting incident records, pushing
alerts through a Telegram bot and exposing the current snapshot over HTTP.

Components:
  - DoS detector: SYN / HTTP / UDP flood classification per source IP
  - Metrics poller: host CPU/RAM/disk plus Docker container stats
  - HTTP API: read access to metrics, incidents and alert settings
  - Telegram bot: alert delivery and on-demand incident reports`,
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "/etc/paned/config.yml",
		"config file path")
}

// exitWithError prints error message and exits with code 1
func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
