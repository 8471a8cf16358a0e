package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dublimator.xyz/paned/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate the daemon configuration file without starting the daemon.

This is useful for pre-checking configuration before a deploy. The whitelist
CIDRs, thresholds and capture settings are checked with the same rules the
daemon applies at startup.

Examples:
  paned validate
  paned validate -c /etc/paned/config.yml`,
	Run: func(cmd *cobra.Command, args []string) {
		runValidateCommand()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidateCommand() {
	cfg, err := config.Load(configFile)
	if err != nil {
		exitWithError(fmt.Sprintf("INVALID: %s", configFile), err)
	}

	fmt.Printf("VALID: interface %q — thresholds syn=%d http=%d udp=%d, %d whitelist entries\n",
		cfg.Detector.Interface,
		cfg.Detector.ThresholdSYN,
		cfg.Detector.ThresholdHTTP,
		cfg.Detector.ThresholdUDP,
		len(cfg.Detector.Whitelist),
	)
}
