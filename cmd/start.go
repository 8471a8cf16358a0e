package cmd

import (
	"github.com/spf13/cobra"

	"dublimator.xyz/paned/internal/agent"
	"dublimator.xyz/paned/internal/config"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	Long:  "Start paned in the foreground and begin monitoring.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		return agent.Run(cfg)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
