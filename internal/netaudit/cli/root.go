// Package cli wires the netaudit commands together.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ehsaniara/netaudit/pkg/config"
	"github.com/ehsaniara/netaudit/pkg/logger"
)

var (
	cfg        *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "netaudit",
	Short: "netaudit - SSH state collection for network devices",
	Long: `netaudit connects to routers over SSH and collects operational state
layer by layer: health, interfaces, igp, bgp, mpls, vpn, static, console.

Raw command output is archived per device and layer, and a run report
summarizes what succeeded, what failed and which devices were down.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var usedPath string
		var err error
		cfg, usedPath, err = config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if level, err := logger.ParseLevel(cfg.LogLevel); err == nil {
			logger.SetLevel(level)
		}
		logger.SetGlobalFormat(cfg.LogFormat)

		if usedPath != "" {
			logger.Debug("configuration loaded", "path", usedPath)
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to configuration file (searches common locations if not specified)")

	rootCmd.AddCommand(newCollectCmd())
	rootCmd.AddCommand(newLayersCmd())
	rootCmd.AddCommand(newVersionCmd())
}
