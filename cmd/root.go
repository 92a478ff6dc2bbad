// Package cmd defines and implements the CLI commands for the camsnap
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roadwatch/camsnap/pkg/config"
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "camsnap",
		Short: "Scheduled still-image collector for fixed traffic cameras.",
		Long: `camsnap polls a remote traffic-camera API on a fixed cadence,
stores each camera's current image under a per-camera directory with a
time-ordered name, and optionally mirrors every file to a remote object
store. A run lasts a configured duration and only fetches inside a daily
active window.`,
		SilenceUsage: true,
	}

	cobra.OnInitialize(config.InitConfig)

	cmd.PersistentFlags().Bool("dev-logging", false, "use the colored development log encoder")
	_ = viper.BindPFlag("log.development", cmd.PersistentFlags().Lookup("dev-logging"))

	cmd.AddCommand(newPollCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
