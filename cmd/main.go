package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:          "boardroom",
		Short:        "DPA Executive Board: pitch an idea, watch the board argue it out",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newConsultCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
