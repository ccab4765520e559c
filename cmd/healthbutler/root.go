package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/healthbutler/healthbutler/config"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "healthbutler",
		Short:         "Personal health butler: meal analysis, calorie budgets and safe exercise advice",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (YAML)")

	root.AddCommand(
		newServeCmd(),
		newIngestCmd(),
	)
	return root
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		if _, err := os.Stat("healthbutler.yaml"); err == nil {
			cfgFile = "healthbutler.yaml"
		}
	}
	return config.Load(cfgFile)
}
