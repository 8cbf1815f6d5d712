package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/matchdex/internal/config"
)

const app = "matchdex"

var (
	// Used for flags.
	envName string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "matchdex scores clients against candidates and curates recommendation slates",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", config.GetEnv(),
		"environment name, selects config/<env>.yaml")
}
