package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "shadowcity",
		Short:        "Consolidate OSM buildings into printable city blocks",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(validateConfigCmd())
	return rootCmd
}
