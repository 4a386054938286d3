package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/templui/filenest/cmd/filenestctl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "filenestctl",
		Short:        "Operator tools for filenest",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.TokenCmd())
	rootCmd.AddCommand(cmd.ManifestCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
