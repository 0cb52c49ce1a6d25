package main

import (
	"github.com/spf13/cobra"

	"trisk/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "trisk",
	Short: "trisk - Transport Risk Analyzer",
	Long: `trisk analyzes a list of changed software objects from a change-management
export and produces a structured risk assessment: which downstream applications
are impacted, which prior changes overlap in object scope, and a normalized
risk score per object and per change.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("trisk version {{.Version}}\n")
}
