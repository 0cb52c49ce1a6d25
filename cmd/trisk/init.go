package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"trisk/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize trisk configuration",
	Long:  "Creates a .trisk/ directory with default configuration in the current directory",
	Run:   runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes existing .trisk directory)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	root := mustGetRoot()

	triskDir := filepath.Join(root, ".trisk")
	if _, statErr := os.Stat(triskDir); statErr == nil {
		if !initForce {
			// Idempotent behavior: already initialized is success (CI-friendly)
			fmt.Println("trisk already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(triskDir, "config.json"))
			fmt.Println("\nRun 'trisk init --force' to reinitialize.")
			return
		}
		if removeErr := os.RemoveAll(triskDir); removeErr != nil {
			fmt.Fprintf(os.Stderr, "Error removing existing .trisk directory: %v\n", removeErr)
			os.Exit(1)
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(root); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("trisk initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", filepath.Join(triskDir, "config.json"))
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Point catalog.path at your app catalog (JSON, YAML or TOML)")
	fmt.Println("  2. Run 'trisk analyze --input <objects-file>' on a change")
}
