package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"trisk/internal/logging"
)

var catalogPath string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate the app catalog",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective app catalog",
	Run:   runCatalogShow,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the catalog for problems",
	Run:   runCatalogValidate,
}

func init() {
	catalogCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "App catalog path (default: configured or bundled)")
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogShow(cmd *cobra.Command, args []string) {
	root := mustGetRoot()
	cfg := loadConfig(root, logging.Nop())
	logger := newLogger(cfg)

	cat := loadCatalog(root, catalogPath, cfg, logger)
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func runCatalogValidate(cmd *cobra.Command, args []string) {
	root := mustGetRoot()
	cfg := loadConfig(root, logging.Nop())
	logger := newLogger(cfg)

	cat := loadCatalog(root, catalogPath, cfg, logger)
	problems := cat.Validate()
	if len(problems) == 0 {
		fmt.Printf("Catalog OK: %d apps\n", len(cat.Apps))
		return
	}

	fmt.Fprintf(os.Stderr, "Catalog has %d problem(s):\n", len(problems))
	for _, p := range problems {
		fmt.Fprintf(os.Stderr, "  - %s\n", strings.TrimSpace(p))
	}
	os.Exit(1)
}
