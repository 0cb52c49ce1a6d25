package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"trisk/internal/export"
	"trisk/internal/logging"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <change-id>",
	Short: "Export the tester checklist for an analyzed change",
	Long: `Export renders the stored findings of a change as a tester checklist.

Formats:
  html  focused checklist as a standalone HTML page
  pdf   the same checklist as a printable PDF
  json  the raw findings snapshot`,
	Args: cobra.ExactArgs(1),
	Run:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "html", "Export format (html, pdf, json)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file path (default: <out-dir>/<change-id>.<format>)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	root := mustGetRoot()
	cfg := loadConfig(root, logging.Nop())
	logger := newLogger(cfg)

	format := strings.ToLower(exportFormat)
	switch format {
	case "html", "pdf", "json":
	default:
		fmt.Fprintf(os.Stderr, "Unknown export format %q (want html, pdf or json)\n", exportFormat)
		os.Exit(1)
	}

	store := mustGetStore(root, cfg, logger)
	defer store.Close()

	changeID := args[0]
	f, err := store.Get(changeID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
		os.Exit(1)
	}
	if f == nil {
		fmt.Fprintf(os.Stderr, "No stored analysis for change %q. Run trisk analyze first.\n", changeID)
		os.Exit(1)
	}

	out := exportOut
	if out == "" {
		outDir := cfg.Export.OutDir
		if !filepath.IsAbs(outDir) {
			outDir = filepath.Join(root, outDir)
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			os.Exit(1)
		}
		out = filepath.Join(outDir, changeID+"."+format)
	}

	switch format {
	case "html":
		err = export.WriteHTML(f, out)
	case "pdf":
		err = export.WritePDF(f, out)
	case "json":
		err = export.WriteJSON(f, out)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s export: %v\n", format, err)
		os.Exit(1)
	}

	fmt.Printf("Exported %s checklist for %s to %s\n", format, changeID, out)
}
