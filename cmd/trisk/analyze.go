package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"trisk/internal/analysis"
	"trisk/internal/logging"
	"trisk/internal/objects"
	"trisk/internal/scoring"
)

var (
	analyzeChangeID string
	analyzeInput    string
	analyzeFormat   string
	analyzeWindow   int
	analyzeCatalog  string
	analyzeOutput   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a changed-object list and compute its risk assessment",
	Long: `Analyze parses a changed-object export (free text, CSV or JSON), maps the
objects onto the app catalog, detects overlaps with previously analyzed
changes, scores the change and persists the findings snapshot.

Examples:
  trisk analyze --input objects.txt
  trisk analyze --change-id CHG-1042 --input export.csv --format csv
  cat transport.txt | trisk analyze --input - --output human
  trisk analyze --input objects.json --catalog catalog.yaml --window 60`,
	Run: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeChangeID, "change-id", "", "Change identifier (default: generated)")
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "Input file with changed objects, or - for stdin")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "auto", "Input format (auto, text, csv, json)")
	analyzeCmd.Flags().IntVar(&analyzeWindow, "window", 0, "Overlap lookback window in days (default: configured)")
	analyzeCmd.Flags().StringVar(&analyzeCatalog, "catalog", "", "App catalog path (default: configured or bundled)")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "json", "Output format (json, human)")
	_ = analyzeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	root := mustGetRoot()
	cfg := loadConfig(root, logging.Nop())
	logger := newLogger(cfg)

	format, err := parseInputFormat(analyzeFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	raw, err := readInput(analyzeInput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	changeID := analyzeChangeID
	if changeID == "" {
		changeID = "CHG-" + strings.ToUpper(uuid.NewString()[:8])
	}

	window := analyzeWindow
	if window <= 0 {
		window = cfg.Analysis.OverlapWindowDays
	}

	store := mustGetStore(root, cfg, logger)
	defer store.Close()

	cat := loadCatalog(root, analyzeCatalog, cfg, logger)
	analyzer := analysis.New(store, cat, scoring.WeightsFromConfig(cfg.Scoring), logger)

	f, err := analyzer.Run(analysis.Request{
		ChangeID:   changeID,
		Input:      raw,
		Format:     format,
		WindowDays: window,
	})
	if err != nil {
		if errors.Is(err, analysis.ErrNoObjects) {
			fmt.Fprintln(os.Stderr, "No objects found in input. Check the format or pass --format explicitly.")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	printFindings(f, analyzeOutput)
}

// parseInputFormat validates the --format flag value.
func parseInputFormat(s string) (objects.Format, error) {
	f := objects.Format(strings.ToLower(s))
	switch f {
	case objects.FormatAuto, objects.FormatText, objects.FormatCSV, objects.FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown input format %q (want auto, text, csv or json)", s)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

