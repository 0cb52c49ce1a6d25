package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trisk/internal/logging"
)

var historyOutput string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect previously analyzed changes",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored change analyses, newest first",
	Run:   runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <change-id>",
	Short: "Print the stored findings snapshot for a change",
	Args:  cobra.ExactArgs(1),
	Run:   runHistoryShow,
}

func init() {
	historyShowCmd.Flags().StringVar(&historyOutput, "output", "json", "Output format (json, human)")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) {
	root := mustGetRoot()
	cfg := loadConfig(root, logging.Nop())
	logger := newLogger(cfg)

	store := mustGetStore(root, cfg, logger)
	defer store.Close()

	entries, err := store.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing history: %v\n", err)
		os.Exit(1)
	}

	if len(entries) == 0 {
		fmt.Println("No analyzed changes stored yet.")
		return
	}

	fmt.Printf("%-20s %s\n", "CHANGE", "ANALYZED AT")
	for _, e := range entries {
		fmt.Printf("%-20s %s\n", e.ChangeID, e.GeneratedAt)
	}
}

func runHistoryShow(cmd *cobra.Command, args []string) {
	root := mustGetRoot()
	cfg := loadConfig(root, logging.Nop())
	logger := newLogger(cfg)

	store := mustGetStore(root, cfg, logger)
	defer store.Close()

	f, err := store.Get(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
		os.Exit(1)
	}
	if f == nil {
		fmt.Fprintf(os.Stderr, "No stored analysis for change %q\n", args[0])
		os.Exit(1)
	}

	printFindings(f, historyOutput)
}
