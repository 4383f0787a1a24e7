package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tuner/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently played stations",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

var (
	flagClear  bool
	flagRemove string
	flagLimit  int
)

func init() {
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the listening log")
	historyCmd.Flags().StringVar(&flagRemove, "remove", "", "Delete entries for a station ID")
	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "Number of entries to show")
}

func historyRun(cmd *cobra.Command, args []string) error {
	if flagLimit < 1 {
		return fmt.Errorf("invalid --limit %d (must be at least 1)", flagLimit)
	}

	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	switch {
	case flagClear:
		if err := store.Clear(ctx); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	case flagRemove != "":
		if err := store.Remove(ctx, flagRemove); err != nil {
			return fmt.Errorf("removing %s: %w", flagRemove, err)
		}
		return nil
	}

	entries, err := store.Recent(ctx, flagLimit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history entries found.")
		return nil
	}
	for _, line := range history.FormatForDisplay(entries) {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
