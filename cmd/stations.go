package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"tuner/internal/directory"
	"tuner/internal/station"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List configured stations",
	Args:  cobra.NoArgs,
	RunE:  stationsRun,
}

var importCmd = &cobra.Command{
	Use:   "import <url>",
	Short: "Add the stream links found on a web page",
	Args:  cobra.ExactArgs(1),
	RunE:  importRun,
}

var flagDryRun bool

func init() {
	importCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "Show what would be added without saving")
	stationsCmd.AddCommand(importCmd)
}

func stationsRun(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	if catalog.Len() == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stations configured.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, s := range catalog.Stations() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Name, s.URL)
	}
	return w.Flush()
}

func importRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	debugf("importing stations from %s", args[0])
	found, err := directory.New().Fetch(ctx, args[0])
	if err != nil {
		return err
	}
	debugf("found %d stream links", len(found))

	if flagDryRun {
		for _, s := range found {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.ID, s.URL)
		}
		return nil
	}

	path, err := cfg.StationsPath()
	if err != nil {
		return err
	}
	added, err := station.Merge(path, found)
	if err != nil {
		return fmt.Errorf("saving stations: %w", err)
	}
	if len(added) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No new stations found.")
		return nil
	}
	for _, s := range added {
		fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", s.ID, s.Name)
	}
	fmt.Fprintf(os.Stderr, "%d station(s) written to %s\n", len(added), path)
	return nil
}
