// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"tuner/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagPlayer    string
	flagUI        string
	flagVolume    int
	flagStations  string
	flagNoHistory bool
	flagDebug     bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tuner [station-id]",
	Short: "Listen to internet radio from the terminal",
	Long: `Tuner plays internet radio stations through mpv.
Pick a station from the list, pause and resume it, and adjust the volume.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              playRun,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Audio player: mpv")
	rootCmd.PersistentFlags().StringVarP(&flagUI, "ui", "u", "", "Interface: auto | tui | plain")
	rootCmd.PersistentFlags().IntVarP(&flagVolume, "volume", "v", -1, "Initial volume 0-100")
	rootCmd.PersistentFlags().StringVarP(&flagStations, "stations", "s", "", "Stations file")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Do not record played stations")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging")

	rootCmd.AddCommand(stationsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagUI != "" {
		cfg.UI = flagUI
	}
	if flagVolume >= 0 {
		cfg.Volume = flagVolume
	}
	if flagStations != "" {
		cfg.StationsFile = flagStations
	}
	if flagNoHistory {
		cfg.History = false
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.SetOutput(os.Stderr)
	if cfg.Debug {
		log.SetPrefix("[tuner] ")
	} else {
		log.SetFlags(0)
	}

	return nil
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		log.Printf(format, args...)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tuner %s\n", Version)
	},
}
