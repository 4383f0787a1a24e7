package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tuner/internal/config"
	"tuner/internal/controller"
	"tuner/internal/history"
	"tuner/internal/player"
	"tuner/internal/station"
	"tuner/internal/ui"
)

// playRun is the default command: tuner [station-id]
func playRun(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	var startID string
	if len(args) == 1 {
		startID = args[0]
		if _, ok := catalog.Lookup(startID); !ok {
			return fmt.Errorf("unknown station %q (see 'tuner stations')", startID)
		}
	}

	backend, err := player.New(cfg.Player)
	if err != nil {
		return err
	}
	if !backend.Available() {
		return fmt.Errorf("%s not found in PATH", backend.Name())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tui := useTUI(cfg.UI)
	logger, closeLog, err := newLogger(tui)
	if err != nil {
		return err
	}
	defer closeLog()

	debugf("starting %s with %d stations", backend.Name(), catalog.Len())
	if err := backend.SetVolume(float64(cfg.Volume) / 100); err != nil {
		return err
	}
	if err := backend.Start(ctx); err != nil {
		return fmt.Errorf("starting %s: %w", backend.Name(), err)
	}
	defer backend.Close()

	opts := []controller.Option{controller.WithLogger(logger)}
	if cfg.History {
		store, err := openHistory()
		if err != nil {
			// The player still works without a listening log.
			logger.Printf("history disabled: %v", err)
		} else {
			defer store.Close()
			opts = append(opts, controller.WithPlayHook(recordPlay(store, logger)))
		}
	}

	if tui {
		return runTUI(ctx, catalog, backend, startID, opts)
	}
	return runPlain(ctx, catalog, backend, startID, opts)
}

func runTUI(ctx context.Context, catalog *station.Catalog, out player.Output, startID string, opts []controller.Option) error {
	m := ui.NewTUI(cfg.Volume)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	ctl := controller.New(catalog, out, m, ui.Post(p), opts...)
	ctl.SetVolume(cfg.Volume)
	ctl.Watch(ctx)

	var startup func()
	if startID != "" {
		startup = func() { ctl.SelectByID(startID) }
	}
	m.Bind(ctl, startup)

	_, err := p.Run()
	ctl.Close()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}

func runPlain(ctx context.Context, catalog *station.Catalog, out player.Output, startID string, opts []controller.Option) error {
	loop := controller.NewLoop()
	view := ui.NewPlain(os.Stdout)

	ctl := controller.New(catalog, out, view, loop.Post, opts...)
	ctl.SetVolume(cfg.Volume)
	ctl.Watch(ctx)

	loopCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	go func() {
		loop.Run(loopCtx)
		close(stopped)
	}()

	if startID != "" {
		loop.Post(func() { ctl.SelectByID(startID) })
	}

	err := view.Run(ctx, os.Stdin, ctl, loop.Post)
	cancel()
	<-stopped
	ctl.Close()
	return err
}

// useTUI resolves the ui setting. "auto" picks the terminal UI only when
// both stdin and stdout are terminals.
func useTUI(mode string) bool {
	switch strings.ToLower(mode) {
	case "tui":
		return true
	case "plain":
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// newLogger returns the logger for playback diagnostics. The terminal UI
// owns the screen, so it logs to a file instead of stderr.
func newLogger(tui bool) (*log.Logger, func(), error) {
	if !tui {
		return log.New(os.Stderr, "[tuner] ", log.LstdFlags), func() {}, nil
	}

	path, err := cfg.LogPath()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	debugf("logging to %s", path)
	return log.New(f, "[tuner] ", log.LstdFlags), func() { f.Close() }, nil
}

func loadCatalog() (*station.Catalog, error) {
	path, err := cfg.StationsPath()
	if err != nil {
		return nil, err
	}
	debugf("stations file: %s", path)
	catalog, err := station.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading stations: %w", err)
	}
	return catalog, nil
}

func openHistory() (*history.Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}

// recordPlay runs on the controller's goroutine, so it keeps the write
// short with its own timeout.
func recordPlay(store *history.Store, logger *log.Logger) func(station.Station) {
	return func(s station.Station) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := store.Save(ctx, s, time.Now()); err != nil {
			logger.Printf("recording %s: %v", s.ID, err)
		}
	}
}
