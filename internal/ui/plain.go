package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tuner/internal/controller"
	"tuner/internal/station"
)

const plainHelp = "commands: <n> play station n, p play/pause, v <0-100> volume, l list, q quit"

// Plain is a line-oriented View for non-interactive terminals. Output is
// written from the controller's goroutine only.
type Plain struct {
	w        io.Writer
	stations []station.Station
	active   string
	name     string
	status   string
	playing  bool
}

// NewPlain returns a Plain view writing to w.
func NewPlain(w io.Writer) *Plain {
	return &Plain{w: w}
}

func (p *Plain) Render(stations []station.Station) {
	p.stations = stations
	p.list()
}

func (p *Plain) Highlight(id string) { p.active = id }

func (p *Plain) SetStatusText(text string) {
	p.status = text
	p.statusLine()
}

// SetIndicator reprints the status line when the icon changes, since the
// status text and the indicator are updated independently.
func (p *Plain) SetIndicator(playing bool) {
	if playing == p.playing {
		return
	}
	p.playing = playing
	if p.status != "" {
		p.statusLine()
	}
}

func (p *Plain) SetStationName(name string) { p.name = name }

func (p *Plain) statusLine() {
	name := p.name
	if name == "" {
		name = "-"
	}
	fmt.Fprintf(p.w, "[%s] %s: %s\n", indicator(p.playing), name, p.status)
}

func (p *Plain) Alert(msg string) {
	fmt.Fprintf(p.w, "! %s\n", msg)
}

func (p *Plain) list() {
	if len(p.stations) == 0 {
		fmt.Fprintln(p.w, "no stations configured")
		return
	}
	for i, s := range p.stations {
		mark := " "
		if s.ID == p.active {
			mark = "*"
		}
		fmt.Fprintf(p.w, "%s%2d. %s\n", mark, i+1, s.Name)
	}
}

// Run reads commands from r until "q", EOF, or ctx is done. Each command
// is posted to the controller's goroutine.
func (p *Plain) Run(ctx context.Context, r io.Reader, ctl Controls, post controller.Post) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	post(func() { fmt.Fprintln(p.w, plainHelp) })

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			if err != nil {
				return fmt.Errorf("reading commands: %w", err)
			}
			return nil
		case line := <-lines:
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "q" || line == "quit" {
				return nil
			}
			post(func() { p.exec(line, ctl) })
		}
	}
}

func (p *Plain) exec(line string, ctl Controls) {
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "p":
		ctl.TogglePlay()
	case "l":
		p.list()
	case "v":
		if err := ctl.SetVolumeText(arg); err != nil {
			fmt.Fprintf(p.w, "invalid volume %q\n", strings.TrimSpace(arg))
			return
		}
		fmt.Fprintf(p.w, "volume %s\n", strings.TrimSpace(arg))
	case "h", "?", "help":
		fmt.Fprintln(p.w, plainHelp)
	default:
		n, err := strconv.Atoi(cmd)
		if err != nil {
			fmt.Fprintf(p.w, "unknown command %q\n", line)
			return
		}
		if n < 1 || n > len(p.stations) {
			fmt.Fprintf(p.w, "no station %d\n", n)
			return
		}
		ctl.SelectStation(p.stations[n-1])
	}
}
