package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tuner/internal/controller"
	"tuner/internal/station"
)

// runMsg carries work posted to the controller's goroutine, which in TUI
// mode is the bubbletea update loop.
type runMsg func()

// TUI is the bubbletea model. It implements controller.View; the
// controller only calls it from inside Update.
type TUI struct {
	stations []station.Station
	cursor   int
	active   string
	name     string
	status   string
	playing  bool
	alert    string
	volume   int

	ctl     Controls
	startup func()
	keys    keyMap
	help    help.Model
	bar     progress.Model
	width   int
}

// NewTUI creates the model with the slider at volume.
func NewTUI(volume int) *TUI {
	return &TUI{
		volume: clampVolume(volume),
		keys:   defaultKeyMap(),
		help:   help.New(),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(24), progress.WithoutPercentage()),
	}
}

// Bind attaches the controller. startup, if set, runs once on the update
// loop when the program starts.
func (m *TUI) Bind(ctl Controls, startup func()) {
	m.ctl = ctl
	m.startup = startup
}

// Post returns a controller.Post that delivers work through p.
func Post(p *tea.Program) controller.Post {
	return func(fn func()) { p.Send(runMsg(fn)) }
}

func (m *TUI) Render(stations []station.Station) {
	m.stations = stations
	if m.cursor >= len(stations) {
		m.cursor = 0
	}
}

func (m *TUI) Highlight(id string) {
	m.active = id
	for i, s := range m.stations {
		if s.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m *TUI) SetStatusText(text string)  { m.status = text }
func (m *TUI) SetIndicator(playing bool)  { m.playing = playing }
func (m *TUI) SetStationName(name string) { m.name = name }
func (m *TUI) Alert(msg string)           { m.alert = msg }

func (m *TUI) Init() tea.Cmd {
	if m.startup == nil {
		return nil
	}
	fn := m.startup
	return func() tea.Msg { return runMsg(fn) }
}

func (m *TUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runMsg:
		msg()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// The alert blocks input until dismissed.
		if m.alert != "" {
			m.alert = ""
			return m, nil
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *TUI) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.stations)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		if m.cursor < len(m.stations) {
			m.ctl.SelectStation(m.stations[m.cursor])
		}
	case key.Matches(msg, m.keys.Toggle):
		m.ctl.TogglePlay()
	case key.Matches(msg, m.keys.VolumeUp):
		m.setVolume(m.volume + volumeStep)
	case key.Matches(msg, m.keys.VolumeDown):
		m.setVolume(m.volume - volumeStep)
	case key.Matches(msg, m.keys.VolumeSet):
		m.setVolume(int(msg.Runes[0]-'0') * 10)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *TUI) setVolume(v int) {
	m.volume = clampVolume(v)
	m.ctl.SetVolume(m.volume)
}

func (m *TUI) View() string {
	if m.alert != "" {
		box := alertStyle.Render(m.alert + "\n\n" + statusStyle.Render("press any key"))
		if m.width > 0 {
			return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, box)
		}
		return box
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("tuner"))
	b.WriteString("\n\n")

	if len(m.stations) == 0 {
		b.WriteString(statusStyle.Render("  no stations configured"))
		b.WriteString("\n")
	}
	for i, s := range m.stations {
		line := s.Name
		if s.ID == m.active {
			line = activeStyle.Render(line)
		}
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> ") + line)
		} else {
			b.WriteString(itemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.playerBar())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *TUI) playerBar() string {
	name := m.name
	if name == "" {
		name = "-"
	}
	status := statusStyle.Render(m.status)
	if m.status == controller.StatusError {
		status = errorStyle.Render(m.status)
	}

	now := fmt.Sprintf("%s  %s  %s", indicator(m.playing), name, status)
	vol := fmt.Sprintf("vol %s %3d%%", m.bar.ViewAs(float64(m.volume)/100), m.volume)
	return barStyle.Render(now + "\n" + vol)
}
