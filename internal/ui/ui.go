// Package ui binds the player controller to a terminal. Both adapters
// implement controller.View: TUI is a bubbletea program, Plain reads
// commands line by line for pipes and dumb terminals.
package ui

import "tuner/internal/station"

// Controls is the input side of the controller.
type Controls interface {
	SelectStation(s station.Station)
	TogglePlay() error
	SetVolume(raw int)
	SetVolumeText(raw string) error
}

const (
	iconPlay  = "▶"
	iconPause = "⏸"

	volumeStep = 5
)

func indicator(playing bool) string {
	if playing {
		return iconPause
	}
	return iconPlay
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
