package controller

import (
	"errors"
	"fmt"

	"tuner/internal/station"
)

var (
	// ErrNoStationSelected is returned by TogglePlay before any selection.
	ErrNoStationSelected = errors.New("no station selected")
	// ErrUnknownStation is returned when an ID is not in the catalog.
	ErrUnknownStation = errors.New("unknown station")
)

// PlaybackError wraps a failed play request or a failure reported by the
// audio handle.
type PlaybackError struct {
	Op      string // "play", "pause", "source" or "output"
	Station station.Station
	Err     error
}

func (e *PlaybackError) Error() string {
	if e.Station.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Station.ID, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }
