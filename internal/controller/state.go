package controller

import "tuner/internal/station"

// State is the playback session state.
type State int

const (
	Idle State = iota
	Loading
	Playing
	Paused
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Session is a snapshot of the playback session.
type Session struct {
	Current *station.Station
	Playing bool
	Volume  float64 // last slider value / 100
}
