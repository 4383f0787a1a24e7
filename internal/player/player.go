// Package player drives the audio-output handle.
// All player invocations use exec.Command with explicit argument slices;
// no shell is involved and stream URLs are never interpreted.
package player

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// EventKind identifies a lifecycle notification from the audio handle.
type EventKind int

const (
	// Started means the handle is producing audio.
	Started EventKind = iota
	// Suspended means playback was paused, by us or by the platform.
	Suspended
	// Failed means the handle could not load or decode the source.
	Failed
)

func (k EventKind) String() string {
	switch k {
	case Started:
		return "started"
	case Suspended:
		return "suspended"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is a notification emitted outside of direct calls.
type Event struct {
	Kind EventKind
	Err  error // set for Failed
}

var (
	// ErrNoSource is returned by Play before any source was set.
	ErrNoSource = errors.New("no source set")
	// ErrClosed is returned once the handle has shut down.
	ErrClosed = errors.New("player closed")
)

// Output is one audio-output handle.
type Output interface {
	// SetSource binds the stream URL that the next Play loads.
	SetSource(url string) error

	// Play starts or resumes playback of the current source. It blocks until
	// audio starts, the source fails, or ctx is done.
	Play(ctx context.Context) error

	// Pause suspends playback.
	Pause() error

	// SetVolume applies a volume in [0,1].
	SetVolume(v float64) error

	// Events delivers lifecycle notifications.
	Events() <-chan Event

	// Close stops the handle and releases its resources.
	Close() error
}

// Backend is an Output backed by an external program.
type Backend interface {
	Output

	// Name returns the player name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool

	// Start launches the player process.
	Start(ctx context.Context) error
}

// New creates a backend by name.
func New(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "mpv":
		return NewMPV(), nil
	default:
		return nil, fmt.Errorf("unsupported player %q", name)
	}
}
