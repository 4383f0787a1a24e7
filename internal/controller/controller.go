// Package controller holds the player's playback session: which station is
// selected, whether it is playing, and the volume. It reacts to UI input and
// to notifications from the audio handle and reflects the result on a View.
//
// A Controller is not safe for concurrent use. Every method must run on the
// goroutine that owns it; asynchronous results come back through Post.
package controller

import (
	"context"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"

	"tuner/internal/player"
	"tuner/internal/station"
)

// Status texts and the alert shown to the user.
const (
	StatusLoading   = "Loading"
	StatusPlaying   = "Playing"
	StatusPaused    = "Paused"
	StatusError     = "Error loading station"
	AlertNoStation  = "Please select a station first."
	defaultLogFlags = log.LstdFlags
)

// View is what the controller drives on screen.
type View interface {
	// Render shows one selectable item per station, in order.
	Render(stations []station.Station)
	// Highlight marks the item for the station ID as active.
	Highlight(id string)
	SetStatusText(text string)
	// SetIndicator shows the pause icon when playing, the play icon otherwise.
	SetIndicator(playing bool)
	SetStationName(name string)
	// Alert shows a blocking notice.
	Alert(msg string)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets where diagnostics go.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithPlayHook registers fn to run each time a newly selected station
// starts playing.
func WithPlayHook(fn func(station.Station)) Option {
	return func(c *Controller) { c.onPlaying = fn }
}

// Controller owns the playback session.
type Controller struct {
	catalog   *station.Catalog
	out       player.Output
	view      View
	post      Post
	logger    *log.Logger
	onPlaying func(station.Station)

	current *station.Station
	playing bool
	volume  float64
	state   State

	// gen identifies the outstanding play request; results from older
	// requests are dropped.
	gen    uint64
	cancel context.CancelFunc
}

// New builds a controller and renders the catalog on view.
func New(catalog *station.Catalog, out player.Output, view View, post Post, opts ...Option) *Controller {
	c := &Controller{
		catalog: catalog,
		out:     out,
		view:    view,
		post:    post,
		logger:  log.New(io.Discard, "", defaultLogFlags),
		state:   Idle,
	}
	for _, opt := range opts {
		opt(c)
	}

	view.Render(catalog.Stations())
	view.SetIndicator(false)
	return c
}

// Watch forwards audio handle notifications onto the owning goroutine
// until ctx is done or the handle closes its event stream.
func (c *Controller) Watch(ctx context.Context) {
	events := c.out.Events()
	go func() {
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				c.post(func() { c.handleEvent(ev) })
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Session returns a snapshot of the session.
func (c *Controller) Session() Session {
	s := Session{Playing: c.playing, Volume: c.volume}
	if c.current != nil {
		cur := *c.current
		s.Current = &cur
	}
	return s
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// SelectStation makes s the current station and plays it. Selecting the
// current station again toggles between playing and paused.
func (c *Controller) SelectStation(s station.Station) {
	c.view.Highlight(s.ID)

	if c.current != nil && c.current.ID == s.ID {
		c.TogglePlay()
		return
	}

	c.current = &s
	if err := c.out.SetSource(s.URL); err != nil {
		c.handleError(&PlaybackError{Op: "source", Station: s, Err: err})
		return
	}
	c.view.SetStationName(s.Name)
	c.play(true)
}

// SelectByID looks up id in the catalog and selects it.
func (c *Controller) SelectByID(id string) error {
	s, ok := c.catalog.Lookup(id)
	if !ok {
		return ErrUnknownStation
	}
	c.SelectStation(s)
	return nil
}

// TogglePlay pauses when playing and plays otherwise. Without a selected
// station it alerts and changes nothing.
func (c *Controller) TogglePlay() error {
	if c.current == nil {
		c.view.Alert(AlertNoStation)
		return ErrNoStationSelected
	}
	if c.playing {
		c.pause()
	} else {
		c.play(false)
	}
	return nil
}

// SetVolume applies a slider value in [0,100]; values outside are clamped.
func (c *Controller) SetVolume(raw int) {
	if raw < 0 {
		raw = 0
	}
	if raw > 100 {
		raw = 100
	}
	c.volume = float64(raw) / 100
	if err := c.out.SetVolume(c.volume); err != nil {
		c.logger.Printf("setting volume: %v", err)
	}
}

// SetVolumeText parses slider text input and applies it.
func (c *Controller) SetVolumeText(raw string) error {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	c.SetVolume(v)
	return nil
}

// Close abandons any outstanding play request.
func (c *Controller) Close() {
	c.invalidate()
}

// play issues an asynchronous play request. fresh marks a newly selected
// station rather than a resume.
func (c *Controller) play(fresh bool) {
	c.invalidate()
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	gen := c.gen
	st := *c.current

	c.state = Loading
	c.view.SetStatusText(StatusLoading)

	go func() {
		err := c.out.Play(ctx)
		c.post(func() { c.playSettled(gen, st, fresh, err) })
	}()
}

func (c *Controller) playSettled(gen uint64, st station.Station, fresh bool, err error) {
	if gen != c.gen {
		c.logger.Printf("dropping superseded play result for %s", st.ID)
		return
	}
	c.cancel()
	c.cancel = nil

	if err != nil {
		c.handleError(&PlaybackError{Op: "play", Station: st, Err: err})
		return
	}

	c.playing = true
	c.state = Playing
	c.view.SetIndicator(true)
	if fresh && c.onPlaying != nil {
		c.onPlaying(st)
	}
}

func (c *Controller) pause() {
	c.invalidate()
	if err := c.out.Pause(); err != nil {
		c.handleError(&PlaybackError{Op: "pause", Station: *c.current, Err: err})
		return
	}
	c.playing = false
	c.state = Paused
	c.view.SetIndicator(false)
}

// invalidate cancels the outstanding play request, if any, and makes its
// eventual result stale.
func (c *Controller) invalidate() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) handleEvent(ev player.Event) {
	switch ev.Kind {
	case player.Started:
		c.view.SetStatusText(StatusPlaying)
	case player.Suspended:
		c.view.SetStatusText(StatusPaused)
	case player.Failed:
		err := ev.Err
		if err == nil {
			err = errors.New("audio output failed")
		}
		pe := &PlaybackError{Op: "output", Err: err}
		if c.current != nil {
			pe.Station = *c.current
		}
		c.handleError(pe)
	}
}

// handleError settles the UI after any playback failure. There is no
// retry; the user re-selects or toggles to try again.
func (c *Controller) handleError(err error) {
	c.invalidate()
	c.playing = false
	c.state = Error
	c.view.SetIndicator(false)
	c.view.SetStatusText(StatusError)
	c.logger.Printf("error loading or playing station: %v", err)
}
