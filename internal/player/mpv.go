package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

const (
	// commandTimeout bounds IPC calls that are synchronous for the caller.
	commandTimeout = 5 * time.Second
	// pauseProperty is the observe_property id for "pause".
	pauseProperty = 1
)

// ipcMessage is any line mpv writes to the IPC socket: a command reply
// (request_id set) or an event.
type ipcMessage struct {
	RequestID int             `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	Reason    string          `json:"reason"`
	FileError string          `json:"file_error"`
}

// MPV implements Backend with one idle mpv process controlled over its
// JSON IPC Unix socket, created at a randomized temp path.
type MPV struct {
	binary string

	cmd       *exec.Cmd
	socketDir string
	writeMu   sync.Mutex

	mu      sync.Mutex
	conn    net.Conn
	nextID  int
	pending map[int]chan ipcMessage
	waiters []chan error
	source  string
	loaded  string
	paused  bool
	volume  float64
	closing bool

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewMPV returns an unstarted mpv backend.
func NewMPV() *MPV {
	return &MPV{
		binary:  "mpv",
		pending: make(map[int]chan ipcMessage),
		volume:  1,
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
	}
}

func (m *MPV) Name() string { return "mpv" }

func (m *MPV) Available() bool {
	_, err := exec.LookPath(m.binary)
	return err == nil
}

// Start launches mpv in idle mode and connects to its IPC socket.
func (m *MPV) Start(ctx context.Context) error {
	socketDir, err := os.MkdirTemp("", "tuner-mpv-*")
	if err != nil {
		return fmt.Errorf("creating temp dir for mpv socket: %w", err)
	}
	socketPath := filepath.Join(socketDir, "socket")

	m.mu.Lock()
	volume := m.volume
	m.mu.Unlock()

	args := []string{
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--input-ipc-server=" + socketPath,
		fmt.Sprintf("--volume=%.0f", volume*100),
	}

	cmd := exec.Command(m.binary, args...)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(socketDir)
		return fmt.Errorf("starting mpv: %w", err)
	}

	conn, err := dialSocket(ctx, socketPath)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		os.RemoveAll(socketDir)
		return fmt.Errorf("connecting to mpv: %w", err)
	}

	m.cmd = cmd
	m.socketDir = socketDir
	m.attach(conn)

	if _, err := m.command(ctx, "observe_property", pauseProperty, "pause"); err != nil {
		m.Close()
		return fmt.Errorf("observing pause: %w", err)
	}
	return nil
}

// dialSocket waits for mpv to create the socket, then connects.
func dialSocket(ctx context.Context, path string) (net.Conn, error) {
	var d net.Dialer
	var lastErr error
	for i := 0; i < 50; i++ {
		conn, err := d.DialContext(ctx, "unix", path)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil, lastErr
}

// attach starts reading from an established IPC connection.
func (m *MPV) attach(conn net.Conn) {
	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()
	go m.readLoop(conn)
}

func (m *MPV) Events() <-chan Event { return m.events }

// SetSource records the URL; the next Play loads it, replacing whatever
// is currently playing.
func (m *MPV) SetSource(url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.source = url
	return nil
}

// Play loads the source if it changed and unpauses. For a fresh load it
// waits for mpv to report playback-restart or an end-file error.
func (m *MPV) Play(ctx context.Context) error {
	m.mu.Lock()
	source := m.source
	if source == "" {
		m.mu.Unlock()
		return ErrNoSource
	}
	reload := source != m.loaded
	wait := make(chan error, 1)
	if reload {
		m.loaded = source
		m.waiters = append(m.waiters, wait)
	}
	m.mu.Unlock()

	if reload {
		if _, err := m.command(ctx, "loadfile", source, "replace"); err != nil {
			m.dropWaiter(wait, source)
			return fmt.Errorf("loading %s: %w", source, err)
		}
	}

	if _, err := m.command(ctx, "set_property", "pause", false); err != nil {
		if reload {
			m.dropWaiter(wait, source)
		}
		return fmt.Errorf("unpausing: %w", err)
	}

	if !reload {
		return nil
	}

	select {
	case err := <-wait:
		return err
	case <-ctx.Done():
		m.dropWaiter(wait, "")
		return ctx.Err()
	case <-m.done:
		return ErrClosed
	}
}

// dropWaiter unregisters a Play waiter. When failed names the source still
// marked loaded, the mark is cleared so the next Play reloads it.
func (m *MPV) dropWaiter(wait chan error, failed string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range m.waiters {
		if w == wait {
			m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
			break
		}
	}
	if failed != "" && m.loaded == failed {
		m.loaded = ""
	}
}

func (m *MPV) Pause() error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if _, err := m.command(ctx, "set_property", "pause", true); err != nil {
		return fmt.Errorf("pausing: %w", err)
	}
	return nil
}

// SetVolume applies v in [0,1] as mpv's 0-100 volume. Before Start the
// value is kept and passed on the command line.
func (m *MPV) SetVolume(v float64) error {
	m.mu.Lock()
	m.volume = v
	started := m.conn != nil
	m.mu.Unlock()
	if !started {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if _, err := m.command(ctx, "set_property", "volume", v*100); err != nil {
		return fmt.Errorf("setting volume: %w", err)
	}
	return nil
}

// command sends one IPC command and waits for its reply.
func (m *MPV) command(ctx context.Context, args ...interface{}) (json.RawMessage, error) {
	m.mu.Lock()
	conn := m.conn
	if conn == nil || m.closing {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	m.nextID++
	id := m.nextID
	reply := make(chan ipcMessage, 1)
	m.pending[id] = reply
	m.mu.Unlock()

	data, err := json.Marshal(map[string]interface{}{
		"command":    args,
		"request_id": id,
	})
	if err != nil {
		m.forget(id)
		return nil, fmt.Errorf("encoding command: %w", err)
	}
	data = append(data, '\n')

	m.writeMu.Lock()
	_, err = conn.Write(data)
	m.writeMu.Unlock()
	if err != nil {
		m.forget(id)
		return nil, fmt.Errorf("writing to mpv: %w", err)
	}

	select {
	case msg := <-reply:
		if msg.Error != "success" {
			return nil, fmt.Errorf("mpv %v: %s", args[0], msg.Error)
		}
		return msg.Data, nil
	case <-ctx.Done():
		m.forget(id)
		return nil, ctx.Err()
	case <-m.done:
		return nil, ErrClosed
	}
}

func (m *MPV) forget(id int) {
	m.mu.Lock()
	delete(m.pending, id)
	m.mu.Unlock()
}

// readLoop dispatches replies and events until the connection drops.
func (m *MPV) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Event != "" {
			m.handleEvent(msg)
			continue
		}

		m.mu.Lock()
		reply, ok := m.pending[msg.RequestID]
		delete(m.pending, msg.RequestID)
		m.mu.Unlock()
		if ok {
			reply <- msg
		}
	}

	m.mu.Lock()
	closing := m.closing
	waiters := m.waiters
	m.waiters = nil
	m.mu.Unlock()

	for _, w := range waiters {
		w <- ErrClosed
	}
	if !closing && len(waiters) == 0 {
		m.emit(Event{Kind: Failed, Err: fmt.Errorf("mpv exited: %w", ErrClosed)})
	}
	close(m.done)
	close(m.events)
}

func (m *MPV) handleEvent(msg ipcMessage) {
	switch msg.Event {
	case "playback-restart":
		m.mu.Lock()
		waiters := m.waiters
		m.waiters = nil
		paused := m.paused
		m.mu.Unlock()
		for _, w := range waiters {
			w <- nil
		}
		// A load that finishes while paused produces no audio yet.
		if !paused {
			m.emit(Event{Kind: Started})
		}

	case "property-change":
		if msg.Name != "pause" {
			return
		}
		var paused bool
		if err := json.Unmarshal(msg.Data, &paused); err != nil {
			return
		}
		m.mu.Lock()
		m.paused = paused
		loaded := m.loaded != ""
		loading := len(m.waiters) > 0
		m.mu.Unlock()
		switch {
		case paused:
			m.emit(Event{Kind: Suspended})
		case loaded && !loading:
			// Resuming a loaded stream emits no playback-restart.
			m.emit(Event{Kind: Started})
		}

	case "end-file":
		switch msg.Reason {
		case "stop", "redirect":
			return
		case "error":
			m.fileFailed(msg)
		default:
			m.fileEnded(msg.Reason)
		}
	}
}

// fileEnded handles a stream that stopped on its own, such as a server
// closing the connection. The next Play reloads it.
func (m *MPV) fileEnded(reason string) {
	m.mu.Lock()
	waiters := m.waiters
	m.waiters = nil
	m.loaded = ""
	m.mu.Unlock()

	if len(waiters) == 0 {
		m.emit(Event{Kind: Suspended})
		return
	}
	err := fmt.Errorf("mpv: stream ended (%s)", reason)
	for _, w := range waiters {
		w <- err
	}
}

func (m *MPV) fileFailed(msg ipcMessage) {
	reason := msg.FileError
	if reason == "" {
		reason = "playback error"
	}
	err := fmt.Errorf("mpv: %s", reason)

	m.mu.Lock()
	waiters := m.waiters
	m.waiters = nil
	m.loaded = ""
	m.mu.Unlock()

	// A pending Play reports the failure itself.
	if len(waiters) == 0 {
		m.emit(Event{Kind: Failed, Err: err})
	}
	for _, w := range waiters {
		w <- err
	}
}

// emit never blocks the reader; a full buffer drops the event.
func (m *MPV) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
	}
}

// Close asks mpv to quit, then kills it if it lingers.
func (m *MPV) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closing = true
		conn := m.conn
		m.mu.Unlock()

		if conn != nil {
			m.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(time.Second))
			conn.Write([]byte(`{"command":["quit"]}` + "\n"))
			m.writeMu.Unlock()
			conn.Close()
			<-m.done
		}

		if m.cmd != nil {
			exited := make(chan struct{})
			go func() {
				m.cmd.Wait()
				close(exited)
			}()
			select {
			case <-exited:
			case <-time.After(2 * time.Second):
				m.cmd.Process.Kill()
				<-exited
			}
		}

		if m.socketDir != "" {
			os.RemoveAll(m.socketDir)
		}
	})
	return nil
}
