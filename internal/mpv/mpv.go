package mpv

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Client controls one mpv process over its JSON IPC socket: newline
// framed JSON requests matched to responses by request_id, with
// asynchronous events interleaved. Events are handed off to their own
// goroutine so the socket reader never blocks on a callback.
type Client struct {
	log *logrus.Logger

	mu         sync.Mutex
	conn       net.Conn
	nextID     int64
	pending    map[int64]chan message
	onPosition func(ms int64)
	closed     bool

	events chan message
}

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// message is any line mpv sends: a command response (request_id set) or
// an event (event set).
type message struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID int64           `json:"request_id"`
	Event     string          `json:"event"`
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
}

// ErrClosed reports a command on a closed connection.
var ErrClosed = errors.New("mpv connection closed")

// CommandError is a failure reported by mpv itself.
type CommandError struct {
	Reason string
}

func (e *CommandError) Error() string {
	return "mpv: " + e.Reason
}

const (
	dialRetry      = 50 * time.Millisecond
	requestTimeout = 5 * time.Second

	timePosObserveID = 1
)

// Dial connects to the mpv socket, retrying until timeout while mpv
// creates it, and subscribes to playback position changes.
func Dial(socket string, timeout time.Duration, log *logrus.Logger) (*Client, error) {
	if log == nil {
		log = logrus.New()
	}
	deadline := time.Now().Add(timeout)
	var conn net.Conn
	for {
		var err error
		conn, err = net.Dial("unix", socket)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("mpv socket %s: %w", socket, err)
		}
		time.Sleep(dialRetry)
	}

	c := &Client{
		log:     log,
		conn:    conn,
		pending: make(map[int64]chan message),
		events:  make(chan message, 64),
	}
	go c.readLoop()
	go c.dispatchLoop()

	if _, err := c.request("observe_property", timePosObserveID, "time-pos"); err != nil {
		c.Close()
		return nil, fmt.Errorf("observing playback position: %w", err)
	}
	return c, nil
}

// OnPosition registers fn for playback position changes, delivered in
// milliseconds on the client's event goroutine. Keep it light.
func (c *Client) OnPosition(fn func(ms int64)) {
	c.mu.Lock()
	c.onPosition = fn
	c.mu.Unlock()
}

func (c *Client) readLoop() {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			c.log.WithError(err).Debug("mpv sent an unparseable line")
			continue
		}
		if msg.Event != "" {
			select {
			case c.events <- msg:
			default:
				// Position events are frequent and disposable.
			}
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[msg.RequestID]
		if ok {
			delete(c.pending, msg.RequestID)
		}
		c.mu.Unlock()
		if ok {
			ch <- msg
		}
	}

	// Socket gone: fail everything still waiting.
	c.mu.Lock()
	c.closed = true
	for id, ch := range c.pending {
		delete(c.pending, id)
		close(ch)
	}
	c.mu.Unlock()
	close(c.events)
}

func (c *Client) dispatchLoop() {
	for msg := range c.events {
		if msg.Event != "property-change" || msg.ID != timePosObserveID {
			continue
		}
		var sec float64
		if err := json.Unmarshal(msg.Data, &sec); err != nil {
			// time-pos is null while nothing plays.
			continue
		}
		c.mu.Lock()
		fn := c.onPosition
		c.mu.Unlock()
		if fn != nil {
			fn(int64(sec * 1000))
		}
	}
}

func (c *Client) request(cmd ...any) (json.RawMessage, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.nextID++
	id := c.nextID
	ch := make(chan message, 1)
	c.pending[id] = ch

	data, err := json.Marshal(request{Command: cmd, RequestID: id})
	if err != nil {
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("encoding mpv command: %w", err)
	}
	_, err = c.conn.Write(append(data, '\n'))
	c.mu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("mpv write: %w", err)
	}

	select {
	case msg, ok := <-ch:
		if !ok {
			return nil, ErrClosed
		}
		if msg.Error != "" && msg.Error != "success" {
			return nil, &CommandError{Reason: msg.Error}
		}
		return msg.Data, nil
	case <-time.After(requestTimeout):
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("mpv did not reply to %v", cmd)
	}
}

func (c *Client) getFloat(property string) (float64, error) {
	data, err := c.request("get_property", property)
	if err != nil {
		return 0, err
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("mpv property %s: %w", property, err)
	}
	return v, nil
}

func (c *Client) getBool(property string) (bool, error) {
	data, err := c.request("get_property", property)
	if err != nil {
		return false, err
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return false, fmt.Errorf("mpv property %s: %w", property, err)
	}
	return v, nil
}

// propertyUnavailable reports mpv telling us a property has no value
// yet, which is expected while the media is still being opened.
func propertyUnavailable(err error) bool {
	var cerr *CommandError
	return errors.As(err, &cerr) && cerr.Reason == "property unavailable"
}

// Load replaces the current media.
func (c *Client) Load(path string) error {
	if _, err := c.request("loadfile", path, "replace"); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Duration returns the media length in milliseconds, 0 while mpv has
// not determined it yet.
func (c *Client) Duration() (int64, error) {
	sec, err := c.getFloat("duration")
	if err != nil {
		if propertyUnavailable(err) {
			return 0, nil
		}
		return 0, err
	}
	return int64(sec * 1000), nil
}

// Position returns the playhead in milliseconds, 0 while nothing plays.
func (c *Client) Position() (int64, error) {
	sec, err := c.getFloat("time-pos")
	if err != nil {
		if propertyUnavailable(err) {
			return 0, nil
		}
		return 0, err
	}
	return int64(sec * 1000), nil
}

// Seek jumps to an absolute position, frame-exact.
func (c *Client) Seek(ms int64) error {
	if _, err := c.request("seek", float64(ms)/1000, "absolute+exact"); err != nil {
		return fmt.Errorf("seeking: %w", err)
	}
	return nil
}

// Play resumes playback.
func (c *Client) Play() error {
	if _, err := c.request("set_property", "pause", false); err != nil {
		return fmt.Errorf("resuming: %w", err)
	}
	return nil
}

// Pause pauses playback.
func (c *Client) Pause() error {
	if _, err := c.request("set_property", "pause", true); err != nil {
		return fmt.Errorf("pausing: %w", err)
	}
	return nil
}

// Playing reports whether the media is actually advancing: not paused
// and not sitting at the end of the file.
func (c *Client) Playing() (bool, error) {
	paused, err := c.getBool("pause")
	if err != nil {
		if propertyUnavailable(err) {
			return false, nil
		}
		return false, err
	}
	eof, err := c.getBool("eof-reached")
	if err != nil {
		if !propertyUnavailable(err) {
			return false, err
		}
		eof = false
	}
	return !paused && !eof, nil
}

// Rate returns the playback speed.
func (c *Client) Rate() (float64, error) {
	return c.getFloat("speed")
}

// SetRate sets the playback speed.
func (c *Client) SetRate(rate float64) error {
	if _, err := c.request("set_property", "speed", rate); err != nil {
		return fmt.Errorf("setting rate: %w", err)
	}
	return nil
}

// Volume returns the player volume.
func (c *Client) Volume() (int, error) {
	v, err := c.getFloat("volume")
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// SetVolume sets the player volume.
func (c *Client) SetVolume(volume int) error {
	if _, err := c.request("set_property", "volume", volume); err != nil {
		return fmt.Errorf("setting volume: %w", err)
	}
	return nil
}

// Muted returns the mute flag.
func (c *Client) Muted() (bool, error) {
	return c.getBool("mute")
}

// SetMuted sets the mute flag.
func (c *Client) SetMuted(muted bool) error {
	if _, err := c.request("set_property", "mute", muted); err != nil {
		return fmt.Errorf("setting mute: %w", err)
	}
	return nil
}

// Close asks mpv to quit and drops the socket. Safe to call twice.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.nextID++
	data, _ := json.Marshal(request{Command: []any{"quit"}, RequestID: c.nextID})
	_, _ = c.conn.Write(append(data, '\n'))
	conn := c.conn
	c.mu.Unlock()
	return conn.Close()
}
