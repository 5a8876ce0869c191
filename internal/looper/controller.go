package looper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"vidloop/internal/player"
	"vidloop/internal/timestamp"
)

// Phase is the controller's position in its loop state machine.
type Phase int

const (
	// Idle: no end bound armed; the media runs to its natural end.
	Idle Phase = iota
	// Armed: an interval is armed and every position report is checked
	// against its end bound.
	Armed
	// RestartPending: the end bound was crossed; the next tick seeks
	// back to the armed start.
	RestartPending
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case RestartPending:
		return "restart_pending"
	}
	return "unknown"
}

const (
	// DefaultTickPeriod is how often the control loop runs.
	DefaultTickPeriod = 100 * time.Millisecond
	// DefaultVolumeCeiling caps the volume range well below the player
	// maximum.
	DefaultVolumeCeiling = 40

	// MinRate and MaxRate bound the playback rate; adjustments leaving
	// this window are ignored.
	MinRate = 0.2
	MaxRate = 2.0
)

var (
	// ErrNoDuration rejects arming against media whose duration the
	// player has not determined.
	ErrNoDuration = errors.New("media duration is unknown")
	// ErrNotReady rejects playback commands while no media is loaded.
	ErrNotReady = errors.New("no media loaded")
)

// Status is a point-in-time view of the controller.
type Status struct {
	Phase   Phase
	Playing bool
	Started bool
	StartMS int64
	EndMS   int64
	Bounded bool
}

// Controller owns the playback session state: the armed loop bounds,
// the restart flag and the play flags. It never seeks from inside a
// position notification; crossing the end bound only raises the restart
// flag, and Tick performs the seek on the next cycle.
type Controller struct {
	p       player.Player
	log     *logrus.Logger
	ceiling int

	mu       sync.Mutex
	hasMedia bool
	startMS  int64
	endMS    int64
	hasEnd   bool
	restart  bool
	started  bool
	playing  bool

	positionFns []func(ms int64)
	stateFns    []func(Status)
}

// New creates a controller driving p. volumeCeiling caps the volume
// range; a nil logger falls back to a default one.
func New(p player.Player, log *logrus.Logger, volumeCeiling int) *Controller {
	if log == nil {
		log = logrus.New()
	}
	return &Controller{p: p, log: log, ceiling: volumeCeiling}
}

// MediaChanged resets the session after a new media was loaded into the
// player: bounds cleared, nothing started, nothing pending.
func (c *Controller) MediaChanged() {
	c.mu.Lock()
	c.hasMedia = true
	c.startMS, c.endMS, c.hasEnd = 0, 0, false
	c.restart = false
	c.started = false
	c.playing = false
	status := c.statusLocked()
	fns := append([]func(Status){}, c.stateFns...)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(status)
	}
}

// Arm starts looped playback of iv: seek to its start, then play. The
// interval is armed even when its end is not after its start; the loop
// then restarts as soon as a position report crosses the end bound.
// Arming requires a known media duration.
func (c *Controller) Arm(iv timestamp.Interval, durationMS int64) error {
	c.mu.Lock()
	if !c.hasMedia {
		c.mu.Unlock()
		return ErrNotReady
	}
	if durationMS <= 0 {
		c.mu.Unlock()
		return ErrNoDuration
	}
	// Suspend any previous bound while the playhead moves.
	c.hasEnd = false
	c.restart = false
	c.mu.Unlock()

	start := iv.Start.Milliseconds()
	if err := c.p.Seek(start); err != nil {
		return fmt.Errorf("arming loop: %w", err)
	}
	if err := c.p.Play(); err != nil {
		return fmt.Errorf("arming loop: %w", err)
	}

	c.mu.Lock()
	c.startMS = start
	c.endMS = iv.End.Milliseconds()
	c.hasEnd = true
	c.started = true
	c.playing = true
	status := c.statusLocked()
	fns := append([]func(Status){}, c.stateFns...)
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"start_ms": status.StartMS,
		"end_ms":   status.EndMS,
	}).Debug("interval armed")
	for _, fn := range fns {
		fn(status)
	}
	return nil
}

// StartFree starts playback from the top with no end bound.
func (c *Controller) StartFree() error {
	c.mu.Lock()
	if !c.hasMedia {
		c.mu.Unlock()
		return ErrNotReady
	}
	c.hasEnd = false
	c.restart = false
	c.mu.Unlock()

	if err := c.p.Seek(0); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}
	if err := c.p.Play(); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}

	c.mu.Lock()
	c.startMS, c.endMS, c.hasEnd = 0, 0, false
	c.started = true
	c.playing = true
	status := c.statusLocked()
	fns := append([]func(Status){}, c.stateFns...)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(status)
	}
	return nil
}

// PlayPause toggles the play state. Before anything has started for the
// current media it acts as the combined start action.
func (c *Controller) PlayPause() error {
	c.mu.Lock()
	if !c.hasMedia {
		c.mu.Unlock()
		return ErrNotReady
	}
	if !c.started {
		c.mu.Unlock()
		return c.StartFree()
	}
	playing := c.playing
	c.mu.Unlock()

	var err error
	if playing {
		err = c.p.Pause()
	} else {
		err = c.p.Play()
	}
	if err != nil {
		return fmt.Errorf("toggling playback: %w", err)
	}

	c.mu.Lock()
	c.playing = !playing
	status := c.statusLocked()
	fns := append([]func(Status){}, c.stateFns...)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(status)
	}
	return nil
}

// OnPositionChanged takes a position report from the player. It only
// compares and flags; the seek happens on the next Tick. Seeking from
// inside the player's own notification stalls playback, so this must
// stay command-free.
func (c *Controller) OnPositionChanged(ms int64) {
	c.mu.Lock()
	if c.hasEnd && ms > c.endMS {
		c.restart = true
	}
	c.mu.Unlock()
}

// Tick runs one cycle of the control loop: consume a pending restart
// with exactly one seek, push the current position to observers, and
// detect the media reaching its natural end.
func (c *Controller) Tick() {
	c.mu.Lock()
	restart := c.restart
	c.restart = false
	start := c.startMS
	started := c.started
	playing := c.playing
	c.mu.Unlock()

	if restart {
		c.log.WithField("start_ms", start).Debug("loop restart")
		if err := c.p.Seek(start); err != nil {
			c.log.WithError(err).Warn("loop restart seek failed")
		}
	}

	if pos, err := c.p.Position(); err == nil {
		c.mu.Lock()
		fns := append([]func(int64){}, c.positionFns...)
		c.mu.Unlock()
		for _, fn := range fns {
			fn(pos)
		}
	}

	// Natural end: we believe we are playing but the player stopped.
	// A user pause does not count, that is playing=false on our side.
	if started && playing {
		isPlaying, err := c.p.Playing()
		if err == nil && !isPlaying {
			c.mu.Lock()
			c.started = false
			c.playing = false
			c.restart = false
			status := c.statusLocked()
			fns := append([]func(Status){}, c.stateFns...)
			c.mu.Unlock()

			c.log.Debug("media reached its natural end")
			for _, fn := range fns {
				fn(status)
			}
		}
	}
}

// Run drives Tick every period until ctx is done.
func (c *Controller) Run(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

// SetPosition is a manual scrub. It drops the armed end bound so the
// loop does not fight the user for the playhead; the armed start stays
// as the nominal restart point.
func (c *Controller) SetPosition(ms int64) error {
	c.mu.Lock()
	if !c.hasMedia {
		c.mu.Unlock()
		return ErrNotReady
	}
	c.hasEnd = false
	c.restart = false
	status := c.statusLocked()
	fns := append([]func(Status){}, c.stateFns...)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(status)
	}
	if err := c.p.Seek(ms); err != nil {
		return fmt.Errorf("seeking: %w", err)
	}
	return nil
}

// SetVolume sets an absolute volume, clamped into [0, ceiling], and
// returns the applied value.
func (c *Controller) SetVolume(volume int) (int, error) {
	v := c.clampVolume(volume)
	if err := c.p.SetVolume(v); err != nil {
		return 0, fmt.Errorf("setting volume: %w", err)
	}
	return v, nil
}

// AdjustVolume shifts the volume by delta, clamped into [0, ceiling],
// and returns the applied value.
func (c *Controller) AdjustVolume(delta int) (int, error) {
	cur, err := c.p.Volume()
	if err != nil {
		return 0, fmt.Errorf("reading volume: %w", err)
	}
	v := c.clampVolume(cur + delta)
	if err := c.p.SetVolume(v); err != nil {
		return 0, fmt.Errorf("setting volume: %w", err)
	}
	return v, nil
}

func (c *Controller) clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > c.ceiling {
		return c.ceiling
	}
	return v
}

// AdjustRate shifts the playback rate by delta. A result outside
// [MinRate, MaxRate] is ignored and the current rate returned.
func (c *Controller) AdjustRate(delta float64) (float64, error) {
	cur, err := c.p.Rate()
	if err != nil {
		return 0, fmt.Errorf("reading rate: %w", err)
	}
	rate := cur + delta
	if rate < MinRate || rate > MaxRate {
		return cur, nil
	}
	if err := c.p.SetRate(rate); err != nil {
		return 0, fmt.Errorf("setting rate: %w", err)
	}
	return rate, nil
}

// ToggleMute flips the mute flag and returns the new state.
func (c *Controller) ToggleMute() (bool, error) {
	muted, err := c.p.Muted()
	if err != nil {
		return false, fmt.Errorf("reading mute state: %w", err)
	}
	if err := c.p.SetMuted(!muted); err != nil {
		return false, fmt.Errorf("setting mute state: %w", err)
	}
	return !muted, nil
}

// Window returns the armed loop bounds for display highlighting.
func (c *Controller) Window() (startMS, endMS int64, bounded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startMS, c.endMS, c.hasEnd
}

// Status returns a point-in-time view of the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() Status {
	return Status{
		Phase:   c.phaseLocked(),
		Playing: c.playing,
		Started: c.started,
		StartMS: c.startMS,
		EndMS:   c.endMS,
		Bounded: c.hasEnd,
	}
}

func (c *Controller) phaseLocked() Phase {
	switch {
	case c.restart:
		return RestartPending
	case c.hasEnd:
		return Armed
	default:
		return Idle
	}
}

// OnPosition registers fn to receive position pushes from the tick
// loop.
func (c *Controller) OnPosition(fn func(ms int64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positionFns = append(c.positionFns, fn)
}

// OnStateChanged registers fn to receive play-state and phase
// transitions.
func (c *Controller) OnStateChanged(fn func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateFns = append(c.stateFns, fn)
}
