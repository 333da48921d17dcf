package media

import (
	"errors"
	"sync"
	"time"
)

// ErrClipClosed is returned by Clip methods after Close.
var ErrClipClosed = errors.New("media: clip closed")

// Clip is a clock-driven playable handle over a warmed asset. Playback
// advances with wall time while playing; reaching the duration stops the
// clip at its end and signals EndOfStream. A zero duration plays forever.
type Clip struct {
	mu       sync.Mutex
	locator  string
	duration time.Duration
	head     int

	playing bool
	base    time.Duration
	since   time.Time
	timer   *time.Timer
	gen     uint64
	closed  bool

	ended chan struct{}
}

func newClip(locator string, a *asset) *Clip {
	return &Clip{
		locator:  locator,
		duration: a.duration,
		head:     len(a.head),
		ended:    make(chan struct{}, 1),
	}
}

func (c *Clip) Locator() string { return c.locator }

// Buffered returns how many bytes were prefetched for this clip.
func (c *Clip) Buffered() int { return c.head }

func (c *Clip) Duration() time.Duration { return c.duration }

func (c *Clip) EndOfStream() <-chan struct{} { return c.ended }

func (c *Clip) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClipClosed
	}
	if c.playing {
		return nil
	}
	c.playing = true
	c.since = time.Now()
	c.scheduleLocked()
	return nil
}

func (c *Clip) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClipClosed
	}
	if !c.playing {
		return nil
	}
	c.base = c.positionLocked()
	c.playing = false
	c.stopTimerLocked()
	return nil
}

// Seek moves the playhead, clamped to [0, duration] when the duration is known.
func (c *Clip) Seek(pos time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClipClosed
	}
	if pos < 0 {
		pos = 0
	}
	if c.duration > 0 && pos > c.duration {
		pos = c.duration
	}
	c.base = pos
	if c.playing {
		c.since = time.Now()
		c.scheduleLocked()
	}
	return nil
}

func (c *Clip) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

func (c *Clip) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

func (c *Clip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.playing = false
	c.stopTimerLocked()
	return nil
}

func (c *Clip) positionLocked() time.Duration {
	pos := c.base
	if c.playing {
		pos += time.Since(c.since)
	}
	if c.duration > 0 && pos > c.duration {
		pos = c.duration
	}
	return pos
}

func (c *Clip) scheduleLocked() {
	c.stopTimerLocked()
	if c.duration <= 0 {
		return
	}
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(c.duration-c.base, func() { c.reachEnd(gen) })
}

func (c *Clip) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

func (c *Clip) reachEnd(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.playing || gen != c.gen {
		return
	}
	c.base = c.duration
	c.playing = false
	c.timer = nil
	select {
	case c.ended <- struct{}{}:
	default:
	}
}
