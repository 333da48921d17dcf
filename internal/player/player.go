package player

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// request tracks one resource open. A request is wanted while it is either the
// preload entry for its locator or the active playback's request; results of
// unwanted requests are closed on arrival.
type request struct {
	index    int
	locator  string
	resource Resource // nil until the open completes
	started  time.Time
}

// attachment is the lifetime of a resource bound to the presentation surface.
// Cancelling it stops the tick and end-of-stream subscription.
type attachment struct {
	res    Resource
	cancel context.CancelFunc
}

// activePlayback is the single playing slot of the feed.
type activePlayback struct {
	position int // -1 when nothing occupies playback
	locator  string
	req      *request
	att      *attachment
	playing  bool
}

func (a activePlayback) occupied() bool { return a.position >= 0 }

// Player owns the preload window and the active playback of one feed.
type Player struct {
	feed      Feed
	provider  Provider
	queue     Queue
	presenter Presenter
	publisher EventPublisher
	logger    zerolog.Logger

	windowSize   int
	tickInterval time.Duration
	openTimeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	anchor  int
	window  []int
	entries map[string]*request
	active  activePlayback
	closed  bool
}

// New constructs a Player from cfg.
func New(cfg Config) (*Player, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaultValues()
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		feed:         cfg.Feed,
		provider:     cfg.Provider,
		queue:        cfg.Queue,
		presenter:    cfg.Presenter,
		publisher:    cfg.Publisher,
		logger:       cfg.Logger.With().Str("module", "player").Logger(),
		windowSize:   cfg.WindowSize,
		tickInterval: cfg.TickInterval,
		openTimeout:  cfg.OpenTimeout,
		ctx:          ctx,
		cancel:       cancel,
		anchor:       -1,
		entries:      make(map[string]*request),
		active:       activePlayback{position: -1},
	}, nil
}

// SetEventPublisher replaces the event publisher. Nil restores the no-op default.
func (p *Player) SetEventPublisher(pub EventPublisher) {
	if pub == nil {
		pub = noopPublisher{}
	}
	p.publisher = pub
}

// Position returns the settled position, or -1 before the first settle.
func (p *Player) Position() int { return p.anchor }

// Playing reports whether the active resource is meant to be playing.
func (p *Player) Playing() bool { return p.active.occupied() && p.active.playing }

// Close exits the feed and stops accepting results from in-flight work.
func (p *Player) Close() {
	if p.closed {
		return
	}
	p.Exit()
	p.closed = true
	p.cancel()
}

func (p *Player) publish(name string, index int, locator string, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	p.publisher.Publish(Event{Name: name, Index: index, Locator: locator, Fields: fields})
}

func closeQuietly(res Resource, logger zerolog.Logger) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		logger.Debug().Err(err).Msg("resource close")
	}
}
