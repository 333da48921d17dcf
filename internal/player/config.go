package player

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultWindowSize   = 3
	defaultTickInterval = 500 * time.Millisecond
	defaultOpenTimeout  = 30 * time.Second
)

// Config encapsulates collaborators and tunables for Player construction.
type Config struct {
	Feed      Feed
	Provider  Provider
	Queue     Queue
	Presenter Presenter
	Publisher EventPublisher
	Logger    *zerolog.Logger

	// WindowSize is the number of upcoming items kept warm.
	WindowSize int
	// TickInterval is the progress reporting period of the attached resource.
	TickInterval time.Duration
	// OpenTimeout bounds a single resource open.
	OpenTimeout time.Duration
}

func (c Config) withDefaultValues() Config {
	if c.WindowSize <= 0 {
		c.WindowSize = defaultWindowSize
	}
	if c.TickInterval <= 0 {
		c.TickInterval = defaultTickInterval
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaultOpenTimeout
	}
	if c.Presenter == nil {
		c.Presenter = noopPresenter{}
	}
	if c.Publisher == nil {
		c.Publisher = noopPublisher{}
	}
	if c.Logger == nil {
		l := zerolog.Nop()
		c.Logger = &l
	}
	return c
}

func (c Config) validate() error {
	if c.Feed == nil {
		return errors.New("player: feed is required")
	}
	if c.Provider == nil {
		return errors.New("player: provider is required")
	}
	if c.Queue == nil {
		return errors.New("player: queue is required")
	}
	return nil
}
