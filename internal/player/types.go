package player

import (
	"context"
	"time"

	"feedplay/pkg/types"
)

// Feed is the ordered item list the player pages through.
type Feed interface {
	Len() int
	At(i int) (types.MediaItem, bool)
}

// Resource is an opened, playable media handle.
type Resource interface {
	Play() error
	Pause() error
	Seek(pos time.Duration) error
	Position() time.Duration
	// Duration returns 0 when the total length is unknown.
	Duration() time.Duration
	// EndOfStream receives a value each time playback reaches the end.
	EndOfStream() <-chan struct{}
	Close() error
}

// Provider opens resources for locators. Open is called from background
// goroutines and may block.
type Provider interface {
	Open(ctx context.Context, locator string) (Resource, error)
}

// Presenter receives visual state for the UI host. Calls are made on the
// player's queue goroutine.
type Presenter interface {
	Attach(index int, res Resource)
	Detach(index int)
	PlayState(index int, playing bool)
	Progress(index int, fraction float64)
}

// Queue serializes work onto the goroutine that owns the Player.
type Queue interface {
	Post(fn func())
}

type noopPresenter struct{}

func (noopPresenter) Attach(int, Resource)  {}
func (noopPresenter) Detach(int)            {}
func (noopPresenter) PlayState(int, bool)   {}
func (noopPresenter) Progress(int, float64) {}
