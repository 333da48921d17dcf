package player

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Loop is a serial executor: functions posted to it run one at a time, in
// order, on the goroutine that calls Run.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	stopped bool
	started bool

	wake   chan struct{}
	done   chan struct{}
	logger zerolog.Logger
}

func NewLoop(logger zerolog.Logger) *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger.With().Str("module", "player").Str("submodule", "loop").Logger(),
	}
}

// Post enqueues fn. It never blocks; after the loop stopped fn is dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// fn may have run right before the loop exited
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopStopped
		}
	}
}

// Run drains posted functions until ctx is done. It must be called once.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return errors.New("player: loop already running")
	}
	l.started = true
	l.mu.Unlock()
	defer close(l.done)

	for {
		l.mu.Lock()
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()
		for _, fn := range batch {
			l.run(fn)
		}
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.stopped = true
			l.pending = nil
			l.mu.Unlock()
			return nil
		case <-l.wake:
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error().Interface("panic", r).Msg("recovered loop task")
		}
	}()
	fn()
}
