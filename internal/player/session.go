package player

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"feedplay/internal/feed"
	"feedplay/pkg/types"
)

// Session binds a feed store, a Player, a Tracker and the Loop that owns
// them. Its methods are safe for concurrent use: each one runs on the loop.
type Session struct {
	id      string
	store   *feed.Store
	loop    *Loop
	player  *Player
	tracker *Tracker
	logger  zerolog.Logger
}

// NewSession builds a session over store. cfg.Feed and cfg.Queue are set by
// the session. Run must be called for any method to make progress.
func NewSession(store *feed.Store, cfg Config) (*Session, error) {
	cfg = cfg.withDefaultValues()
	id := uuid.NewString()
	logger := cfg.Logger.With().Str("session", id).Logger()
	loop := NewLoop(logger)

	cfg.Feed = store
	cfg.Queue = loop
	cfg.Logger = &logger
	p, err := New(cfg)
	if err != nil {
		return nil, err
	}
	s := &Session{id: id, store: store, loop: loop, player: p, logger: logger}
	s.tracker = NewTracker(store.Len, sessionListener{s})
	return s, nil
}

type sessionListener struct{ s *Session }

func (l sessionListener) OnDragBegin() { l.s.player.Hold() }

func (l sessionListener) OnSettled(index int) {
	if err := l.s.player.Settle(index); err != nil {
		l.s.logger.Warn().Err(err).Int("index", index).Msg("settle failed")
	}
}

func (s *Session) ID() string { return s.id }

// Run drives the session loop until ctx is done.
func (s *Session) Run(ctx context.Context) error { return s.loop.Run(ctx) }

// Open enters the feed at start. On an empty feed playback starts once the
// feed grows.
func (s *Session) Open(ctx context.Context, start int) error {
	return s.loop.Do(ctx, func() { s.tracker.Start(start) })
}

// DragBegin reports that the user started dragging the feed.
func (s *Session) DragBegin(ctx context.Context) error {
	return s.loop.Do(ctx, s.tracker.DragBegin)
}

// Release reports the end of a drag at offset and returns the settled index.
func (s *Session) Release(ctx context.Context, offset, pageHeight float64) (int, bool, error) {
	var (
		idx     int
		settled bool
	)
	err := s.loop.Do(ctx, func() { idx, settled = s.tracker.DragEnd(offset, pageHeight) })
	return idx, settled, err
}

// Settle reports that paging stopped on index.
func (s *Session) Settle(ctx context.Context, index int) error {
	if n := s.store.Len(); index < 0 || index >= n {
		return indexOutOfRangeError{index: index, length: n}
	}
	return s.loop.Do(ctx, func() { s.tracker.SettleAt(index) })
}

// ToggleHold flips play/pause and returns the new playing state.
func (s *Session) ToggleHold(ctx context.Context) (bool, error) {
	var playing bool
	err := s.loop.Do(ctx, func() { playing = s.player.ToggleHold() })
	return playing, err
}

// Scrub seeks the active video; false when the seek was a no-op.
func (s *Session) Scrub(ctx context.Context, fraction float64) (bool, error) {
	var applied bool
	err := s.loop.Do(ctx, func() { applied = s.player.Scrub(fraction) })
	return applied, err
}

// Exit leaves the feed and releases all resources. The next settle starts
// playback again, whatever its index.
func (s *Session) Exit(ctx context.Context) error {
	return s.loop.Do(ctx, func() {
		s.player.Exit()
		s.tracker.Reset()
	})
}

// Append adds a "load more" batch and re-anchors the window.
func (s *Session) Append(ctx context.Context, videos []types.Video) (int, error) {
	added := s.store.Append(videos)
	if added == 0 {
		return 0, nil
	}
	return added, s.FeedGrew(ctx)
}

// FeedGrew re-anchors the window after the store was appended to elsewhere.
// A start deferred by an empty feed happens here.
func (s *Session) FeedGrew(ctx context.Context) error {
	return s.loop.Do(ctx, func() {
		if s.tracker.StartPending() {
			return
		}
		s.player.FeedGrew()
	})
}

// Snapshot returns the player snapshot and the tracker state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, TrackerState, error) {
	var (
		snap  Snapshot
		state TrackerState
	)
	err := s.loop.Do(ctx, func() {
		snap = s.player.Snapshot()
		state = s.tracker.State()
	})
	return snap, state, err
}

// Status builds the wire status of the session.
func (s *Session) Status(ctx context.Context) (types.SessionStatus, error) {
	snap, state, err := s.Snapshot(ctx)
	if err != nil {
		return types.SessionStatus{}, err
	}
	st := types.SessionStatus{
		SessionID:  s.id,
		Tracker:    state.String(),
		FeedLength: s.store.Len(),
		Playback: types.PlaybackStatus{
			Position: snap.Position,
			Locator:  snap.Locator,
			Playing:  snap.Playing,
			Loading:  snap.Loading,
			Progress: snap.Progress,
		},
		Window: snap.Window,
		Ready:  snap.Ready,
	}
	if st.Window == nil {
		st.Window = []int{}
	}
	if st.Ready == nil {
		st.Ready = []int{}
	}
	return st, nil
}

// Display returns the display state of the cell at index.
func (s *Session) Display(ctx context.Context, index int) (types.DisplayState, error) {
	item, ok := s.store.At(index)
	if !ok {
		return types.DisplayState{}, indexOutOfRangeError{index: index, length: s.store.Len()}
	}
	snap, _, err := s.Snapshot(ctx)
	if err != nil {
		return types.DisplayState{}, err
	}
	return Display(item, snap), nil
}

// Items returns the feed items.
func (s *Session) Items() []types.MediaItem { return s.store.Items() }

// Ready reports whether the feed has items to play.
func (s *Session) Ready() bool { return s.store.Len() > 0 }

// Close releases everything held by the player. The loop keeps running until
// its context is cancelled.
func (s *Session) Close(ctx context.Context) error {
	return s.loop.Do(ctx, s.player.Close)
}
