package player

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"feedplay/internal/feed"
	"feedplay/pkg/types"
)

func testVideos(from, to int) []types.Video {
	var out []types.Video
	for i := from; i < to; i++ {
		out = append(out, types.Video{ID: i + 1, Video: loc(i), Description: "clip"})
	}
	return out
}

func newTestSession(t *testing.T, n int) (*Session, *fakeProvider, func()) {
	t.Helper()
	store := feed.NewStore()
	if _, err := store.Replace(testVideos(0, n)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	prov := newFakeProvider()
	s, err := NewSession(store, Config{Provider: prov, TickInterval: time.Hour})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	return s, prov, func() {
		if err := s.Close(testCtx(t)); err != nil {
			t.Errorf("close: %v", err)
		}
		cancel()
		<-done
	}
}

// waitStatus polls the session until cond holds.
func waitStatus(t *testing.T, s *Session, cond func(types.SessionStatus) bool) types.SessionStatus {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		st, err := s.Status(testCtx(t))
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if cond(st) {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met, last status %+v", st)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func settledAt(pos int) func(types.SessionStatus) bool {
	return func(st types.SessionStatus) bool {
		return st.Playback.Position == pos && !st.Playback.Loading && len(st.Ready) == len(st.Window)
	}
}

func TestSessionPaging(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	s, prov, stop := newTestSession(t, 10)
	defer stop()
	ctx := testCtx(t)

	if s.ID() == "" {
		t.Fatalf("empty session id")
	}
	if err := s.Open(ctx, 0); err != nil {
		t.Fatalf("open: %v", err)
	}
	st := waitStatus(t, s, settledAt(0))
	if !st.Playback.Playing || !equalInts(st.Window, []int{1, 2, 3}) {
		t.Fatalf("unexpected status %+v", st)
	}

	if err := s.DragBegin(ctx); err != nil {
		t.Fatalf("drag: %v", err)
	}
	st = waitStatus(t, s, func(st types.SessionStatus) bool { return st.Tracker == "dragging" })
	if st.Playback.Playing {
		t.Fatalf("drag should hold playback")
	}

	idx, settled, err := s.Release(ctx, 700, 640)
	if err != nil || !settled || idx != 1 {
		t.Fatalf("release -> %d %v %v", idx, settled, err)
	}
	st = waitStatus(t, s, settledAt(1))
	if !st.Playback.Playing || st.Playback.Locator != loc(1) || !equalInts(st.Window, []int{2, 3, 4}) {
		t.Fatalf("unexpected status %+v", st)
	}
	if prov.count(loc(1)) != 1 {
		t.Fatalf("settled item reopened")
	}
}

func TestSessionActions(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	s, _, stop := newTestSession(t, 5)
	defer stop()
	ctx := testCtx(t)

	if err := s.Settle(ctx, 9); !IsIndexOutOfRange(err) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if err := s.Settle(ctx, 2); err != nil {
		t.Fatalf("settle: %v", err)
	}
	waitStatus(t, s, settledAt(2))

	playing, err := s.ToggleHold(ctx)
	if err != nil || playing {
		t.Fatalf("toggle -> %v %v", playing, err)
	}
	applied, err := s.Scrub(ctx, 0.25)
	if err != nil || !applied {
		t.Fatalf("scrub -> %v %v", applied, err)
	}

	ds, err := s.Display(ctx, 2)
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	if !ds.ShowPlayer || ds.PlayIcon != "play" || ds.Progress != 0.25 {
		t.Fatalf("display=%+v", ds)
	}
	other, err := s.Display(ctx, 0)
	if err != nil || other.ShowPlayer {
		t.Fatalf("display of other cell=%+v err=%v", other, err)
	}
	if _, err := s.Display(ctx, 42); !IsIndexOutOfRange(err) {
		t.Fatalf("expected out of range, got %v", err)
	}

	if err := s.Exit(ctx); err != nil {
		t.Fatalf("exit: %v", err)
	}
	st := waitStatus(t, s, func(st types.SessionStatus) bool { return st.Playback.Position == -1 })
	if len(st.Window) != 0 || st.Window == nil || st.Ready == nil {
		t.Fatalf("unexpected status after exit %+v", st)
	}
}

func TestSessionAppendExtendsWindow(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	s, _, stop := newTestSession(t, 3)
	defer stop()
	ctx := testCtx(t)

	if err := s.Open(ctx, 2); err != nil {
		t.Fatalf("open: %v", err)
	}
	st := waitStatus(t, s, settledAt(2))
	if len(st.Window) != 0 {
		t.Fatalf("window at end of feed=%v", st.Window)
	}
	// one duplicate id, two new
	added, err := s.Append(ctx, testVideos(2, 5))
	if err != nil || added != 2 {
		t.Fatalf("append -> %d %v", added, err)
	}
	st = waitStatus(t, s, settledAt(2))
	if st.FeedLength != 5 || !equalInts(st.Window, []int{3, 4}) {
		t.Fatalf("unexpected status %+v", st)
	}
	if n, err := s.Append(ctx, testVideos(0, 5)); err != nil || n != 0 {
		t.Fatalf("append of known ids -> %d %v", n, err)
	}
	if len(s.Items()) != 5 || !s.Ready() {
		t.Fatalf("items=%d", len(s.Items()))
	}
}

func TestSessionExitThenSettleSameIndex(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	s, prov, stop := newTestSession(t, 5)
	defer stop()
	ctx := testCtx(t)

	if err := s.Open(ctx, 2); err != nil {
		t.Fatalf("open: %v", err)
	}
	waitStatus(t, s, settledAt(2))
	if err := s.Exit(ctx); err != nil {
		t.Fatalf("exit: %v", err)
	}
	st := waitStatus(t, s, func(st types.SessionStatus) bool { return st.Playback.Position == -1 })
	if st.Tracker != "idle" {
		t.Fatalf("tracker after exit=%s", st.Tracker)
	}

	if err := s.Settle(ctx, 2); err != nil {
		t.Fatalf("settle: %v", err)
	}
	st = waitStatus(t, s, settledAt(2))
	if !st.Playback.Playing || !equalInts(st.Window, []int{3, 4}) {
		t.Fatalf("re-entry status %+v", st)
	}
	if prov.count(loc(2)) != 2 {
		t.Fatalf("expected a fresh open after exit, calls=%d", prov.count(loc(2)))
	}
}

func TestSessionStartsWhenEmptyFeedGrows(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	s, _, stop := newTestSession(t, 0)
	defer stop()
	ctx := testCtx(t)

	if err := s.Open(ctx, 0); err != nil {
		t.Fatalf("open: %v", err)
	}
	st := waitStatus(t, s, func(st types.SessionStatus) bool { return st.Playback.Position == -1 })
	if st.FeedLength != 0 || s.Ready() {
		t.Fatalf("unexpected status %+v", st)
	}

	added, err := s.Append(ctx, testVideos(0, 2))
	if err != nil || added != 2 {
		t.Fatalf("append -> %d %v", added, err)
	}
	st = waitStatus(t, s, settledAt(0))
	if !st.Playback.Playing || !equalInts(st.Window, []int{1}) {
		t.Fatalf("status after growth %+v", st)
	}
}

func TestSessionSettleOnZeroAfterEmptyFeedGrows(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	s, _, stop := newTestSession(t, 0)
	defer stop()
	ctx := testCtx(t)

	// no Open: the host settles directly once items arrive
	if _, err := s.Append(ctx, testVideos(0, 2)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Settle(ctx, 0); err != nil {
		t.Fatalf("settle: %v", err)
	}
	st := waitStatus(t, s, settledAt(0))
	if !st.Playback.Playing || st.Playback.Locator != loc(0) {
		t.Fatalf("status %+v", st)
	}
}

func TestSessionAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	s, _, stop := newTestSession(t, 3)
	stop()
	if err := s.DragBegin(context.Background()); err != ErrLoopStopped {
		t.Fatalf("expected ErrLoopStopped, got %v", err)
	}
}
