package player

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := NewLoop(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = l.Run(ctx) }()
	return l, func() {
		cancel()
		<-l.Done()
	}
}

func TestLoopRunsInOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	l, stop := startLoop(t)
	defer stop()

	var got []int
	for i := 0; i < 50; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	if err := l.Do(testCtx(t), func() {}); err != nil {
		t.Fatalf("do: %v", err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("out of order at %d: %v", i, got)
		}
	}
	if len(got) != 50 {
		t.Fatalf("ran %d of 50", len(got))
	}
}

func TestLoopRecoversPanics(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	l, stop := startLoop(t)
	defer stop()

	l.Post(func() { panic("boom") })
	var ran atomic.Bool
	if err := l.Do(testCtx(t), func() { ran.Store(true) }); err != nil {
		t.Fatalf("do after panic: %v", err)
	}
	if !ran.Load() {
		t.Fatalf("loop stopped after panic")
	}
}

func TestLoopStopped(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	l, stop := startLoop(t)
	stop()

	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrLoopStopped) {
		t.Fatalf("expected ErrLoopStopped, got %v", err)
	}
	var ran atomic.Bool
	l.Post(func() { ran.Store(true) })
	time.Sleep(10 * time.Millisecond)
	if ran.Load() {
		t.Fatalf("work posted after stop ran")
	}
}

func TestLoopDoHonorsContext(t *testing.T) {
	l := NewLoop(zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	// never run: Do must give up on ctx
	if err := l.Do(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestLoopRunTwice(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	l, stop := startLoop(t)
	defer stop()
	if err := l.Do(testCtx(t), func() {}); err != nil {
		t.Fatalf("do: %v", err)
	}
	if err := l.Run(context.Background()); err == nil {
		t.Fatalf("second Run should fail")
	}
}
