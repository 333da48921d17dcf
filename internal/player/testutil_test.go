package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"feedplay/pkg/types"
)

// fakeFeed is an in-memory Feed. Locators default to "v<i>.mp4".
type fakeFeed struct {
	items []types.MediaItem
}

func newFakeFeed(n int) *fakeFeed {
	f := &fakeFeed{}
	f.grow(n)
	return f
}

func (f *fakeFeed) grow(n int) {
	for i := 0; i < n; i++ {
		idx := len(f.items)
		f.items = append(f.items, types.MediaItem{
			Index:   idx,
			ID:      idx + 1,
			Locator: loc(idx),
			Caption: fmt.Sprintf("caption %d", idx),
		})
	}
}

func (f *fakeFeed) Len() int { return len(f.items) }

func (f *fakeFeed) At(i int) (types.MediaItem, bool) {
	if i < 0 || i >= len(f.items) {
		return types.MediaItem{}, false
	}
	return f.items[i], true
}

func loc(i int) string { return fmt.Sprintf("v%d.mp4", i) }

// manualQueue collects posted work; tests run it explicitly with runN.
type manualQueue struct {
	mu     sync.Mutex
	tasks  []func()
	posted chan struct{}
}

func newManualQueue() *manualQueue { return &manualQueue{posted: make(chan struct{}, 1024)} }

func (q *manualQueue) Post(fn func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
	q.posted <- struct{}{}
}

// runN waits for and runs n posted tasks in order.
func (q *manualQueue) runN(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-q.posted:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for task %d of %d", i+1, n)
		}
		q.mu.Lock()
		fn := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()
		fn()
	}
}

// expectIdle fails if anything is posted within d.
func (q *manualQueue) expectIdle(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case <-q.posted:
		t.Fatalf("unexpected task posted")
	case <-time.After(d):
	}
}

// fakeResource is a Resource with a settable position and no clock.
type fakeResource struct {
	mu      sync.Mutex
	locator string
	pos     time.Duration
	dur     time.Duration
	playing bool
	closed  int
	seeks   []time.Duration
	ended   chan struct{}
}

func newFakeResource(locator string, dur time.Duration) *fakeResource {
	return &fakeResource{locator: locator, dur: dur, ended: make(chan struct{}, 1)}
}

func (r *fakeResource) Play() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed > 0 {
		return errors.New("closed")
	}
	r.playing = true
	return nil
}

func (r *fakeResource) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = false
	return nil
}

func (r *fakeResource) Seek(pos time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pos = pos
	r.seeks = append(r.seeks, pos)
	return nil
}

func (r *fakeResource) Position() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos
}

func (r *fakeResource) Duration() time.Duration { return r.dur }

func (r *fakeResource) EndOfStream() <-chan struct{} { return r.ended }

func (r *fakeResource) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	r.playing = false
	return nil
}

func (r *fakeResource) setPos(d time.Duration) {
	r.mu.Lock()
	r.pos = d
	r.mu.Unlock()
}

func (r *fakeResource) isPlaying() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playing
}

func (r *fakeResource) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed > 0
}

func (r *fakeResource) end() {
	select {
	case r.ended <- struct{}{}:
	default:
	}
}

// fakeProvider opens fakeResources. Opens of a held locator block until
// released; failing locators return their error.
type fakeProvider struct {
	mu       sync.Mutex
	dur      time.Duration
	calls    map[string]int
	fail     map[string]error
	gates    map[string]chan struct{}
	opened   map[string][]*fakeResource
	totalOps int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		dur:    10 * time.Second,
		calls:  map[string]int{},
		fail:   map[string]error{},
		gates:  map[string]chan struct{}{},
		opened: map[string][]*fakeResource{},
	}
}

func (f *fakeProvider) Open(ctx context.Context, locator string) (Resource, error) {
	f.mu.Lock()
	f.calls[locator]++
	f.totalOps++
	gate := f.gates[locator]
	err := f.fail[locator]
	dur := f.dur
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	r := newFakeResource(locator, dur)
	f.mu.Lock()
	f.opened[locator] = append(f.opened[locator], r)
	f.mu.Unlock()
	return r, nil
}

// hold makes opens of locator block until the returned func is called.
func (f *fakeProvider) hold(locator string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[locator] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (f *fakeProvider) setFail(locator string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, locator)
		return
	}
	f.fail[locator] = err
}

func (f *fakeProvider) count(locator string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[locator]
}

func (f *fakeProvider) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalOps
}

// last returns the most recently opened resource for locator.
func (f *fakeProvider) last(t *testing.T, locator string) *fakeResource {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	rs := f.opened[locator]
	if len(rs) == 0 {
		t.Fatalf("no resource opened for %s", locator)
	}
	return rs[len(rs)-1]
}

func (f *fakeProvider) all() []*fakeResource {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*fakeResource
	for _, rs := range f.opened {
		out = append(out, rs...)
	}
	return out
}

// playingCount returns how many opened resources are currently playing.
func (f *fakeProvider) playingCount() int {
	n := 0
	for _, r := range f.all() {
		if r.isPlaying() {
			n++
		}
	}
	return n
}

// recordingPresenter tracks what is attached and the last reported state.
type recordingPresenter struct {
	attached  map[int]Resource
	playState map[int]bool
	progress  map[int]float64
	attaches  int
}

func newRecordingPresenter() *recordingPresenter {
	return &recordingPresenter{
		attached:  map[int]Resource{},
		playState: map[int]bool{},
		progress:  map[int]float64{},
	}
}

func (r *recordingPresenter) Attach(index int, res Resource) {
	r.attached[index] = res
	r.attaches++
}

func (r *recordingPresenter) Detach(index int) { delete(r.attached, index) }

func (r *recordingPresenter) PlayState(index int, playing bool) { r.playState[index] = playing }

func (r *recordingPresenter) Progress(index int, fraction float64) { r.progress[index] = fraction }

type harness struct {
	p    *Player
	feed *fakeFeed
	prov *fakeProvider
	q    *manualQueue
	pres *recordingPresenter
	pub  *MemoryPublisher
}

func newHarness(t *testing.T, n int) *harness {
	t.Helper()
	h := &harness{
		feed: newFakeFeed(n),
		prov: newFakeProvider(),
		q:    newManualQueue(),
		pres: newRecordingPresenter(),
		pub:  NewMemoryPublisher(),
	}
	p, err := New(Config{
		Feed:         h.feed,
		Provider:     h.prov,
		Queue:        h.q,
		Presenter:    h.pres,
		Publisher:    h.pub,
		TickInterval: time.Hour,
		OpenTimeout:  2 * time.Second,
	})
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	t.Cleanup(p.Close)
	h.p = p
	return h
}

func (h *harness) settle(t *testing.T, position int) {
	t.Helper()
	if err := h.p.Settle(position); err != nil {
		t.Fatalf("settle %d: %v", position, err)
	}
}

// lastHandoff returns the source of the most recent handoff event.
func (h *harness) lastHandoff(t *testing.T) string {
	t.Helper()
	evs := h.pub.Events()
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Name == EventHandoff {
			s, _ := evs[i].Fields["source"].(string)
			return s
		}
	}
	t.Fatalf("no handoff event")
	return ""
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}
