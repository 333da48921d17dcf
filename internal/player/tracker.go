package player

import "math"

// TrackerState is the paging state of the feed.
type TrackerState int

const (
	TrackerIdle TrackerState = iota
	TrackerDragging
	TrackerSettled
)

func (s TrackerState) String() string {
	switch s {
	case TrackerIdle:
		return "idle"
	case TrackerDragging:
		return "dragging"
	case TrackerSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Listener receives the discrete events derived from raw scroll input.
type Listener interface {
	OnDragBegin()
	OnSettled(index int)
}

// Tracker turns drag/deceleration callbacks from the host into drag-begin and
// settled events. Only one position is visible at a time.
type Tracker struct {
	state    TrackerState
	index    int // -1 until something settled
	pending  int // start index deferred while the feed is empty, -1 if none
	feedLen  func() int
	listener Listener
}

func NewTracker(feedLen func() int, l Listener) *Tracker {
	return &Tracker{index: -1, pending: -1, feedLen: feedLen, listener: l}
}

func (t *Tracker) State() TrackerState { return t.state }

// Index returns the last settled index, or -1 when nothing is settled.
func (t *Tracker) Index() int { return t.index }

// Start enters Idle at index, which behaves as a settle there. On an empty
// feed the start is deferred until StartPending finds items.
func (t *Tracker) Start(index int) {
	t.state = TrackerIdle
	if t.feedLen() == 0 {
		t.index = -1
		t.pending = max(index, 0)
		return
	}
	t.pending = -1
	t.index = t.clamp(index)
	t.listener.OnSettled(t.index)
}

// StartPending performs a start deferred by an empty feed once the feed has
// items. It reports whether a start happened.
func (t *Tracker) StartPending() bool {
	if t.pending < 0 || t.feedLen() == 0 {
		return false
	}
	t.Start(t.pending)
	return true
}

// Reset forgets the settled position so the next settle on any index is a
// new stop. Used when the host leaves the feed.
func (t *Tracker) Reset() {
	t.state = TrackerIdle
	t.index = -1
	t.pending = -1
}

// DragBegin moves to Dragging. Repeated calls while dragging are ignored.
func (t *Tracker) DragBegin() {
	if t.state == TrackerDragging {
		return
	}
	t.state = TrackerDragging
	t.listener.OnDragBegin()
}

// DragEnd settles at the page under offset when a drag is in progress and
// returns the settled index. Without a drag it reports false.
func (t *Tracker) DragEnd(offset, pageHeight float64) (int, bool) {
	if t.state != TrackerDragging {
		return t.index, false
	}
	return t.SettleAt(IndexForOffset(offset, pageHeight, t.index))
}

// SettleAt settles directly at index. Outside a drag, settling on the
// current index is not a new stop and emits nothing.
func (t *Tracker) SettleAt(index int) (int, bool) {
	if t.feedLen() == 0 {
		return t.index, false
	}
	index = t.clamp(index)
	if t.state != TrackerDragging && index == t.index {
		return t.index, false
	}
	t.state = TrackerSettled
	t.index = index
	t.listener.OnSettled(index)
	return index, true
}

func (t *Tracker) clamp(index int) int {
	n := t.feedLen()
	if index >= n {
		index = n - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}

// maxPage bounds IndexForOffset so the float to int conversion stays defined.
const maxPage = math.MaxInt32

// IndexForOffset maps a scroll offset to the page it shows, in [0, maxPage].
// A non-positive page height yields fallback.
func IndexForOffset(offset, pageHeight float64, fallback int) int {
	if pageHeight <= 0 || math.IsNaN(offset) || math.IsInf(offset, 0) {
		return fallback
	}
	page := math.Round(offset / pageHeight)
	switch {
	case page <= 0:
		return 0
	case page >= maxPage:
		return maxPage
	}
	return int(page)
}
