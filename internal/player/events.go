package player

// Event names published by the Player.
const (
	EventPreloadStart   = "preload_start"
	EventPreloaded      = "preloaded"
	EventPreloadFailed  = "preload_failed"
	EventPreloadEvicted = "preload_evicted"
	EventStaleDiscarded = "stale_discarded"
	EventHandoff        = "handoff"
	EventOpenFailed     = "open_failed"
	EventHold           = "hold"
	EventResume         = "resume"
	EventToggle         = "toggle"
	EventScrub          = "scrub"
	EventLoop           = "loop"
	EventExit           = "exit"
)

// Event represents a player lifecycle event.
// Minimal and stable: name + feed index/locator and optional fields.
type Event struct {
	Name    string
	Index   int
	Locator string
	Fields  map[string]any
}

// EventPublisher receives events from the player. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
