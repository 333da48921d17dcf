// Package player coordinates playback for a vertically paged video feed. It is
// structured into small files by concern:
//
//   - player.go: core Player type, constructor, simple getters.
//   - config.go: Config and package defaults; New applies defaults.
//   - types.go: collaborator interfaces (Feed, Resource, Provider, Presenter, Queue).
//   - errors.go: error types and helpers (IsResourceOpenFailure, IsIndexOutOfRange).
//   - window.go: preload window computation, resource warming and completion.
//   - handoff.go: settle handoff, hold/toggle/scrub, exit.
//   - ticks.go: per-attachment progress ticks and end-of-stream looping.
//   - status.go: Snapshot and display-state projection.
//   - tracker.go: drag/settle state machine fed by raw host scroll events.
//   - loop.go: the serial executor that owns all Player state.
//   - session.go: binds a feed store, Player, Tracker and Loop for one host.
//
// Threading: a Player is not safe for concurrent use. Every method must run on
// the goroutine that drains its Queue (normally a Loop). Resource opens run on
// background goroutines and hand their results back through the Queue, so the
// Queue is the only place Player state changes.
package player
