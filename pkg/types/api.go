package types

// SettleRequest reports that paging stopped with Index fully visible.
type SettleRequest struct {
	// example: 3
	Index int `json:"index" example:"3"`
}

// ReleaseRequest reports the end of a drag with the final scroll offset.
// The settled index is computed from Offset / PageHeight.
type ReleaseRequest struct {
	// example: 2400
	Offset float64 `json:"offset" example:"2400"`
	// example: 800
	PageHeight float64 `json:"page_height" example:"800"`
}

// ScrubRequest seeks within the active video.
type ScrubRequest struct {
	// Fraction of the total duration in [0,1].
	// example: 0.5
	Fraction float64 `json:"fraction" example:"0.5"`
}

// FeedResponse wraps the items returned by GET /feed.
type FeedResponse struct {
	Items []MediaItem `json:"items"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// DisplayState is what a UI host needs to render one feed cell.
type DisplayState struct {
	// example: 3
	Index int `json:"index" example:"3"`
	// example: Sunset over the bay
	Caption string `json:"caption" example:"Sunset over the bay"`
	// True when the shared playback surface belongs to this cell.
	ShowPlayer bool `json:"show_player"`
	// Icon of the play button: "play" or "pause".
	// example: pause
	PlayIcon string `json:"play_icon" example:"pause"`
	// Normalized progress in [0,1]; 0 for inactive cells.
	// example: 0.25
	Progress float64 `json:"progress" example:"0.25"`
}

// PlaybackStatus summarizes the active playback for /session.
type PlaybackStatus struct {
	// Feed index occupying playback, -1 when none.
	// example: 3
	Position int `json:"position" example:"3"`
	// example: https://cdn.example.com/v/7.mp4
	Locator string `json:"locator,omitempty" example:"https://cdn.example.com/v/7.mp4"`
	// example: true
	Playing bool `json:"playing" example:"true"`
	// True while the resource for Position is still being opened.
	Loading bool `json:"loading"`
	// example: 0.25
	Progress float64 `json:"progress" example:"0.25"`
}

// SessionStatus is returned by GET /session.
type SessionStatus struct {
	// example: 4b0c7c8e-3a51-4a8e-9d0a-1f0d6a4c2e11
	SessionID string `json:"session_id"`
	// Tracker state: idle, dragging or settled.
	// example: settled
	Tracker string `json:"tracker" example:"settled"`
	// example: 10
	FeedLength int            `json:"feed_length" example:"10"`
	Playback   PlaybackStatus `json:"playback"`
	// Indices of the current preload window.
	// example: [4,5,6]
	Window []int `json:"window"`
	// Indices whose resources are opened and ready.
	Ready []int `json:"ready"`
}
