package types

// Video is one entry of a feed manifest as served by the feed source.
type Video struct {
	// Stable identifier used to deduplicate "load more" batches.
	// example: 7
	ID int `json:"id" yaml:"id" toml:"id" example:"7"`
	// Playable locator (http(s) URL or file path).
	// example: https://cdn.example.com/v/7.mp4
	Video string `json:"video" yaml:"video" toml:"video" example:"https://cdn.example.com/v/7.mp4"`
	// Thumbnail locator. Thumbnails are fetched by the UI host.
	Thum string `json:"thum" yaml:"thum" toml:"thum"`
	// Caption shown over the video.
	// example: Sunset over the bay
	Description string `json:"description" yaml:"description" toml:"description" example:"Sunset over the bay"`
	// Optional duration hint in seconds; 0 means unknown.
	Duration float64 `json:"duration,omitempty" yaml:"duration,omitempty" toml:"duration,omitempty"`
}

// VideoData is the manifest envelope.
type VideoData struct {
	Videos []Video `json:"videos" yaml:"videos" toml:"videos"`
}

// MediaItem is a video placed at a fixed position of the feed.
type MediaItem struct {
	// Position in the ordered feed.
	// example: 0
	Index int `json:"index" example:"0"`
	// Stable identifier from the feed source.
	// example: 7
	ID int `json:"id" example:"7"`
	// example: https://cdn.example.com/v/7.mp4
	Locator string `json:"locator" example:"https://cdn.example.com/v/7.mp4"`
	// example: Sunset over the bay
	Caption   string  `json:"caption" example:"Sunset over the bay"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
}
