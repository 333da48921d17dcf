package httpapi

import "time"

const (
	defaultMaxBodyBytes  = 1 << 20
	defaultActionTimeout = 10 * time.Second
)

// Server tunables. They are set once at startup, before NewMux.
var (
	maxBodyBytes  int64 = defaultMaxBodyBytes
	actionTimeout       = defaultActionTimeout
	corsOpts      corsSettings
)

type corsSettings struct {
	enabled bool
	origins []string
	methods []string
	headers []string
}

// SetMaxBodyBytes bounds JSON request bodies. n <= 0 restores the default.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		n = defaultMaxBodyBytes
	}
	maxBodyBytes = n
}

// SetActionTimeout bounds how long a request waits for the session loop.
// d <= 0 restores the default.
func SetActionTimeout(d time.Duration) {
	if d <= 0 {
		d = defaultActionTimeout
	}
	actionTimeout = d
}

// SetCORSOptions enables CORS for origins. Empty methods or headers fall back
// to what the session endpoints need.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	if len(methods) == 0 {
		methods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(headers) == 0 {
		headers = []string{"Content-Type", "X-Log-Level"}
	}
	corsOpts = corsSettings{
		enabled: enabled,
		origins: append([]string(nil), origins...),
		methods: append([]string(nil), methods...),
		headers: append([]string(nil), headers...),
	}
}
