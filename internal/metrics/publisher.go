// Package metrics exports player events as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"feedplay/internal/player"
)

var (
	playerEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedplay",
			Subsystem: "player",
			Name:      "events_total",
			Help:      "Total number of player events by name",
		},
		[]string{"event"},
	)

	preloadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "feedplay",
			Subsystem: "player",
			Name:      "preload_duration_seconds",
			Help:      "Time from preload start to a ready resource",
			Buckets:   prometheus.DefBuckets,
		},
	)

	activePosition = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "feedplay",
			Subsystem: "player",
			Name:      "active_position",
			Help:      "Feed index holding playback, -1 when none",
		},
	)
)

func init() {
	prometheus.MustRegister(playerEventsTotal, preloadDuration, activePosition)
	activePosition.Set(-1)
}

// Publisher implements player.EventPublisher on top of the package metrics.
type Publisher struct{}

var _ player.EventPublisher = Publisher{}

func (Publisher) Publish(e player.Event) {
	playerEventsTotal.WithLabelValues(e.Name).Inc()
	switch e.Name {
	case player.EventPreloaded:
		if ms, ok := e.Fields["dur_ms"].(int); ok {
			preloadDuration.Observe(float64(ms) / 1000)
		}
	case player.EventHandoff:
		activePosition.Set(float64(e.Index))
	case player.EventExit:
		activePosition.Set(-1)
	}
}
