// Package metrics exposes Prometheus metrics for playlist builds.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/voyagen/pimplecast/internal/events"
)

var (
	// EventsTotal counts pipeline events by kind.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pimplecast",
		Name:      "events_total",
		Help:      "Total number of pipeline events, by kind.",
	}, []string{"kind"})

	// BuildsTotal counts playlist builds by mode (stateless/cached) and result.
	BuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pimplecast",
		Name:      "playlist_builds_total",
		Help:      "Total number of playlist builds, by mode and result.",
	}, []string{"mode", "result"})

	// BuildDuration observes how long a playlist build takes.
	BuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pimplecast",
		Name:      "playlist_build_duration_seconds",
		Help:      "Playlist build duration in seconds, by mode.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"mode"})

	// PlaylistEntries reports the number of entries in the last built playlist.
	PlaylistEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pimplecast",
		Name:      "playlist_entries",
		Help:      "Number of entries in the most recently built playlist.",
	})
)

type observer struct{}

// Observer returns an events.Observer that counts every event in EventsTotal.
func Observer() events.Observer {
	return observer{}
}

func (observer) Observe(e events.Event) {
	EventsTotal.WithLabelValues(string(e.Kind)).Inc()
}
