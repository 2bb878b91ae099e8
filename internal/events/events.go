// Package events carries diagnostics out of the scraping pipeline. The
// pipeline reports what it did through an Observer; sinks decide whether to
// log, count or ignore it.
package events

import (
	"github.com/rs/zerolog"

	"github.com/voyagen/pimplecast/internal/models"
)

// Kind names a diagnostic event.
type Kind string

const (
	KindSelected       Kind = "selected"        // broadcast passed the suitability filter
	KindUnknownChannel Kind = "unknown_channel" // channel name missing from the registry
	KindFetchFailed    Kind = "fetch_failed"    // page could not be fetched
	KindNoStream       Kind = "no_stream"       // detail page had no stream id
	KindResolved       Kind = "resolved"        // fragment built from a detail page
	KindCacheHit       Kind = "cache_hit"       // fragment reused from the cache table
	KindCached         Kind = "cached"          // fragment written to the cache table
	KindPurged         Kind = "purged"          // expired rows removed
	KindFallback       Kind = "fallback"        // no broadcasts selected, cached rows served
)

// Event is one diagnostic. Only the fields relevant to Kind are set.
type Event struct {
	Kind      Kind
	Broadcast models.Broadcast
	Path      string
	Count     int
	Err       error
}

// Observer receives pipeline events. Implementations must be safe for
// concurrent use.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

// Nop returns an Observer that drops every event.
func Nop() Observer {
	return ObserverFunc(func(Event) {})
}

type multi []Observer

func (m multi) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

// Multi fans each event out to every non-nil observer.
func Multi(observers ...Observer) Observer {
	out := make(multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type logObserver struct {
	logger zerolog.Logger
}

// Log returns an Observer writing each event to logger.
func Log(logger zerolog.Logger) Observer {
	return logObserver{logger: logger}
}

func (o logObserver) Observe(e Event) {
	var ev *zerolog.Event
	switch e.Kind {
	case KindUnknownChannel, KindFetchFailed:
		ev = o.logger.Warn()
	case KindSelected, KindFallback, KindPurged:
		ev = o.logger.Info()
	default:
		ev = o.logger.Debug()
	}
	ev = ev.Str("event", string(e.Kind))
	if b := e.Broadcast; b.Link != "" || b.Channel != "" {
		ev = ev.Str("teams", b.Teams()).
			Str("channel", b.Channel).
			Str("time", b.Time).
			Bool("live", b.Live).
			Str("link", b.Link)
	}
	if e.Path != "" {
		ev = ev.Str("path", e.Path)
	}
	if e.Count != 0 {
		ev = ev.Int("count", e.Count)
	}
	if e.Err != nil {
		ev = ev.Err(e.Err)
	}
	ev.Msg(string(e.Kind))
}
