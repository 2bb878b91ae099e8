// Package resolver turns a selected broadcast into a playlist fragment by
// scanning its detail page for a stream address.
package resolver

import (
	"context"
	"time"

	"github.com/voyagen/pimplecast/internal/channels"
	"github.com/voyagen/pimplecast/internal/events"
	"github.com/voyagen/pimplecast/internal/fetcher"
	"github.com/voyagen/pimplecast/internal/models"
	"github.com/voyagen/pimplecast/internal/playlist"
)

// Resolver fetches detail pages and builds fragments.
type Resolver struct {
	pages    fetcher.Pager
	registry *channels.Registry
	loc      *time.Location
	observer events.Observer
}

// New returns a Resolver. A nil observer drops events.
func New(pages fetcher.Pager, registry *channels.Registry, loc *time.Location, observer events.Observer) *Resolver {
	if observer == nil {
		observer = events.Nop()
	}
	return &Resolver{pages: pages, registry: registry, loc: loc, observer: observer}
}

// Resolve returns the fragment for b, or false when its detail page has no
// stream yet or could not be fetched. For live broadcasts b.Time is replaced
// with the kickoff from the detail page.
func (r *Resolver) Resolve(ctx context.Context, b *models.Broadcast) (string, bool) {
	page, err := r.pages.Fetch(ctx, b.Link)
	if err != nil {
		r.observer.Observe(events.Event{Kind: events.KindFetchFailed, Broadcast: *b, Path: b.Link, Err: err})
		return "", false
	}
	streams := fetcher.StreamIDs(page)
	if len(streams) == 0 {
		r.observer.Observe(events.Event{Kind: events.KindNoStream, Broadcast: *b})
		return "", false
	}
	if b.Live {
		if kickoff, ok := fetcher.BroadcastTime(page, r.loc); ok {
			b.Time = kickoff
		}
	}

	id, ok := r.registry.Lookup(b.Channel)
	if !ok {
		id = models.UnknownChannelID
		r.observer.Observe(events.Event{Kind: events.KindUnknownChannel, Broadcast: *b})
	}
	r.observer.Observe(events.Event{Kind: events.KindResolved, Broadcast: *b, Count: len(streams)})
	return playlist.Entry(*b, id, streams[0]), true
}
