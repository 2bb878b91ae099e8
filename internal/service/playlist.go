package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/voyagen/pimplecast/internal/events"
	"github.com/voyagen/pimplecast/internal/fetcher"
	"github.com/voyagen/pimplecast/internal/metrics"
	"github.com/voyagen/pimplecast/internal/models"
	"github.com/voyagen/pimplecast/internal/playlist"
	"github.com/voyagen/pimplecast/internal/store"
)

// Resolver builds the playlist fragment for a broadcast.
type Resolver interface {
	Resolve(ctx context.Context, b *models.Broadcast) (string, bool)
}

// Options configures an Assembler.
type Options struct {
	ListingsPath string
	Location     *time.Location
	// EntryTTL is how long cached fragments stay valid. Defaults to models.DefaultEntryTTL.
	EntryTTL time.Duration
	Observer events.Observer
	// Now defaults to time.Now.
	Now func() time.Time
}

// Assembler builds the playlist from the listings page. With a nil store it
// resolves every broadcast on each build; otherwise resolved fragments are
// cached per link.
type Assembler struct {
	pages    fetcher.Pager
	resolver Resolver
	store    store.Store
	opts     Options
}

// NewAssembler returns an Assembler. st may be nil.
func NewAssembler(pages fetcher.Pager, resolver Resolver, st store.Store, opts Options) *Assembler {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = models.DefaultEntryTTL
	}
	if opts.Observer == nil {
		opts.Observer = events.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Assembler{pages: pages, resolver: resolver, store: st, opts: opts}
}

// Mode reports "cached" or "stateless".
func (a *Assembler) Mode() string {
	if a.store != nil {
		return "cached"
	}
	return "stateless"
}

// Build returns the complete playlist text. Only cache-store failures are
// returned as errors; unreachable pages just shrink the playlist.
func (a *Assembler) Build(ctx context.Context) (string, error) {
	start := time.Now()
	mode := a.Mode()
	defer func() {
		metrics.BuildDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	}()

	now := a.opts.Now()
	page, err := a.pages.Fetch(ctx, a.opts.ListingsPath)
	if err != nil {
		a.opts.Observer.Observe(events.Event{Kind: events.KindFetchFailed, Path: a.opts.ListingsPath, Err: err})
		page = ""
	}

	var fragments []string
	if a.store == nil {
		fragments = a.resolveAll(ctx, page, now)
	} else {
		fragments, err = a.resolveCached(ctx, page, now)
		if err != nil {
			metrics.BuildsTotal.WithLabelValues(mode, "error").Inc()
			return "", err
		}
	}

	metrics.BuildsTotal.WithLabelValues(mode, "ok").Inc()
	metrics.PlaylistEntries.Set(float64(len(fragments)))
	return playlist.Assemble(fragments), nil
}

func (a *Assembler) resolveAll(ctx context.Context, page string, now time.Time) []string {
	var fragments []string
	for b := range fetcher.Listings(page, now, a.opts.Location) {
		a.opts.Observer.Observe(events.Event{Kind: events.KindSelected, Broadcast: b})
		if frag, ok := a.resolver.Resolve(ctx, &b); ok {
			fragments = append(fragments, frag)
		}
	}
	return fragments
}

func (a *Assembler) resolveCached(ctx context.Context, page string, now time.Time) ([]string, error) {
	cutoff := now.Add(-a.opts.EntryTTL)
	var fragments []string

	err := a.store.InTx(ctx, func(tx store.Tx) error {
		fragments = nil

		n, err := tx.PurgeBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		if n > 0 {
			a.opts.Observer.Observe(events.Event{Kind: events.KindPurged, Count: int(n)})
		}

		selected := 0
		for b := range fetcher.Listings(page, now, a.opts.Location) {
			selected++
			a.opts.Observer.Observe(events.Event{Kind: events.KindSelected, Broadcast: b})

			entry, err := tx.GetSince(ctx, b.Link, cutoff)
			if err == nil {
				a.opts.Observer.Observe(events.Event{Kind: events.KindCacheHit, Broadcast: b})
				fragments = append(fragments, entry.Fragment)
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}

			frag, ok := a.resolver.Resolve(ctx, &b)
			if !ok {
				continue
			}
			if err := tx.Upsert(ctx, models.Entry{Link: b.Link, Fragment: frag, FetchedAt: now}); err != nil {
				return err
			}
			a.opts.Observer.Observe(events.Event{Kind: events.KindCached, Broadcast: b})
			fragments = append(fragments, frag)
		}

		if selected > 0 {
			return nil
		}
		entries, err := tx.ListSince(ctx, cutoff)
		if err != nil {
			return err
		}
		a.opts.Observer.Observe(events.Event{Kind: events.KindFallback, Count: len(entries)})
		for _, e := range entries {
			fragments = append(fragments, e.Fragment)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("playlist cache: %w", err)
	}
	return fragments, nil
}
