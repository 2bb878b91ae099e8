// Package channels maps the channel names shown on listing pages to SS IPTV
// channel ids.
package channels

import "github.com/voyagen/pimplecast/internal/models"

// Registry is an immutable name -> id table. Build it once at start-up and
// share it; nothing mutates it afterwards.
type Registry struct {
	ids map[string]int
}

var known = map[string]int{
	"МАТЧ! HD":             4,
	"МАТЧ! СТРАНА HD":      84,
	"МАТЧ ПРЕМЬЕР HD":      277,
	"Беларусь 2 HD":        346,
	"МАТЧ! Футбол 1 (HD)":  553,
	"МАТЧ! Футбол 2 (HD)":  554,
	"МАТЧ! ИГРА (HD)":      569,
	"Setanta Sports HD":    665,
	"Футбол HD":            919,
	"Беларусь 5 HD":        1511,
	"Sky Sport 1 HD":       1640,
	"МАТЧ! Футбол 3 (HD)":  2831,
	"CANAL+ Sport 2 HD":    3193,
	"Eleven Sports 2 HD":   4620,
	"Setanta Qazaqstan HD": 4841,
	"Setanta Sports 1 HD":  4848,
	"Setanta Sports 2 HD":  4849,
}

// Default returns the registry of channels known to carry pimpletv broadcasts.
func Default() *Registry {
	return New(known)
}

// New copies ids into a new Registry.
func New(ids map[string]int) *Registry {
	r := &Registry{ids: make(map[string]int, len(ids))}
	for name, id := range ids {
		r.ids[name] = id
	}
	return r
}

// With returns a new Registry holding r's mappings plus extra. Entries in
// extra override existing ones.
func (r *Registry) With(extra map[string]int) *Registry {
	out := New(r.ids)
	for name, id := range extra {
		out.ids[name] = id
	}
	return out
}

// Lookup returns the id for name and whether it is known.
func (r *Registry) Lookup(name string) (int, bool) {
	id, ok := r.ids[name]
	return id, ok
}

// ID returns the id for name, or models.UnknownChannelID.
func (r *Registry) ID(name string) int {
	if id, ok := r.Lookup(name); ok {
		return id
	}
	return models.UnknownChannelID
}

// Len returns the number of known channels.
func (r *Registry) Len() int {
	return len(r.ids)
}
