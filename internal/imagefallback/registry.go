package imagefallback

import (
	"sync"
	"sync/atomic"
)

// State is a point-in-time view of a resolver
type State struct {
	URL                  string `json:"url"`
	Tier                 string `json:"tier"`
	ImageError           bool   `json:"imageError"`
	ShowEmojiPlaceholder bool   `json:"showEmojiPlaceholder"`
}

// Registry keeps one resolver per catalog entry. Each resolver follows the
// latest poster URL seen for its id, so a changed poster starts again from
// the original tier.
type Registry struct {
	mu      sync.Mutex
	opts    []Option
	entries map[string]*entry
}

type entry struct {
	poster   atomic.Value
	resolver *Resolver
}

// NewRegistry creates a registry whose resolvers share opts
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		opts:    opts,
		entries: make(map[string]*entry),
	}
}

func (g *Registry) get(id, poster string) *Resolver {
	g.mu.Lock()
	e, ok := g.entries[id]
	if !ok {
		e = &entry{}
		e.poster.Store(poster)
		e.resolver = NewDynamic(func() string { return e.poster.Load().(string) }, g.opts...)
		g.entries[id] = e
	}
	g.mu.Unlock()

	e.poster.Store(poster)
	return e.resolver
}

// Resolve returns the current state for id whose original URL is poster
func (g *Registry) Resolve(id, poster string) State {
	return g.get(id, poster).State()
}

// URL is Resolve without the state flags
func (g *Registry) URL(id, poster string) string {
	return g.get(id, poster).CurrentURL()
}

// ReportLoadFailure records a failed load of the image currently served for id
func (g *Registry) ReportLoadFailure(id, poster string) State {
	r := g.get(id, poster)
	r.ReportLoadFailure()
	return r.State()
}

// Reset returns the resolver for id to the original tier
func (g *Registry) Reset(id, poster string) State {
	r := g.get(id, poster)
	r.Reset()
	return r.State()
}

// Retain drops the resolvers of every id not in ids and returns how many
// were dropped
func (g *Registry) Retain(ids ...string) int {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	dropped := 0
	for id := range g.entries {
		if _, ok := keep[id]; !ok {
			delete(g.entries, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of tracked ids
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}
