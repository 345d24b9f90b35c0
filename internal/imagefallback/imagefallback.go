// Package imagefallback picks the poster URL to show after load failures.
//
// A Resolver walks through three tiers: the original URL, a static
// placeholder image, and finally an empty URL that tells the caller to draw
// an emoji placeholder instead of an image.
package imagefallback

import (
	"sync"
)

// DefaultFallbackURL is used when no fallback URL is configured
const DefaultFallbackURL = "https://via.placeholder.com/300x450/cccccc/666666?text=No+Image"

// notAvailable is what OMDb puts in Poster when there is no image
const notAvailable = "N/A"

// Tier is the fallback stage a resolver is in
type Tier int

const (
	TierOriginal Tier = iota
	TierFallback
	TierEmoji
)

// String returns the tier name
func (t Tier) String() string {
	switch t {
	case TierOriginal:
		return "original"
	case TierFallback:
		return "fallback"
	case TierEmoji:
		return "emoji"
	default:
		return "unknown"
	}
}

// Source produces the original image URL. It is evaluated on every read.
type Source func() string

// Literal returns a Source for a fixed URL
func Literal(url string) Source {
	return func() string { return url }
}

// Option configures a Resolver
type Option func(*Resolver)

// WithFallbackURL sets the placeholder image used on the first failure.
// An empty url keeps the default.
func WithFallbackURL(url string) Option {
	return func(r *Resolver) {
		if url != "" {
			r.fallbackURL = url
		}
	}
}

// WithEmojiFallback enables or disables the final emoji tier. It is enabled
// by default.
func WithEmojiFallback(enabled bool) Option {
	return func(r *Resolver) {
		r.showEmoji = enabled
	}
}

// Resolver tracks load failures for one logical image
type Resolver struct {
	mu          sync.Mutex
	source      Source
	dynamic     bool
	fallbackURL string
	showEmoji   bool

	imageError bool
	emoji      bool
	lastURL    string
}

// New creates a resolver for a fixed URL
func New(url string, opts ...Option) *Resolver {
	r := newResolver(Literal(url), false, opts)
	r.lastURL = url
	return r
}

// NewDynamic creates a resolver whose URL is re-read from src. Whenever the
// URL changes the failure state is reset, so it never carries over from one
// image to the next.
func NewDynamic(src Source, opts ...Option) *Resolver {
	r := newResolver(src, true, opts)
	r.lastURL = src()
	return r
}

func newResolver(src Source, dynamic bool, opts []Option) *Resolver {
	r := &Resolver{
		source:      src,
		dynamic:     dynamic,
		fallbackURL: DefaultFallbackURL,
		showEmoji:   true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CurrentURL returns the URL to load. An empty string means the emoji
// placeholder should be shown.
func (r *Resolver) CurrentURL() string {
	return r.State().URL
}

// State returns the URL together with the failure flags
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	url := r.refresh()
	state := State{ImageError: r.imageError, ShowEmojiPlaceholder: r.emoji}
	switch {
	case r.emoji:
		state.Tier = TierEmoji.String()
	case r.imageError:
		state.Tier = TierFallback.String()
		state.URL = r.fallbackURL
	case url == notAvailable:
		state.Tier = TierOriginal.String()
		state.URL = r.fallbackURL
	default:
		state.Tier = TierOriginal.String()
		state.URL = url
	}
	return state
}

// ReportLoadFailure advances to the next tier. Without the emoji tier the
// resolver stays on the fallback image.
func (r *Resolver) ReportLoadFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refresh()
	if !r.imageError {
		r.imageError = true
	} else if r.showEmoji {
		r.emoji = true
	}
}

// Reset returns to the original URL
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
}

// ImageError reports whether at least one load failure was recorded
func (r *Resolver) ImageError() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh()
	return r.imageError
}

// ShowEmojiPlaceholder reports whether the caller should draw the emoji
func (r *Resolver) ShowEmojiPlaceholder() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh()
	return r.emoji
}

// Tier returns the current stage
func (r *Resolver) Tier() Tier {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh()
	switch {
	case r.emoji:
		return TierEmoji
	case r.imageError:
		return TierFallback
	default:
		return TierOriginal
	}
}

// refresh re-reads a dynamic source and resets on change. Callers hold mu.
func (r *Resolver) refresh() string {
	if !r.dynamic {
		return r.lastURL
	}
	url := r.source()
	if url != r.lastURL {
		r.lastURL = url
		r.reset()
	}
	return url
}

func (r *Resolver) reset() {
	r.imageError = false
	r.emoji = false
}
