// Package cache provides the caching layer for layout passes and rendered
// artifacts.
//
// Layouts are keyed by a hash of the card set plus every option that shapes
// a pass, so an unchanged board is served from cache and any edit to a card
// or its durable position produces a new key. Rendered artifacts are keyed
// by the hash of the layout they were drawn from.
//
// Three backends implement [Cache]:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the HTTP API
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is reported by ok == false with
	// a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live per entry kind.
const (
	// TTLLayout bounds how long a computed layout is reused. Durable positions
	// are part of the key, so this only limits storage growth.
	TTLLayout = 24 * time.Hour

	// TTLArtifact bounds how long rendered SVG/PNG output is kept.
	TTLArtifact = 7 * 24 * time.Hour
)

// =============================================================================
// Keys
// =============================================================================

// LayoutKeyOpts holds the inputs of a layout pass other than the cards.
type LayoutKeyOpts struct {
	Mode        string  `json:"mode"`
	Narrow      bool    `json:"narrow"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Seed        uint64  `json:"seed"`
	OptionsHash string  `json:"options_hash,omitempty"`
}

// ArtifactKeyOpts holds the render inputs other than the layout.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Titles bool   `json:"titles"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key of a layout computed for a card set.
	LayoutKey(cardsHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key of an artifact rendered from a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every key component.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(cardsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", cardsHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}
