package cache

// ScopedKeyer wraps a Keyer with a prefix so several boards can share one
// cache backend without colliding.
//
// Example usage:
//
//	// Keys for the "spring-fair" board
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "board:spring-fair:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(cardsHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(cardsHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
