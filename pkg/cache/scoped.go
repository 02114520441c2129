package cache

// ScopedKeyer wraps a Keyer with a prefix so that several configurations
// can share one backend without seeing each other's entries. Redis-backed
// commands scope every key under the application name.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "artgraph:")
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

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// DescriptorKey generates a prefixed descriptor key.
func (k *ScopedKeyer) DescriptorKey(repo, coordinate string) string {
	return k.prefix + k.inner.DescriptorKey(repo, coordinate)
}

// MetadataKey generates a prefixed metadata key.
func (k *ScopedKeyer) MetadataKey(repo, ga string) string {
	return k.prefix + k.inner.MetadataKey(repo, ga)
}
