package cache

// ScopedKeyer prefixes every key of an inner keyer, so that several
// deployments can share one Redis instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (the default keyer if nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// FeedKey implements [Keyer].
func (k *ScopedKeyer) FeedKey(url string) string {
	return k.prefix + k.inner.FeedKey(url)
}

// LayoutKey implements [Keyer].
func (k *ScopedKeyer) LayoutKey(trialHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(trialHash, opts)
}

// ArtifactKey implements [Keyer].
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
