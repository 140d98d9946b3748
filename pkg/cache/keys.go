package cache

// LayoutKeyOpts holds every option that changes a computed layout.
// Geometry is a hash of the fully resolved diagram configuration, so any
// change to row geometry or solver parameters misses the cache.
type LayoutKeyOpts struct {
	Kind     string `json:"kind"`
	Geometry string `json:"geometry"`
	Rewrite  string `json:"rewrite"`
}

// ArtifactKeyOpts holds every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Style    string `json:"style"`
	Animated bool   `json:"animated"`
	Timings  string `json:"timings,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// FeedKey keys a remote document by its URL.
	FeedKey(url string) string
	// LayoutKey keys a diagram layout by the hash of its trial.
	LayoutKey(trialHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered output by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// FeedKey implements [Keyer].
func (DefaultKeyer) FeedKey(url string) string { return "feed:" + url }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(trialHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", trialHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
