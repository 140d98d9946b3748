package stimulus

import (
	"encoding/json"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/term"
)

// Feed maps domain names to their trials.
type Feed map[string][]Trial

// LoadFeed decodes a feed document and validates its domain names.
func LoadFeed(r io.Reader) (Feed, error) {
	var f Feed
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode stimulus feed")
	}
	for name := range f {
		if err := errors.ValidateDomainName(name); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ReadFeedFile loads a feed from path.
func ReadFeedFile(path string) (Feed, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "feed %s", path)
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadFeed(file)
}

// Domains returns the domain names in sorted order.
func (f Feed) Domains() []string {
	return slices.Sorted(maps.Keys(f))
}

// Trial returns trial index of domain.
func (f Feed) Trial(domain string, index int) (*Trial, error) {
	trials, ok := f[domain]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown domain %q", domain)
	}
	if index < 0 || index >= len(trials) {
		return nil, errors.New(errors.ErrCodeNotFound, "domain %q has no trial %d (have %d)", domain, index, len(trials))
	}
	return &trials[index], nil
}

// Kind returns the stimulus kind of domain. An explicit entry in kinds
// wins; otherwise the kind is inferred from the first trial: a challenge
// that decodes as a tree encoding makes a tree domain.
func (f Feed) Kind(domain string, kinds map[string]alignment.Kind) alignment.Kind {
	if k, ok := kinds[domain]; ok {
		return k
	}
	trials := f[domain]
	if len(trials) == 0 {
		return alignment.KindString
	}
	if _, err := (term.Codec{}).Decode(trials[0].Challenge); err == nil {
		return alignment.KindTree
	}
	return alignment.KindString
}
