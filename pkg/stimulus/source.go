package stimulus

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"

	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/httputil"
)

// FeedFile is the feed's path relative to a source root.
const FeedFile = "feed.json"

// Source provides stimuli.
type Source interface {
	Feed(ctx context.Context) (Feed, error)
	Concept(ctx context.Context, id int) (*Concept, error)
}

// DirSource reads stimuli from a local directory.
type DirSource struct {
	Root string
}

// Feed implements [Source].
func (s DirSource) Feed(context.Context) (Feed, error) {
	return ReadFeedFile(filepath.Join(s.Root, FeedFile))
}

// Concept implements [Source].
func (s DirSource) Concept(_ context.Context, id int) (*Concept, error) {
	rel, err := ConceptPath(id)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(s.Root, filepath.FromSlash(rel))
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "concept %d", id)
	}
	if err != nil {
		return nil, err
	}
	return ParseConcept(data, id)
}

// HTTPSource reads stimuli from a web server laid out like a [DirSource].
type HTTPSource struct {
	BaseURL string
	Fetcher *httputil.Fetcher
	Refresh bool
}

// Feed implements [Source].
func (s HTTPSource) Feed(ctx context.Context) (Feed, error) {
	data, err := s.get(ctx, FeedFile)
	if err != nil {
		return nil, err
	}
	return LoadFeed(bytes.NewReader(data))
}

// Concept implements [Source].
func (s HTTPSource) Concept(ctx context.Context, id int) (*Concept, error) {
	rel, err := ConceptPath(id)
	if err != nil {
		return nil, err
	}
	data, err := s.get(ctx, rel)
	if err != nil {
		return nil, err
	}
	return ParseConcept(data, id)
}

func (s HTTPSource) get(ctx context.Context, rel string) ([]byte, error) {
	u, err := url.JoinPath(s.BaseURL, rel)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "join %s", s.BaseURL)
	}
	return s.Fetcher.Get(ctx, u, s.Refresh)
}

// Open returns an [HTTPSource] for http(s) locations and a [DirSource]
// otherwise.
func Open(location string, f *httputil.Fetcher) (Source, error) {
	if errors.ValidateURL(location) == nil {
		if _, err := url.Parse(location); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", location)
		}
		if f == nil {
			f = httputil.NewFetcher(nil, nil, 0)
		}
		return HTTPSource{BaseURL: location, Fetcher: f}, nil
	}
	info, err := os.Stat(location)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "stimulus directory %s", location)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "%s is not a directory", location)
	}
	return DirSource{Root: location}, nil
}
