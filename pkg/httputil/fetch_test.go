package httputil

import (
	"context"
	"net/http"
	"net/url"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/ruleviz/pkg/cache"
	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/observability"
)

func newTestFetcher(t *testing.T) (*Fetcher, cache.Cache) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f := NewFetcher(c, nil, time.Hour)
	f.Delay = time.Millisecond
	return f, c
}

func TestFetcherCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"trees":[]}`))
	}))
	defer srv.Close()

	f, _ := newTestFetcher(t)
	ctx := context.Background()
	for range 3 {
		body, err := f.Get(ctx, srv.URL, false)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(body) != `{"trees":[]}` {
			t.Errorf("body = %s", body)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}

	if _, err := f.Get(ctx, srv.URL, true); err != nil {
		t.Fatal(err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("refresh should bypass cache: %d hits", n)
	}
}

func TestFetcherRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f, _ := newTestFetcher(t)
	body, err := f.Get(context.Background(), srv.URL, false)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "ok" || hits.Load() != 3 {
		t.Errorf("body=%s hits=%d; want ok after 3 hits", body, hits.Load())
	}
}

func TestFetcherStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		code   errors.Code
		hits   int32
	}{
		{http.StatusNotFound, errors.ErrCodeNotFound, 1},
		{http.StatusForbidden, errors.ErrCodeNetwork, 1},
		{http.StatusBadGateway, errors.ErrCodeNetwork, 3},
		{http.StatusTooManyRequests, errors.ErrCodeNetwork, 3},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			f, _ := newTestFetcher(t)
			_, err := f.Get(context.Background(), srv.URL, false)
			if !errors.Is(err, tt.code) {
				t.Errorf("got %v, want code %s", err, tt.code)
			}
			if hits.Load() != tt.hits {
				t.Errorf("hits = %d, want %d", hits.Load(), tt.hits)
			}
		})
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	requests, errs []string
	statuses       []int
}

func (h *recordingHTTPHooks) OnRequest(_ context.Context, method, host, path string) {
	h.requests = append(h.requests, method+" "+host+path)
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.statuses = append(h.statuses, status)
}

func (h *recordingHTTPHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.errs = append(h.errs, host)
}

func TestFetcherHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	f, _ := newTestFetcher(t)
	if _, err := f.Get(context.Background(), srv.URL+"/stimuli/feed.json", false); err != nil {
		t.Fatalf("Get: %v", err)
	}
	u, _ := url.Parse(srv.URL)
	if len(hooks.requests) != 1 || hooks.requests[0] != "GET "+u.Host+"/stimuli/feed.json" {
		t.Errorf("requests = %v", hooks.requests)
	}
	if len(hooks.statuses) != 1 || hooks.statuses[0] != http.StatusOK {
		t.Errorf("statuses = %v, want [200]", hooks.statuses)
	}

	srv.Close()
	if _, err := f.Get(context.Background(), srv.URL+"/gone.json", false); err == nil {
		t.Fatal("expected error from a closed server")
	}
	if len(hooks.errs) != f.Attempts {
		t.Errorf("errors reported = %d, want one per attempt (%d)", len(hooks.errs), f.Attempts)
	}
}
