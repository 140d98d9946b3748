// Package httputil fetches remote stimulus documents.
//
// [Fetcher] performs GET requests with [Retry] and stores response bodies
// in a [cache.Cache] keyed by URL. Transient failures (network errors,
// 5xx responses, 429) are wrapped in [RetryableError]; everything else
// fails immediately.
//
//	f := httputil.NewFetcher(c, cache.NewDefaultKeyer(), cache.TTLFeed)
//	body, err := f.Get(ctx, "https://lab.example.org/feeds/trees.json")
package httputil
