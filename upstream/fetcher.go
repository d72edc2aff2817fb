package upstream

import (
	"context"

	"github.com/nextdotid/relationservice/graph"
)

// Fetcher is implemented by each upstream provider adapter. Fetch receives
// one target the adapter declared support for, persists whatever connections
// the provider knows about and returns follow-up targets for the next round
// of the crawl.
//
// Fetch must be safe for concurrent use and must honor ctx cancellation on
// its network calls. A failed fetch never aborts sibling fetches; errors are
// collected per target by the dispatcher.
type Fetcher interface {
	// Name identifies the provider in data_source attributes and logs.
	Name() graph.DataSource
	// CanFetch reports whether the adapter understands the given target.
	CanFetch(target Target) bool
	// Fetch crawls one target and returns follow-up targets.
	Fetch(ctx context.Context, target Target) ([]Target, error)
}

// Prefetcher is implemented by fetchers able to load their whole upstream
// dataset ahead of queries, typically providers publishing a bounded
// verified list.
type Prefetcher interface {
	Prefetch(ctx context.Context) error
}
