package query

import (
	"context"
	"sync"
	"time"

	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph"
	"github.com/nextdotid/relationservice/graph/store"
)

type loaderKey struct{}

// WithLoader attaches a request-scoped loader to ctx.
func WithLoader(ctx context.Context, l *Loader) context.Context {
	return context.WithValue(ctx, loaderKey{}, l)
}

// LoaderFrom returns the loader carried by ctx, or nil.
func LoaderFrom(ctx context.Context) *Loader {
	l, _ := ctx.Value(loaderKey{}).(*Loader)
	return l
}

type loadResult struct {
	record *graph.IdentityRecord
	err    error
}

// Loader coalesces identity reads issued within a short window into one
// batch store call. One loader serves one request; resolvers expanding a
// hundred edge endpoints trigger a single identities_by_ids round trip
// instead of a hundred point reads.
type Loader struct {
	store    *store.Client
	maxBatch int
	wait     time.Duration

	mu      sync.Mutex
	pending map[string][]chan loadResult
	timer   *time.Timer
}

// NewLoader builds a loader with the configured batch bounds.
func NewLoader(s *store.Client) *Loader {
	cfg := params.RelationConfig()
	return &Loader{
		store:    s,
		maxBatch: cfg.LoaderMaxBatch,
		wait:     time.Duration(cfg.LoaderWaitMs) * time.Millisecond,
		pending:  make(map[string][]chan loadResult),
	}
}

// Load returns the identity vertex with the given id, batched with every
// other id requested within the wait window. Duplicate ids share one read.
// Ids missing from the store yield ErrNoResult without failing the batch.
func (l *Loader) Load(ctx context.Context, vid string) (*graph.IdentityRecord, error) {
	c := make(chan loadResult, 1)
	l.mu.Lock()
	l.pending[vid] = append(l.pending[vid], c)
	if len(l.pending) >= l.maxBatch {
		batch := l.take()
		l.mu.Unlock()
		go l.resolve(batch)
	} else {
		if l.timer == nil {
			l.timer = time.AfterFunc(l.wait, l.flush)
		}
		l.mu.Unlock()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-c:
		return res.record, res.err
	}
}

func (l *Loader) flush() {
	l.mu.Lock()
	batch := l.take()
	l.mu.Unlock()
	l.resolve(batch)
}

// take detaches the pending batch. Callers hold mu.
func (l *Loader) take() map[string][]chan loadResult {
	batch := l.pending
	l.pending = make(map[string][]chan loadResult)
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	return batch
}

func (l *Loader) resolve(batch map[string][]chan loadResult) {
	if len(batch) == 0 {
		return
	}
	ids := make([]string, 0, len(batch))
	for vid := range batch {
		ids = append(ids, vid)
	}
	loaderBatches.Observe(float64(len(ids)))

	// The store client enforces its own request timeout; the batch must
	// not die with whichever caller's context happens to cancel first.
	records, err := l.store.IdentitiesByIDs(context.Background(), ids)
	for vid, waiters := range batch {
		res := loadResult{err: err}
		if err == nil {
			if record, ok := records[vid]; ok {
				res.record = record
			} else {
				res.err = graph.ErrNoResult
			}
		}
		for _, c := range waiters {
			c <- res
		}
	}
}
