package upstream

import (
	"context"
	"sync"
	"time"

	"github.com/kevinms/leakybucket-go"
	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph"
	"go.opencensus.io/trace"
)

// Registry holds the registered fetchers and throttles every fetch behind a
// per-provider leaky bucket. Register adapters during node startup; the
// lookup methods are then safe for concurrent use.
type Registry struct {
	fetchers []Fetcher
	limiter  *leakybucket.Collector
}

// NewRegistry builds an empty registry with rate limits from the active
// config.
func NewRegistry() *Registry {
	cfg := params.RelationConfig()
	return &Registry{
		limiter: leakybucket.NewCollector(
			float64(cfg.UpstreamRateLimit),
			cfg.UpstreamRateCapacity,
			false, /* deleteEmptyBuckets */
		),
	}
}

// Register adds a fetcher behind the registry's rate limiter.
func (r *Registry) Register(f Fetcher) {
	r.fetchers = append(r.fetchers, f)
}

// All returns the registered fetchers in registration order.
func (r *Registry) All() []Fetcher {
	return r.fetchers
}

// Names returns the data source name of every registered fetcher.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fetchers))
	for _, f := range r.fetchers {
		names = append(names, f.Name().String())
	}
	return names
}

// FetchersFor returns the fetchers that declared support for the target.
func (r *Registry) FetchersFor(t Target) []Fetcher {
	var capable []Fetcher
	for _, f := range r.fetchers {
		if f.CanFetch(t) {
			capable = append(capable, f)
		}
	}
	return capable
}

// Fetch runs one fetcher against one target with throttling, tracing and
// metrics around the adapter call.
func (r *Registry) Fetch(ctx context.Context, f Fetcher, t Target) ([]Target, error) {
	ctx, span := trace.StartSpan(ctx, "upstream.Fetch")
	defer span.End()
	name := f.Name().String()
	span.AddAttributes(
		trace.StringAttribute("fetcher", name),
		trace.StringAttribute("target", t.String()),
	)

	if err := r.throttle(ctx, name); err != nil {
		return nil, err
	}
	start := time.Now()
	followUps, err := f.Fetch(ctx, t)
	upstreamFetchLatency.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		upstreamFetches.WithLabelValues(name, "error").Inc()
		return nil, err
	}
	upstreamFetches.WithLabelValues(name, "ok").Inc()
	return followUps, nil
}

// Prefetch warms every prefetch-capable provider. Providers run in parallel
// and failures are aggregated without aborting the others.
func (r *Registry) Prefetch(ctx context.Context) error {
	var (
		wg       sync.WaitGroup
		failures failureList
		attempts int
	)
	for _, f := range r.fetchers {
		p, ok := f.(Prefetcher)
		if !ok {
			continue
		}
		attempts++
		wg.Add(1)
		go func(f Fetcher, p Prefetcher) {
			defer wg.Done()
			name := f.Name().String()
			if err := r.throttle(ctx, name); err != nil {
				failures.add(f.Name(), Target{}, err)
				return
			}
			if err := p.Prefetch(ctx); err != nil {
				upstreamFetches.WithLabelValues(name, "error").Inc()
				failures.add(f.Name(), Target{}, err)
				return
			}
			upstreamFetches.WithLabelValues(name, "ok").Inc()
		}(f, p)
	}
	wg.Wait()
	return failures.err(attempts)
}

// throttle blocks until the provider's bucket has room for one more request
// or the context is done.
func (r *Registry) throttle(ctx context.Context, name string) error {
	for r.limiter.Remaining(name) < 1 {
		upstreamThrottled.WithLabelValues(name).Inc()
		timer := time.NewTimer(r.limiter.TillEmpty(name))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			timer.Stop()
		}
	}
	r.limiter.Add(name, 1)
	return nil
}
