package upstream

import (
	"context"
	"sync"

	"github.com/nextdotid/relationservice/config/params"
	threadsafe "github.com/nextdotid/relationservice/container/thread-safe"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
	"golang.org/x/sync/semaphore"
)

// Dispatcher expands fetch targets breadth-first across the registered
// fetchers. One round runs every (target, capable fetcher) pair in parallel
// under a global concurrency cap; follow-up targets not seen before form the
// next round. A crawl stops when the frontier drains or the depth bound is
// reached.
type Dispatcher struct {
	registry *Registry
	maxDepth int
	sem      *semaphore.Weighted
}

// NewDispatcher builds a dispatcher over the registry with depth and
// concurrency bounds from the active config.
func NewDispatcher(registry *Registry) *Dispatcher {
	cfg := params.RelationConfig()
	return &Dispatcher{
		registry: registry,
		maxDepth: cfg.FetchDepth,
		sem:      semaphore.NewWeighted(cfg.FetchConcurrency),
	}
}

// Registry returns the fetcher registry the dispatcher crawls with.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// FetchAll crawls the connections reachable from the initial targets.
// Adapters persist what they find as a side effect; FetchAll only reports
// how the crawl went. Failed fetches never abort their siblings and are
// aggregated into the returned error. An empty initial set is a no-op.
//
// Canceling ctx stops scheduling new fetches; fetches already in flight are
// waited for before FetchAll returns.
func (d *Dispatcher) FetchAll(ctx context.Context, initial []Target) error {
	if len(initial) == 0 {
		return nil
	}
	ctx, span := trace.StartSpan(ctx, "upstream.FetchAll")
	defer span.End()
	dispatchCrawls.Inc()

	visited := threadsafe.NewThreadSafeMap(make(map[string]bool))
	frontier := make([]Target, 0, len(initial))
	for _, t := range initial {
		if visited.PutIfAbsent(t.CanonicalKey(), true) {
			frontier = append(frontier, t)
		}
	}

	failures := &failureList{}
	attempted := 0
	for depth := 0; depth < d.maxDepth && len(frontier) > 0; depth++ {
		next, n, err := d.round(ctx, frontier, visited, failures)
		attempted += n
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"depth":     depth,
			"targets":   len(frontier),
			"followUps": len(next),
		}).Debug("Dispatch round settled")
		frontier = next
	}
	return failures.err(attempted)
}

// round fetches one frontier and returns the not-yet-visited follow-up
// targets along with the number of fetches dispatched. The returned error is
// non-nil only when ctx was canceled while scheduling.
func (d *Dispatcher) round(
	ctx context.Context,
	frontier []Target,
	visited *threadsafe.Map[string, bool],
	failures *failureList,
) ([]Target, int, error) {
	dispatchFrontierSize.Set(float64(len(frontier)))
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		next      []Target
		attempted int
	)
	for _, target := range frontier {
		fetchers := d.registry.FetchersFor(target)
		if len(fetchers) == 0 {
			log.WithField("target", target.String()).Debug("No fetcher supports target")
			continue
		}
		for _, f := range fetchers {
			if err := d.sem.Acquire(ctx, 1); err != nil {
				wg.Wait()
				return nil, attempted, errors.Wrap(err, "canceled while scheduling fetches")
			}
			attempted++
			wg.Add(1)
			go func(f Fetcher, t Target) {
				defer wg.Done()
				defer d.sem.Release(1)
				followUps, err := d.registry.Fetch(ctx, f, t)
				if err != nil {
					log.WithError(err).WithFields(logrus.Fields{
						"fetcher": f.Name(),
						"target":  t.String(),
					}).Debug("Fetch failed")
					failures.add(f.Name(), t, err)
					return
				}
				mu.Lock()
				defer mu.Unlock()
				for _, followUp := range followUps {
					if visited.PutIfAbsent(followUp.CanonicalKey(), true) {
						next = append(next, followUp)
					}
				}
			}(f, target)
		}
	}
	wg.Wait()
	return next, attempted, nil
}
