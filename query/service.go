package query

import (
	"context"
	"strings"

	"github.com/nextdotid/relationservice/graph"
	"github.com/nextdotid/relationservice/graph/store"
	"github.com/nextdotid/relationservice/upstream"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"golang.org/x/sync/errgroup"
)

// Service answers identity queries with stale-while-revalidate semantics:
// cold identities are crawled synchronously, stale ones are served as-is
// while a background refresh rebuilds them.
type Service struct {
	store      *store.Client
	dispatcher *upstream.Dispatcher
	refresher  *Refresher
}

// New assembles the query service. The refresher may be nil, in which case
// stale records are served without scheduling a rebuild.
func New(s *store.Client, d *upstream.Dispatcher, r *Refresher) *Service {
	return &Service{store: s, dispatcher: d, refresher: r}
}

// Registry exposes the upstream registry behind the dispatcher.
func (s *Service) Registry() *upstream.Registry {
	return s.dispatcher.Registry()
}

// canonical lowercases identities on platforms with case-insensitive keys.
func canonical(platform graph.Platform, identity string) string {
	if platform == graph.PlatformEthereum {
		return strings.ToLower(identity)
	}
	return identity
}

// Find returns the identity vertex for platform/identity. A store miss
// triggers a synchronous crawl and one re-read; an outdated hit is served
// immediately with a background refresh scheduled.
func (s *Service) Find(ctx context.Context, platform graph.Platform, identity string) (*graph.IdentityRecord, error) {
	ctx, span := trace.StartSpan(ctx, "query.Find")
	defer span.End()
	span.AddAttributes(
		trace.StringAttribute("platform", string(platform)),
		trace.StringAttribute("identity", identity),
	)
	identity = canonical(platform, identity)
	target := upstream.TargetFor(platform, identity)

	record, err := s.store.FindIdentityByPlatformIdentity(ctx, platform, identity)
	if errors.Is(err, graph.ErrNoResult) {
		identityCacheMisses.Inc()
		if ferr := s.fetchMissing(ctx, target); ferr != nil {
			return nil, ferr
		}
		return s.store.FindIdentityByPlatformIdentity(ctx, platform, identity)
	}
	if err != nil {
		return nil, err
	}
	identityCacheHits.Inc()
	if record.IsOutdated() {
		identityCacheOutdated.Inc()
		s.scheduleRefresh(record.VID, target)
	}
	return record, nil
}

// FindIdentities looks the identity up on several platforms at once.
// Platforms where it does not exist are simply absent from the result.
func (s *Service) FindIdentities(ctx context.Context, platforms []graph.Platform, identity string) ([]*graph.IdentityRecord, error) {
	ctx, span := trace.StartSpan(ctx, "query.FindIdentities")
	defer span.End()
	found := make([]*graph.IdentityRecord, len(platforms))
	g, gctx := errgroup.WithContext(ctx)
	for i, platform := range platforms {
		i, platform := i, platform
		g.Go(func() error {
			record, err := s.Find(gctx, platform, identity)
			if errors.Is(err, graph.ErrNoResult) {
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	records := make([]*graph.IdentityRecord, 0, len(found))
	for _, r := range found {
		if r != nil {
			records = append(records, r)
		}
	}
	return records, nil
}

// LoadIdentity reads one identity vertex by id, through the request's batch
// loader when one is attached to ctx.
func (s *Service) LoadIdentity(ctx context.Context, vid string) (*graph.IdentityRecord, error) {
	if l := LoaderFrom(ctx); l != nil {
		return l.Load(ctx, vid)
	}
	return s.store.FindIdentityByID(ctx, vid)
}

// FindContract reads one contract vertex by id. Contract endpoints are rare
// enough per request that they skip the batch loader.
func (s *Service) FindContract(ctx context.Context, vid string) (*graph.ContractRecord, error) {
	return s.store.FindContractByID(ctx, vid)
}

// NewLoader builds a request-scoped batch loader over the service's store.
func (s *Service) NewLoader() *Loader {
	return NewLoader(s.store)
}

// fetchMissing crawls the targets synchronously. Partial upstream failures
// do not fail the query; whatever was persisted decides the re-read.
func (s *Service) fetchMissing(ctx context.Context, targets ...upstream.Target) error {
	if err := s.dispatcher.FetchAll(ctx, targets); err != nil {
		var de *upstream.DispatchError
		if !errors.As(err, &de) {
			return err
		}
		log.WithError(err).Debug("Some upstreams failed during synchronous fetch")
	}
	return nil
}

func (s *Service) scheduleRefresh(vid string, targets ...upstream.Target) {
	if s.refresher == nil {
		return
	}
	if err := s.refresher.Enqueue(vid, targets...); err != nil {
		log.WithError(err).WithField("vId", vid).Warn("Could not schedule background refresh")
	}
}
