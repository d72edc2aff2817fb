package query

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nextdotid/relationservice/graph"
	"github.com/nextdotid/relationservice/upstream"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// PrefetchStatus is returned by Prefetch while the crawl continues in the
// background.
const PrefetchStatus = "Fetching"

// prefetchTimeout bounds one background prefetch run across all upstreams.
const prefetchTimeout = 10 * time.Minute

// ENS resolves an ENS name to the wallet it points at.
func (s *Service) ENS(ctx context.Context, name string) (*graph.ResolveEdge, error) {
	return s.domain(ctx, graph.SystemENS, name)
}

// Dotbit resolves a .bit account to the wallet it points at.
func (s *Service) Dotbit(ctx context.Context, name string) (*graph.ResolveEdge, error) {
	return s.domain(ctx, graph.SystemDotbit, name)
}

// domain serves one name resolution with the same freshness contract as
// Find: crawl on a miss, serve stale and schedule a refresh on an outdated
// hit. The refresh is keyed by the domain's own vertex so the whole name
// neighborhood is rebuilt.
func (s *Service) domain(ctx context.Context, system graph.DomainNameSystem, name string) (*graph.ResolveEdge, error) {
	ctx, span := trace.StartSpan(ctx, "query.domain")
	defer span.End()
	span.AddAttributes(
		trace.StringAttribute("system", string(system)),
		trace.StringAttribute("name", name),
	)
	platform := system.Platform()
	target := upstream.TargetFor(platform, name)

	edge, err := s.store.DomainResolve(ctx, system, name)
	if errors.Is(err, graph.ErrNoResult) {
		identityCacheMisses.Inc()
		if ferr := s.fetchMissing(ctx, target); ferr != nil {
			return nil, ferr
		}
		return s.store.DomainResolve(ctx, system, name)
	}
	if err != nil {
		return nil, err
	}
	identityCacheHits.Inc()
	if edge.IsOutdated() {
		identityCacheOutdated.Inc()
		vid := (&graph.Identity{Platform: platform, Identity: name}).PrimaryKey()
		s.scheduleRefresh(vid, target)
	}
	return edge, nil
}

// Proof looks one proof edge up by uuid.
func (s *Service) Proof(ctx context.Context, id string) (*graph.ProofRecord, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, graph.NewParamError("malformed uuid %q", id)
	}
	return s.store.FindProofByUUID(ctx, parsed)
}

// Prefetch kicks off a background crawl of every prefetchable upstream and
// returns immediately.
func (s *Service) Prefetch() string {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), prefetchTimeout)
		defer cancel()
		if err := s.Registry().Prefetch(ctx); err != nil {
			log.WithError(err).Warn("Upstream prefetch finished with failures")
		}
	}()
	return PrefetchStatus
}
