package query

import (
	"context"

	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph"
	"github.com/nextdotid/relationservice/upstream"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// Neighbors lists the identities connected to the record within depth hops,
// excluding the record itself.
func (s *Service) Neighbors(ctx context.Context, record *graph.IdentityRecord, depth int, reverse *bool) ([]graph.IdentityWithSource, error) {
	if depth <= 0 {
		return nil, graph.NewParamError("depth must be positive, got %d", depth)
	}
	return s.store.Neighbors(ctx, record.VID, depth, reverse)
}

// NeighborsWithTraversal returns the edges walked to reach every neighbor
// within depth hops, endpoints embedded.
func (s *Service) NeighborsWithTraversal(ctx context.Context, record *graph.IdentityRecord, depth int) ([]graph.EdgeUnion, error) {
	if depth <= 0 {
		return nil, graph.NewParamError("depth must be positive, got %d", depth)
	}
	return s.store.NeighborsWithTraversal(ctx, record.VID, depth)
}

// IdentityGraph returns the connected subgraph around the identity, the
// origin included. Cold identities are crawled first.
func (s *Service) IdentityGraph(ctx context.Context, platform graph.Platform, identity string, reverse *bool) (*graph.IdentityGraph, error) {
	ctx, span := trace.StartSpan(ctx, "query.IdentityGraph")
	defer span.End()
	identity = canonical(platform, identity)
	vid := (&graph.Identity{Platform: platform, Identity: identity}).PrimaryKey()

	g, err := s.store.IdentityGraph(ctx, vid, reverse)
	if errors.Is(err, graph.ErrNoResult) {
		identityCacheMisses.Inc()
		if ferr := s.fetchMissing(ctx, upstream.TargetFor(platform, identity)); ferr != nil {
			return nil, ferr
		}
		return s.store.IdentityGraph(ctx, vid, reverse)
	}
	return g, err
}

// ReverseDomains lists the domains holding a reverse record that points at
// the wallet, optionally narrowed to one naming system.
func (s *Service) ReverseDomains(ctx context.Context, record *graph.IdentityRecord, system *graph.DomainNameSystem) ([]graph.ResolveRecord, error) {
	domains, err := s.store.ReverseDomains(ctx, record.VID)
	if err != nil {
		return nil, err
	}
	if system == nil {
		return domains, nil
	}
	filtered := make([]graph.ResolveRecord, 0, len(domains))
	for _, d := range domains {
		if d.System == *system {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// OwnedBy resolves the wallet holding an ownable identity.
func (s *Service) OwnedBy(ctx context.Context, record *graph.IdentityRecord) (*graph.IdentityRecord, error) {
	if !record.Platform.IsOwnable() {
		return nil, graph.NewParamError("identities on %s have no owner", record.Platform)
	}
	ownerPlatform := graph.PlatformEthereum
	if record.Platform == graph.PlatformSNS {
		ownerPlatform = graph.PlatformSolana
	}
	owner, err := s.store.IdentityOwnedBy(ctx, record.VID, ownerPlatform)
	if errors.Is(err, graph.ErrNoResult) {
		return nil, nil
	}
	return owner, err
}

// NFTs pages through the tokens held by a wallet. Only wallets hold tokens;
// identities on other platforms yield an empty list.
func (s *Service) NFTs(ctx context.Context, record *graph.IdentityRecord, categories []string, limit, offset int) ([]graph.HoldRecord, error) {
	if record.Platform != graph.PlatformEthereum {
		return nil, nil
	}
	parsed := make([]graph.ContractCategory, 0, len(categories))
	for _, c := range categories {
		category, err := graph.ParseContractCategory(c)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, category)
	}
	if limit <= 0 {
		limit = int(params.RelationConfig().DefaultNFTLimit)
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.NFTs(ctx, record.VID, parsed, limit, offset)
}
