package query

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph"
	"github.com/nextdotid/relationservice/testing/assert"
	"github.com/nextdotid/relationservice/testing/require"
	"github.com/nextdotid/relationservice/upstream"
)

// resolvePayload renders a domain_resolve result set for one name.
func resolvePayload(system graph.DomainNameSystem, name, wallet string, updatedAt time.Time) string {
	stamp := updatedAt.UTC().Format("2006-01-02 15:04:05")
	platform := system.Platform()
	return fmt.Sprintf(`[{
		"record": [{
			"e_type": "Resolve",
			"from_id": "%s,%s",
			"from_type": "Identities",
			"to_id": "ethereum,%s",
			"to_type": "Identities",
			"attributes": {
				"uuid": "9e3e25cb-92e4-4c72-9b1c-49a3bb3ea8c1",
				"source": "the_graph",
				"system": %q,
				"name": %q,
				"fetcher": "relation_service",
				"updated_at": %q
			}
		}],
		"resolved": [%s],
		"owner": [%s]
	}]`, platform, name, wallet, system, name, stamp,
		identityJSON(graph.PlatformEthereum, wallet, updatedAt),
		identityJSON(graph.PlatformEthereum, wallet, updatedAt))
}

func TestENS_ColdNameResolvesAfterCrawl(t *testing.T) {
	probe := &nftProbe{}
	s, fake := setupService(t, probe)
	fake.StubQuery("domain_resolve",
		"[]",
		resolvePayload(graph.SystemENS, "vitalik.eth", "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", time.Now()),
	)

	edge, err := s.ENS(context.Background(), "vitalik.eth")
	require.NoError(t, err)
	require.NotNil(t, edge.Resolved)
	assert.Equal(t, "ethereum,0xd8da6bf26964af9d7eed9e03e53415d37aa96045", edge.Resolved.VID)
	require.NotNil(t, edge.Owner)
}

func TestENS_ColdNameDispatchesAnNFTTarget(t *testing.T) {
	probe := &nftProbe{}
	s, fake := setupService(t, probe)
	fake.StubQuery("domain_resolve",
		"[]",
		resolvePayload(graph.SystemENS, "vitalik.eth", "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", time.Now()),
	)

	_, err := s.ENS(context.Background(), "vitalik.eth")
	require.NoError(t, err)
	require.Equal(t, 1, len(probe.targets))
	target := probe.targets[0]
	assert.Equal(t, upstream.TargetNFT, target.Kind)
	assert.Equal(t, graph.CategoryENS, target.Category)
	assert.Equal(t, graph.CategoryENS.DefaultContractAddress(), target.Address)
	assert.Equal(t, "vitalik.eth", target.ID)
}

func TestENS_UnknownNameIsNoResult(t *testing.T) {
	s, fake := setupService(t)
	fake.StubQuery("domain_resolve", "[]")

	_, err := s.ENS(context.Background(), "nobody.eth")
	require.ErrorIs(t, err, graph.ErrNoResult)
}

func TestENS_OutdatedResolveServedStaleAndScheduled(t *testing.T) {
	s, fake := setupService(t)
	staleAt := time.Now().Add(-time.Duration(params.RelationConfig().DomainTTLSeconds*2) * time.Second)
	fake.StubQuery("domain_resolve",
		resolvePayload(graph.SystemENS, "vitalik.eth", "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", staleAt),
	)

	edge, err := s.ENS(context.Background(), "vitalik.eth")
	require.NoError(t, err)
	assert.Equal(t, "vitalik.eth", edge.Name)
	assert.Equal(t, 1, len(s.refresher.queue))
}

func TestDotbit_ColdNameDispatchesAnIdentityTarget(t *testing.T) {
	probe := &nftProbe{}
	s, fake := setupService(t, probe)
	fake.StubQuery("domain_resolve",
		"[]",
		resolvePayload(graph.SystemDotbit, "tester.bit", "0x9176acd39a3a9ae99dcb3922757f8af4f94cdf3c", time.Now()),
	)

	edge, err := s.Dotbit(context.Background(), "tester.bit")
	require.NoError(t, err)
	assert.Equal(t, "tester.bit", edge.Name)
	require.Equal(t, 1, len(probe.targets))
	assert.Equal(t, upstream.TargetIdentity, probe.targets[0].Kind)
	assert.Equal(t, graph.PlatformDotbit, probe.targets[0].Platform)
}

func TestProof_MalformedUUIDIsAParamError(t *testing.T) {
	s, _ := setupService(t)

	_, err := s.Proof(context.Background(), "not-a-uuid")
	require.NotNil(t, err)
	assert.Equal(t, true, graph.IsParamError(err))
}

func TestProof_LooksTheEdgeUpByUUID(t *testing.T) {
	s, fake := setupService(t)
	fake.StubQuery("edge_by_uuid", `[{"edges": [{
		"e_type": "Proof_Forward",
		"from_id": "twitter,alice",
		"from_type": "Identities",
		"to_id": "ethereum,0xabc",
		"to_type": "Identities",
		"attributes": {
			"uuid": "9e3e25cb-92e4-4c72-9b1c-49a3bb3ea8c1",
			"source": "SybilList",
			"record_id": "1304514253422501888",
			"updated_at": "2026-08-25 00:00:00",
			"fetcher": "relation_service"
		}
	}]}]`)

	proof, err := s.Proof(context.Background(), "9e3e25cb-92e4-4c72-9b1c-49a3bb3ea8c1")
	require.NoError(t, err)
	assert.Equal(t, graph.SourceSybilList, proof.Source)
	assert.Equal(t, "1304514253422501888", proof.RecordID)
}

// nftProbe accepts every target and records it.
type nftProbe struct {
	mu      sync.Mutex
	targets []upstream.Target
}

func (p *nftProbe) Name() graph.DataSource {
	return graph.SourceRss3
}

func (p *nftProbe) CanFetch(target upstream.Target) bool {
	return true
}

func (p *nftProbe) Fetch(ctx context.Context, target upstream.Target) ([]upstream.Target, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.targets = append(p.targets, target)
	return nil, nil
}
