package thegraph

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph"
	storetesting "github.com/nextdotid/relationservice/graph/store/testing"
	"github.com/nextdotid/relationservice/testing/assert"
	"github.com/nextdotid/relationservice/testing/require"
	"github.com/nextdotid/relationservice/upstream"
)

const wallet = "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"

func setupFetcher(t *testing.T, response string) (*Fetcher, *storetesting.FakeStore, *[]string) {
	params.SetupTestConfigCleanup(t)
	var queries []string
	subgraph := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		queries = append(queries, string(body))
		fmt.Fprint(w, response)
	}))
	t.Cleanup(subgraph.Close)

	upstreams := params.RelationUpstreamConfig().Copy()
	upstreams.TheGraphEndpoint = subgraph.URL
	params.OverrideUpstreamConfig(upstreams)

	fake, client := storetesting.SetupStore(t)
	return New(client), fake, &queries
}

func TestFetch_DomainsByWallet(t *testing.T) {
	response := fmt.Sprintf(`{"data": {"domains": [
		{"name": "vitalik.eth", "owner": {"id": %q}, "resolvedAddress": {"id": %q}, "registration": {"expiryDate": "1893456000"}},
		{"name": "vbuterin.eth", "owner": {"id": %q}, "resolvedAddress": null, "registration": null}
	]}}`, wallet, wallet, wallet)
	f, fake, queries := setupFetcher(t, response)

	followUps, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformEthereum, wallet))
	require.NoError(t, err)
	require.Equal(t, 2, len(followUps))
	assert.Equal(t, upstream.TargetNFT, followUps[0].Kind)
	assert.Equal(t, "vitalik.eth", followUps[0].ID)
	assert.Equal(t, "vbuterin.eth", followUps[1].ID)

	require.Equal(t, 1, len(*queries))
	assert.StringContains(t, wallet, (*queries)[0])

	upserts := fake.Upserts()
	require.Equal(t, 1, len(upserts))
	assert.StringContains(t, "Hold_Contract", upserts[0])
	assert.StringContains(t, "Hold_Identity", upserts[0])
	assert.StringContains(t, "vitalik.eth", upserts[0])
	assert.StringContains(t, graph.CategoryENS.DefaultContractAddress(), upserts[0])
	// Only the resolved domain writes resolution edges.
	assert.StringContains(t, "Resolve", upserts[0])
	assert.StringContains(t, "2030-01-01 00:00:00", upserts[0])
}

func TestFetch_DomainsByWalletMarksPrimaryName(t *testing.T) {
	response := fmt.Sprintf(`{"data": {
		"domains": [
			{"name": "vitalik.eth", "owner": {"id": %q}, "resolvedAddress": {"id": %q}},
			{"name": "vbuterin.eth", "owner": {"id": %q}, "resolvedAddress": null}
		],
		"account": {"id": %q, "reverseRecord": {"name": "vitalik.eth"}}
	}}`, wallet, wallet, wallet, wallet)
	f, fake, _ := setupFetcher(t, response)

	_, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformEthereum, wallet))
	require.NoError(t, err)

	upserts := fake.Upserts()
	require.Equal(t, 1, len(upserts))
	assert.StringContains(t, "Reverse_Resolve_Contract", upserts[0])
}

func TestFetch_WalletByName(t *testing.T) {
	response := fmt.Sprintf(`{"data": {
		"domains": [{"name": "vitalik.eth", "owner": {"id": %q}, "resolvedAddress": {"id": %q}, "registration": {"expiryDate": "1893456000"}}],
		"transfers": [{"transactionID": "0xabc123"}]
	}}`, wallet, wallet)
	f, fake, _ := setupFetcher(t, response)

	target := upstream.NewNFT(graph.ChainEthereum, graph.CategoryENS, graph.CategoryENS.DefaultContractAddress(), "vitalik.eth")
	followUps, err := f.Fetch(context.Background(), target)
	require.NoError(t, err)
	require.Equal(t, 1, len(followUps))
	assert.Equal(t, upstream.TargetIdentity, followUps[0].Kind)
	assert.Equal(t, wallet, followUps[0].Identity)

	upserts := fake.Upserts()
	require.Equal(t, 1, len(upserts))
	assert.StringContains(t, "0xabc123", upserts[0])
	assert.StringContains(t, "Resolve_Contract", upserts[0])
}

func TestFetch_WalletByNameFollowsDistinctResolvedAddress(t *testing.T) {
	other := "0x00000000219ab540356cbb839cbe05303d7705fa"
	response := fmt.Sprintf(`{"data": {
		"domains": [{"name": "pool.eth", "owner": {"id": %q}, "resolvedAddress": {"id": %q}}],
		"transfers": []
	}}`, wallet, other)
	f, _, _ := setupFetcher(t, response)

	target := upstream.NewNFT(graph.ChainEthereum, graph.CategoryENS, graph.CategoryENS.DefaultContractAddress(), "pool.eth")
	followUps, err := f.Fetch(context.Background(), target)
	require.NoError(t, err)
	require.Equal(t, 2, len(followUps))
	assert.Equal(t, wallet, followUps[0].Identity)
	assert.Equal(t, other, followUps[1].Identity)
}

func TestFetch_EmptyResultSetIsNotAnError(t *testing.T) {
	f, fake, _ := setupFetcher(t, `{"data": {"domains": []}}`)

	followUps, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformEthereum, wallet))
	require.NoError(t, err)
	assert.Equal(t, 0, len(followUps))
	assert.Equal(t, 0, len(fake.Upserts()))
}

func TestFetch_GraphQLErrorsSurfaceAsUpstreamErrors(t *testing.T) {
	f, _, _ := setupFetcher(t, `{"data": {}, "errors": [{"message": "indexing in progress"}]}`)

	_, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformEthereum, wallet))
	require.NotNil(t, err)
	assert.Equal(t, true, graph.IsUpstreamError(err))
	assert.ErrorContains(t, "indexing in progress", err)
}
