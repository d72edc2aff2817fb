package knn3

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph"
	storetesting "github.com/nextdotid/relationservice/graph/store/testing"
	"github.com/nextdotid/relationservice/testing/assert"
	"github.com/nextdotid/relationservice/testing/require"
	"github.com/nextdotid/relationservice/upstream"
)

const wallet = "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"

func setupFetcher(t *testing.T, response string) (*Fetcher, *storetesting.FakeStore) {
	params.SetupTestConfigCleanup(t)
	knn3 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, response)
	}))
	t.Cleanup(knn3.Close)

	upstreams := params.RelationUpstreamConfig().Copy()
	upstreams.KNN3Endpoint = knn3.URL
	params.OverrideUpstreamConfig(upstreams)

	fake, client := storetesting.SetupStore(t)
	return New(client), fake
}

func TestFetch_PersistsEveryDomain(t *testing.T) {
	response := `{"data": {"addrs": [{"ens": ["vitalik.eth", "vbuterin.eth"], "primaryEns": "vitalik.eth"}]}}`
	f, fake := setupFetcher(t, response)

	followUps, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformEthereum, wallet))
	require.NoError(t, err)
	require.Equal(t, 2, len(followUps))
	assert.Equal(t, upstream.TargetNFT, followUps[0].Kind)
	assert.Equal(t, "vitalik.eth", followUps[0].ID)
	assert.Equal(t, "vbuterin.eth", followUps[1].ID)

	upserts := fake.Upserts()
	require.Equal(t, 1, len(upserts))
	assert.StringContains(t, "Hold_Identity", upserts[0])
	assert.StringContains(t, "vitalik.eth", upserts[0])
	assert.StringContains(t, "vbuterin.eth", upserts[0])
}

func TestFetch_OnlyThePrimaryDomainWritesAReverseRecord(t *testing.T) {
	response := `{"data": {"addrs": [{"ens": ["vitalik.eth", "vbuterin.eth"], "primaryEns": "vitalik.eth"}]}}`
	f, fake := setupFetcher(t, response)

	_, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformEthereum, wallet))
	require.NoError(t, err)

	upserts := fake.Upserts()
	require.Equal(t, 1, len(upserts))
	assert.Equal(t, 1, strings.Count(upserts[0], "Reverse_Resolve"))
}

func TestFetch_NoPrimaryMeansNoReverseRecord(t *testing.T) {
	response := `{"data": {"addrs": [{"ens": ["vbuterin.eth"], "primaryEns": ""}]}}`
	f, fake := setupFetcher(t, response)

	followUps, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformEthereum, wallet))
	require.NoError(t, err)
	require.Equal(t, 1, len(followUps))

	upserts := fake.Upserts()
	require.Equal(t, 1, len(upserts))
	assert.Equal(t, 0, strings.Count(upserts[0], "Reverse_Resolve"))
}

func TestFetch_UppercaseWalletIsCanonicalized(t *testing.T) {
	response := `{"data": {"addrs": [{"ens": ["vitalik.eth"], "primaryEns": "vitalik.eth"}]}}`
	f, fake := setupFetcher(t, response)

	_, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformEthereum, strings.ToUpper(wallet)))
	require.NoError(t, err)

	upserts := fake.Upserts()
	require.Equal(t, 1, len(upserts))
	assert.StringContains(t, wallet, upserts[0])
}

func TestFetch_UnknownWalletIsNotAnError(t *testing.T) {
	f, fake := setupFetcher(t, `{"data": {"addrs": []}}`)

	followUps, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformEthereum, wallet))
	require.NoError(t, err)
	assert.Equal(t, 0, len(followUps))
	assert.Equal(t, 0, len(fake.Upserts()))
}

func TestCanFetch_WalletsOnly(t *testing.T) {
	f := &Fetcher{}
	assert.Equal(t, true, f.CanFetch(upstream.NewIdentity(graph.PlatformEthereum, wallet)))
	assert.Equal(t, false, f.CanFetch(upstream.NewIdentity(graph.PlatformTwitter, "vitalikbuterin")))
	assert.Equal(t, false, f.CanFetch(upstream.TargetFor(graph.PlatformENS, "vitalik.eth")))
}
