package sybillist

import (
	"context"
	"fmt"
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

const verifiedList = `{
	"0x192CB258efe302D77D670B0CBf565AD29D3D353c": {
		"twitter": {"timestamp": 1599859863, "tweetID": "1304514253422501888", "handle": "0xBroker"}
	},
	"0xd8da6bf26964af9d7eed9e03e53415d37aa96045": {
		"twitter": {"timestamp": 1599859870, "tweetID": "1304514253422501999", "handle": "VitalikButerin"}
	}
}`

func setupFetcher(t *testing.T) (*Fetcher, *storetesting.FakeStore, *int) {
	params.SetupTestConfigCleanup(t)
	hits := 0
	list := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		fmt.Fprint(w, verifiedList)
	}))
	t.Cleanup(list.Close)

	upstreams := params.RelationUpstreamConfig().Copy()
	upstreams.SybilListEndpoint = list.URL
	params.OverrideUpstreamConfig(upstreams)

	fake, client := storetesting.SetupStore(t)
	return New(client), fake, &hits
}

func TestFetch_WalletSideOfBinding(t *testing.T) {
	f, fake, _ := setupFetcher(t)

	followUps, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformEthereum, "0x192cb258efe302d77d670b0cbf565ad29d3d353c"))
	require.NoError(t, err)
	require.Equal(t, 1, len(followUps))
	assert.Equal(t, graph.PlatformTwitter, followUps[0].Platform)
	assert.Equal(t, "0xBroker", followUps[0].Identity)

	upserts := fake.Upserts()
	require.Equal(t, 1, len(upserts))
	assert.StringContains(t, "Proof_Forward", upserts[0])
	assert.StringContains(t, "Proof_Backward", upserts[0])
	assert.StringContains(t, "1304514253422501888", upserts[0])
	assert.StringContains(t, "0x192cb258efe302d77d670b0cbf565ad29d3d353c", upserts[0])
}

func TestFetch_HandleSideIsCaseInsensitive(t *testing.T) {
	f, fake, _ := setupFetcher(t)

	followUps, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformTwitter, "vitalikbuterin"))
	require.NoError(t, err)
	require.Equal(t, 1, len(followUps))
	assert.Equal(t, graph.PlatformEthereum, followUps[0].Platform)
	assert.Equal(t, "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", followUps[0].Identity)
	assert.Equal(t, 1, len(fake.Upserts()))
}

func TestFetch_UnlistedIdentityPersistsNothing(t *testing.T) {
	f, fake, _ := setupFetcher(t)

	followUps, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformTwitter, "nobody"))
	require.NoError(t, err)
	assert.Equal(t, 0, len(followUps))
	assert.Equal(t, 0, len(fake.Upserts()))
}

func TestFetch_ListIsCachedBetweenCalls(t *testing.T) {
	f, _, hits := setupFetcher(t)

	_, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformTwitter, "0xBroker"))
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformTwitter, "VitalikButerin"))
	require.NoError(t, err)
	assert.Equal(t, 1, *hits, "verified list downloaded more than once")
}

func TestPrefetch_PersistsWholeList(t *testing.T) {
	f, fake, _ := setupFetcher(t)

	require.NoError(t, f.Prefetch(context.Background()))
	upserts := fake.Upserts()
	require.Equal(t, 1, len(upserts))
	assert.StringContains(t, "0xBroker", upserts[0])
	assert.StringContains(t, "VitalikButerin", upserts[0])
}

func TestFetch_UpstreamFailureIsAttributed(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(broken.Close)
	upstreams := params.RelationUpstreamConfig().Copy()
	upstreams.SybilListEndpoint = broken.URL
	params.OverrideUpstreamConfig(upstreams)
	_, client := storetesting.SetupStore(t)

	_, err := New(client).Fetch(context.Background(), upstream.NewIdentity(graph.PlatformTwitter, "anyone"))
	require.NotNil(t, err)
	assert.Equal(t, true, graph.IsUpstreamError(err))
	assert.ErrorContains(t, "status 429", err)
}
