package rss3

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

const wallet = "0x6875e13a6301040388f61f5dba5045e1be01c657"

const notesPayload = `{
	"total": 3,
	"list": [
		{
			"date_created": "2021-09-14T16:34:54Z",
			"metadata": {
				"collection_address": "0x8f9772d0ed34bd0293098a439912f0f6d6e78e3f",
				"collection_name": "Crypto Tester",
				"from": "0x0000000000000000000000000000000000000000",
				"network": "polygon",
				"proof": "0xdeadbeef-42",
				"to": "0x6875e13a6301040388f61f5dba5045e1be01c657",
				"token_id": "1",
				"token_standard": "ERC-721",
				"token_symbol": "CTER"
			}
		},
		{
			"date_created": "2022-01-02T03:04:05Z",
			"metadata": {
				"collection_address": "0x22c1f6050e56d2876009903609a2cc3fef83b415",
				"collection_name": "POAP",
				"from": "0x0000000000000000000000000000000000000000",
				"network": "gnosis",
				"proof": "0xfeedface-7",
				"to": "0x6875e13a6301040388f61f5dba5045e1be01c657",
				"token_id": "2516462",
				"token_standard": "ERC-721",
				"token_symbol": "POAP"
			}
		},
		{
			"date_created": "2022-03-04T05:06:07Z",
			"metadata": {
				"collection_address": "0x495f947276749ce646f68ac8c248420045cb7b5e",
				"collection_name": "Someone Else's Drop",
				"from": "0x6875e13a6301040388f61f5dba5045e1be01c657",
				"network": "ethereum",
				"proof": "0xcafebabe-1",
				"to": "0x1111111111111111111111111111111111111111",
				"token_id": "9",
				"token_standard": "ERC-1155",
				"token_symbol": "OPENSTORE"
			}
		}
	]
}`

func setupFetcher(t *testing.T, response string) (*Fetcher, *storetesting.FakeStore, *[]string) {
	params.SetupTestConfigCleanup(t)
	var paths []string
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.String())
		fmt.Fprint(w, response)
	}))
	t.Cleanup(feed.Close)

	upstreams := params.RelationUpstreamConfig().Copy()
	upstreams.RSS3Endpoint = feed.URL
	params.OverrideUpstreamConfig(upstreams)

	fake, client := storetesting.SetupStore(t)
	return New(client), fake, &paths
}

func TestFetch_PersistsReceivedTokensOnly(t *testing.T) {
	f, fake, paths := setupFetcher(t, notesPayload)

	followUps, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformEthereum, wallet))
	require.NoError(t, err)
	assert.Equal(t, 0, len(followUps))

	require.Equal(t, 1, len(*paths))
	assert.StringContains(t, "account:"+wallet+"@ethereum", (*paths)[0])
	assert.StringContains(t, "tags=NFT", (*paths)[0])

	upserts := fake.Upserts()
	require.Equal(t, 1, len(upserts))
	assert.StringContains(t, "Hold_Contract", upserts[0])
	assert.StringContains(t, "0x8f9772d0ed34bd0293098a439912f0f6d6e78e3f", upserts[0])
	// The wallet sent the third token away, so it is not held.
	assert.Equal(t, false, strings.Contains(upserts[0], "0x495f947276749ce646f68ac8c248420045cb7b5e"))
}

func TestFetch_MapsNetworksAndStandardsOntoCategories(t *testing.T) {
	f, fake, _ := setupFetcher(t, notesPayload)

	_, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformEthereum, wallet))
	require.NoError(t, err)

	upserts := fake.Upserts()
	require.Equal(t, 1, len(upserts))
	assert.StringContains(t, graph.ChainPolygon.String(), upserts[0])
	assert.StringContains(t, graph.CategoryERC721.String(), upserts[0])
	// POAP wins over the raw token standard for the POAP collection.
	assert.StringContains(t, graph.CategoryPOAP.String(), upserts[0])
	assert.StringContains(t, graph.ChainGnosis.String(), upserts[0])
	assert.StringContains(t, "0xdeadbeef-42", upserts[0])
	assert.StringContains(t, "2021-09-14 16:34:54", upserts[0])
}

func TestFetch_EmptyFeedIsNotAnError(t *testing.T) {
	f, fake, _ := setupFetcher(t, `{"total": 0, "list": []}`)

	followUps, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformEthereum, wallet))
	require.NoError(t, err)
	assert.Equal(t, 0, len(followUps))
	assert.Equal(t, 0, len(fake.Upserts()))
}

func TestFetch_UnrecognizedNetworksAreSkipped(t *testing.T) {
	payload := `{"total": 1, "list": [{
		"date_created": "2022-01-01T00:00:00Z",
		"metadata": {
			"collection_address": "0x22c1f6050e56d2876009903609a2cc3fef83b415",
			"from": "0x0000000000000000000000000000000000000000",
			"network": "avalanche",
			"proof": "0x1-1",
			"to": "0x6875e13a6301040388f61f5dba5045e1be01c657",
			"token_id": "1",
			"token_standard": "ERC-721",
			"token_symbol": "X"
		}
	}]}`
	f, fake, _ := setupFetcher(t, payload)

	_, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformEthereum, wallet))
	require.NoError(t, err)
	assert.Equal(t, 0, len(fake.Upserts()))
}

func TestCanFetch_WalletsOnly(t *testing.T) {
	f := &Fetcher{}
	assert.Equal(t, true, f.CanFetch(upstream.NewIdentity(graph.PlatformEthereum, wallet)))
	assert.Equal(t, false, f.CanFetch(upstream.NewIdentity(graph.PlatformDotbit, "tester.bit")))
	assert.Equal(t, false, f.CanFetch(upstream.TargetFor(graph.PlatformENS, "vitalik.eth")))
}
