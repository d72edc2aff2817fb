package farcaster

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

const (
	custody  = "0x6b0bda3f2ffed5efc83fa8c024acff1dd45793f1"
	verified = "0xd7029bdea1c17493893aafe29aad69ef892b8ff2"
)

const userPayload = `{"result": {"user": {
	"fid": 3,
	"username": "dwr",
	"displayName": "Dan Romero",
	"custodyAddress": "0x6b0bda3f2ffed5efc83fa8c024acff1dd45793f1",
	"pfp": {"url": "https://i.imgur.com/dwr.png"}
}}}`

const verificationsPayload = `{"result": {"verifications": [
	{"fid": 3, "address": "0xd7029bdea1c17493893aafe29aad69ef892b8ff2", "timestamp": 1620838440000}
]}}`

func setupFetcher(t *testing.T, responses map[string]string) (*Fetcher, *storetesting.FakeStore, *[]string) {
	params.SetupTestConfigCleanup(t)
	var requests []string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.String())
		fmt.Fprint(w, responses[r.URL.Path])
	}))
	t.Cleanup(api.Close)

	upstreams := params.RelationUpstreamConfig().Copy()
	upstreams.FarcasterEndpoint = api.URL
	params.OverrideUpstreamConfig(upstreams)

	fake, client := storetesting.SetupStore(t)
	return New(client), fake, &requests
}

func TestFetch_ByUsername(t *testing.T) {
	responses := map[string]string{
		userByUsernamePath: userPayload,
		verificationsPath:  verificationsPayload,
	}
	f, fake, requests := setupFetcher(t, responses)

	followUps, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformFarcaster, "dwr"))
	require.NoError(t, err)
	require.Equal(t, 2, len(followUps))
	assert.Equal(t, graph.PlatformEthereum, followUps[0].Platform)
	assert.Equal(t, custody, followUps[0].Identity)
	assert.Equal(t, verified, followUps[1].Identity)

	require.Equal(t, 2, len(*requests))
	assert.StringContains(t, "username=dwr", (*requests)[0])
	assert.StringContains(t, "fid=3", (*requests)[1])

	upserts := fake.Upserts()
	require.Equal(t, 1, len(upserts))
	// The custody wallet holds the account, the verified wallet proves it.
	assert.StringContains(t, "Hold_Identity", upserts[0])
	assert.StringContains(t, "Proof_Forward", upserts[0])
	assert.StringContains(t, "Proof_Backward", upserts[0])
	assert.StringContains(t, custody, upserts[0])
	assert.StringContains(t, verified, upserts[0])
	assert.StringContains(t, "Dan Romero", upserts[0])
	assert.StringContains(t, "2021-05-12 16:54:00", upserts[0])
}

func TestFetch_ByWalletSchedulesTheAccount(t *testing.T) {
	responses := map[string]string{
		userByVerificationPath: userPayload,
		verificationsPath:      verificationsPayload,
	}
	f, _, requests := setupFetcher(t, responses)

	followUps, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformEthereum, strings.ToUpper(verified)))
	require.NoError(t, err)
	require.Equal(t, 2, len(followUps))
	assert.Equal(t, graph.PlatformFarcaster, followUps[0].Platform)
	assert.Equal(t, "dwr", followUps[0].Identity)
	// The queried wallet is not scheduled again.
	assert.Equal(t, custody, followUps[1].Identity)

	require.Equal(t, 2, len(*requests))
	assert.StringContains(t, "address="+verified, (*requests)[0])
}

func TestFetch_UnknownUsernameIsNotAnError(t *testing.T) {
	responses := map[string]string{
		userByUsernamePath: `{"result": {}}`,
	}
	f, fake, requests := setupFetcher(t, responses)

	followUps, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformFarcaster, "nobody"))
	require.NoError(t, err)
	assert.Equal(t, 0, len(followUps))
	assert.Equal(t, 0, len(fake.Upserts()))
	// No verifications lookup without an account.
	assert.Equal(t, 1, len(*requests))
}

func TestFetch_AccountWithoutVerificationsStillHeldByCustody(t *testing.T) {
	responses := map[string]string{
		userByUsernamePath: userPayload,
		verificationsPath:  `{"result": {"verifications": []}}`,
	}
	f, fake, _ := setupFetcher(t, responses)

	followUps, err := f.Fetch(context.Background(), upstream.NewIdentity(graph.PlatformFarcaster, "dwr"))
	require.NoError(t, err)
	require.Equal(t, 1, len(followUps))
	assert.Equal(t, custody, followUps[0].Identity)

	upserts := fake.Upserts()
	require.Equal(t, 1, len(upserts))
	assert.StringContains(t, "Hold_Identity", upserts[0])
	assert.Equal(t, false, strings.Contains(upserts[0], "Proof_Forward"))
}

func TestCanFetch_AccountsAndWallets(t *testing.T) {
	f := &Fetcher{}
	assert.Equal(t, true, f.CanFetch(upstream.NewIdentity(graph.PlatformFarcaster, "dwr")))
	assert.Equal(t, true, f.CanFetch(upstream.NewIdentity(graph.PlatformEthereum, verified)))
	assert.Equal(t, false, f.CanFetch(upstream.NewIdentity(graph.PlatformLens, "dwr.lens")))
}
