package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph"
	storetesting "github.com/nextdotid/relationservice/graph/store/testing"
	"github.com/nextdotid/relationservice/query"
	"github.com/nextdotid/relationservice/testing/assert"
	"github.com/nextdotid/relationservice/testing/require"
	"github.com/nextdotid/relationservice/upstream"
)

func setupServer(t *testing.T) (*httptest.Server, *storetesting.FakeStore) {
	params.SetupTestConfigCleanup(t)
	fake, client := storetesting.SetupStore(t)
	dispatcher := upstream.NewDispatcher(upstream.NewRegistry())
	svc, err := NewService(context.Background(), &Config{
		Address:      "127.0.0.1:0",
		QueryService: query.New(client, dispatcher, nil),
	})
	require.NoError(t, err)
	web := httptest.NewServer(svc.server.Handler)
	t.Cleanup(web.Close)
	return web, fake
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func postGraphQL(t *testing.T, serverURL, q string) *gqlResponse {
	t.Helper()
	body, err := json.Marshal(map[string]string{"query": q})
	require.NoError(t, err)
	resp, err := http.Post(serverURL+"/graphql", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := &gqlResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return out
}

// identityJSON renders one stored identity vertex for stubbing.
func identityJSON(platform graph.Platform, identity string, updatedAt time.Time) string {
	stamp := updatedAt.UTC().Format("2006-01-02 15:04:05")
	return fmt.Sprintf(`{
		"v_id": "%s,%s",
		"attributes": {
			"uuid": "7f3afbd6-44c9-43f4-92e7-3f0f05b0f1b4",
			"platform": %q,
			"identity": %q,
			"added_at": %q,
			"updated_at": %q
		}
	}`, platform, identity, platform, identity, stamp, stamp)
}

// proofEdgeJSON renders one stored proof edge for stubbing.
func proofEdgeJSON(id, fromID, toID string, updatedAt time.Time) string {
	stamp := updatedAt.UTC().Format("2006-01-02 15:04:05")
	return fmt.Sprintf(`{
		"e_type": "Proof_Forward",
		"directed": true,
		"from_id": %q,
		"from_type": "Identities",
		"to_id": %q,
		"to_type": "Identities",
		"attributes": {
			"uuid": %q,
			"source": "nextid",
			"updated_at": %q,
			"fetcher": "relation_service"
		}
	}`, fromID, toID, id, stamp)
}

func TestNewService_RequiresQueryService(t *testing.T) {
	_, err := NewService(context.Background(), &Config{Address: "127.0.0.1:0"})
	require.ErrorContains(t, "query service is required", err)
}

func TestService_StartStop(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	_, client := storetesting.SetupStore(t)
	dispatcher := upstream.NewDispatcher(upstream.NewRegistry())
	svc, err := NewService(context.Background(), &Config{
		Address:      "127.0.0.1:0",
		QueryService: query.New(client, dispatcher, nil),
	})
	require.NoError(t, err)

	svc.Start()
	require.NoError(t, svc.Status())
	require.NoError(t, svc.Stop())
}

func TestAvailablePlatforms_ListsEveryPlatform(t *testing.T) {
	web, _ := setupServer(t)

	resp := postGraphQL(t, web.URL, `{ availablePlatforms availableUpstreams availableNameSystem }`)
	require.Equal(t, 0, len(resp.Errors), "unexpected errors: %v", resp.Errors)

	var data struct {
		AvailablePlatforms  []string `json:"availablePlatforms"`
		AvailableUpstreams  []string `json:"availableUpstreams"`
		AvailableNameSystem []string `json:"availableNameSystem"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, len(graph.Platforms()), len(data.AvailablePlatforms))
	assert.Equal(t, len(graph.DataSources()), len(data.AvailableUpstreams))
	assert.Equal(t, len(graph.DomainNameSystems()), len(data.AvailableNameSystem))
	assert.Equal(t, "ethereum", data.AvailablePlatforms[0])
	assert.Equal(t, "ENS", data.AvailableNameSystem[0])
}

func TestIdentityQuery_ServesStoredRecord(t *testing.T) {
	web, fake := setupServer(t)
	now := time.Now().UTC().Truncate(time.Second)
	stamp := now.Format("2006-01-02 15:04:05")
	fake.StubQuery(graph.IdentityVertexType, fmt.Sprintf(`[{
		"v_id": "twitter,alice",
		"attributes": {
			"uuid": "7f3afbd6-44c9-43f4-92e7-3f0f05b0f1b4",
			"platform": "twitter",
			"identity": "alice",
			"display_name": "Alice",
			"added_at": %q,
			"updated_at": %q
		}
	}]`, stamp, stamp))

	resp := postGraphQL(t, web.URL, `{
		identity(platform: "twitter", identity: "alice") {
			id uuid platform identity displayName profileUrl
			addedAt updatedAt expiredAt reverse status
		}
	}`)
	require.Equal(t, 0, len(resp.Errors), "unexpected errors: %v", resp.Errors)

	var data struct {
		Identity *struct {
			ID          string   `json:"id"`
			UUID        *string  `json:"uuid"`
			Platform    string   `json:"platform"`
			Identity    string   `json:"identity"`
			DisplayName *string  `json:"displayName"`
			ProfileURL  *string  `json:"profileUrl"`
			AddedAt     int64    `json:"addedAt"`
			UpdatedAt   int64    `json:"updatedAt"`
			ExpiredAt   *int64   `json:"expiredAt"`
			Reverse     *bool    `json:"reverse"`
			Status      []string `json:"status"`
		} `json:"identity"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotNil(t, data.Identity)
	assert.Equal(t, "twitter,alice", data.Identity.ID)
	require.NotNil(t, data.Identity.UUID)
	assert.Equal(t, "7f3afbd6-44c9-43f4-92e7-3f0f05b0f1b4", *data.Identity.UUID)
	assert.Equal(t, "twitter", data.Identity.Platform)
	assert.Equal(t, "alice", data.Identity.Identity)
	require.NotNil(t, data.Identity.DisplayName)
	assert.Equal(t, "Alice", *data.Identity.DisplayName)
	// Empty attributes and flags outside their platforms come back as null.
	assert.Equal(t, (*string)(nil), data.Identity.ProfileURL)
	assert.Equal(t, (*int64)(nil), data.Identity.ExpiredAt)
	assert.Equal(t, (*bool)(nil), data.Identity.Reverse)
	// Timestamps travel as unix-second numbers.
	assert.Equal(t, now.Unix(), data.Identity.AddedAt)
	assert.Equal(t, now.Unix(), data.Identity.UpdatedAt)
	assert.DeepEqual(t, []string{"cached"}, data.Identity.Status)
}

func TestIdentityQuery_MissingEverywhereIsNull(t *testing.T) {
	web, _ := setupServer(t)

	resp := postGraphQL(t, web.URL, `{ identity(platform: "twitter", identity: "nobody") { id } }`)
	require.Equal(t, 0, len(resp.Errors), "unexpected errors: %v", resp.Errors)

	var data struct {
		Identity *struct {
			ID string `json:"id"`
		} `json:"identity"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, true, data.Identity == nil)
}

func TestIdentityQuery_UnknownPlatformIsError(t *testing.T) {
	web, _ := setupServer(t)

	resp := postGraphQL(t, web.URL, `{ identity(platform: "myspace", identity: "alice") { id } }`)
	require.Equal(t, 1, len(resp.Errors))
	assert.StringContains(t, "param error", resp.Errors[0].Message)
}

func TestIdentitiesQuery_CollectsRecordsAcrossPlatforms(t *testing.T) {
	web, fake := setupServer(t)
	fake.StubQuery(graph.IdentityVertexType, "["+identityJSON(graph.PlatformTwitter, "alice", time.Now())+"]")

	resp := postGraphQL(t, web.URL, `{ identities(platforms: ["twitter", "ENS"], identity: "alice") { id } }`)
	require.Equal(t, 0, len(resp.Errors), "unexpected errors: %v", resp.Errors)

	var data struct {
		Identities []struct {
			ID string `json:"id"`
		} `json:"identities"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, 2, len(data.Identities))
}

func TestIdentityQuery_OwnedByNullOutsideOwnablePlatforms(t *testing.T) {
	web, fake := setupServer(t)
	fake.StubQuery(graph.IdentityVertexType, "["+identityJSON(graph.PlatformTwitter, "alice", time.Now())+"]")

	resp := postGraphQL(t, web.URL, `{ identity(platform: "twitter", identity: "alice") { ownedBy { id } } }`)
	require.Equal(t, 0, len(resp.Errors), "unexpected errors: %v", resp.Errors)

	var data struct {
		Identity struct {
			OwnedBy *struct {
				ID string `json:"id"`
			} `json:"ownedBy"`
		} `json:"identity"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, true, data.Identity.OwnedBy == nil)
	// The ownership traversal is skipped entirely, not answered empty.
	for _, req := range fake.Requests() {
		assert.Equal(t, false, strings.Contains(req, "identity_owned_by"), "unexpected traversal: %s", req)
	}
}

func TestNeighborWithTraversal_EndpointReadsAreBatched(t *testing.T) {
	web, fake := setupServer(t)
	cfg := params.RelationConfig().Copy()
	cfg.LoaderWaitMs = 20
	params.OverrideRelationConfig(cfg)

	now := time.Now()
	fake.StubQuery(graph.IdentityVertexType, "["+identityJSON(graph.PlatformTwitter, "alice", now)+"]")
	fake.StubQuery("neighbors", fmt.Sprintf(`[{"edges": [%s, %s]}]`,
		proofEdgeJSON("a97e0cdd-6e3a-4a02-b5e7-d78e04e4ba17", "twitter,alice", "github,alice", now),
		proofEdgeJSON("c56a6e0f-3c99-4b56-9e17-9f4f231c33a8", "twitter,alice", "ethereum,0xd8da6bf26964af9d7eed9e03e53415d37aa96045", now),
	))
	fake.StubQuery("identities_by_ids", fmt.Sprintf(`[{"vertices": [%s, %s, %s]}]`,
		identityJSON(graph.PlatformTwitter, "alice", now),
		identityJSON(graph.PlatformGithub, "alice", now),
		identityJSON(graph.PlatformEthereum, "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", now),
	))

	resp := postGraphQL(t, web.URL, `{
		identity(platform: "twitter", identity: "alice") {
			neighborWithTraversal(depth: 1) {
				... on Proof { uuid from { id } to { id } }
			}
		}
	}`)
	require.Equal(t, 0, len(resp.Errors), "unexpected errors: %v", resp.Errors)

	var data struct {
		Identity struct {
			NeighborWithTraversal []struct {
				UUID string `json:"uuid"`
				From *struct {
					ID string `json:"id"`
				} `json:"from"`
				To *struct {
					ID string `json:"id"`
				} `json:"to"`
			} `json:"neighborWithTraversal"`
		} `json:"identity"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Equal(t, 2, len(data.Identity.NeighborWithTraversal))
	for _, edge := range data.Identity.NeighborWithTraversal {
		require.NotNil(t, edge.From)
		require.NotNil(t, edge.To)
		assert.Equal(t, "twitter,alice", edge.From.ID)
	}
	assert.Equal(t, "github,alice", data.Identity.NeighborWithTraversal[0].To.ID)
	assert.Equal(t, "ethereum,0xd8da6bf26964af9d7eed9e03e53415d37aa96045", data.Identity.NeighborWithTraversal[1].To.ID)

	// Four endpoint expansions, one batched vertex read.
	batches := 0
	for _, req := range fake.Requests() {
		if strings.Contains(req, "identities_by_ids") {
			batches++
		}
	}
	assert.Equal(t, 1, batches)
}

func TestEnsQuery_ServesResolvedOwnerAndGraph(t *testing.T) {
	web, fake := setupServer(t)
	now := time.Now()
	stamp := now.UTC().Format("2006-01-02 15:04:05")
	wallet := identityJSON(graph.PlatformEthereum, "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", now)
	record := fmt.Sprintf(`{
		"e_type": "Resolve",
		"directed": true,
		"from_id": "ENS,vitalik.eth",
		"from_type": "Identities",
		"to_id": "ethereum,0xd8da6bf26964af9d7eed9e03e53415d37aa96045",
		"to_type": "Identities",
		"attributes": {
			"uuid": "1b2ad43a-8f0f-4af4-9b8c-4ae3b1a5e6a2",
			"source": "the_graph",
			"system": "ENS",
			"name": "vitalik.eth",
			"fetcher": "relation_service",
			"updated_at": %q
		}
	}`, stamp)
	fake.StubQuery("domain_resolve", fmt.Sprintf(`[{"record": [%s], "resolved": [%s], "owner": [%s]}]`, record, wallet, wallet))
	fake.StubQuery("identity_graph", fmt.Sprintf(`[{"vertices": [%s, %s], "edges": [%s]}]`,
		identityJSON(graph.PlatformENS, "vitalik.eth", now), wallet, record))

	resp := postGraphQL(t, web.URL, `{
		ens(name: "vitalik.eth") {
			uuid system name
			resolved { id }
			owner { id }
			identityGraph {
				vertices { id }
				edges { ... on Resolve { name reverse } }
			}
		}
	}`)
	require.Equal(t, 0, len(resp.Errors), "unexpected errors: %v", resp.Errors)

	var data struct {
		Ens *struct {
			UUID     string `json:"uuid"`
			System   string `json:"system"`
			Name     string `json:"name"`
			Resolved *struct {
				ID string `json:"id"`
			} `json:"resolved"`
			Owner *struct {
				ID string `json:"id"`
			} `json:"owner"`
			IdentityGraph *struct {
				Vertices []struct {
					ID string `json:"id"`
				} `json:"vertices"`
				Edges []struct {
					Name    string `json:"name"`
					Reverse bool   `json:"reverse"`
				} `json:"edges"`
			} `json:"identityGraph"`
		} `json:"ens"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotNil(t, data.Ens)
	assert.Equal(t, "ENS", data.Ens.System)
	assert.Equal(t, "vitalik.eth", data.Ens.Name)
	require.NotNil(t, data.Ens.Resolved)
	assert.Equal(t, "ethereum,0xd8da6bf26964af9d7eed9e03e53415d37aa96045", data.Ens.Resolved.ID)
	require.NotNil(t, data.Ens.Owner)
	require.NotNil(t, data.Ens.IdentityGraph)
	assert.Equal(t, 2, len(data.Ens.IdentityGraph.Vertices))
	require.Equal(t, 1, len(data.Ens.IdentityGraph.Edges))
	assert.Equal(t, "vitalik.eth", data.Ens.IdentityGraph.Edges[0].Name)
	assert.Equal(t, false, data.Ens.IdentityGraph.Edges[0].Reverse)
}

func TestNFTQuery_ExpandsHeldContract(t *testing.T) {
	web, fake := setupServer(t)
	now := time.Now()
	stamp := now.UTC().Format("2006-01-02 15:04:05")
	wallet := "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"
	registrar := "0x57f1887a8bf19b14fc0df6fd9b2acc9af147ea85"
	fake.StubQuery(graph.IdentityVertexType, "["+identityJSON(graph.PlatformEthereum, wallet, now)+"]")
	fake.StubQuery("nfts", fmt.Sprintf(`[{"edges": [{
		"e_type": "Hold_Contract",
		"directed": true,
		"from_id": "ethereum,%s",
		"from_type": "Identities",
		"to_id": "ethereum,%s",
		"to_type": "Contracts",
		"attributes": {
			"uuid": "52e35f1f-3f33-4e6f-9a35-6e7e7d9fca0f",
			"source": "the_graph",
			"id": "vitalik.eth",
			"updated_at": %q,
			"fetcher": "relation_service"
		}
	}]}]`, wallet, registrar, stamp))
	fake.StubQuery(graph.ContractVertexType, fmt.Sprintf(`[{
		"v_id": "ethereum,%s",
		"attributes": {
			"uuid": "b5f7a10c-6226-4e9d-8a2f-07c6efb38a2a",
			"category": "ENS",
			"chain": "ethereum",
			"address": %q,
			"symbol": "ENS",
			"updated_at": %q
		}
	}]`, registrar, registrar, stamp))

	resp := postGraphQL(t, web.URL, fmt.Sprintf(`{
		identity(platform: "ethereum", identity: %q) {
			nft { id transaction contract { address symbol category } }
		}
	}`, wallet))
	require.Equal(t, 0, len(resp.Errors), "unexpected errors: %v", resp.Errors)

	var data struct {
		Identity struct {
			NFT []struct {
				ID          string  `json:"id"`
				Transaction *string `json:"transaction"`
				Contract    *struct {
					Address  string  `json:"address"`
					Symbol   *string `json:"symbol"`
					Category string  `json:"category"`
				} `json:"contract"`
			} `json:"nft"`
		} `json:"identity"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Equal(t, 1, len(data.Identity.NFT))
	assert.Equal(t, "vitalik.eth", data.Identity.NFT[0].ID)
	assert.Equal(t, (*string)(nil), data.Identity.NFT[0].Transaction)
	require.NotNil(t, data.Identity.NFT[0].Contract)
	assert.Equal(t, registrar, data.Identity.NFT[0].Contract.Address)
	assert.Equal(t, "ENS", data.Identity.NFT[0].Contract.Category)
}

func TestProofQuery_MalformedUUIDIsError(t *testing.T) {
	web, _ := setupServer(t)

	resp := postGraphQL(t, web.URL, `{ proof(uuid: "not-a-uuid") { uuid } }`)
	require.Equal(t, 1, len(resp.Errors))
	assert.StringContains(t, "param error", resp.Errors[0].Message)
}

func TestPrefetchProofMutation_ReturnsImmediately(t *testing.T) {
	web, _ := setupServer(t)

	resp := postGraphQL(t, web.URL, `mutation { prefetchProof }`)
	require.Equal(t, 0, len(resp.Errors), "unexpected errors: %v", resp.Errors)

	var data struct {
		PrefetchProof string `json:"prefetchProof"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, query.PrefetchStatus, data.PrefetchProof)
}

func TestHealthz(t *testing.T) {
	web, _ := setupServer(t)

	resp, err := http.Get(web.URL + "/healthz")
	require.NoError(t, err)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGraphiQL_ServedOnRootForGETOnly(t *testing.T) {
	web, _ := setupServer(t)

	resp, err := http.Get(web.URL + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.StringContains(t, "graphiql", string(body))

	post, err := http.Post(web.URL+"/", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	require.NoError(t, post.Body.Close())
	assert.Equal(t, http.StatusMethodNotAllowed, post.StatusCode)
}
