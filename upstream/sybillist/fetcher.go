// Package sybillist ingests the Uniswap sybil list, a community maintained
// registry binding Ethereum wallets to Twitter accounts through signed
// tweets.
package sybillist

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph"
	"github.com/nextdotid/relationservice/graph/store"
	"github.com/nextdotid/relationservice/network"
	"github.com/nextdotid/relationservice/upstream"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "sybillist")

// The registry is one static JSON document; a downloaded copy is reused for
// listCacheTTL before it is fetched again.
const (
	listCacheKey = "verified"
	listCacheTTL = 10 * time.Minute
)

// verifiedItem is one entry of the verified.json registry, keyed by wallet.
type verifiedItem struct {
	Twitter twitterItem `json:"twitter"`
}

type twitterItem struct {
	Timestamp int64  `json:"timestamp"`
	TweetID   string `json:"tweetID"`
	Handle    string `json:"handle"`
}

// Fetcher resolves wallet/Twitter bindings from the sybil list.
type Fetcher struct {
	store    *store.Client
	hc       *http.Client
	endpoint network.Endpoint
	list     *cache.Cache
}

// New builds a sybil list fetcher against the configured endpoint.
func New(s *store.Client) *Fetcher {
	return &Fetcher{
		store:    s,
		hc:       upstream.NewHTTPClient(),
		endpoint: network.HttpEndpoint(params.RelationUpstreamConfig().SybilListEndpoint),
		list:     cache.New(listCacheTTL, listCacheTTL),
	}
}

// Name implements upstream.Fetcher.
func (f *Fetcher) Name() graph.DataSource {
	return graph.SourceSybilList
}

// CanFetch implements upstream.Fetcher. The list binds wallets to Twitter
// handles, so either end can be looked up.
func (f *Fetcher) CanFetch(target upstream.Target) bool {
	return target.InPlatforms(graph.PlatformEthereum, graph.PlatformTwitter)
}

// Fetch looks the target up in the verified list and persists the wallet to
// Twitter proof when present. The counterpart identity is returned as a
// follow-up target.
func (f *Fetcher) Fetch(ctx context.Context, target upstream.Target) ([]upstream.Target, error) {
	list, err := f.verifiedList(ctx)
	if err != nil {
		return nil, err
	}
	for wallet, item := range list {
		if !matches(target, wallet, item.Twitter.Handle) {
			continue
		}
		batch := store.NewBatch()
		stageVerification(batch, wallet, item)
		if err := f.store.UpsertGraph(ctx, batch); err != nil {
			return nil, err
		}
		return []upstream.Target{counterpart(target, wallet, item.Twitter.Handle)}, nil
	}
	log.WithField("target", target.String()).Debug("Identity not present in sybil list")
	return nil, nil
}

// Prefetch downloads the registry and persists every binding in one batch.
func (f *Fetcher) Prefetch(ctx context.Context) error {
	list, err := f.verifiedList(ctx)
	if err != nil {
		return err
	}
	batch := store.NewBatch()
	for wallet, item := range list {
		stageVerification(batch, wallet, item)
	}
	if err := f.store.UpsertGraph(ctx, batch); err != nil {
		return err
	}
	log.WithField("bindings", len(list)).Info("Prefetched sybil list")
	return nil
}

func (f *Fetcher) verifiedList(ctx context.Context) (map[string]verifiedItem, error) {
	if cached, ok := f.list.Get(listCacheKey); ok {
		return cached.(map[string]verifiedItem), nil
	}
	list := map[string]verifiedItem{}
	if err := upstream.GetJSON(ctx, f.hc, f.endpoint, "", &list, f.Name()); err != nil {
		return nil, err
	}
	f.list.Set(listCacheKey, list, cache.DefaultExpiration)
	return list, nil
}

func matches(target upstream.Target, wallet, handle string) bool {
	switch target.Platform {
	case graph.PlatformEthereum:
		return strings.EqualFold(target.Identity, wallet)
	case graph.PlatformTwitter:
		return strings.EqualFold(target.Identity, handle)
	default:
		return false
	}
}

func counterpart(target upstream.Target, wallet, handle string) upstream.Target {
	if target.Platform == graph.PlatformEthereum {
		return upstream.NewIdentity(graph.PlatformTwitter, handle)
	}
	return upstream.NewIdentity(graph.PlatformEthereum, wallet)
}

// stageVerification stages the two identities and the two-way proof claimed
// by one registry entry.
func stageVerification(batch *store.Batch, wallet string, item verifiedItem) {
	verified := graph.FromUnix(item.Twitter.Timestamp)
	now := graph.Now()
	walletID := uuid.New()
	handleID := uuid.New()
	wallet = strings.ToLower(wallet)
	from := &graph.Identity{
		UUID:        &walletID,
		Platform:    graph.PlatformEthereum,
		Identity:    wallet,
		DisplayName: wallet,
		CreatedAt:   &verified,
		AddedAt:     now,
		UpdatedAt:   now,
	}
	to := &graph.Identity{
		UUID:        &handleID,
		Platform:    graph.PlatformTwitter,
		Identity:    item.Twitter.Handle,
		DisplayName: item.Twitter.Handle,
		CreatedAt:   &verified,
		AddedAt:     now,
		UpdatedAt:   now,
	}
	proof := &graph.Proof{
		UUID:      uuid.New(),
		Source:    graph.SourceSybilList,
		RecordID:  item.Twitter.TweetID,
		CreatedAt: &verified,
		UpdatedAt: now,
		Fetcher:   graph.FetcherRelationService,
	}
	batch.AddProof(proof, from, to)
}
