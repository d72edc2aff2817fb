// Package dotbit resolves .bit accounts through the DAS indexer: account
// names to the wallet that owns them, wallets to the account they have set
// as their reverse record.
package dotbit

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph"
	"github.com/nextdotid/relationservice/graph/store"
	"github.com/nextdotid/relationservice/network"
	"github.com/nextdotid/relationservice/upstream"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "dotbit")

const (
	accountInfoPath   = "/v1/account/info"
	reverseRecordPath = "/v1/reverse/record"

	// ethCoinType is the SLIP-44 coin type for Ethereum.
	ethCoinType = "60"

	// errnoAccountNotFound is the indexer's code for an unregistered name.
	errnoAccountNotFound = 20007
)

type accountInfoRequest struct {
	Account string `json:"account"`
}

type reverseRecordRequest struct {
	Type    string  `json:"type"`
	KeyInfo keyInfo `json:"key_info"`
}

type keyInfo struct {
	CoinType string `json:"coin_type"`
	Key      string `json:"key"`
}

type indexerResponse struct {
	Errno  int         `json:"errno"`
	Errmsg string      `json:"errmsg"`
	Data   indexerData `json:"data"`
}

type indexerData struct {
	AccountInfo *accountInfo `json:"account_info"`
	Account     string       `json:"account"`
}

type accountInfo struct {
	Account       string `json:"account"`
	OwnerKey      string `json:"owner_key"`
	CreateAtUnix  int64  `json:"create_at_unix"`
	ExpiredAtUnix int64  `json:"expired_at_unix"`
}

// Fetcher crawls the DAS indexer.
type Fetcher struct {
	store    *store.Client
	hc       *http.Client
	endpoint network.Endpoint
}

// New builds a .bit fetcher against the configured indexer endpoint.
func New(s *store.Client) *Fetcher {
	return &Fetcher{
		store:    s,
		hc:       upstream.NewHTTPClient(),
		endpoint: network.HttpEndpoint(params.RelationUpstreamConfig().DotbitEndpoint),
	}
}

// Name implements upstream.Fetcher.
func (f *Fetcher) Name() graph.DataSource {
	return graph.SourceDotbit
}

// CanFetch implements upstream.Fetcher. Names are crawled for their owner,
// wallets for their reverse record.
func (f *Fetcher) CanFetch(target upstream.Target) bool {
	return target.InPlatforms(graph.PlatformDotbit, graph.PlatformEthereum)
}

// Fetch implements upstream.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, target upstream.Target) ([]upstream.Target, error) {
	if target.Platform == graph.PlatformDotbit {
		return f.fetchOwnerByAccount(ctx, target.Identity)
	}
	return f.fetchReverseRecord(ctx, target.Identity)
}

// fetchOwnerByAccount persists the wallet's hold on the account and the
// account's resolution back to the wallet, then schedules the wallet.
func (f *Fetcher) fetchOwnerByAccount(ctx context.Context, account string) ([]upstream.Target, error) {
	out, err := f.post(ctx, accountInfoPath, &accountInfoRequest{Account: account})
	if err != nil {
		return nil, err
	}
	if out == nil || out.Data.AccountInfo == nil {
		log.WithField("account", account).Debug("Unregistered .bit account")
		return nil, nil
	}
	info := out.Data.AccountInfo
	owner := strings.ToLower(info.OwnerKey)
	if owner == "" {
		return nil, nil
	}

	now := graph.Now()
	created := graph.FromUnix(info.CreateAtUnix)
	expiry := graph.FromUnix(info.ExpiredAtUnix)
	walletID := uuid.New()
	holder := &graph.Identity{
		UUID:      &walletID,
		Platform:  graph.PlatformEthereum,
		Identity:  owner,
		AddedAt:   now,
		UpdatedAt: now,
	}
	nameID := uuid.New()
	name := &graph.Identity{
		UUID:      &nameID,
		Platform:  graph.PlatformDotbit,
		Identity:  info.Account,
		CreatedAt: &created,
		AddedAt:   now,
		UpdatedAt: now,
		ExpiredAt: &expiry,
	}
	hold := &graph.Hold{
		UUID:      uuid.New(),
		Source:    graph.SourceDotbit,
		ID:        info.Account,
		CreatedAt: &created,
		UpdatedAt: now,
		Fetcher:   graph.FetcherRelationService,
		ExpiredAt: &expiry,
	}
	resolve := &graph.Resolve{
		UUID:      uuid.New(),
		Source:    graph.SourceDotbit,
		System:    graph.SystemDotbit,
		Name:      info.Account,
		Fetcher:   graph.FetcherRelationService,
		UpdatedAt: now,
	}
	batch := store.NewBatch()
	batch.AddHoldIdentity(hold, holder, name)
	batch.AddResolve(resolve, name, holder)
	if err := f.store.UpsertGraph(ctx, batch); err != nil {
		return nil, err
	}
	return []upstream.Target{upstream.NewIdentity(graph.PlatformEthereum, owner)}, nil
}

// fetchReverseRecord persists the wallet's reverse record and schedules the
// named account for its own crawl.
func (f *Fetcher) fetchReverseRecord(ctx context.Context, wallet string) ([]upstream.Target, error) {
	wallet = strings.ToLower(wallet)
	req := &reverseRecordRequest{
		Type:    "blockchain",
		KeyInfo: keyInfo{CoinType: ethCoinType, Key: wallet},
	}
	out, err := f.post(ctx, reverseRecordPath, req)
	if err != nil {
		return nil, err
	}
	if out == nil || out.Data.Account == "" {
		log.WithField("wallet", wallet).Debug("Wallet has no .bit reverse record")
		return nil, nil
	}
	account := out.Data.Account

	now := graph.Now()
	walletID := uuid.New()
	holder := &graph.Identity{
		UUID:      &walletID,
		Platform:  graph.PlatformEthereum,
		Identity:  wallet,
		AddedAt:   now,
		UpdatedAt: now,
	}
	nameID := uuid.New()
	name := &graph.Identity{
		UUID:      &nameID,
		Platform:  graph.PlatformDotbit,
		Identity:  account,
		AddedAt:   now,
		UpdatedAt: now,
		Reverse:   true,
	}
	resolve := &graph.Resolve{
		UUID:      uuid.New(),
		Source:    graph.SourceDotbit,
		System:    graph.SystemDotbit,
		Name:      account,
		Fetcher:   graph.FetcherRelationService,
		UpdatedAt: now,
	}
	batch := store.NewBatch()
	batch.AddReverseResolve(resolve, holder, name)
	if err := f.store.UpsertGraph(ctx, batch); err != nil {
		return nil, err
	}
	return []upstream.Target{upstream.NewIdentity(graph.PlatformDotbit, account)}, nil
}

// post sends one indexer request. A not-found errno returns nil, nil; any
// other nonzero errno is an upstream failure.
func (f *Fetcher) post(ctx context.Context, path string, body interface{}) (*indexerResponse, error) {
	out := &indexerResponse{}
	if err := upstream.PostJSON(ctx, f.hc, f.endpoint, path, body, out, f.Name()); err != nil {
		return nil, err
	}
	if out.Errno == errnoAccountNotFound {
		return nil, nil
	}
	if out.Errno != 0 {
		return nil, &graph.UpstreamError{Upstream: f.Name().String(), Message: out.Errmsg}
	}
	return out, nil
}
