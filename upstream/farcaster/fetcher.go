// Package farcaster links Farcaster accounts to their wallets: the custody
// address holds the account, verified addresses prove it both ways.
package farcaster

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph"
	"github.com/nextdotid/relationservice/graph/store"
	"github.com/nextdotid/relationservice/network"
	"github.com/nextdotid/relationservice/upstream"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "farcaster")

const (
	userByUsernamePath     = "/v2/user-by-username"
	userByVerificationPath = "/v2/user-by-verification"
	verificationsPath      = "/v2/verifications"

	profileURLBase = "https://warpcast.com/"
)

type userResponse struct {
	Result struct {
		User *user `json:"user"`
	} `json:"result"`
}

type user struct {
	FID            int64  `json:"fid"`
	Username       string `json:"username"`
	DisplayName    string `json:"displayName"`
	CustodyAddress string `json:"custodyAddress"`
	Pfp            struct {
		URL string `json:"url"`
	} `json:"pfp"`
}

type verificationsResponse struct {
	Result struct {
		Verifications []verification `json:"verifications"`
	} `json:"result"`
}

type verification struct {
	FID     int64  `json:"fid"`
	Address string `json:"address"`
	// Timestamp is unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// Fetcher crawls the Farcaster client API.
type Fetcher struct {
	store    *store.Client
	hc       *http.Client
	endpoint network.Endpoint
}

// New builds a Farcaster fetcher against the configured endpoint.
func New(s *store.Client) *Fetcher {
	return &Fetcher{
		store:    s,
		hc:       upstream.NewHTTPClient(),
		endpoint: network.HttpEndpoint(params.RelationUpstreamConfig().FarcasterEndpoint),
	}
}

// Name implements upstream.Fetcher.
func (f *Fetcher) Name() graph.DataSource {
	return graph.SourceFarcaster
}

// CanFetch implements upstream.Fetcher. Accounts are looked up by username,
// wallets by the verification they signed.
func (f *Fetcher) CanFetch(target upstream.Target) bool {
	return target.InPlatforms(graph.PlatformFarcaster, graph.PlatformEthereum)
}

// Fetch implements upstream.Fetcher. Both entry points converge on the same
// account: its custody wallet, its verified wallets, and the account itself
// are persisted in one batch.
func (f *Fetcher) Fetch(ctx context.Context, target upstream.Target) ([]upstream.Target, error) {
	var (
		u   *user
		err error
	)
	if target.Platform == graph.PlatformFarcaster {
		u, err = f.userBy(ctx, userByUsernamePath, "username", target.Identity)
	} else {
		u, err = f.userBy(ctx, userByVerificationPath, "address", strings.ToLower(target.Identity))
	}
	if err != nil {
		return nil, err
	}
	if u == nil || u.Username == "" {
		log.WithField("target", target.String()).Debug("No Farcaster account behind target")
		return nil, nil
	}

	verifications, err := f.verifications(ctx, u.FID)
	if err != nil {
		return nil, err
	}

	batch, wallets := stageAccount(u, verifications)
	if err := f.store.UpsertGraph(ctx, batch); err != nil {
		return nil, err
	}

	next := make([]upstream.Target, 0, len(wallets)+1)
	if target.Platform != graph.PlatformFarcaster {
		next = append(next, upstream.NewIdentity(graph.PlatformFarcaster, u.Username))
	}
	queried := strings.ToLower(target.Identity)
	for _, w := range wallets {
		if w == queried {
			continue
		}
		next = append(next, upstream.NewIdentity(graph.PlatformEthereum, w))
	}
	return next, nil
}

func (f *Fetcher) userBy(ctx context.Context, path, param, value string) (*user, error) {
	out := &userResponse{}
	query := fmt.Sprintf("%s?%s=%s", path, param, url.QueryEscape(value))
	if err := upstream.GetJSON(ctx, f.hc, f.endpoint, query, out, f.Name()); err != nil {
		return nil, err
	}
	return out.Result.User, nil
}

func (f *Fetcher) verifications(ctx context.Context, fid int64) ([]verification, error) {
	out := &verificationsResponse{}
	query := fmt.Sprintf("%s?fid=%d", verificationsPath, fid)
	if err := upstream.GetJSON(ctx, f.hc, f.endpoint, query, out, f.Name()); err != nil {
		return nil, err
	}
	return out.Result.Verifications, nil
}

// stageAccount builds the batch for one account and returns the distinct
// wallets it touches.
func stageAccount(u *user, verifications []verification) (*store.Batch, []string) {
	now := graph.Now()
	fid := strconv.FormatInt(u.FID, 10)
	accountID := uuid.New()
	account := &graph.Identity{
		UUID:        &accountID,
		Platform:    graph.PlatformFarcaster,
		Identity:    u.Username,
		UID:         fid,
		DisplayName: u.DisplayName,
		ProfileURL:  profileURLBase + u.Username,
		AvatarURL:   u.Pfp.URL,
		AddedAt:     now,
		UpdatedAt:   now,
	}

	batch := store.NewBatch()
	seen := map[string]bool{}
	wallets := make([]string, 0, len(verifications)+1)

	if custody := strings.ToLower(u.CustodyAddress); custody != "" {
		seen[custody] = true
		wallets = append(wallets, custody)
		custodyID := uuid.New()
		holder := &graph.Identity{
			UUID:      &custodyID,
			Platform:  graph.PlatformEthereum,
			Identity:  custody,
			AddedAt:   now,
			UpdatedAt: now,
		}
		hold := &graph.Hold{
			UUID:      uuid.New(),
			Source:    graph.SourceFarcaster,
			ID:        u.Username,
			UpdatedAt: now,
			Fetcher:   graph.FetcherRelationService,
		}
		batch.AddHoldIdentity(hold, holder, account)
	}

	for _, v := range verifications {
		wallet := strings.ToLower(v.Address)
		if wallet == "" || seen[wallet] {
			continue
		}
		seen[wallet] = true
		wallets = append(wallets, wallet)
		signed := graph.FromUnix(v.Timestamp / 1000)
		walletID := uuid.New()
		verified := &graph.Identity{
			UUID:      &walletID,
			Platform:  graph.PlatformEthereum,
			Identity:  wallet,
			AddedAt:   now,
			UpdatedAt: now,
		}
		proof := &graph.Proof{
			UUID:      uuid.New(),
			Source:    graph.SourceFarcaster,
			RecordID:  fid,
			CreatedAt: &signed,
			UpdatedAt: now,
			Fetcher:   graph.FetcherRelationService,
		}
		batch.AddProof(proof, account, verified)
	}
	return batch, wallets
}
