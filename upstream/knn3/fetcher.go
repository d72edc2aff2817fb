// Package knn3 pulls ENS holdings for a wallet from the KNN3 network
// graph, including which domain the wallet has set as its primary name.
package knn3

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

var log = logrus.WithField("prefix", "knn3")

const ensByAddressQuery = `query EnsByAddress($addr: String!) {
	addrs(where: { address: $addr }) {
		ens
		primaryEns
	}
}`

type graphQLRequest struct {
	Query     string      `json:"query"`
	Variables interface{} `json:"variables,omitempty"`
}

type queryResponse struct {
	Data   queryData    `json:"data"`
	Errors []queryError `json:"errors,omitempty"`
}

type queryError struct {
	Message string `json:"message"`
}

type queryData struct {
	Addrs []addr `json:"addrs"`
}

type addr struct {
	ENS        []string `json:"ens"`
	PrimaryENS string   `json:"primaryEns"`
}

// Fetcher crawls the KNN3 address graph.
type Fetcher struct {
	store    *store.Client
	hc       *http.Client
	endpoint network.Endpoint
}

// New builds a KNN3 fetcher against the configured endpoint.
func New(s *store.Client) *Fetcher {
	return &Fetcher{
		store:    s,
		hc:       upstream.NewHTTPClient(),
		endpoint: network.HttpEndpoint(params.RelationUpstreamConfig().KNN3Endpoint),
	}
}

// Name implements upstream.Fetcher.
func (f *Fetcher) Name() graph.DataSource {
	return graph.SourceKnn3
}

// CanFetch implements upstream.Fetcher. KNN3 is only queryable by wallet.
func (f *Fetcher) CanFetch(target upstream.Target) bool {
	return target.InPlatforms(graph.PlatformEthereum)
}

// Fetch implements upstream.Fetcher. Every domain held by the wallet is
// persisted, the primary one additionally as the wallet's reverse record,
// and each domain is scheduled for its own crawl.
func (f *Fetcher) Fetch(ctx context.Context, target upstream.Target) ([]upstream.Target, error) {
	wallet := strings.ToLower(target.Identity)
	out := &queryResponse{}
	req := &graphQLRequest{Query: ensByAddressQuery, Variables: map[string]string{"addr": wallet}}
	if err := upstream.PostJSON(ctx, f.hc, f.endpoint, "", req, out, f.Name()); err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		return nil, &graph.UpstreamError{Upstream: f.Name().String(), Message: out.Errors[0].Message}
	}
	if len(out.Data.Addrs) == 0 || len(out.Data.Addrs[0].ENS) == 0 {
		log.WithField("wallet", wallet).Debug("Wallet unknown to KNN3")
		return nil, nil
	}
	record := out.Data.Addrs[0]

	now := graph.Now()
	walletID := uuid.New()
	holder := &graph.Identity{
		UUID:      &walletID,
		Platform:  graph.PlatformEthereum,
		Identity:  wallet,
		AddedAt:   now,
		UpdatedAt: now,
	}
	batch := store.NewBatch()
	next := make([]upstream.Target, 0, len(record.ENS))
	for _, name := range record.ENS {
		if name == "" {
			continue
		}
		primary := strings.EqualFold(name, record.PrimaryENS)
		nameID := uuid.New()
		domainIdentity := &graph.Identity{
			UUID:      &nameID,
			Platform:  graph.PlatformENS,
			Identity:  name,
			AddedAt:   now,
			UpdatedAt: now,
			Reverse:   primary,
		}
		hold := &graph.Hold{
			UUID:      uuid.New(),
			Source:    graph.SourceKnn3,
			ID:        name,
			UpdatedAt: now,
			Fetcher:   graph.FetcherRelationService,
		}
		batch.AddHoldIdentity(hold, holder, domainIdentity)
		if primary {
			resolve := &graph.Resolve{
				UUID:      uuid.New(),
				Source:    graph.SourceKnn3,
				System:    graph.SystemENS,
				Name:      name,
				Fetcher:   graph.FetcherRelationService,
				UpdatedAt: now,
			}
			batch.AddReverseResolve(resolve, holder, domainIdentity)
		}
		next = append(next, upstream.TargetFor(graph.PlatformENS, name))
	}
	if err := f.store.UpsertGraph(ctx, batch); err != nil {
		return nil, err
	}
	return next, nil
}
