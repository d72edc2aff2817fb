// Package thegraph resolves ENS ownership both ways through the ENS
// subgraph: wallets to the domains they hold, domain names back to the
// wallet they resolve to.
package thegraph

import (
	"context"
	"net/http"
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

var log = logrus.WithField("prefix", "thegraph")

const ensByOwnerQuery = `query EnsByOwnerAddress($addr: String!) {
	domains(where: { owner: $addr }) {
		name
		owner { id }
		resolvedAddress { id }
		registration { expiryDate }
	}
	account(id: $addr) {
		reverseRecord { name }
	}
}`

const walletByNameQuery = `query AddressByENSName($name: String!) {
	domains(where: { name: $name }) {
		name
		owner { id }
		resolvedAddress { id }
		registration { expiryDate }
	}
	transfers(where: { domain_: { name: $name } }) {
		transactionID
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
	Domains   []domain   `json:"domains"`
	Transfers []transfer `json:"transfers"`
	Account   *account   `json:"account"`
}

type domain struct {
	Name            string        `json:"name"`
	Owner           *account      `json:"owner"`
	ResolvedAddress *account      `json:"resolvedAddress"`
	Registration    *registration `json:"registration"`
}

type account struct {
	ID            string  `json:"id"`
	ReverseRecord *domain `json:"reverseRecord"`
}

type registration struct {
	// ExpiryDate is a decimal string of unix seconds.
	ExpiryDate string `json:"expiryDate"`
}

type transfer struct {
	TransactionID string `json:"transactionID"`
}

// Fetcher crawls the ENS subgraph.
type Fetcher struct {
	store    *store.Client
	hc       *http.Client
	endpoint network.Endpoint
}

// New builds an ENS subgraph fetcher against the configured endpoint.
func New(s *store.Client) *Fetcher {
	return &Fetcher{
		store:    s,
		hc:       upstream.NewHTTPClient(),
		endpoint: network.HttpEndpoint(params.RelationUpstreamConfig().TheGraphEndpoint),
	}
}

// Name implements upstream.Fetcher.
func (f *Fetcher) Name() graph.DataSource {
	return graph.SourceTheGraph
}

// CanFetch implements upstream.Fetcher. Wallets are crawled for the domains
// they own, ENS tokens for the wallet behind them.
func (f *Fetcher) CanFetch(target upstream.Target) bool {
	return target.InPlatforms(graph.PlatformEthereum) || target.InNFTs(graph.CategoryENS)
}

// Fetch implements upstream.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, target upstream.Target) ([]upstream.Target, error) {
	if target.Kind == upstream.TargetNFT {
		return f.fetchWalletByName(ctx, target.ID)
	}
	return f.fetchDomainsByWallet(ctx, target.Identity)
}

// fetchDomainsByWallet persists ownership of every domain held by the
// wallet and schedules each domain for its own crawl.
func (f *Fetcher) fetchDomainsByWallet(ctx context.Context, wallet string) ([]upstream.Target, error) {
	wallet = strings.ToLower(wallet)
	data, err := f.query(ctx, ensByOwnerQuery, map[string]string{"addr": wallet})
	if err != nil {
		return nil, err
	}
	if len(data.Domains) == 0 {
		log.WithField("wallet", wallet).Debug("Wallet holds no ENS domains")
		return nil, nil
	}
	primary := ""
	if data.Account != nil && data.Account.ReverseRecord != nil {
		primary = data.Account.ReverseRecord.Name
	}
	batch := store.NewBatch()
	next := make([]upstream.Target, 0, len(data.Domains))
	for _, d := range data.Domains {
		if d.Name == "" {
			continue
		}
		stageDomain(batch, d, wallet, "", primary)
		next = append(next, upstream.NewNFT(
			graph.ChainEthereum,
			graph.CategoryENS,
			graph.CategoryENS.DefaultContractAddress(),
			d.Name,
		))
	}
	if err := f.store.UpsertGraph(ctx, batch); err != nil {
		return nil, err
	}
	return next, nil
}

// fetchWalletByName persists the ownership and resolution of one domain and
// schedules the wallets it touches.
func (f *Fetcher) fetchWalletByName(ctx context.Context, name string) ([]upstream.Target, error) {
	data, err := f.query(ctx, walletByNameQuery, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	if len(data.Domains) == 0 {
		log.WithField("name", name).Debug("Unknown ENS domain")
		return nil, nil
	}
	d := data.Domains[0]
	if d.Owner == nil || d.Owner.ID == "" {
		return nil, nil
	}
	tx := ""
	if len(data.Transfers) > 0 {
		tx = data.Transfers[0].TransactionID
	}
	batch := store.NewBatch()
	stageDomain(batch, d, strings.ToLower(d.Owner.ID), tx, "")
	if err := f.store.UpsertGraph(ctx, batch); err != nil {
		return nil, err
	}
	next := []upstream.Target{upstream.NewIdentity(graph.PlatformEthereum, d.Owner.ID)}
	if d.ResolvedAddress != nil && !strings.EqualFold(d.ResolvedAddress.ID, d.Owner.ID) {
		next = append(next, upstream.NewIdentity(graph.PlatformEthereum, d.ResolvedAddress.ID))
	}
	return next, nil
}

func (f *Fetcher) query(ctx context.Context, query string, vars map[string]string) (*queryData, error) {
	out := &queryResponse{}
	req := &graphQLRequest{Query: query, Variables: vars}
	if err := upstream.PostJSON(ctx, f.hc, f.endpoint, "", req, out, f.Name()); err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		return nil, &graph.UpstreamError{Upstream: f.Name().String(), Message: out.Errors[0].Message}
	}
	return &out.Data, nil
}

// stageDomain stages everything one domain asserts: the wallet's hold on the
// ENS token and on the domain identity, the reverse record when the domain is
// the wallet's primary name, and the forward resolution when the name points
// at an address.
func stageDomain(batch *store.Batch, d domain, owner, tx, primaryName string) {
	now := graph.Now()
	expiry := expiryOf(d)
	ownerID := uuid.New()
	nameID := uuid.New()
	isPrimary := primaryName != "" && strings.EqualFold(d.Name, primaryName)
	registrar := &graph.Contract{
		UUID:      uuid.New(),
		Category:  graph.CategoryENS,
		Chain:     graph.CategoryENS.DefaultChain(),
		Address:   graph.CategoryENS.DefaultContractAddress(),
		UpdatedAt: now,
	}
	wallet := &graph.Identity{
		UUID:      &ownerID,
		Platform:  graph.PlatformEthereum,
		Identity:  owner,
		AddedAt:   now,
		UpdatedAt: now,
	}
	domainIdentity := &graph.Identity{
		UUID:      &nameID,
		Platform:  registrar.Category.PlatformOf(),
		Identity:  d.Name,
		AddedAt:   now,
		UpdatedAt: now,
		ExpiredAt: expiry,
		Reverse:   isPrimary,
	}
	hold := &graph.Hold{
		UUID:        uuid.New(),
		Source:      graph.SourceTheGraph,
		ID:          d.Name,
		Transaction: tx,
		UpdatedAt:   now,
		Fetcher:     graph.FetcherRelationService,
		ExpiredAt:   expiry,
	}
	batch.AddHoldContract(hold, wallet, registrar)
	batch.AddHoldIdentity(hold, wallet, domainIdentity)

	if isPrimary {
		reverse := &graph.Resolve{
			UUID:      uuid.New(),
			Source:    graph.SourceTheGraph,
			System:    graph.SystemENS,
			Name:      d.Name,
			Fetcher:   graph.FetcherRelationService,
			UpdatedAt: now,
		}
		batch.AddReverseResolveContract(reverse, wallet, registrar)
	}

	if d.ResolvedAddress == nil || d.ResolvedAddress.ID == "" {
		return
	}
	resolvedID := uuid.New()
	resolved := &graph.Identity{
		UUID:      &resolvedID,
		Platform:  graph.PlatformEthereum,
		Identity:  strings.ToLower(d.ResolvedAddress.ID),
		AddedAt:   now,
		UpdatedAt: now,
	}
	resolve := &graph.Resolve{
		UUID:      uuid.New(),
		Source:    graph.SourceTheGraph,
		System:    graph.SystemENS,
		Name:      d.Name,
		Fetcher:   graph.FetcherRelationService,
		UpdatedAt: now,
	}
	batch.AddResolve(resolve, domainIdentity, resolved)
	batch.AddResolveContract(resolve, registrar, resolved)
}

func expiryOf(d domain) *graph.DateTime {
	if d.Registration == nil || d.Registration.ExpiryDate == "" {
		return nil
	}
	ts, err := strconv.ParseInt(d.Registration.ExpiryDate, 10, 64)
	if err != nil {
		log.WithField("expiryDate", d.Registration.ExpiryDate).Debug("Unparseable registration expiry")
		return nil
	}
	expiry := graph.FromUnix(ts)
	return &expiry
}
