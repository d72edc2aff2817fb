// Package rss3 ingests NFT acquisitions from the RSS3 activity feed and
// persists them as holdings of the receiving wallet.
package rss3

import (
	"context"
	"fmt"
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

var log = logrus.WithField("prefix", "rss3")

// notesTag narrows the feed to NFT transfer notes.
const notesTag = "NFT"

type notesResponse struct {
	Total int64  `json:"total"`
	List  []note `json:"list"`
}

type note struct {
	DateCreated graph.DateTime `json:"date_created"`
	Metadata    noteMetadata   `json:"metadata"`
}

type noteMetadata struct {
	CollectionAddress string `json:"collection_address"`
	CollectionName    string `json:"collection_name"`
	From              string `json:"from"`
	Network           string `json:"network"`
	Proof             string `json:"proof"`
	To                string `json:"to"`
	TokenID           string `json:"token_id"`
	TokenStandard     string `json:"token_standard"`
	TokenSymbol       string `json:"token_symbol"`
}

// chains maps the feed's network names onto graph chains.
var chains = map[string]graph.Chain{
	"ethereum":            graph.ChainEthereum,
	"polygon":             graph.ChainPolygon,
	"bnb":                 graph.ChainBSC,
	"binance_smart_chain": graph.ChainBSC,
	"gnosis":              graph.ChainGnosis,
	"xdai":                graph.ChainGnosis,
	"arbitrum":            graph.ChainArbitrum,
}

// Fetcher crawls the RSS3 notes feed.
type Fetcher struct {
	store    *store.Client
	hc       *http.Client
	endpoint network.Endpoint
}

// New builds an RSS3 fetcher against the configured endpoint.
func New(s *store.Client) *Fetcher {
	return &Fetcher{
		store:    s,
		hc:       upstream.NewHTTPClient(),
		endpoint: network.HttpEndpoint(params.RelationUpstreamConfig().RSS3Endpoint),
	}
}

// Name implements upstream.Fetcher.
func (f *Fetcher) Name() graph.DataSource {
	return graph.SourceRss3
}

// CanFetch implements upstream.Fetcher. The feed is keyed by wallet.
func (f *Fetcher) CanFetch(target upstream.Target) bool {
	return target.InPlatforms(graph.PlatformEthereum)
}

// Fetch implements upstream.Fetcher. Notes where the wallet is the receiver
// become holdings of the note's token. The feed names no further identities,
// so there are no follow-up targets.
func (f *Fetcher) Fetch(ctx context.Context, target upstream.Target) ([]upstream.Target, error) {
	account := strings.ToLower(target.Identity)
	path := fmt.Sprintf("/account:%s@%s/notes?tags=%s", account, graph.ChainFromPlatform(target.Platform), notesTag)
	out := &notesResponse{}
	if err := upstream.GetJSON(ctx, f.hc, f.endpoint, path, out, f.Name()); err != nil {
		return nil, err
	}
	if out.Total == 0 {
		log.WithField("account", account).Debug("No notes in the RSS3 feed")
		return nil, nil
	}

	now := graph.Now()
	walletID := uuid.New()
	holder := &graph.Identity{
		UUID:      &walletID,
		Platform:  graph.PlatformEthereum,
		Identity:  account,
		AddedAt:   now,
		UpdatedAt: now,
	}
	batch := store.NewBatch()
	staged := 0
	for _, n := range out.List {
		if !strings.EqualFold(n.Metadata.To, account) {
			continue
		}
		if stageNote(batch, holder, n, now) {
			staged++
		}
	}
	if batch.Empty() {
		return nil, nil
	}
	if err := f.store.UpsertGraph(ctx, batch); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"account":  account,
		"holdings": staged,
	}).Debug("Persisted RSS3 holdings")
	return nil, nil
}

// stageNote stages one acquisition as a hold on the note's contract. Notes
// on unrecognized networks or token standards are skipped.
func stageNote(batch *store.Batch, holder *graph.Identity, n note, now graph.DateTime) bool {
	if n.Metadata.CollectionAddress == "" {
		return false
	}
	chain, ok := chains[strings.ToLower(n.Metadata.Network)]
	if !ok {
		log.WithField("network", n.Metadata.Network).Debug("Skipping note on unrecognized network")
		return false
	}
	category := categoryOf(n.Metadata)
	if category == graph.CategoryUnknown {
		log.WithField("tokenStandard", n.Metadata.TokenStandard).Debug("Skipping note with unrecognized token standard")
		return false
	}
	created := n.DateCreated
	contract := &graph.Contract{
		UUID:      uuid.New(),
		Category:  category,
		Chain:     chain,
		Address:   strings.ToLower(n.Metadata.CollectionAddress),
		Symbol:    n.Metadata.TokenSymbol,
		UpdatedAt: now,
	}
	hold := &graph.Hold{
		UUID:        uuid.New(),
		Source:      graph.SourceRss3,
		ID:          n.Metadata.TokenID,
		Transaction: n.Metadata.Proof,
		CreatedAt:   &created,
		UpdatedAt:   now,
		Fetcher:     graph.FetcherRelationService,
	}
	batch.AddHoldContract(hold, holder, contract)
	return true
}

func categoryOf(m noteMetadata) graph.ContractCategory {
	if strings.EqualFold(m.CollectionName, "POAP") {
		return graph.CategoryPOAP
	}
	switch strings.ToUpper(strings.ReplaceAll(m.TokenStandard, "-", "")) {
	case "ERC721":
		return graph.CategoryERC721
	case "ERC1155":
		return graph.CategoryERC1155
	default:
		return graph.CategoryUnknown
	}
}
