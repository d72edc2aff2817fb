package graph

import (
	"github.com/google/uuid"
)

// Resolve is a directed name-resolution edge. Forward resolves point a name
// at a wallet, reverse resolves mark a wallet's primary domain.
type Resolve struct {
	UUID   uuid.UUID        `json:"uuid"`
	Source DataSource       `json:"source"`
	System DomainNameSystem `json:"system"`
	// Name is the domain being resolved, e.g. vitalik.eth.
	Name      string      `json:"name"`
	Fetcher   DataFetcher `json:"fetcher"`
	UpdatedAt DateTime    `json:"updated_at"`
	// Reverse marks the primary-domain sense of the edge.
	Reverse bool `json:"reverse,omitempty"`
}

// IsOutdated reports whether the edge is past its freshness window.
func (r *Resolve) IsOutdated() bool {
	return outdated(r.UpdatedAt, KindResolve)
}

// ResolveRecord is a Resolve as stored, with its endpoints.
type ResolveRecord struct {
	EdgeMeta
	Resolve
}

func (r *ResolveRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		EdgeMeta
		Attributes Resolve `json:"attributes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.EdgeMeta = raw.EdgeMeta
	r.Resolve = raw.Attributes
	return nil
}

// ResolveEdge is the enriched projection served by the ens and dotbit
// queries: the resolve record plus the wallet it resolves to and the wallet
// owning the name.
type ResolveEdge struct {
	ResolveRecord
	Resolved *IdentityRecord
	Owner    *IdentityRecord
}
