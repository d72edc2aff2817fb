package graph

import (
	"github.com/google/uuid"
)

// Hold is an ownership edge: Identity to Contract for NFTs, Identity to
// Identity for held domain names.
type Hold struct {
	UUID   uuid.UUID  `json:"uuid"`
	Source DataSource `json:"source"`
	// ID is the concrete holding, an ENS name or an NFT token id.
	ID string `json:"id"`
	// Transaction is the acquiring transaction, when the source reports one.
	Transaction string      `json:"transaction,omitempty"`
	CreatedAt   *DateTime   `json:"created_at,omitempty"`
	UpdatedAt   DateTime    `json:"updated_at"`
	Fetcher     DataFetcher `json:"fetcher"`
	// ExpiredAt is the registration expiry for held domain names.
	ExpiredAt *DateTime `json:"expired_at,omitempty"`
}

// IsOutdated reports whether the edge is past its freshness window.
func (h *Hold) IsOutdated() bool {
	return outdated(h.UpdatedAt, KindHold)
}

// HoldRecord is a Hold as stored, with its endpoints.
type HoldRecord struct {
	EdgeMeta
	Hold
}

func (r *HoldRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		EdgeMeta
		Attributes Hold `json:"attributes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.EdgeMeta = raw.EdgeMeta
	r.Hold = raw.Attributes
	return nil
}
