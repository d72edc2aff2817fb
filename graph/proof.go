package graph

import (
	"github.com/google/uuid"
)

// Proof is an Identity to Identity edge asserting that one upstream
// witnessed both identities belonging to the same person.
type Proof struct {
	UUID   uuid.UUID  `json:"uuid"`
	Source DataSource `json:"source"`
	// RecordID locates the claim on the upstream platform, if it has an id.
	RecordID  string      `json:"record_id,omitempty"`
	CreatedAt *DateTime   `json:"created_at,omitempty"`
	UpdatedAt DateTime    `json:"updated_at"`
	Fetcher   DataFetcher `json:"fetcher"`
}

// IsOutdated reports whether the edge is past its freshness window.
func (p *Proof) IsOutdated() bool {
	return outdated(p.UpdatedAt, KindProof)
}

// ProofRecord is a Proof as stored, with its endpoints.
type ProofRecord struct {
	EdgeMeta
	Proof
}

func (r *ProofRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		EdgeMeta
		Attributes Proof `json:"attributes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.EdgeMeta = raw.EdgeMeta
	r.Proof = raw.Attributes
	return nil
}
