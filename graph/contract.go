package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// ContractVertexType is the vertex name in the graph database schema.
const ContractVertexType = "Contracts"

// Contract is an on-chain contract vertex: an NFT collection, the ENS
// registrar, a POAP event contract.
type Contract struct {
	UUID     uuid.UUID        `json:"uuid"`
	Category ContractCategory `json:"category"`
	Chain    Chain            `json:"chain"`
	Address  string           `json:"address"`
	Symbol   string           `json:"symbol,omitempty"`
	// UpdatedAt is bumped on every refetch. The store keeps the max.
	UpdatedAt DateTime `json:"updated_at"`
}

// PrimaryKey is the composite store key.
func (c *Contract) PrimaryKey() string {
	return fmt.Sprintf("%s,%s", c.Chain, c.Address)
}

// VertexType implements the vertex contract.
func (c *Contract) VertexType() string {
	return ContractVertexType
}

// IsOutdated reports whether the record is past its freshness window.
func (c *Contract) IsOutdated() bool {
	return outdated(c.UpdatedAt, KindContract)
}

// ContractRecord is a Contract as stored, with its assigned vertex id.
type ContractRecord struct {
	VID string
	Contract
}

func (r *ContractRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		VID        string   `json:"v_id"`
		Attributes Contract `json:"attributes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.VID = raw.VID
	r.Contract = raw.Attributes
	return nil
}
