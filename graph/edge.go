package graph

import (
	"fmt"
	"strings"
)

// Edge names in the graph database schema. Proof and Resolve edges are
// materialized in both directions, Hold edges by the kind of vertex held.
const (
	EdgeProofForward           = "Proof_Forward"
	EdgeProofBackward          = "Proof_Backward"
	EdgeHoldIdentity           = "Hold_Identity"
	EdgeHoldContract           = "Hold_Contract"
	EdgeResolve                = "Resolve"
	EdgeReverseResolve         = "Reverse_Resolve"
	EdgeResolveContract        = "Resolve_Contract"
	EdgeReverseResolveContract = "Reverse_Resolve_Contract"
)

// EdgeMeta carries the endpoints the graph database reports with every edge.
type EdgeMeta struct {
	EType    string `json:"e_type"`
	Directed bool   `json:"directed"`
	FromID   string `json:"from_id"`
	FromType string `json:"from_type"`
	ToID     string `json:"to_id"`
	ToType   string `json:"to_type"`
}

// EdgeUnion is one edge of a topology traversal. Exactly one member is set,
// discriminated by the edge type name.
type EdgeUnion struct {
	Proof   *ProofRecord
	Hold    *HoldRecord
	Resolve *ResolveRecord
}

func (u *EdgeUnion) UnmarshalJSON(data []byte) error {
	var head struct {
		EType string `json:"e_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	switch {
	case strings.HasPrefix(head.EType, "Proof"):
		u.Proof = new(ProofRecord)
		return json.Unmarshal(data, u.Proof)
	case strings.HasPrefix(head.EType, "Hold"):
		u.Hold = new(HoldRecord)
		return json.Unmarshal(data, u.Hold)
	case strings.Contains(head.EType, "Resolve"):
		u.Resolve = new(ResolveRecord)
		return json.Unmarshal(data, u.Resolve)
	default:
		return fmt.Errorf("unknown edge type %q", head.EType)
	}
}
