package graph

// IdentityGraph is the subgraph projection around one identity: the origin
// vertex together with everything reachable from it, plus the edges between
// them. Unlike the neighbor listing, the origin itself is included.
type IdentityGraph struct {
	Vertices []IdentityRecord `json:"vertices"`
	Edges    []EdgeUnion      `json:"edges"`
}
