package store

import (
	"github.com/nextdotid/relationservice/graph"
)

// OpCode selects the per-attribute merge behavior the graph store applies
// when an upserted vertex or edge already exists. An empty op overwrites.
type OpCode string

const (
	OpIgnoreIfExists OpCode = "ignore_if_exists"
	OpMax            OpCode = "max"
	OpOr             OpCode = "or"
)

// Attribute is a single attribute value with its merge op.
type Attribute struct {
	Value interface{} `json:"value"`
	Op    OpCode      `json:"op,omitempty"`
}

// AttributeMap holds the attributes of one vertex or edge keyed by name.
type AttributeMap map[string]Attribute

// edgeList nests edge attribute maps the way the store's bulk endpoint
// expects them: from_type -> from_id -> edge_type -> to_type -> to_id.
type edgeList map[string]map[string]map[string]map[string]map[string]AttributeMap

// Batch accumulates vertices and edges destined for a single bulk upsert.
// Within one batch, later additions of the same vertex or edge key replace
// earlier ones; merge semantics against persisted data come from the ops.
type Batch struct {
	Vertices map[string]map[string]AttributeMap `json:"vertices,omitempty"`
	Edges    edgeList                           `json:"edges,omitempty"`
}

// NewBatch returns an empty upsert batch.
func NewBatch() *Batch {
	return &Batch{
		Vertices: make(map[string]map[string]AttributeMap),
		Edges:    make(edgeList),
	}
}

// Empty returns true if nothing has been added to the batch.
func (b *Batch) Empty() bool {
	return len(b.Vertices) == 0 && len(b.Edges) == 0
}

func (b *Batch) addVertex(vertexType, vid string, attrs AttributeMap) {
	byID, ok := b.Vertices[vertexType]
	if !ok {
		byID = make(map[string]AttributeMap)
		b.Vertices[vertexType] = byID
	}
	byID[vid] = attrs
}

func (b *Batch) addEdge(fromType, fromID, edgeType, toType, toID string, attrs AttributeMap) {
	byFrom, ok := b.Edges[fromType]
	if !ok {
		byFrom = make(map[string]map[string]map[string]map[string]AttributeMap)
		b.Edges[fromType] = byFrom
	}
	byEdge, ok := byFrom[fromID]
	if !ok {
		byEdge = make(map[string]map[string]map[string]AttributeMap)
		byFrom[fromID] = byEdge
	}
	byToType, ok := byEdge[edgeType]
	if !ok {
		byToType = make(map[string]map[string]AttributeMap)
		byEdge[edgeType] = byToType
	}
	byTo, ok := byToType[toType]
	if !ok {
		byTo = make(map[string]AttributeMap)
		byToType[toType] = byTo
	}
	byTo[toID] = attrs
}

// AddIdentity stages an identity vertex. Immutable fields keep their first
// persisted value, profile fields overwrite only when the fetch produced
// them, and updated_at never moves backwards.
func (b *Batch) AddIdentity(i *graph.Identity) {
	vid := i.PrimaryKey()
	attrs := AttributeMap{
		"id":       {Value: vid, Op: OpIgnoreIfExists},
		"platform": {Value: i.Platform, Op: OpIgnoreIfExists},
		"identity": {Value: i.Identity, Op: OpIgnoreIfExists},
		"added_at": {Value: i.AddedAt, Op: OpIgnoreIfExists},
	}
	if i.UUID != nil {
		attrs["uuid"] = Attribute{Value: i.UUID, Op: OpIgnoreIfExists}
	}
	if i.CreatedAt != nil {
		attrs["created_at"] = Attribute{Value: i.CreatedAt, Op: OpIgnoreIfExists}
	}
	if i.UID != "" {
		attrs["uid"] = Attribute{Value: i.UID}
	}
	if i.DisplayName != "" {
		attrs["display_name"] = Attribute{Value: i.DisplayName}
	}
	if i.ProfileURL != "" {
		attrs["profile_url"] = Attribute{Value: i.ProfileURL}
	}
	if i.AvatarURL != "" {
		attrs["avatar_url"] = Attribute{Value: i.AvatarURL}
	}
	if i.ExpiredAt != nil {
		attrs["expired_at"] = Attribute{Value: i.ExpiredAt}
	}
	if i.Platform.IsDomainSystem() {
		attrs["reverse"] = Attribute{Value: i.Reverse, Op: OpOr}
	}
	attrs["updated_at"] = Attribute{Value: i.UpdatedAt, Op: OpMax}
	b.addVertex(graph.IdentityVertexType, vid, attrs)
}

// AddContract stages a contract vertex.
func (b *Batch) AddContract(c *graph.Contract) {
	vid := c.PrimaryKey()
	attrs := AttributeMap{
		"id":         {Value: vid, Op: OpIgnoreIfExists},
		"uuid":       {Value: c.UUID, Op: OpIgnoreIfExists},
		"category":   {Value: c.Category, Op: OpIgnoreIfExists},
		"address":    {Value: c.Address, Op: OpIgnoreIfExists},
		"chain":      {Value: c.Chain, Op: OpIgnoreIfExists},
		"updated_at": {Value: c.UpdatedAt, Op: OpMax},
	}
	if c.Symbol != "" {
		attrs["symbol"] = Attribute{Value: c.Symbol}
	}
	b.addVertex(graph.ContractVertexType, vid, attrs)
}

func proofAttributes(p *graph.Proof) AttributeMap {
	attrs := AttributeMap{
		"uuid":       {Value: p.UUID, Op: OpIgnoreIfExists},
		"source":     {Value: p.Source},
		"fetcher":    {Value: p.Fetcher},
		"updated_at": {Value: p.UpdatedAt, Op: OpMax},
	}
	if p.CreatedAt != nil {
		attrs["created_at"] = Attribute{Value: p.CreatedAt, Op: OpIgnoreIfExists}
	}
	if p.RecordID != "" {
		attrs["record_id"] = Attribute{Value: p.RecordID}
	}
	return attrs
}

// AddProof stages a two-way proof connection between identities. Both
// directions are written so traversals never depend on edge orientation.
func (b *Batch) AddProof(p *graph.Proof, from, to *graph.Identity) {
	b.AddIdentity(from)
	b.AddIdentity(to)
	attrs := proofAttributes(p)
	b.addEdge(graph.IdentityVertexType, from.PrimaryKey(), graph.EdgeProofForward, graph.IdentityVertexType, to.PrimaryKey(), attrs)
	b.addEdge(graph.IdentityVertexType, to.PrimaryKey(), graph.EdgeProofBackward, graph.IdentityVertexType, from.PrimaryKey(), attrs)
}

func holdAttributes(h *graph.Hold) AttributeMap {
	attrs := AttributeMap{
		"uuid":       {Value: h.UUID, Op: OpIgnoreIfExists},
		"source":     {Value: h.Source},
		"id":         {Value: h.ID},
		"fetcher":    {Value: h.Fetcher},
		"updated_at": {Value: h.UpdatedAt, Op: OpMax},
	}
	if h.CreatedAt != nil {
		attrs["created_at"] = Attribute{Value: h.CreatedAt, Op: OpIgnoreIfExists}
	}
	if h.Transaction != "" {
		attrs["transaction"] = Attribute{Value: h.Transaction}
	}
	if h.ExpiredAt != nil {
		attrs["expired_at"] = Attribute{Value: h.ExpiredAt}
	}
	return attrs
}

// AddHoldIdentity stages ownership of a domain-style identity by a wallet.
func (b *Batch) AddHoldIdentity(h *graph.Hold, from, to *graph.Identity) {
	b.AddIdentity(from)
	b.AddIdentity(to)
	b.addEdge(graph.IdentityVertexType, from.PrimaryKey(), graph.EdgeHoldIdentity, graph.IdentityVertexType, to.PrimaryKey(), holdAttributes(h))
}

// AddHoldContract stages ownership of an NFT under a contract by a wallet.
func (b *Batch) AddHoldContract(h *graph.Hold, from *graph.Identity, to *graph.Contract) {
	b.AddIdentity(from)
	b.AddContract(to)
	b.addEdge(graph.IdentityVertexType, from.PrimaryKey(), graph.EdgeHoldContract, graph.ContractVertexType, to.PrimaryKey(), holdAttributes(h))
}

func resolveAttributes(r *graph.Resolve, reverse bool) AttributeMap {
	return AttributeMap{
		"uuid":       {Value: r.UUID, Op: OpIgnoreIfExists},
		"source":     {Value: r.Source},
		"system":     {Value: r.System},
		"name":       {Value: r.Name},
		"fetcher":    {Value: r.Fetcher},
		"reverse":    {Value: reverse},
		"updated_at": {Value: r.UpdatedAt, Op: OpMax},
	}
}

// AddResolve stages a forward resolution from a domain identity to the
// identity its name points at.
func (b *Batch) AddResolve(r *graph.Resolve, from, to *graph.Identity) {
	b.AddIdentity(from)
	b.AddIdentity(to)
	b.addEdge(graph.IdentityVertexType, from.PrimaryKey(), graph.EdgeResolve, graph.IdentityVertexType, to.PrimaryKey(), resolveAttributes(r, false))
}

// AddReverseResolve stages a wallet's primary-domain record.
func (b *Batch) AddReverseResolve(r *graph.Resolve, from, to *graph.Identity) {
	b.AddIdentity(from)
	b.AddIdentity(to)
	b.addEdge(graph.IdentityVertexType, from.PrimaryKey(), graph.EdgeReverseResolve, graph.IdentityVertexType, to.PrimaryKey(), resolveAttributes(r, true))
}

// AddResolveContract stages a forward resolution from a name-service
// contract to the identity the name points at.
func (b *Batch) AddResolveContract(r *graph.Resolve, from *graph.Contract, to *graph.Identity) {
	b.AddContract(from)
	b.AddIdentity(to)
	b.addEdge(graph.ContractVertexType, from.PrimaryKey(), graph.EdgeResolveContract, graph.IdentityVertexType, to.PrimaryKey(), resolveAttributes(r, false))
}

// AddReverseResolveContract stages a wallet's primary-domain record held
// under a name-service contract.
func (b *Batch) AddReverseResolveContract(r *graph.Resolve, from *graph.Identity, to *graph.Contract) {
	b.AddIdentity(from)
	b.AddContract(to)
	b.addEdge(graph.IdentityVertexType, from.PrimaryKey(), graph.EdgeReverseResolveContract, graph.ContractVertexType, to.PrimaryKey(), resolveAttributes(r, true))
}
