package store

import (
	"github.com/nextdotid/relationservice/graph"
)

// BaseResponse is the error envelope every store response carries.
type BaseResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (b *BaseResponse) base() *BaseResponse {
	return b
}

// envelope is satisfied by every response type embedding BaseResponse.
type envelope interface {
	base() *BaseResponse
}

type echoResponse struct {
	BaseResponse
}

type upsertResponse struct {
	BaseResponse
	Results []upsertResult `json:"results"`
}

type upsertResult struct {
	AcceptedVertices int `json:"accepted_vertices"`
	AcceptedEdges    int `json:"accepted_edges"`
}

type deleteResponse struct {
	BaseResponse
	Results deleteResult `json:"results"`
}

type deleteResult struct {
	DeletedVertices int    `json:"deleted_vertices"`
	VType           string `json:"v_type"`
}

type identityResponse struct {
	BaseResponse
	Results []graph.IdentityRecord `json:"results"`
}

type contractResponse struct {
	BaseResponse
	Results []graph.ContractRecord `json:"results"`
}

type sourceVertexSet struct {
	Vertices []graph.IdentityWithSource `json:"vertices"`
}

type neighborsWithSourceResponse struct {
	BaseResponse
	Results []sourceVertexSet `json:"results"`
}

type edgeSet struct {
	Edges []graph.EdgeUnion `json:"edges"`
}

type edgesResponse struct {
	BaseResponse
	Results []edgeSet `json:"results"`
}

type vertexSet struct {
	Vertices []graph.IdentityRecord `json:"vertices"`
}

type identityGraphResponse struct {
	BaseResponse
	Results []graph.IdentityGraph `json:"results"`
}

type verticesResponse struct {
	BaseResponse
	Results []vertexSet `json:"results"`
}

type reverseRecordSet struct {
	ReverseRecords []graph.ResolveRecord `json:"reverse_records"`
}

type reverseDomainsResponse struct {
	BaseResponse
	Results []reverseRecordSet `json:"results"`
}

type ownerSet struct {
	Owner []graph.IdentityRecord `json:"owner"`
}

type ownedByResponse struct {
	BaseResponse
	Results []ownerSet `json:"results"`
}

type holdEdgeSet struct {
	Edges []graph.HoldRecord `json:"edges"`
}

type nftsResponse struct {
	BaseResponse
	Results []holdEdgeSet `json:"results"`
}

type domainResolveSet struct {
	Record   []graph.ResolveRecord  `json:"record"`
	Resolved []graph.IdentityRecord `json:"resolved"`
	Owner    []graph.IdentityRecord `json:"owner"`
}

type domainResolveResponse struct {
	BaseResponse
	Results []domainResolveSet `json:"results"`
}
