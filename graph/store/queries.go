package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/nextdotid/relationservice/graph"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// Installed traversal queries published on the graph database. Each has a
// fixed parameter shape; changing one requires reinstalling the query.
const (
	queryNeighborsWithSource = "neighbors_with_source_reverse"
	queryNeighbors           = "neighbors"
	queryIdentityGraph       = "identity_graph"
	queryIdentityBySource    = "identity_by_source"
	queryReverseDomains      = "reverse_domains"
	queryIdentityOwnedBy     = "identity_owned_by"
	queryNFTs                = "nfts"
	queryIdentitiesByIDs     = "identities_by_ids"
	queryEdgeByUUID          = "edge_by_uuid"
	queryDomainResolve       = "domain_resolve"
)

func (c *Client) queryPath(name string) string {
	return fmt.Sprintf("/query/%s/%s", c.graph, name)
}

func (c *Client) verticesPath(vertexType string) string {
	return fmt.Sprintf("/graph/%s/vertices/%s", c.graph, vertexType)
}

// reverseFlag maps the tri-state reverse filter onto the wire form the
// traversal queries take: 0 no filter, 1 primary-domain edges only, 2 the
// complement.
func reverseFlag(reverse *bool) int {
	switch {
	case reverse == nil:
		return 0
	case *reverse:
		return 1
	default:
		return 2
	}
}

// Echo probes the graph database. Used as a liveness check by the store
// service.
func (c *Client) Echo(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "store.Echo")
	defer span.End()
	out := &echoResponse{}
	return c.get(ctx, "/echo", nil, out, "echo")
}

// UpsertGraph writes a batch of vertices and edges in one round trip. The
// per-attribute ops carried by the batch make replays idempotent.
func (c *Client) UpsertGraph(ctx context.Context, b *Batch) error {
	ctx, span := trace.StartSpan(ctx, "store.UpsertGraph")
	defer span.End()
	if b == nil || b.Empty() {
		return nil
	}
	out := &upsertResponse{}
	if err := c.post(ctx, fmt.Sprintf("/graph/%s", c.graph), b, out, "upsert_graph"); err != nil {
		return err
	}
	for _, res := range out.Results {
		log.WithFields(logrus.Fields{
			"vertices": res.AcceptedVertices,
			"edges":    res.AcceptedEdges,
		}).Debug("Upserted graph batch")
	}
	return nil
}

// FindIdentityByID looks an identity vertex up by its primary key.
func (c *Client) FindIdentityByID(ctx context.Context, vid string) (*graph.IdentityRecord, error) {
	ctx, span := trace.StartSpan(ctx, "store.FindIdentityByID")
	defer span.End()
	q := url.Values{}
	q.Set("filter", fmt.Sprintf("id=%q", vid))
	out := &identityResponse{}
	if err := c.get(ctx, c.verticesPath(graph.IdentityVertexType), q, out, "find_identity_by_id"); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, graph.ErrNoResult
	}
	return &out.Results[0], nil
}

// FindContractByID looks a contract vertex up by its primary key.
func (c *Client) FindContractByID(ctx context.Context, vid string) (*graph.ContractRecord, error) {
	ctx, span := trace.StartSpan(ctx, "store.FindContractByID")
	defer span.End()
	q := url.Values{}
	q.Set("filter", fmt.Sprintf("id=%q", vid))
	out := &contractResponse{}
	if err := c.get(ctx, c.verticesPath(graph.ContractVertexType), q, out, "find_contract_by_id"); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, graph.ErrNoResult
	}
	return &out.Results[0], nil
}

// FindIdentityByPlatformIdentity looks an identity vertex up by the
// (platform, identity) pair clients query with.
func (c *Client) FindIdentityByPlatformIdentity(ctx context.Context, platform graph.Platform, identity string) (*graph.IdentityRecord, error) {
	ctx, span := trace.StartSpan(ctx, "store.FindIdentityByPlatformIdentity")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("platform", string(platform)))
	q := url.Values{}
	q.Set("filter", fmt.Sprintf("platform=%q,identity=%q", platform, identity))
	out := &identityResponse{}
	if err := c.get(ctx, c.verticesPath(graph.IdentityVertexType), q, out, "find_identity"); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, graph.ErrNoResult
	}
	return &out.Results[0], nil
}

// FindEdgeByUUID looks a single edge up by its uuid attribute within one
// edge type.
func (c *Client) FindEdgeByUUID(ctx context.Context, edgeType string, id uuid.UUID) (*graph.EdgeUnion, error) {
	ctx, span := trace.StartSpan(ctx, "store.FindEdgeByUUID")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("eType", edgeType))
	q := url.Values{}
	q.Set("e_type", edgeType)
	q.Set("uuid", id.String())
	out := &edgesResponse{}
	if err := c.get(ctx, c.queryPath(queryEdgeByUUID), q, out, "find_edge_by_uuid"); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 || len(out.Results[0].Edges) == 0 {
		return nil, graph.ErrNoResult
	}
	return &out.Results[0].Edges[0], nil
}

// FindProofByUUID looks a proof connection up by uuid. Only the forward
// direction is searched; both directions of a proof share the uuid.
func (c *Client) FindProofByUUID(ctx context.Context, id uuid.UUID) (*graph.ProofRecord, error) {
	edge, err := c.FindEdgeByUUID(ctx, graph.EdgeProofForward, id)
	if err != nil {
		return nil, err
	}
	if edge.Proof == nil {
		return nil, graph.ErrNoResult
	}
	return edge.Proof, nil
}

// DeleteVertexAndEdges removes an identity vertex together with every
// incident edge. The refetch path calls this before re-running a fetch so
// stale connections do not survive a refresh.
func (c *Client) DeleteVertexAndEdges(ctx context.Context, vid string) error {
	ctx, span := trace.StartSpan(ctx, "store.DeleteVertexAndEdges")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("vId", vid))
	out := &deleteResponse{}
	path := fmt.Sprintf("%s/%s", c.verticesPath(graph.IdentityVertexType), vid)
	if err := c.del(ctx, path, out, "delete_vertex"); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"vId":     vid,
		"deleted": out.Results.DeletedVertices,
	}).Debug("Deleted vertex and incident edges")
	return nil
}

// Neighbors returns every identity reachable from vid within depth hops via
// proof, hold and resolve edges, annotated with the union of data sources
// along any path that reaches it. The origin itself is excluded. reverse
// narrows domain-system records: nil keeps everything, true keeps
// primary-domain records only, false keeps the complement.
func (c *Client) Neighbors(ctx context.Context, vid string, depth int, reverse *bool) ([]graph.IdentityWithSource, error) {
	ctx, span := trace.StartSpan(ctx, "store.Neighbors")
	defer span.End()
	span.AddAttributes(
		trace.StringAttribute("vId", vid),
		trace.Int64Attribute("depth", int64(depth)),
	)
	q := url.Values{}
	q.Set("p", vid)
	q.Set("depth", strconv.Itoa(depth))
	q.Set("reverse_flag", strconv.Itoa(reverseFlag(reverse)))
	out := &neighborsWithSourceResponse{}
	if err := c.get(ctx, c.queryPath(queryNeighborsWithSource), q, out, "neighbors"); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, nil
	}
	neighbors := make([]graph.IdentityWithSource, 0, len(out.Results[0].Vertices))
	for _, v := range out.Results[0].Vertices {
		if v.Identity.VID == vid {
			continue
		}
		neighbors = append(neighbors, v)
	}
	return neighbors, nil
}

// NeighborsWithTraversal returns the raw edges reachable from vid within
// depth hops so callers can rebuild the subgraph topology.
func (c *Client) NeighborsWithTraversal(ctx context.Context, vid string, depth int) ([]graph.EdgeUnion, error) {
	ctx, span := trace.StartSpan(ctx, "store.NeighborsWithTraversal")
	defer span.End()
	span.AddAttributes(
		trace.StringAttribute("vId", vid),
		trace.Int64Attribute("depth", int64(depth)),
	)
	q := url.Values{}
	q.Set("p", vid)
	q.Set("depth", strconv.Itoa(depth))
	out := &edgesResponse{}
	if err := c.get(ctx, c.queryPath(queryNeighbors), q, out, "neighbors_with_traversal"); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, nil
	}
	return out.Results[0].Edges, nil
}

// IdentityGraph returns the subgraph around vid: the origin vertex, every
// identity reachable from it and the edges between them. reverse narrows
// domain-system records the same way Neighbors does.
func (c *Client) IdentityGraph(ctx context.Context, vid string, reverse *bool) (*graph.IdentityGraph, error) {
	ctx, span := trace.StartSpan(ctx, "store.IdentityGraph")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("vId", vid))
	q := url.Values{}
	q.Set("p", vid)
	q.Set("reverse_flag", strconv.Itoa(reverseFlag(reverse)))
	out := &identityGraphResponse{}
	if err := c.get(ctx, c.queryPath(queryIdentityGraph), q, out, "identity_graph"); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 || len(out.Results[0].Vertices) == 0 {
		return nil, graph.ErrNoResult
	}
	return &out.Results[0], nil
}

// IdentityBySource returns the identities connected to vid by edges claimed
// by the given data source.
func (c *Client) IdentityBySource(ctx context.Context, vid string, source graph.DataSource) ([]graph.IdentityRecord, error) {
	ctx, span := trace.StartSpan(ctx, "store.IdentityBySource")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("vId", vid))
	q := url.Values{}
	q.Set("p", vid)
	q.Set("source", string(source))
	out := &verticesResponse{}
	if err := c.get(ctx, c.queryPath(queryIdentityBySource), q, out, "identity_by_source"); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, nil
	}
	return out.Results[0].Vertices, nil
}

// ReverseDomains returns the primary-domain records attached to vid.
func (c *Client) ReverseDomains(ctx context.Context, vid string) ([]graph.ResolveRecord, error) {
	ctx, span := trace.StartSpan(ctx, "store.ReverseDomains")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("vId", vid))
	q := url.Values{}
	q.Set("p", vid)
	out := &reverseDomainsResponse{}
	if err := c.get(ctx, c.queryPath(queryReverseDomains), q, out, "reverse_domains"); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, nil
	}
	records := out.Results[0].ReverseRecords
	for i := range records {
		records[i].Reverse = true
	}
	return records, nil
}

// IdentityOwnedBy walks ownership edges from vid and returns the owning
// wallet on the given platform.
func (c *Client) IdentityOwnedBy(ctx context.Context, vid string, platform graph.Platform) (*graph.IdentityRecord, error) {
	ctx, span := trace.StartSpan(ctx, "store.IdentityOwnedBy")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("vId", vid))
	q := url.Values{}
	q.Set("p", vid)
	q.Set("platform", string(platform))
	out := &ownedByResponse{}
	if err := c.get(ctx, c.queryPath(queryIdentityOwnedBy), q, out, "identity_owned_by"); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 || len(out.Results[0].Owner) == 0 {
		return nil, graph.ErrNoResult
	}
	return &out.Results[0].Owner[0], nil
}

// NFTs returns the hold edges attached to vid, optionally narrowed to a set
// of contract categories, paginated by limit and offset. Callers are
// expected to have checked the identity's platform already; the traversal
// only covers Ethereum holdings.
func (c *Client) NFTs(ctx context.Context, vid string, categories []graph.ContractCategory, limit, offset int) ([]graph.HoldRecord, error) {
	ctx, span := trace.StartSpan(ctx, "store.NFTs")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("vId", vid))
	q := url.Values{}
	q.Set("p", vid)
	for _, category := range categories {
		q.Add("categories", string(category))
	}
	q.Set("numPerPage", strconv.Itoa(limit))
	q.Set("pageNum", strconv.Itoa(offset))
	out := &nftsResponse{}
	if err := c.get(ctx, c.queryPath(queryNFTs), q, out, "nfts"); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, nil
	}
	return out.Results[0].Edges, nil
}

type vertexIDs struct {
	IDs []string `json:"ids"`
}

// IdentitiesByIDs fetches a set of identity vertices in one round trip and
// returns them keyed by primary key. Missing ids are simply absent from the
// map; ordering is not preserved.
func (c *Client) IdentitiesByIDs(ctx context.Context, ids []string) (map[string]*graph.IdentityRecord, error) {
	ctx, span := trace.StartSpan(ctx, "store.IdentitiesByIDs")
	defer span.End()
	span.AddAttributes(trace.Int64Attribute("count", int64(len(ids))))
	found := make(map[string]*graph.IdentityRecord, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	out := &verticesResponse{}
	if err := c.post(ctx, c.queryPath(queryIdentitiesByIDs), &vertexIDs{IDs: ids}, out, "identities_by_ids"); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return found, nil
	}
	for i := range out.Results[0].Vertices {
		v := &out.Results[0].Vertices[i]
		found[v.VID] = v
	}
	return found, nil
}

// DomainResolve returns the resolve record registered for a name under a
// domain name system, expanded with the identity the name resolves to and
// the wallet owning it when the store knows either.
func (c *Client) DomainResolve(ctx context.Context, system graph.DomainNameSystem, name string) (*graph.ResolveEdge, error) {
	ctx, span := trace.StartSpan(ctx, "store.DomainResolve")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("system", string(system)))
	q := url.Values{}
	q.Set("name", name)
	q.Set("system", string(system))
	out := &domainResolveResponse{}
	if err := c.get(ctx, c.queryPath(queryDomainResolve), q, out, "domain_resolve"); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 || len(out.Results[0].Record) == 0 {
		return nil, graph.ErrNoResult
	}
	res := out.Results[0]
	edge := &graph.ResolveEdge{ResolveRecord: res.Record[0]}
	if len(res.Resolved) > 0 {
		edge.Resolved = &res.Resolved[0]
	}
	if len(res.Owner) > 0 {
		edge.Owner = &res.Owner[0]
	}
	return edge, nil
}
