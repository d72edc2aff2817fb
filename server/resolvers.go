package server

import (
	"context"

	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph"
	"github.com/nextdotid/relationservice/query"
	"github.com/pkg/errors"
)

// Resolver is the GraphQL root. Fields stay thin: parse and validate
// arguments, call the query service, map a positive "not found" onto null.
type Resolver struct {
	svc *query.Service
}

// NewResolver builds the root resolver over the query service.
func NewResolver(svc *query.Service) *Resolver {
	return &Resolver{svc: svc}
}

// AvailablePlatforms lists every platform the service can query.
func (r *Resolver) AvailablePlatforms() []string {
	platforms := graph.Platforms()
	out := make([]string, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, p.String())
	}
	return out
}

// AvailableUpstreams lists every upstream the service crawls.
func (r *Resolver) AvailableUpstreams() []string {
	sources := graph.DataSources()
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.String())
	}
	return out
}

// AvailableNameSystem lists every domain name system the service resolves.
func (r *Resolver) AvailableNameSystem() []string {
	systems := graph.DomainNameSystems()
	out := make([]string, 0, len(systems))
	for _, s := range systems {
		out = append(out, s.String())
	}
	return out
}

// Identity serves one identity lookup.
func (r *Resolver) Identity(ctx context.Context, args struct {
	Platform string
	Identity string
}) (*identityResolver, error) {
	platform, err := graph.ParsePlatform(args.Platform)
	if err != nil {
		return nil, err
	}
	record, err := r.svc.Find(ctx, platform, args.Identity)
	if errors.Is(err, graph.ErrNoResult) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &identityResolver{svc: r.svc, record: record}, nil
}

// Identities serves the multi-platform lookup of one identity string.
func (r *Resolver) Identities(ctx context.Context, args struct {
	Platforms []string
	Identity  string
}) ([]*identityResolver, error) {
	platforms := make([]graph.Platform, 0, len(args.Platforms))
	for _, s := range args.Platforms {
		platform, err := graph.ParsePlatform(s)
		if err != nil {
			return nil, err
		}
		platforms = append(platforms, platform)
	}
	records, err := r.svc.FindIdentities(ctx, platforms, args.Identity)
	if err != nil {
		return nil, err
	}
	out := make([]*identityResolver, 0, len(records))
	for _, record := range records {
		out = append(out, &identityResolver{svc: r.svc, record: record})
	}
	return out, nil
}

// Ens resolves an ENS name.
func (r *Resolver) Ens(ctx context.Context, args struct{ Name string }) (*domainResolver, error) {
	edge, err := r.svc.ENS(ctx, args.Name)
	if errors.Is(err, graph.ErrNoResult) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domainResolver{svc: r.svc, edge: edge}, nil
}

// Dotbit resolves a .bit account.
func (r *Resolver) Dotbit(ctx context.Context, args struct{ Name string }) (*domainResolver, error) {
	edge, err := r.svc.Dotbit(ctx, args.Name)
	if errors.Is(err, graph.ErrNoResult) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domainResolver{svc: r.svc, edge: edge}, nil
}

// Proof looks one proof connection up by uuid.
func (r *Resolver) Proof(ctx context.Context, args struct{ UUID string }) (*proofResolver, error) {
	record, err := r.svc.Proof(ctx, args.UUID)
	if errors.Is(err, graph.ErrNoResult) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &proofResolver{svc: r.svc, record: record}, nil
}

// PrefetchProof fires a background crawl of the prefetchable upstreams.
func (r *Resolver) PrefetchProof() string {
	return r.svc.Prefetch()
}

// optString maps the empty string onto null.
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// optTime maps an absent timestamp onto null.
func optTime(d *graph.DateTime) *Long {
	if d == nil {
		return nil
	}
	ts := Long(d.Timestamp())
	return &ts
}

// depthOrDefault applies the configured traversal depth when the client
// omitted one.
func depthOrDefault(depth *int32) int {
	if depth == nil {
		return int(params.RelationConfig().DefaultTraversalDepth)
	}
	return int(*depth)
}

// loadEndpoint reads an edge endpoint through the request's batch loader.
// Contract endpoints and vanished vertices surface as null.
func loadEndpoint(ctx context.Context, svc *query.Service, vid, vertexType string) (*identityResolver, error) {
	if vertexType != graph.IdentityVertexType {
		return nil, nil
	}
	record, err := svc.LoadIdentity(ctx, vid)
	if errors.Is(err, graph.ErrNoResult) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &identityResolver{svc: svc, record: record}, nil
}

type identityResolver struct {
	svc    *query.Service
	record *graph.IdentityRecord
}

func (r *identityResolver) ID() string {
	return r.record.VID
}

func (r *identityResolver) UUID() *string {
	if r.record.UUID == nil {
		return nil
	}
	return optString(r.record.UUID.String())
}

func (r *identityResolver) Platform() string {
	return r.record.Platform.String()
}

func (r *identityResolver) Identity() string {
	return r.record.Identity.Identity
}

func (r *identityResolver) UID() *string {
	return optString(r.record.UID)
}

func (r *identityResolver) DisplayName() *string {
	return optString(r.record.DisplayName)
}

func (r *identityResolver) ProfileURL() *string {
	return optString(r.record.ProfileURL)
}

func (r *identityResolver) AvatarURL() *string {
	return optString(r.record.AvatarURL)
}

func (r *identityResolver) CreatedAt() *Long {
	return optTime(r.record.CreatedAt)
}

func (r *identityResolver) AddedAt() Long {
	return Long(r.record.AddedAt.Timestamp())
}

func (r *identityResolver) UpdatedAt() Long {
	return Long(r.record.UpdatedAt.Timestamp())
}

func (r *identityResolver) ExpiredAt() *Long {
	if !r.record.Platform.HasExpiry() {
		return nil
	}
	return optTime(r.record.ExpiredAt)
}

func (r *identityResolver) Reverse() *bool {
	if !r.record.Platform.IsDomainSystem() {
		return nil
	}
	reverse := r.record.Reverse
	return &reverse
}

func (r *identityResolver) Status() []string {
	statuses := r.record.Status()
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, s.String())
	}
	return out
}

func (r *identityResolver) Neighbor(ctx context.Context, args struct {
	Depth   *int32
	Reverse *bool
}) ([]*identityWithSourceResolver, error) {
	neighbors, err := r.svc.Neighbors(ctx, r.record, depthOrDefault(args.Depth), args.Reverse)
	if err != nil {
		return nil, err
	}
	out := make([]*identityWithSourceResolver, 0, len(neighbors))
	for i := range neighbors {
		out = append(out, &identityWithSourceResolver{svc: r.svc, neighbor: neighbors[i]})
	}
	return out, nil
}

func (r *identityResolver) NeighborWithTraversal(ctx context.Context, args struct {
	Depth *int32
}) ([]*edgeResolver, error) {
	edges, err := r.svc.NeighborsWithTraversal(ctx, r.record, depthOrDefault(args.Depth))
	if err != nil {
		return nil, err
	}
	out := make([]*edgeResolver, 0, len(edges))
	for i := range edges {
		out = append(out, &edgeResolver{svc: r.svc, edge: edges[i]})
	}
	return out, nil
}

func (r *identityResolver) IdentityGraph(ctx context.Context, args struct {
	Reverse *bool
}) (*identityGraphResolver, error) {
	g, err := r.svc.IdentityGraph(ctx, r.record.Platform, r.record.Identity.Identity, args.Reverse)
	if errors.Is(err, graph.ErrNoResult) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &identityGraphResolver{svc: r.svc, graph: g}, nil
}

func (r *identityResolver) ReverseRecords(ctx context.Context, args struct {
	DomainSystem *string
}) ([]*resolveResolver, error) {
	var system *graph.DomainNameSystem
	if args.DomainSystem != nil {
		parsed, err := graph.ParseDomainNameSystem(*args.DomainSystem)
		if err != nil {
			return nil, err
		}
		system = &parsed
	}
	records, err := r.svc.ReverseDomains(ctx, r.record, system)
	if err != nil {
		return nil, err
	}
	out := make([]*resolveResolver, 0, len(records))
	for i := range records {
		out = append(out, &resolveResolver{svc: r.svc, record: &records[i]})
	}
	return out, nil
}

func (r *identityResolver) OwnedBy(ctx context.Context) (*identityResolver, error) {
	if !r.record.Platform.IsOwnable() {
		return nil, nil
	}
	owner, err := r.svc.OwnedBy(ctx, r.record)
	if err != nil || owner == nil {
		return nil, err
	}
	return &identityResolver{svc: r.svc, record: owner}, nil
}

func (r *identityResolver) NFT(ctx context.Context, args struct {
	Category *[]string
	Limit    *int32
	Offset   *int32
}) ([]*holdResolver, error) {
	var categories []string
	if args.Category != nil {
		categories = *args.Category
	}
	limit, offset := 0, 0
	if args.Limit != nil {
		limit = int(*args.Limit)
	}
	if args.Offset != nil {
		offset = int(*args.Offset)
	}
	holds, err := r.svc.NFTs(ctx, r.record, categories, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*holdResolver, 0, len(holds))
	for i := range holds {
		out = append(out, &holdResolver{svc: r.svc, record: &holds[i]})
	}
	return out, nil
}

type identityWithSourceResolver struct {
	svc      *query.Service
	neighbor graph.IdentityWithSource
}

func (r *identityWithSourceResolver) Sources() []string {
	out := make([]string, 0, len(r.neighbor.Sources))
	for _, s := range r.neighbor.Sources {
		out = append(out, s.String())
	}
	return out
}

func (r *identityWithSourceResolver) Reverse() *bool {
	return r.neighbor.Reverse
}

func (r *identityWithSourceResolver) Identity() *identityResolver {
	return &identityResolver{svc: r.svc, record: &r.neighbor.Identity}
}

type identityGraphResolver struct {
	svc   *query.Service
	graph *graph.IdentityGraph
}

func (r *identityGraphResolver) Vertices() []*identityResolver {
	out := make([]*identityResolver, 0, len(r.graph.Vertices))
	for i := range r.graph.Vertices {
		out = append(out, &identityResolver{svc: r.svc, record: &r.graph.Vertices[i]})
	}
	return out
}

func (r *identityGraphResolver) Edges() []*edgeResolver {
	out := make([]*edgeResolver, 0, len(r.graph.Edges))
	for i := range r.graph.Edges {
		out = append(out, &edgeResolver{svc: r.svc, edge: r.graph.Edges[i]})
	}
	return out
}

// edgeResolver discriminates the Edge union by which member of the stored
// union is populated.
type edgeResolver struct {
	svc  *query.Service
	edge graph.EdgeUnion
}

func (r *edgeResolver) ToProof() (*proofResolver, bool) {
	if r.edge.Proof == nil {
		return nil, false
	}
	return &proofResolver{svc: r.svc, record: r.edge.Proof}, true
}

func (r *edgeResolver) ToHold() (*holdResolver, bool) {
	if r.edge.Hold == nil {
		return nil, false
	}
	return &holdResolver{svc: r.svc, record: r.edge.Hold}, true
}

func (r *edgeResolver) ToResolve() (*resolveResolver, bool) {
	if r.edge.Resolve == nil {
		return nil, false
	}
	return &resolveResolver{svc: r.svc, record: r.edge.Resolve}, true
}

type proofResolver struct {
	svc    *query.Service
	record *graph.ProofRecord
}

func (r *proofResolver) UUID() string {
	return r.record.UUID.String()
}

func (r *proofResolver) Source() string {
	return r.record.Source.String()
}

func (r *proofResolver) RecordID() *string {
	return optString(r.record.RecordID)
}

func (r *proofResolver) CreatedAt() *Long {
	return optTime(r.record.CreatedAt)
}

func (r *proofResolver) UpdatedAt() Long {
	return Long(r.record.UpdatedAt.Timestamp())
}

func (r *proofResolver) Fetcher() string {
	return r.record.Fetcher.String()
}

func (r *proofResolver) From(ctx context.Context) (*identityResolver, error) {
	return loadEndpoint(ctx, r.svc, r.record.FromID, r.record.FromType)
}

func (r *proofResolver) To(ctx context.Context) (*identityResolver, error) {
	return loadEndpoint(ctx, r.svc, r.record.ToID, r.record.ToType)
}

type holdResolver struct {
	svc    *query.Service
	record *graph.HoldRecord
}

func (r *holdResolver) UUID() string {
	return r.record.UUID.String()
}

func (r *holdResolver) Source() string {
	return r.record.Source.String()
}

func (r *holdResolver) ID() string {
	return r.record.Hold.ID
}

func (r *holdResolver) Transaction() *string {
	return optString(r.record.Transaction)
}

func (r *holdResolver) CreatedAt() *Long {
	return optTime(r.record.CreatedAt)
}

func (r *holdResolver) UpdatedAt() Long {
	return Long(r.record.UpdatedAt.Timestamp())
}

func (r *holdResolver) ExpiredAt() *Long {
	return optTime(r.record.ExpiredAt)
}

func (r *holdResolver) Fetcher() string {
	return r.record.Fetcher.String()
}

func (r *holdResolver) From(ctx context.Context) (*identityResolver, error) {
	return loadEndpoint(ctx, r.svc, r.record.FromID, r.record.FromType)
}

func (r *holdResolver) To(ctx context.Context) (*identityResolver, error) {
	return loadEndpoint(ctx, r.svc, r.record.ToID, r.record.ToType)
}

func (r *holdResolver) Contract(ctx context.Context) (*contractResolver, error) {
	if r.record.ToType != graph.ContractVertexType {
		return nil, nil
	}
	record, err := r.svc.FindContract(ctx, r.record.ToID)
	if errors.Is(err, graph.ErrNoResult) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contractResolver{record: record}, nil
}

type resolveResolver struct {
	svc    *query.Service
	record *graph.ResolveRecord
}

func (r *resolveResolver) UUID() string {
	return r.record.UUID.String()
}

func (r *resolveResolver) Source() string {
	return r.record.Source.String()
}

func (r *resolveResolver) System() string {
	return r.record.System.String()
}

func (r *resolveResolver) Name() string {
	return r.record.Name
}

func (r *resolveResolver) Reverse() bool {
	return r.record.Reverse
}

func (r *resolveResolver) UpdatedAt() Long {
	return Long(r.record.UpdatedAt.Timestamp())
}

func (r *resolveResolver) Fetcher() string {
	return r.record.Fetcher.String()
}

func (r *resolveResolver) From(ctx context.Context) (*identityResolver, error) {
	return loadEndpoint(ctx, r.svc, r.record.FromID, r.record.FromType)
}

func (r *resolveResolver) To(ctx context.Context) (*identityResolver, error) {
	return loadEndpoint(ctx, r.svc, r.record.ToID, r.record.ToType)
}

type contractResolver struct {
	record *graph.ContractRecord
}

func (r *contractResolver) UUID() string {
	return r.record.UUID.String()
}

func (r *contractResolver) Category() string {
	return r.record.Category.String()
}

func (r *contractResolver) Chain() string {
	return r.record.Chain.String()
}

func (r *contractResolver) Address() string {
	return r.record.Address
}

func (r *contractResolver) Symbol() *string {
	return optString(r.record.Symbol)
}

func (r *contractResolver) UpdatedAt() Long {
	return Long(r.record.UpdatedAt.Timestamp())
}

// domainResolver backs both EnsResolve and DotbitResolve; the two schema
// types share every field.
type domainResolver struct {
	svc  *query.Service
	edge *graph.ResolveEdge
}

func (r *domainResolver) UUID() string {
	return r.edge.UUID.String()
}

func (r *domainResolver) Source() string {
	return r.edge.Source.String()
}

func (r *domainResolver) System() string {
	return r.edge.System.String()
}

func (r *domainResolver) Name() string {
	return r.edge.Name
}

func (r *domainResolver) Fetcher() string {
	return r.edge.Fetcher.String()
}

func (r *domainResolver) UpdatedAt() Long {
	return Long(r.edge.UpdatedAt.Timestamp())
}

func (r *domainResolver) Resolved() *identityResolver {
	if r.edge.Resolved == nil {
		return nil
	}
	return &identityResolver{svc: r.svc, record: r.edge.Resolved}
}

func (r *domainResolver) Owner() *identityResolver {
	if r.edge.Owner == nil {
		return nil
	}
	return &identityResolver{svc: r.svc, record: r.edge.Owner}
}

func (r *domainResolver) IdentityGraph(ctx context.Context, args struct {
	Reverse *bool
}) (*identityGraphResolver, error) {
	platform := r.edge.System.Platform()
	g, err := r.svc.IdentityGraph(ctx, platform, r.edge.Name, args.Reverse)
	if errors.Is(err, graph.ErrNoResult) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &identityGraphResolver{svc: r.svc, graph: g}, nil
}
