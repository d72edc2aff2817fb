package server

// schema is the GraphQL schema served on /graphql. Timestamps are
// second-based unix values carried as Long. Platforms, sources, name
// systems and contract categories travel as plain strings so a new variant
// never breaks deployed clients.
const schema = `
    schema {
        query: Query
        mutation: Mutation
    }

    # Long is a 64 bit signed integer.
    scalar Long

    type Query {
        # availablePlatforms lists every platform the service can query.
        availablePlatforms: [String!]!
        # availableUpstreams lists every upstream the service crawls.
        availableUpstreams: [String!]!
        # availableNameSystem lists every domain name system the service
        # resolves.
        availableNameSystem: [String!]!
        # identity returns one identity by platform and identity. An
        # identity the store has never seen is crawled synchronously first;
        # an outdated one is served as-is while a background refresh
        # rebuilds it.
        identity(platform: String!, identity: String!): Identity
        # identities returns the records carrying the same identity across
        # the given platforms. Platforms where it does not exist are left
        # out of the result.
        identities(platforms: [String!]!, identity: String!): [Identity!]!
        # ens resolves an ENS name.
        ens(name: String!): EnsResolve
        # dotbit resolves a .bit account.
        dotbit(name: String!): DotbitResolve
        # proof returns one proof connection by uuid.
        proof(uuid: String!): Proof
    }

    type Mutation {
        # prefetchProof crawls the prefetchable upstreams in the background
        # and returns immediately.
        prefetchProof: String!
    }

    # Identity is one platform-scoped account, wallet or domain name.
    type Identity {
        # id is the stable store key, "platform,identity".
        id: String!
        uuid: String
        platform: String!
        identity: String!
        # uid is the secondary platform key, e.g. the Farcaster fid or the
        # Lens profile id.
        uid: String
        # displayName is the user-facing screen name. Null and the empty
        # string both mean "no value".
        displayName: String
        profileUrl: String
        avatarUrl: String
        # createdAt is the account creation time on the source platform,
        # when the platform reports one.
        createdAt: Long
        # addedAt is when the record was first persisted here.
        addedAt: Long!
        # updatedAt is bumped on every refetch.
        updatedAt: Long!
        # expiredAt is the registration expiry. Null outside domain
        # platforms with expiring registrations.
        expiredAt: Long
        # reverse marks the primary domain of a wallet. Null outside domain
        # name systems.
        reverse: Boolean
        # status is the record's lifecycle set: cached, outdated, fetching.
        status: [String!]!
        # neighbor lists the identities connected within depth hops,
        # flattened, the queried identity excluded. reverse narrows domain
        # records: true keeps primary domains only, false keeps the
        # complement, omitted keeps everything.
        neighbor(depth: Int, reverse: Boolean): [IdentityWithSource!]!
        # neighborWithTraversal returns the walked edges instead, so the
        # topology can be rebuilt from the result.
        neighborWithTraversal(depth: Int): [Edge!]!
        # identityGraph returns the connected subgraph around this
        # identity, the identity itself included.
        identityGraph(reverse: Boolean): IdentityGraph
        # reverseRecords lists the primary-domain records pointing at this
        # wallet, optionally narrowed to one name system.
        reverseRecords(domainSystem: String): [Resolve!]!
        # ownedBy resolves the wallet holding this identity. Null outside
        # ownable platforms.
        ownedBy: Identity
        # nft pages through held tokens. Only wallets hold tokens; other
        # platforms yield an empty list.
        nft(category: [String!], limit: Int, offset: Int): [Hold!]!
    }

    # IdentityWithSource is a traversal neighbor annotated with the union
    # of data sources on the edges reaching it.
    type IdentityWithSource {
        sources: [String!]!
        reverse: Boolean
        identity: Identity!
    }

    # IdentityGraph is the subgraph around one identity: the reachable
    # vertices and the edges between them.
    type IdentityGraph {
        vertices: [Identity!]!
        edges: [Edge!]!
    }

    union Edge = Proof | Hold | Resolve

    # Proof asserts that its two identities belong to the same person,
    # witnessed by source.
    type Proof {
        uuid: String!
        source: String!
        # recordId locates the claim on the upstream platform, if it has
        # an id there.
        recordId: String
        createdAt: Long
        updatedAt: Long!
        fetcher: String!
        from: Identity
        to: Identity
    }

    # Hold is an ownership edge, either a held token or a held domain name.
    type Hold {
        uuid: String!
        source: String!
        # id is the concrete holding, an ENS name or a token id.
        id: String!
        transaction: String
        createdAt: Long
        updatedAt: Long!
        expiredAt: Long
        fetcher: String!
        from: Identity
        # to is the held identity. Null when the edge holds a contract.
        to: Identity
        # contract is the held collection. Null when the edge holds an
        # identity.
        contract: Contract
    }

    # Resolve maps a domain name onto a wallet. Reverse records mark the
    # wallet's primary domain.
    type Resolve {
        uuid: String!
        source: String!
        system: String!
        name: String!
        reverse: Boolean!
        updatedAt: Long!
        fetcher: String!
        from: Identity
        to: Identity
    }

    # Contract is an on-chain collection: an NFT contract, the ENS
    # registrar, a POAP event.
    type Contract {
        uuid: String!
        category: String!
        chain: String!
        address: String!
        symbol: String
        updatedAt: Long!
    }

    # EnsResolve is the ens query projection: the resolve record plus the
    # wallet the name points at and the wallet owning it.
    type EnsResolve {
        uuid: String!
        source: String!
        system: String!
        name: String!
        fetcher: String!
        updatedAt: Long!
        # resolved is the wallet the name points at.
        resolved: Identity
        # owner is the wallet the name is registered to.
        owner: Identity
        # identityGraph expands the subgraph around the name.
        identityGraph(reverse: Boolean): IdentityGraph
    }

    # DotbitResolve is the dotbit query projection.
    type DotbitResolve {
        uuid: String!
        source: String!
        system: String!
        name: String!
        fetcher: String!
        updatedAt: Long!
        resolved: Identity
        owner: Identity
        identityGraph(reverse: Boolean): IdentityGraph
    }
`
