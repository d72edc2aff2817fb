package upstream

import (
	"fmt"
	"strings"

	"github.com/nextdotid/relationservice/graph"
)

// TargetKind discriminates the two shapes of a fetch target.
type TargetKind uint8

const (
	// TargetIdentity asks upstreams about a platform/identity pair.
	TargetIdentity TargetKind = iota
	// TargetNFT asks upstreams about a single token under a contract.
	TargetNFT
)

// Target is one unit of work for the dispatch engine, either an identity on
// some platform or an NFT under a contract. Fetchers receive targets they
// declared support for and may emit further targets discovered along the way.
type Target struct {
	Kind TargetKind

	// Identity targets.
	Platform graph.Platform
	Identity string

	// NFT targets.
	Chain    graph.Chain
	Category graph.ContractCategory
	Address  string
	ID       string
}

// NewIdentity builds an identity target. Ethereum addresses are lowercased so
// that every branch of a crawl refers to a wallet by the same key.
func NewIdentity(platform graph.Platform, identity string) Target {
	if platform == graph.PlatformEthereum {
		identity = strings.ToLower(identity)
	}
	return Target{Kind: TargetIdentity, Platform: platform, Identity: identity}
}

// NewNFT builds an NFT target for a single token under a contract.
func NewNFT(chain graph.Chain, category graph.ContractCategory, address, id string) Target {
	return Target{
		Kind:     TargetNFT,
		Chain:    chain,
		Category: category,
		Address:  strings.ToLower(address),
		ID:       id,
	}
}

// TargetFor routes a platform/identity pair to the target shape upstreams
// expect. ENS names are crawled as tokens under the base registrar because
// the providers covering ENS key their lookups by contract, everything else
// is crawled as a plain platform identity.
func TargetFor(platform graph.Platform, identity string) Target {
	if platform == graph.PlatformENS {
		return NewNFT(graph.CategoryENS.DefaultChain(), graph.CategoryENS, graph.CategoryENS.DefaultContractAddress(), identity)
	}
	return NewIdentity(platform, identity)
}

// CanonicalKey returns the case-insensitive form of a target used for
// visited-set deduplication. Two targets with equal keys describe the same
// remote entity and are fetched at most once per crawl.
func (t Target) CanonicalKey() string {
	switch t.Kind {
	case TargetNFT:
		return fmt.Sprintf("nft,%s,%s,%s,%s", t.Chain, t.Category, strings.ToLower(t.Address), strings.ToLower(t.ID))
	default:
		return fmt.Sprintf("identity,%s,%s", t.Platform, strings.ToLower(t.Identity))
	}
}

// InPlatforms reports whether an identity target belongs to one of the given
// platforms. NFT targets never match.
func (t Target) InPlatforms(platforms ...graph.Platform) bool {
	if t.Kind != TargetIdentity {
		return false
	}
	for _, p := range platforms {
		if t.Platform == p {
			return true
		}
	}
	return false
}

// InNFTs reports whether an NFT target belongs to one of the given contract
// categories. Identity targets never match.
func (t Target) InNFTs(categories ...graph.ContractCategory) bool {
	if t.Kind != TargetNFT {
		return false
	}
	for _, c := range categories {
		if t.Category == c {
			return true
		}
	}
	return false
}

func (t Target) String() string {
	switch t.Kind {
	case TargetNFT:
		return fmt.Sprintf("nft(%s, %s, %s, %s)", t.Chain, t.Category, t.Address, t.ID)
	default:
		return fmt.Sprintf("identity(%s, %s)", t.Platform, t.Identity)
	}
}
