package graph

import "strings"

// Chain is the blockchain a contract is deployed on.
type Chain string

const (
	ChainUnknown  Chain = "unknown"
	ChainEthereum Chain = "ethereum"
	ChainPolygon  Chain = "polygon"
	ChainBSC      Chain = "bsc"
	ChainGnosis   Chain = "gnosis"
	ChainArbitrum Chain = "arbitrum"
	ChainSolana   Chain = "solana"
)

func (c Chain) String() string {
	return string(c)
}

// ChainFromPlatform maps a wallet platform onto the chain its addresses live
// on. Platforms that are not address spaces map to ChainUnknown.
func ChainFromPlatform(p Platform) Chain {
	switch p {
	case PlatformEthereum:
		return ChainEthereum
	case PlatformSolana:
		return ChainSolana
	case PlatformLens:
		return ChainPolygon
	case PlatformGenome:
		return ChainGnosis
	default:
		return ChainUnknown
	}
}

// ContractCategory classifies a contract vertex. ENS and SNS keep their
// original casing, token standards keep their canonical names.
type ContractCategory string

const (
	CategoryUnknown ContractCategory = "unknown"
	CategoryENS     ContractCategory = "ENS"
	CategorySNS     ContractCategory = "SNS"
	CategoryERC721  ContractCategory = "ERC721"
	CategoryERC1155 ContractCategory = "ERC1155"
	CategoryPOAP    ContractCategory = "POAP"
)

// ContractCategories lists every category accepted by the nft projection.
func ContractCategories() []ContractCategory {
	return []ContractCategory{
		CategoryENS,
		CategorySNS,
		CategoryERC721,
		CategoryERC1155,
		CategoryPOAP,
	}
}

// ParseContractCategory accepts any casing of a category's string form.
func ParseContractCategory(s string) (ContractCategory, error) {
	lowered := strings.ToLower(strings.TrimSpace(s))
	for _, c := range ContractCategories() {
		if strings.ToLower(string(c)) == lowered {
			return c, nil
		}
	}
	return CategoryUnknown, NewParamError("unknown contract category %q", s)
}

func (c ContractCategory) String() string {
	return string(c)
}

// ensRegistrarContract is the ENS base registrar on Ethereum mainnet.
const ensRegistrarContract = "0x57f1887a8bf19b14fc0df6fd9b2acc9af147ea85"

// DefaultContractAddress returns the canonical contract for categories that
// have one. ENS names all live under the base registrar; token standards have
// no single address.
func (c ContractCategory) DefaultContractAddress() string {
	switch c {
	case CategoryENS:
		return ensRegistrarContract
	default:
		return ""
	}
}

// DefaultChain returns the chain a category's canonical contract lives on.
func (c ContractCategory) DefaultChain() Chain {
	switch c {
	case CategoryENS, CategoryERC721, CategoryERC1155, CategoryPOAP:
		return ChainEthereum
	case CategorySNS:
		return ChainSolana
	default:
		return ChainUnknown
	}
}

// PlatformOf maps a domain category onto the platform its token names
// identify. Plain token standards name no platform.
func (c ContractCategory) PlatformOf() Platform {
	switch c {
	case CategoryENS:
		return PlatformENS
	case CategorySNS:
		return PlatformSNS
	default:
		return PlatformUnknown
	}
}
