package graph

import (
	"strings"
)

// Platform is an identity platform tracked by the relation service. String
// forms are part of the public query contract: lowercase snake case, except
// ENS and SNS which keep their original casing.
type Platform string

const (
	PlatformUnknown            Platform = "unknown"
	PlatformEthereum           Platform = "ethereum"
	PlatformTwitter            Platform = "twitter"
	PlatformNextID             Platform = "nextid"
	PlatformKeybase            Platform = "keybase"
	PlatformGithub             Platform = "github"
	PlatformDiscord            Platform = "discord"
	PlatformFarcaster          Platform = "farcaster"
	PlatformLens               Platform = "lens"
	PlatformDotbit             Platform = "dotbit"
	PlatformUnstoppableDomains Platform = "unstoppabledomains"
	PlatformSpaceID            Platform = "space_id"
	PlatformCrossbell          Platform = "crossbell"
	PlatformSolana             Platform = "solana"
	PlatformENS                Platform = "ENS"
	PlatformSNS                Platform = "SNS"
	PlatformGenome             Platform = "genome"
)

// Platforms lists every supported platform in declaration order. Served
// verbatim by the availablePlatforms query.
func Platforms() []Platform {
	return []Platform{
		PlatformEthereum,
		PlatformTwitter,
		PlatformNextID,
		PlatformKeybase,
		PlatformGithub,
		PlatformDiscord,
		PlatformFarcaster,
		PlatformLens,
		PlatformDotbit,
		PlatformUnstoppableDomains,
		PlatformSpaceID,
		PlatformCrossbell,
		PlatformSolana,
		PlatformENS,
		PlatformSNS,
		PlatformGenome,
	}
}

// ParsePlatform accepts any casing of a platform's string form.
func ParsePlatform(s string) (Platform, error) {
	lowered := strings.ToLower(strings.TrimSpace(s))
	for _, p := range Platforms() {
		if strings.ToLower(string(p)) == lowered {
			return p, nil
		}
	}
	return PlatformUnknown, NewParamError("unknown platform %q", s)
}

func (p Platform) String() string {
	return string(p)
}

// domainSystemPlatforms are the platforms for which the reverse (primary
// domain) flag is meaningful. Everywhere else the flag is unobservable.
var domainSystemPlatforms = map[Platform]bool{
	PlatformLens:               true,
	PlatformDotbit:             true,
	PlatformUnstoppableDomains: true,
	PlatformSpaceID:            true,
	PlatformCrossbell:          true,
	PlatformEthereum:           true,
	PlatformENS:                true,
	PlatformSolana:             true,
	PlatformSNS:                true,
	PlatformGenome:             true,
}

// ownablePlatforms are the platforms whose identities can be owned by a
// wallet, so ownedBy resolves to a record.
var ownablePlatforms = map[Platform]bool{
	PlatformLens:               true,
	PlatformDotbit:             true,
	PlatformUnstoppableDomains: true,
	PlatformFarcaster:          true,
	PlatformSpaceID:            true,
	PlatformCrossbell:          true,
	PlatformENS:                true,
	PlatformSNS:                true,
	PlatformGenome:             true,
}

// expirablePlatforms are the domain platforms with a registration expiry.
var expirablePlatforms = map[Platform]bool{
	PlatformDotbit: true,
	PlatformENS:    true,
	PlatformGenome: true,
}

// IsDomainSystem reports whether the reverse flag is observable for p.
func (p Platform) IsDomainSystem() bool {
	return domainSystemPlatforms[p]
}

// IsOwnable reports whether identities on p can resolve an owning wallet.
func (p Platform) IsOwnable() bool {
	return ownablePlatforms[p]
}

// HasExpiry reports whether identities on p expose a registration expiry.
func (p Platform) HasExpiry() bool {
	return expirablePlatforms[p]
}
