package graph

import (
	"strings"
)

// DomainNameSystem is the naming system a resolve edge belongs to.
type DomainNameSystem string

const (
	SystemUnknown            DomainNameSystem = "unknown"
	SystemENS                DomainNameSystem = "ENS"
	SystemDotbit             DomainNameSystem = "dotbit"
	SystemLens               DomainNameSystem = "lens"
	SystemUnstoppableDomains DomainNameSystem = "unstoppabledomains"
	SystemSpaceID            DomainNameSystem = "space_id"
	SystemCrossbell          DomainNameSystem = "crossbell"
	SystemSNS                DomainNameSystem = "SNS"
	SystemGenome             DomainNameSystem = "genome"
)

// DomainNameSystems lists every known naming system, served by the
// availableNameSystem query.
func DomainNameSystems() []DomainNameSystem {
	return []DomainNameSystem{
		SystemENS,
		SystemDotbit,
		SystemLens,
		SystemUnstoppableDomains,
		SystemSpaceID,
		SystemCrossbell,
		SystemSNS,
		SystemGenome,
	}
}

// ParseDomainNameSystem accepts any casing of a naming system's string form.
func ParseDomainNameSystem(s string) (DomainNameSystem, error) {
	lowered := strings.ToLower(strings.TrimSpace(s))
	for _, system := range DomainNameSystems() {
		if strings.ToLower(string(system)) == lowered {
			return system, nil
		}
	}
	return SystemUnknown, NewParamError("unknown domain name system %q", s)
}

func (s DomainNameSystem) String() string {
	return string(s)
}

// Platform maps the naming system to the platform its names live on.
func (s DomainNameSystem) Platform() Platform {
	switch s {
	case SystemENS:
		return PlatformENS
	case SystemDotbit:
		return PlatformDotbit
	case SystemLens:
		return PlatformLens
	case SystemUnstoppableDomains:
		return PlatformUnstoppableDomains
	case SystemSpaceID:
		return PlatformSpaceID
	case SystemCrossbell:
		return PlatformCrossbell
	case SystemSNS:
		return PlatformSNS
	case SystemGenome:
		return PlatformGenome
	default:
		return PlatformUnknown
	}
}

// SystemForPlatform maps a domain platform back to its naming system.
// Non-domain platforms map to SystemUnknown.
func SystemForPlatform(p Platform) DomainNameSystem {
	switch p {
	case PlatformENS:
		return SystemENS
	case PlatformDotbit:
		return SystemDotbit
	case PlatformLens:
		return SystemLens
	case PlatformUnstoppableDomains:
		return SystemUnstoppableDomains
	case PlatformSpaceID:
		return SystemSpaceID
	case PlatformCrossbell:
		return SystemCrossbell
	case PlatformSNS:
		return SystemSNS
	case PlatformGenome:
		return SystemGenome
	default:
		return SystemUnknown
	}
}
