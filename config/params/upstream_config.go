package params

import "github.com/mohae/deepcopy"

// UpstreamConfig contains the endpoints of the upstream data providers the
// fetchers talk to. Each value may carry an authorization suffix in the
// "<url>|<method> <value>" form understood by network.HttpEndpoint.
type UpstreamConfig struct {
	SybilListEndpoint string `yaml:"sybil-list-endpoint" validate:"required"`
	TheGraphEndpoint  string `yaml:"the-graph-endpoint" validate:"required"`
	KNN3Endpoint      string `yaml:"knn3-endpoint" validate:"required"`
	RSS3Endpoint      string `yaml:"rss3-endpoint" validate:"required"`
	DotbitEndpoint    string `yaml:"dotbit-endpoint" validate:"required"`
	FarcasterEndpoint string `yaml:"farcaster-endpoint" validate:"required"`
}

var upstreamConfig = DefaultUpstreamConfig()

// DefaultUpstreamConfig returns the default upstream endpoints.
func DefaultUpstreamConfig() *UpstreamConfig {
	return &UpstreamConfig{
		SybilListEndpoint: "https://raw.githubusercontent.com/Uniswap/sybil-list/master/verified.json",
		TheGraphEndpoint:  "https://api.thegraph.com/subgraphs/name/ensdomains/ens",
		KNN3Endpoint:      "https://knn3-gateway.knn3.xyz/api/v1",
		RSS3Endpoint:      "https://pregod.rss3.dev/v1",
		DotbitEndpoint:    "https://indexer-v1.did.id",
		FarcasterEndpoint: "https://api.warpcast.com",
	}
}

// RelationUpstreamConfig retrieves the active upstream config.
func RelationUpstreamConfig() *UpstreamConfig {
	return upstreamConfig
}

// OverrideUpstreamConfig by replacing the active upstream config.
func OverrideUpstreamConfig(c *UpstreamConfig) {
	upstreamConfig = c
}

// Copy returns a copy of the config object.
func (c *UpstreamConfig) Copy() *UpstreamConfig {
	config := deepcopy.Copy(*c).(UpstreamConfig)
	return &config
}
