// Package params defines the runtime parameters of the relation service,
// with a process-global active configuration that can be overridden from
// a YAML file or in tests.
package params

// RelationServiceConfig contains the tunable parameters of the relation
// service: freshness windows, background refresh policy, target dispatch
// limits and query defaults.
type RelationServiceConfig struct {
	ConfigName string `yaml:"config-name" validate:"required"`

	// Graph store.
	GraphName                string `yaml:"graph-name" validate:"required"`
	GraphStoreTimeoutSeconds uint64 `yaml:"graph-store-timeout-seconds" validate:"gt=0"`

	// Freshness windows. An identity is served from the store while its
	// updated_at is within the window; domain identities participating in
	// name resolution keep a longer one.
	IdentityTTLSeconds uint64 `yaml:"identity-ttl-seconds" validate:"gt=0"`
	DomainTTLSeconds   uint64 `yaml:"domain-ttl-seconds" validate:"gt=0"`

	// Background refresh of outdated records.
	RefreshDebounceSeconds uint64 `yaml:"refresh-debounce-seconds" validate:"gt=0"`
	RefreshWorkers         int    `yaml:"refresh-workers" validate:"gt=0"`
	RefreshQueueSize       int    `yaml:"refresh-queue-size" validate:"gt=0"`

	// Target dispatch.
	FetchDepth          int    `yaml:"fetch-depth" validate:"gt=0"`
	FetchConcurrency    int64  `yaml:"fetch-concurrency" validate:"gt=0"`
	FetchTimeoutSeconds uint64 `yaml:"fetch-timeout-seconds" validate:"gt=0"`

	// Per-upstream rate limiting, in requests per second and burst capacity.
	UpstreamRateLimit    int64 `yaml:"upstream-rate-limit" validate:"gt=0"`
	UpstreamRateCapacity int64 `yaml:"upstream-rate-capacity" validate:"gt=0"`

	// Request-scoped batch loader.
	LoaderMaxBatch int    `yaml:"loader-max-batch" validate:"gt=0,lte=1000"`
	LoaderWaitMs   uint64 `yaml:"loader-wait-ms" validate:"gt=0"`

	// Query defaults.
	DefaultTraversalDepth uint16 `yaml:"default-traversal-depth" validate:"gt=0"`
	DefaultNFTLimit       uint16 `yaml:"default-nft-limit" validate:"gt=0"`
}

// DefaultConfig returns the default relation service config.
func DefaultConfig() *RelationServiceConfig {
	return &RelationServiceConfig{
		ConfigName: "default",

		GraphName:                "IdentityGraph",
		GraphStoreTimeoutSeconds: 10,

		IdentityTTLSeconds: 3600,
		DomainTTLSeconds:   86400,

		RefreshDebounceSeconds: 10,
		RefreshWorkers:         4,
		RefreshQueueSize:       256,

		FetchDepth:          3,
		FetchConcurrency:    32,
		FetchTimeoutSeconds: 30,

		UpstreamRateLimit:    64,
		UpstreamRateCapacity: 640,

		LoaderMaxBatch: 1000,
		LoaderWaitMs:   2,

		DefaultTraversalDepth: 1,
		DefaultNFTLimit:       100,
	}
}
