package params

import "testing"

// SetupTestConfigCleanup preserves the active configs and restores them when
// the test finishes, so tests can override parameters without leaking them
// into other tests.
func SetupTestConfigCleanup(t testing.TB) {
	prevConfig := RelationConfig().Copy()
	prevUpstreams := RelationUpstreamConfig().Copy()
	t.Cleanup(func() {
		OverrideRelationConfig(prevConfig)
		OverrideUpstreamConfig(prevUpstreams)
	})
}
