package params

import (
	"github.com/mohae/deepcopy"
)

var relationConfig = DefaultConfig()

// RelationConfig retrieves the active relation service config.
func RelationConfig() *RelationServiceConfig {
	return relationConfig
}

// OverrideRelationConfig by replacing the config. The preferred pattern is to
// call RelationConfig(), change the specific parameters, and then call
// OverrideRelationConfig(c). Any subsequent calls to params.RelationConfig()
// will return this new configuration.
func OverrideRelationConfig(c *RelationServiceConfig) {
	relationConfig = c
}

// Copy returns a copy of the config object.
func (c *RelationServiceConfig) Copy() *RelationServiceConfig {
	config := deepcopy.Copy(*c).(RelationServiceConfig)
	return &config
}
