package params

import (
	"io/ioutil"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// LoadConfigFile loads a YAML config file, applies it on top of the default
// config, validates the result and makes it the active config. Unknown keys
// are rejected so typos do not pass silently.
func LoadConfigFile(configFileName string) error {
	yamlFile, err := ioutil.ReadFile(configFileName) // #nosec G304
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}
	conf := DefaultConfig().Copy()
	if err := yaml.UnmarshalStrict(yamlFile, conf); err != nil {
		return errors.Wrap(err, "failed to parse config yaml file")
	}
	if err := validator.New().Struct(conf); err != nil {
		return errors.Wrap(err, "config file failed validation")
	}
	log.Debugf("Config file values: %+v", conf)
	OverrideRelationConfig(conf)
	return nil
}

// LoadUpstreamConfigFile loads a YAML upstream endpoint file, applies it on
// top of the defaults, validates and activates it.
func LoadUpstreamConfigFile(configFileName string) error {
	yamlFile, err := ioutil.ReadFile(configFileName) // #nosec G304
	if err != nil {
		return errors.Wrap(err, "failed to read upstream config file")
	}
	conf := DefaultUpstreamConfig().Copy()
	if err := yaml.UnmarshalStrict(yamlFile, conf); err != nil {
		return errors.Wrap(err, "failed to parse upstream config yaml file")
	}
	if err := validator.New().Struct(conf); err != nil {
		return errors.Wrap(err, "upstream config file failed validation")
	}
	log.Debugf("Upstream config file values: %+v", conf)
	OverrideUpstreamConfig(conf)
	return nil
}
