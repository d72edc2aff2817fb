// Package network includes useful types for networking and endpoint handling.
package network

import (
	"strings"

	"github.com/nextdotid/relationservice/network/authorization"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "network")

// Endpoint is an endpoint with authorization data.
type Endpoint struct {
	Url  string
	Auth AuthorizationData
}

// AuthorizationData holds all information necessary to authorize with HTTP.
type AuthorizationData struct {
	Method authorization.Method
	Value  string
}

// Equals compares an endpoint for equality with the other endpoint.
func (e Endpoint) Equals(other Endpoint) bool {
	return e.Url == other.Url && e.Auth.Equals(other.Auth)
}

// Equals compares authorization data for equality with the other data.
func (d AuthorizationData) Equals(other AuthorizationData) bool {
	return d.Method == other.Method && d.Value == other.Value
}

// ToHeaderValue retrieves the value of the authorization header from AuthorizationData.
func (d *AuthorizationData) ToHeaderValue() (string, error) {
	switch d.Method {
	case authorization.Basic:
		return "Basic " + d.Value, nil
	case authorization.Bearer:
		return "Bearer " + d.Value, nil
	case authorization.None:
		return "", nil
	}
	return "", errors.New("could not create HTTP header for unknown authorization method")
}

// Method returns the authorization.Method corresponding to the parameter value.
func Method(auth string) authorization.Method {
	if strings.HasPrefix(strings.ToLower(auth), "basic") {
		return authorization.Basic
	}
	if strings.HasPrefix(strings.ToLower(auth), "bearer") {
		return authorization.Bearer
	}
	return authorization.None
}

// HttpEndpoint parses an endpoint string into an Endpoint. The value may carry
// an authorization in the form "<url>|<method> <token>".
func HttpEndpoint(provider string) Endpoint {
	endpoint := Endpoint{Url: "", Auth: AuthorizationData{Method: authorization.None, Value: ""}}
	authValues := strings.Split(provider, "|")
	endpoint.Url = strings.TrimSpace(authValues[0])
	if len(authValues) > 2 {
		log.Errorf(
			"%s contains too many separators - the correct format is <endpoint>|<authorization method> <authorization value>",
			provider,
		)
	} else if len(authValues) == 2 {
		authValue := strings.TrimSpace(authValues[1])
		method := Method(authValue)
		if method != authorization.None {
			endpoint.Auth.Method = method
			endpoint.Auth.Value = strings.TrimSpace(authValue[strings.Index(authValue, " ")+1:])
		}
	}
	return endpoint
}
