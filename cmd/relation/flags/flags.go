// Package flags contains all configuration runtime flags for
// the relation service.
package flags

import (
	"github.com/urfave/cli/v2"
)

var (
	// GraphStoreEndpointFlag defines the graph database REST endpoint.
	GraphStoreEndpointFlag = &cli.StringFlag{
		Name:  "graph-store-endpoint",
		Usage: "Graph database REST endpoint holding the identity graph",
		Value: "http://127.0.0.1:9000",
	}
	// GraphStoreTokenFlag defines a bearer token for the graph database.
	GraphStoreTokenFlag = &cli.StringFlag{
		Name:  "graph-store-token",
		Usage: "Bearer token used to authenticate against the graph database",
	}
	// GraphStoreTokenFileFlag defines a file holding the graph database bearer
	// token. The file is watched so rotated tokens take effect without a restart.
	GraphStoreTokenFileFlag = &cli.StringFlag{
		Name:  "graph-store-token-file",
		Usage: "Path to a file holding the graph database bearer token",
	}
	// HTTPHostFlag defines the host on which the GraphQL server listens.
	HTTPHostFlag = &cli.StringFlag{
		Name:  "http-host",
		Usage: "Host on which the GraphQL server should listen",
		Value: "127.0.0.1",
	}
	// HTTPPortFlag defines the port on which the GraphQL server listens.
	HTTPPortFlag = &cli.IntFlag{
		Name:  "http-port",
		Usage: "Port on which the GraphQL server should listen",
		Value: 8000,
	}
	// HTTPCorsDomainFlag defines origins allowed to reach the GraphQL server.
	HTTPCorsDomainFlag = &cli.StringFlag{
		Name: "http-cors-domain",
		Usage: "Comma separated list of domains from which to accept cross origin requests " +
			"(browser enforced)",
		Value: "*",
	}
	// MonitoringPortFlag defines the http port used to serve prometheus metrics.
	MonitoringPortFlag = &cli.IntFlag{
		Name:  "monitoring-port",
		Usage: "Port used to listening and respond metrics for prometheus.",
		Value: 8081,
	}
)
