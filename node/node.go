// Package node is the main service which launches the relation service and
// manages the lifecycle of all its associated services at runtime, such as
// the graph store, upstream fetchers and the GraphQL server, gracefully
// closing them if the process ends.
package node

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/nextdotid/relationservice/cmd"
	"github.com/nextdotid/relationservice/cmd/relation/flags"
	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph/store"
	"github.com/nextdotid/relationservice/monitoring/prometheus"
	"github.com/nextdotid/relationservice/monitoring/tracing"
	"github.com/nextdotid/relationservice/query"
	"github.com/nextdotid/relationservice/runtime"
	"github.com/nextdotid/relationservice/runtime/version"
	"github.com/nextdotid/relationservice/server"
	"github.com/nextdotid/relationservice/upstream"
	"github.com/nextdotid/relationservice/upstream/dotbit"
	"github.com/nextdotid/relationservice/upstream/farcaster"
	"github.com/nextdotid/relationservice/upstream/knn3"
	"github.com/nextdotid/relationservice/upstream/rss3"
	"github.com/nextdotid/relationservice/upstream/sybillist"
	"github.com/nextdotid/relationservice/upstream/thegraph"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var log = logrus.WithField("prefix", "node")

// RelationNode defines a struct that handles the services running the
// relation service. It handles the lifecycle of the entire system and
// registers services to a service registry.
type RelationNode struct {
	cliCtx     *cli.Context
	ctx        context.Context
	cancel     context.CancelFunc
	services   *runtime.ServiceRegistry
	lock       sync.RWMutex
	stop       chan struct{} // Channel to wait for termination notifications.
	storeSvc   *store.Service
	dispatcher *upstream.Dispatcher
	refresher  *query.Refresher
	querySvc   *query.Service
}

// New creates a new node instance, sets up configuration options, and
// registers every required service to the node.
func New(cliCtx *cli.Context) (*RelationNode, error) {
	if err := tracing.Setup(
		"relation-service", // service name
		cliCtx.String(cmd.TracingProcessNameFlag.Name),
		cliCtx.String(cmd.TracingEndpointFlag.Name),
		cliCtx.Float64(cmd.TraceSampleFractionFlag.Name),
		cliCtx.Bool(cmd.EnableTracingFlag.Name),
	); err != nil {
		return nil, err
	}

	if cliCtx.IsSet(cmd.RelationConfigFileFlag.Name) {
		if err := params.LoadConfigFile(cliCtx.String(cmd.RelationConfigFileFlag.Name)); err != nil {
			return nil, err
		}
	}
	if cliCtx.IsSet(cmd.UpstreamConfigFileFlag.Name) {
		if err := params.LoadUpstreamConfigFile(cliCtx.String(cmd.UpstreamConfigFileFlag.Name)); err != nil {
			return nil, err
		}
	}

	registry := runtime.NewServiceRegistry()

	ctx, cancel := context.WithCancel(cliCtx.Context)
	node := &RelationNode{
		cliCtx:   cliCtx,
		ctx:      ctx,
		cancel:   cancel,
		services: registry,
		stop:     make(chan struct{}),
	}

	if err := node.registerGraphStoreService(cliCtx); err != nil {
		return nil, err
	}

	node.startUpstreams()

	if err := node.registerRefresher(); err != nil {
		return nil, err
	}

	node.querySvc = query.New(node.storeSvc.Client(), node.dispatcher, node.refresher)

	if err := node.registerGraphQLService(cliCtx); err != nil {
		return nil, err
	}

	if !cliCtx.Bool(cmd.DisableMonitoringFlag.Name) {
		if err := node.registerPrometheusService(cliCtx); err != nil {
			return nil, err
		}
	}

	return node, nil
}

// Start the relation node and kicks off every registered service.
func (n *RelationNode) Start() {
	n.lock.Lock()

	log.WithFields(logrus.Fields{
		"version": version.GetVersion(),
	}).Info("Starting relation service")

	n.services.StartAll()

	stop := n.stop
	n.lock.Unlock()

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigc)
		<-sigc
		log.Info("Got interrupt, shutting down...")
		go n.Close()
		for i := 10; i > 0; i-- {
			<-sigc
			if i > 1 {
				log.WithField("times", i-1).Info("Already shutting down, interrupt more to panic")
			}
		}
		panic("Panic closing the relation service node")
	}()

	// Wait for stop channel to be closed.
	<-stop
}

// Close handles graceful shutdown of the system.
func (n *RelationNode) Close() {
	n.lock.Lock()
	defer n.lock.Unlock()

	log.Info("Stopping relation service")
	n.services.StopAll()
	n.cancel()
	close(n.stop)
}

func (n *RelationNode) registerGraphStoreService(cliCtx *cli.Context) error {
	var clientOpts []store.ClientOpt
	if token := cliCtx.String(flags.GraphStoreTokenFlag.Name); token != "" {
		clientOpts = append(clientOpts, store.WithAuthenticationToken(token))
	}
	if tokenFile := cliCtx.String(flags.GraphStoreTokenFileFlag.Name); tokenFile != "" {
		clientOpts = append(clientOpts, store.WithAuthenticationTokenFile(tokenFile))
	}
	svc, err := store.NewService(
		n.ctx,
		store.WithHost(cliCtx.String(flags.GraphStoreEndpointFlag.Name)),
		store.WithClientOptions(clientOpts...),
	)
	if err != nil {
		return err
	}
	n.storeSvc = svc
	return n.services.RegisterService(svc)
}

// startUpstreams builds the fetcher registry and the dispatcher fanning
// identity lookups out to it. Fetchers are passive and need no lifecycle of
// their own; the shared store client persists whatever they find.
func (n *RelationNode) startUpstreams() {
	client := n.storeSvc.Client()
	registry := upstream.NewRegistry()
	registry.Register(sybillist.New(client))
	registry.Register(thegraph.New(client))
	registry.Register(knn3.New(client))
	registry.Register(rss3.New(client))
	registry.Register(dotbit.New(client))
	registry.Register(farcaster.New(client))
	n.dispatcher = upstream.NewDispatcher(registry)
}

func (n *RelationNode) registerRefresher() error {
	n.refresher = query.NewRefresher(n.ctx, n.storeSvc.Client(), n.dispatcher)
	return n.services.RegisterService(n.refresher)
}

func (n *RelationNode) registerGraphQLService(cliCtx *cli.Context) error {
	host := cliCtx.String(flags.HTTPHostFlag.Name)
	port := cliCtx.Int(flags.HTTPPortFlag.Name)
	allowedOrigins := strings.Split(cliCtx.String(flags.HTTPCorsDomainFlag.Name), ",")
	svc, err := server.NewService(n.ctx, &server.Config{
		Address:        fmt.Sprintf("%s:%d", host, port),
		AllowedOrigins: allowedOrigins,
		QueryService:   n.querySvc,
	})
	if err != nil {
		return err
	}
	return n.services.RegisterService(svc)
}

func (n *RelationNode) registerPrometheusService(cliCtx *cli.Context) error {
	service := prometheus.NewService(
		fmt.Sprintf("%s:%d", cliCtx.String(cmd.MonitoringHostFlag.Name), cliCtx.Int(flags.MonitoringPortFlag.Name)),
		n.services,
	)
	hook := prometheus.NewLogrusCollector()
	logrus.AddHook(hook)
	return n.services.RegisterService(service)
}
