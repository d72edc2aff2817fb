package store

import (
	"context"
	"sync"
	"time"

	"github.com/nextdotid/relationservice/async"
	"github.com/pkg/errors"
)

// defaultProbeInterval is how often the service echoes the graph database
// to keep its health status current.
const defaultProbeInterval = 30 * time.Second

type config struct {
	host          string
	clientOpts    []ClientOpt
	probeInterval time.Duration
}

// Service owns the graph store client for the lifetime of the process. It
// watches the bearer token file and keeps a health status other services
// and the healthz endpoint can consult.
type Service struct {
	cfg      *config
	ctx      context.Context
	cancel   context.CancelFunc
	client   *Client
	lock     sync.RWMutex
	runError error
}

// NewService constructs the store service with the provided options
// (ex WithHost).
func NewService(ctx context.Context, opts ...Option) (*Service, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &Service{
		cfg:    &config{probeInterval: defaultProbeInterval},
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			cancel()
			return nil, err
		}
	}
	if s.cfg.host == "" {
		cancel()
		return nil, errors.New("no graph store host configured")
	}
	client, err := NewClient(s.cfg.host, s.cfg.clientOpts...)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "could not construct graph store client")
	}
	s.client = client
	return s, nil
}

// Client returns the underlying store client shared with the upstream and
// query layers.
func (s *Service) Client() *Client {
	return s.client
}

// Start begins watching the token file and probing the store.
func (s *Service) Start() {
	log.WithField("endpoint", s.client.NodeURL()).Info("Connecting to graph store")
	if err := s.client.WatchTokenFile(s.ctx); err != nil {
		log.WithError(err).Error("Could not watch graph store token file")
	}
	go s.probe()
	async.RunEvery(s.ctx, s.cfg.probeInterval, s.probe)
}

// Stop releases the probe and watcher goroutines.
func (s *Service) Stop() error {
	s.cancel()
	return nil
}

// Status returns the error from the most recent probe, nil when the store
// answered it.
func (s *Service) Status() error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.runError
}

func (s *Service) probe() {
	err := s.client.Echo(s.ctx)
	s.lock.Lock()
	defer s.lock.Unlock()
	if err != nil {
		if s.runError == nil {
			log.WithError(err).Warn("Graph store is unreachable")
		}
		s.runError = err
		return
	}
	if s.runError != nil {
		log.Info("Graph store connection restored")
	}
	s.runError = nil
}
