package server

import (
	"context"
	"net/http"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/gorilla/mux"
	"github.com/nextdotid/relationservice/query"
	"github.com/nextdotid/relationservice/runtime"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

var _ runtime.Service = (*Service)(nil)

// Config parameters for setting up the GraphQL server.
type Config struct {
	Address        string
	AllowedOrigins []string
	QueryService   *query.Service
}

// Service serves the GraphQL query surface over HTTP, with an interactive
// query browser on the root path.
type Service struct {
	cfg          *Config
	server       *http.Server
	cancel       context.CancelFunc
	ctx          context.Context
	startFailure error
}

// NewService parses the schema against the resolver tree and prepares the
// HTTP server. Schema mismatches surface here, not at serve time.
func NewService(ctx context.Context, cfg *Config) (*Service, error) {
	if cfg.QueryService == nil {
		return nil, errors.New("query service is required")
	}
	s := &Service{cfg: cfg}
	s.ctx, s.cancel = context.WithCancel(ctx)

	parsed, err := graphql.ParseSchema(schema, NewResolver(cfg.QueryService))
	if err != nil {
		return nil, errors.Wrap(err, "could not parse GraphQL schema")
	}

	router := mux.NewRouter()
	gql := s.withLoader(&relay.Handler{Schema: parsed})
	router.Handle("/graphql", gql)
	router.Handle("/graphql/", gql)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, []byte(`{"status": "ok"}`), http.StatusOK)
	})
	router.Handle("/", GraphiQL{})

	s.server = &http.Server{
		Addr:    cfg.Address,
		Handler: s.corsMiddleware(router),
	}
	return s, nil
}

// Start serving. Listen failures surface through Status.
func (s *Service) Start() {
	go func() {
		log.WithField("address", s.cfg.Address).Info("Starting GraphQL server")
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("Failed to start GraphQL server")
			s.startFailure = err
			return
		}
	}()
}

// Stop the server with a graceful shutdown.
func (s *Service) Stop() error {
	if s.server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(s.ctx, 2*time.Second)
		defer shutdownCancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				log.Warn("Existing connections terminated")
			} else {
				log.WithError(err).Error("Failed to gracefully shut down server")
			}
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// Status returns an error if the server failed to start.
func (s *Service) Status() error {
	return s.startFailure
}

// withLoader attaches a request-scoped batch loader, so edge endpoints
// expanded anywhere in one query coalesce into batched vertex reads.
func (s *Service) withLoader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := query.WithLoader(r.Context(), s.cfg.QueryService.NewLoader())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) corsMiddleware(h http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowCredentials: true,
		MaxAge:           600,
		AllowedHeaders:   []string{"*"},
	})
	return c.Handler(h)
}
