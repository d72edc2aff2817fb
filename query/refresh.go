package query

import (
	"context"
	"sync"
	"time"

	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph"
	"github.com/nextdotid/relationservice/graph/store"
	"github.com/nextdotid/relationservice/upstream"
	cache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// refreshJob names one outdated vertex and the targets that rebuild it.
type refreshJob struct {
	vid     string
	targets []upstream.Target
}

// Refresher rebuilds outdated vertices in the background. Jobs are debounced
// per vertex, sit out a grace window, then delete the vertex and crawl its
// targets again. Failures are logged, never surfaced to the query that
// scheduled the job.
type Refresher struct {
	ctx        context.Context
	cancel     context.CancelFunc
	store      *store.Client
	dispatcher *upstream.Dispatcher
	queue      chan refreshJob
	scheduled  *cache.Cache
	debounce   time.Duration
	workers    int
	wg         sync.WaitGroup
	mu         sync.RWMutex
	draining   bool
}

// NewRefresher builds a stopped refresher; Start spawns its workers.
func NewRefresher(ctx context.Context, s *store.Client, d *upstream.Dispatcher) *Refresher {
	ctx, cancel := context.WithCancel(ctx)
	cfg := params.RelationConfig()
	debounce := time.Duration(cfg.RefreshDebounceSeconds) * time.Second
	return &Refresher{
		ctx:        ctx,
		cancel:     cancel,
		store:      s,
		dispatcher: d,
		queue:      make(chan refreshJob, cfg.RefreshQueueSize),
		scheduled:  cache.New(debounce, debounce),
		debounce:   debounce,
		workers:    cfg.RefreshWorkers,
	}
}

// Start implements runtime.Service.
func (r *Refresher) Start() {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	log.WithFields(logrus.Fields{
		"workers":  r.workers,
		"debounce": r.debounce,
	}).Info("Background refresher started")
}

// Stop implements runtime.Service. Jobs still waiting in the queue or in
// their grace window are dropped.
func (r *Refresher) Stop() error {
	r.mu.Lock()
	r.draining = true
	r.mu.Unlock()
	r.cancel()
	r.wg.Wait()
	return nil
}

// Status implements runtime.Service.
func (r *Refresher) Status() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.draining {
		return errors.New("refresher is draining")
	}
	return nil
}

// Enqueue schedules a refresh of vid driven by targets. A vertex already
// scheduled within the debounce window is dropped silently; a full queue is
// reported so the caller can log it, the stale record stays served either
// way.
func (r *Refresher) Enqueue(vid string, targets ...upstream.Target) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.draining {
		return &graph.PoolError{Message: "refresher is draining"}
	}
	if err := r.scheduled.Add(vid, struct{}{}, cache.DefaultExpiration); err != nil {
		refreshDebounced.Inc()
		return nil
	}
	select {
	case r.queue <- refreshJob{vid: vid, targets: targets}:
		refreshEnqueued.Inc()
		return nil
	default:
		r.scheduled.Delete(vid)
		return &graph.PoolError{Message: "refresh queue is full"}
	}
}

func (r *Refresher) worker() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case job := <-r.queue:
			r.process(job)
		}
	}
}

// process sits out the debounce window, then rebuilds the vertex from its
// upstreams. The delete runs first so a failed crawl cannot leave edges from
// the previous generation behind.
func (r *Refresher) process(job refreshJob) {
	ctx, span := trace.StartSpan(r.ctx, "query.refresh")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("vId", job.vid))

	timer := time.NewTimer(r.debounce)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	if err := r.store.DeleteVertexAndEdges(ctx, job.vid); err != nil {
		refreshFailures.Inc()
		log.WithError(err).WithField("vId", job.vid).Error("Could not delete outdated vertex")
		return
	}
	if err := r.dispatcher.FetchAll(ctx, job.targets); err != nil {
		refreshFailures.Inc()
		log.WithError(err).WithField("vId", job.vid).Error("Could not rebuild vertex from upstreams")
		return
	}
	log.WithField("vId", job.vid).Debug("Refreshed outdated vertex")
}
