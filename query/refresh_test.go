package query

import (
	"context"
	"testing"
	"time"

	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph"
	storetesting "github.com/nextdotid/relationservice/graph/store/testing"
	"github.com/nextdotid/relationservice/testing/assert"
	"github.com/nextdotid/relationservice/testing/require"
	"github.com/nextdotid/relationservice/upstream"
)

func setupRefresher(t *testing.T, queueSize int, fetchers ...upstream.Fetcher) (*Refresher, *storetesting.FakeStore) {
	params.SetupTestConfigCleanup(t)
	cfg := params.RelationConfig().Copy()
	cfg.RefreshDebounceSeconds = 1
	cfg.RefreshQueueSize = queueSize
	params.OverrideRelationConfig(cfg)

	fake, client := storetesting.SetupStore(t)
	registry := upstream.NewRegistry()
	for _, f := range fetchers {
		registry.Register(f)
	}
	return NewRefresher(context.Background(), client, upstream.NewDispatcher(registry)), fake
}

func TestRefresher_DeletesThenRecrawls(t *testing.T) {
	fetcher := &stubFetcher{name: graph.SourceTheGraph, platforms: []graph.Platform{graph.PlatformTwitter}}
	r, fake := setupRefresher(t, 16, fetcher)
	r.Start()
	defer func() {
		require.NoError(t, r.Stop())
	}()

	target := upstream.NewIdentity(graph.PlatformTwitter, "alice")
	require.NoError(t, r.Enqueue("twitter,alice", target))

	deadline := time.Now().Add(5 * time.Second)
	for fetcher.fetchCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	require.Equal(t, 1, fetcher.fetchCount())
	deletes := fake.Deletes()
	require.Equal(t, 1, len(deletes))
	assert.Equal(t, "twitter,alice", deletes[0])
}

func TestEnqueue_SecondEnqueueWithinWindowIsDropped(t *testing.T) {
	r, _ := setupRefresher(t, 16)
	target := upstream.NewIdentity(graph.PlatformTwitter, "alice")

	require.NoError(t, r.Enqueue("twitter,alice", target))
	require.NoError(t, r.Enqueue("twitter,alice", target))
	assert.Equal(t, 1, len(r.queue))
}

func TestEnqueue_FullQueueReturnsPoolError(t *testing.T) {
	r, _ := setupRefresher(t, 1)
	target := upstream.NewIdentity(graph.PlatformTwitter, "alice")

	require.NoError(t, r.Enqueue("twitter,alice", target))
	err := r.Enqueue("twitter,bob", upstream.NewIdentity(graph.PlatformTwitter, "bob"))
	require.NotNil(t, err)
	assert.Equal(t, true, graph.IsPoolError(err))
}

func TestEnqueue_AfterStopReturnsPoolError(t *testing.T) {
	r, _ := setupRefresher(t, 16)
	require.NoError(t, r.Stop())

	err := r.Enqueue("twitter,alice", upstream.NewIdentity(graph.PlatformTwitter, "alice"))
	require.NotNil(t, err)
	assert.Equal(t, true, graph.IsPoolError(err))
	require.NotNil(t, r.Status())
}

func TestRefresher_StopCancelsJobsInTheirGraceWindow(t *testing.T) {
	fetcher := &stubFetcher{name: graph.SourceTheGraph, platforms: []graph.Platform{graph.PlatformTwitter}}
	r, fake := setupRefresher(t, 16, fetcher)
	r.Start()

	require.NoError(t, r.Enqueue("twitter,alice", upstream.NewIdentity(graph.PlatformTwitter, "alice")))
	// Stop before the one-second debounce elapses; the job must not run.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, r.Stop())

	assert.Equal(t, 0, fetcher.fetchCount())
	assert.Equal(t, 0, len(fake.Deletes()))
}
