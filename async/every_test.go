package async_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nextdotid/relationservice/async"
)

func TestRunEvery_TicksUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var runs int32
	async.RunEvery(ctx, 20*time.Millisecond, func() {
		atomic.AddInt32(&runs, 1)
	})

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&runs) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("ticker never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()

	// Give the goroutine a moment to observe the cancellation, then make
	// sure the counter has settled.
	time.Sleep(60 * time.Millisecond)
	last := atomic.LoadInt32(&runs)
	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&runs) != last {
		t.Error("ticker kept firing after cancel")
	}
}
