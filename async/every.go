// Package async holds the scheduling helpers shared by the long-running
// services of the relation node: periodic runners and event debouncing.
package async

import (
	"context"
	"reflect"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// RunEvery invokes f once per period on a dedicated goroutine until ctx is
// done. The first invocation happens one full period after the call, so
// callers wanting an immediate run invoke f themselves first.
func RunEvery(ctx context.Context, period time.Duration, f func()) {
	name := runtime.FuncForPC(reflect.ValueOf(f).Pointer()).Name()
	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				log.WithField("function", name).Trace("running")
				f()
			case <-ctx.Done():
				log.WithField("function", name).Debug("context is closed, exiting")
				return
			}
		}
	}()
}
