package upstream

import (
	"fmt"
	"strings"
	"sync"

	"github.com/nextdotid/relationservice/graph"
)

// Failure records one fetcher failing one target during a crawl.
type Failure struct {
	Fetcher graph.DataSource
	Target  Target
	Err     error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s on %s: %v", f.Fetcher, f.Target, f.Err)
}

// DispatchError aggregates the per-target failures of one crawl. Sibling
// fetches keep running when one fails; the collected failures surface once
// the whole crawl settles.
type DispatchError struct {
	// Attempted is the total number of fetches the crawl dispatched.
	Attempted int
	Failures  []Failure
}

func (e *DispatchError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("%d of %d fetches failed: %s", len(e.Failures), e.Attempted, strings.Join(parts, "; "))
}

// failureList collects failures from concurrent fetch goroutines.
type failureList struct {
	mu   sync.Mutex
	list []Failure
}

func (l *failureList) add(fetcher graph.DataSource, t Target, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.list = append(l.list, Failure{Fetcher: fetcher, Target: t, Err: err})
}

// err returns the aggregated error, or nil when every fetch succeeded.
func (l *failureList) err(attempted int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.list) == 0 {
		return nil
	}
	return &DispatchError{Attempted: attempted, Failures: l.list}
}
