// Package testing spins up a fake graph database server for unit tests that
// exercise the store client, the upstream adapters or the query layer.
package testing

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nextdotid/relationservice/graph/store"
)

// FakeStore is an in-memory stand-in for the graph database HTTP surface.
// Upserts and deletes are recorded for assertions, installed queries reply
// with stubbed results.
type FakeStore struct {
	server *httptest.Server

	mu       sync.Mutex
	upserts  []string
	deletes  []string
	requests []string
	stubs    map[string][]string
}

// SetupStore starts a fake graph database and returns a store client wired
// to it. The server is torn down with the test.
func SetupStore(t testing.TB) (*FakeStore, *store.Client) {
	f := &FakeStore{stubs: map[string][]string{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	c, err := store.NewClient(f.server.URL)
	if err != nil {
		t.Fatalf("could not build store client: %v", err)
	}
	return f, c
}

// URL returns the fake server's base url.
func (f *FakeStore) URL() string {
	return f.server.URL
}

// StubQuery registers results payloads for an installed query. Each request
// consumes one payload in order; the last one sticks. The payload is the raw
// JSON of the results array, e.g. `[{"vertices": []}]`.
func (f *FakeStore) StubQuery(name string, results ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stubs[name] = append(f.stubs[name], results...)
}

// Upserts returns the recorded bodies of every upsert request.
func (f *FakeStore) Upserts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.upserts...)
}

// Deletes returns the vertex ids of every delete request.
func (f *FakeStore) Deletes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.deletes...)
}

// Requests returns "METHOD path" for every request seen, in order.
func (f *FakeStore) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.requests...)
}

func (f *FakeStore) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
	switch {
	case parts[0] == "echo":
		fmt.Fprint(w, `{"error": false}`)
	case parts[0] == "graph" && r.Method == http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		f.mu.Lock()
		f.upserts = append(f.upserts, string(body))
		f.mu.Unlock()
		fmt.Fprint(w, `{"error": false, "results": [{"accepted_vertices": 1, "accepted_edges": 1}]}`)
	case parts[0] == "graph" && r.Method == http.MethodDelete:
		// /graph/{name}/vertices/{type}/{vid}
		f.mu.Lock()
		f.deletes = append(f.deletes, parts[len(parts)-1])
		f.mu.Unlock()
		fmt.Fprint(w, `{"error": false, "results": {"deleted_vertices": 1, "v_type": "Identities"}}`)
	case parts[0] == "graph" && r.Method == http.MethodGet:
		// Builtin vertex lookups share the stub table under the vertex type.
		fmt.Fprintf(w, `{"error": false, "results": %s}`, f.nextStub(parts[len(parts)-1], "[]"))
	case parts[0] == "query":
		fmt.Fprintf(w, `{"error": false, "results": %s}`, f.nextStub(parts[len(parts)-1], "[]"))
	default:
		fmt.Fprint(w, `{"error": true, "code": "REST-1000", "message": "unknown endpoint"}`)
	}
}

// nextStub pops the next stubbed payload for key, keeping the last one as a
// standing answer. fallback is served when nothing was stubbed.
func (f *FakeStore) nextStub(key, fallback string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	queue := f.stubs[key]
	if len(queue) == 0 {
		return fallback
	}
	next := queue[0]
	if len(queue) > 1 {
		f.stubs[key] = queue[1:]
	}
	return next
}
