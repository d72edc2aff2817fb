// Package store is the single persistence choke point of the relation
// service. It speaks the graph database's HTTP protocol: builtin vertex
// operations under /graph/{name}, installed traversal queries under
// /query/{name}, and batch upserts with per-attribute operator hints.
package store

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	jsoniter "github.com/json-iterator/go"
	"github.com/nextdotid/relationservice/async"
	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph"
	"github.com/nextdotid/relationservice/io/logs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "store")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// tokenReloadDebounce collapses bursts of file watcher events into a single
// token reload.
const tokenReloadDebounce = time.Second

// Client is a wrapper object around the HTTP client of the graph database.
type Client struct {
	hc        *http.Client
	baseURL   *url.URL
	graph     string
	tokenMu   sync.RWMutex
	token     string
	tokenPath string
}

// NewClient constructs a new client with the provided options (ex WithTimeout).
// `host` is the base host + port used to construct request urls. This value can
// be a URL string, or NewClient will assume an http endpoint if just `host:port`
// is used.
func NewClient(host string, opts ...ClientOpt) (*Client, error) {
	u, err := urlForHost(host)
	if err != nil {
		return nil, err
	}
	cfg := params.RelationConfig()
	c := &Client{
		hc:      &http.Client{Timeout: time.Duration(cfg.GraphStoreTimeoutSeconds) * time.Second},
		baseURL: u,
		graph:   cfg.GraphName,
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func urlForHost(h string) (*url.URL, error) {
	// try to parse as url (being permissive)
	u, err := url.Parse(h)
	if err == nil && u.Host != "" {
		return u, nil
	}
	// try to parse as host:port
	host, port, err := net.SplitHostPort(h)
	if err != nil {
		return nil, ErrMalformedHostname
	}
	return &url.URL{Host: net.JoinHostPort(host, port), Scheme: "http"}, nil
}

// NodeURL returns a human-readable representation of the store base url with
// any credentials masked.
func (c *Client) NodeURL() string {
	return logs.MaskCredentialsLogging(c.baseURL.String())
}

// Graph returns the graph name requests are scoped to.
func (c *Client) Graph() string {
	return c.graph
}

// Token returns the bearer token used for store authentication.
func (c *Client) Token() string {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	c.token = token
}

func (c *Client) reloadTokenFile() error {
	b, err := ioutil.ReadFile(c.tokenPath) // #nosec G304
	if err != nil {
		return errors.Wrapf(err, "could not read token file %s", c.tokenPath)
	}
	c.setToken(strings.TrimSpace(string(b)))
	log.WithField("path", c.tokenPath).Info("Reloaded graph store token")
	return nil
}

// WatchTokenFile re-reads the bearer token whenever its file changes, so a
// token rotation does not require a restart. No-op when the client was not
// configured with a token file.
func (c *Client) WatchTokenFile(ctx context.Context) error {
	if c.tokenPath == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "could not create token file watcher")
	}
	if err := watcher.Add(c.tokenPath); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			log.WithError(closeErr).Debug("Could not close token file watcher")
		}
		return errors.Wrapf(err, "could not watch token file %s", c.tokenPath)
	}

	events := make(chan interface{}, 1)
	go async.Debounce(ctx, tokenReloadDebounce, events, func(interface{}) {
		if err := c.reloadTokenFile(); err != nil {
			log.WithError(err).Error("Could not reload graph store token")
		}
	})
	go func() {
		defer func() {
			if err := watcher.Close(); err != nil {
				log.WithError(err).Debug("Could not close token file watcher")
			}
		}()
		for {
			select {
			case ev := <-watcher.Events:
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case events <- ev:
				default:
				}
			case err := <-watcher.Errors:
				log.WithError(err).Error("Token file watcher error")
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// get issues a GET against the store and decodes the response envelope.
func (c *Client) get(ctx context.Context, path string, query url.Values, out envelope, op string) error {
	u := c.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &graph.StoreError{Operation: op, Err: err}
	}
	return c.do(req, out, op)
}

// post issues a POST with a JSON body against the store.
func (c *Client) post(ctx context.Context, path string, body interface{}, out envelope, op string) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return &graph.StoreError{Operation: op, Err: errors.Wrap(err, "could not encode request body")}
	}
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(encoded))
	if err != nil {
		return &graph.StoreError{Operation: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out, op)
}

// del issues a DELETE against the store.
func (c *Client) del(ctx context.Context, path string, out envelope, op string) error {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u.String(), nil)
	if err != nil {
		return &graph.StoreError{Operation: op, Err: err}
	}
	return c.do(req, out, op)
}

func (c *Client) do(req *http.Request, out envelope, op string) error {
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		storeRequestFailures.WithLabelValues(op).Inc()
		return &graph.StoreError{Operation: op, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.WithError(err).Debug("Could not close response body")
		}
	}()
	storeRequestLatency.WithLabelValues(op).Observe(float64(time.Since(start).Milliseconds()))

	if resp.StatusCode != http.StatusOK {
		storeRequestFailures.WithLabelValues(op).Inc()
		return &graph.StoreError{Operation: op, Err: Non200Err(resp)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		storeRequestFailures.WithLabelValues(op).Inc()
		return &graph.StoreError{Operation: op, Err: errors.Wrap(err, "could not read response body")}
	}
	if err := json.Unmarshal(body, out); err != nil {
		storeRequestFailures.WithLabelValues(op).Inc()
		return &graph.StoreError{Operation: op, Err: errors.Wrap(err, "could not decode response")}
	}
	if base := out.base(); base.Error {
		storeRequestFailures.WithLabelValues(op).Inc()
		return &graph.StoreError{Operation: op, Code: base.Code, Message: base.Message}
	}
	return nil
}
