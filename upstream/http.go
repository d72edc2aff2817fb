package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/graph"
	"github.com/nextdotid/relationservice/network"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// non2xxBodyLimit bounds how much of an upstream error body makes it into an
// error message.
const non2xxBodyLimit = 1024

// NewHTTPClient returns an HTTP client with the upstream fetch timeout from
// the active config. Adapters share one client per fetcher.
func NewHTTPClient() *http.Client {
	cfg := params.RelationConfig()
	return &http.Client{Timeout: time.Duration(cfg.FetchTimeoutSeconds) * time.Second}
}

// GetJSON issues a GET against the endpoint and decodes the JSON response
// into out. Transport failures, non-2xx statuses and undecodable bodies are
// reported as upstream errors attributed to source.
func GetJSON(ctx context.Context, hc *http.Client, endpoint network.Endpoint, path string, out interface{}, source graph.DataSource) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.Url+path, nil)
	if err != nil {
		return &graph.UpstreamError{Upstream: source.String(), Message: "could not create request", Err: err}
	}
	return doJSON(hc, req, endpoint, out, source)
}

// PostJSON issues a POST with a JSON body against the endpoint and decodes
// the JSON response into out. Pass a nil out to discard the response body.
func PostJSON(ctx context.Context, hc *http.Client, endpoint network.Endpoint, path string, body, out interface{}, source graph.DataSource) error {
	b, err := json.Marshal(body)
	if err != nil {
		return &graph.UpstreamError{Upstream: source.String(), Message: "could not marshal request body", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.Url+path, bytes.NewReader(b))
	if err != nil {
		return &graph.UpstreamError{Upstream: source.String(), Message: "could not create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return doJSON(hc, req, endpoint, out, source)
}

func doJSON(hc *http.Client, req *http.Request, endpoint network.Endpoint, out interface{}, source graph.DataSource) error {
	header, err := endpoint.Auth.ToHeaderValue()
	if err != nil {
		return &graph.UpstreamError{Upstream: source.String(), Message: "could not build authorization header", Err: err}
	}
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return &graph.UpstreamError{Upstream: source.String(), Message: "request failed", Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.WithError(err).Debug("Could not close upstream response body")
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, non2xxBodyLimit))
		return &graph.UpstreamError{
			Upstream: source.String(),
			Message:  fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &graph.UpstreamError{Upstream: source.String(), Message: "could not decode response", Err: err}
	}
	return nil
}
