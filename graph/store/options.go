package store

import (
	"net/http"
	"time"
)

// ClientOpt is a functional option for the Client type (http.Client wrapper).
type ClientOpt func(*Client) error

// WithTimeout sets the .Timeout attribute of the wrapped http.Client.
func WithTimeout(timeout time.Duration) ClientOpt {
	return func(c *Client) error {
		c.hc.Timeout = timeout
		return nil
	}
}

// WithCustomTransport replaces the underlying http's transport with a custom one.
func WithCustomTransport(t http.RoundTripper) ClientOpt {
	return func(c *Client) error {
		c.hc.Transport = t
		return nil
	}
}

// WithGraph scopes requests to a graph other than the configured default.
func WithGraph(name string) ClientOpt {
	return func(c *Client) error {
		c.graph = name
		return nil
	}
}

// WithAuthenticationToken sets a bearer token to be used on every request.
func WithAuthenticationToken(token string) ClientOpt {
	return func(c *Client) error {
		c.setToken(token)
		return nil
	}
}

// WithAuthenticationTokenFile reads the bearer token from a file. Combine
// with WatchTokenFile to pick up rotations without a restart.
func WithAuthenticationTokenFile(path string) ClientOpt {
	return func(c *Client) error {
		c.tokenPath = path
		return c.reloadTokenFile()
	}
}

// Option is a functional option for the store Service.
type Option func(*Service) error

// WithHost sets the graph database host the service connects to.
func WithHost(host string) Option {
	return func(s *Service) error {
		s.cfg.host = host
		return nil
	}
}

// WithClientOptions forwards options to the underlying client.
func WithClientOptions(opts ...ClientOpt) Option {
	return func(s *Service) error {
		s.cfg.clientOpts = append(s.cfg.clientOpts, opts...)
		return nil
	}
}

// WithProbeInterval overrides how often the service probes the store.
func WithProbeInterval(interval time.Duration) Option {
	return func(s *Service) error {
		s.cfg.probeInterval = interval
		return nil
	}
}
