// Package query orchestrates reads over the identity graph: records are
// served from the store while fresh, fetched synchronously when absent, and
// refreshed in the background when stale. It also carries the request-scoped
// batch loader and the traversal projections consumed by the GraphQL layer.
package query
