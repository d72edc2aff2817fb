// Package server exposes the relation service query surface over GraphQL.
// The schema is a thin projection of the query package: identity lookups
// with stale-while-revalidate freshness, graph traversals, name resolution
// and proof lookups. Every request carries a request-scoped batch loader so
// per-identity reads triggered by resolver fan-out coalesce into single
// store round trips.
package server
