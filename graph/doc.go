// Package graph defines the domain model of the relation service: identity
// and contract vertices, proof / hold / resolve edges between them, and the
// enums shared across upstream adapters, the graph store and the query layer.
package graph
