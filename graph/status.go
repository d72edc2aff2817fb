package graph

// DataStatus describes a record's position in the fetch lifecycle. A record
// carries a set of statuses, not a single state: a stale record is both
// cached and outdated until the background refetch lands.
type DataStatus string

const (
	// StatusCached marks a record persisted in the graph store.
	StatusCached DataStatus = "cached"
	// StatusOutdated marks a cached record past its freshness window.
	StatusOutdated DataStatus = "outdated"
	// StatusFetching marks a record with no persisted id yet.
	StatusFetching DataStatus = "fetching"
)

func (s DataStatus) String() string {
	return string(s)
}
