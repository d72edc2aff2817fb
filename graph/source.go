package graph

import "strings"

// DataSource names the origin of a persisted claim. SybilList keeps its
// original casing, all other variants are lowercase snake case.
type DataSource string

const (
	SourceUnknown   DataSource = "unknown"
	SourceSybilList DataSource = "SybilList"
	SourceTheGraph  DataSource = "the_graph"
	SourceKnn3      DataSource = "knn3"
	SourceRss3      DataSource = "rss3"
	SourceDotbit    DataSource = "dotbit"
	SourceFarcaster DataSource = "farcaster"
	SourceNextID    DataSource = "nextid"
)

// DataSources lists every upstream served by the availableUpstreams query.
func DataSources() []DataSource {
	return []DataSource{
		SourceSybilList,
		SourceTheGraph,
		SourceKnn3,
		SourceRss3,
		SourceDotbit,
		SourceFarcaster,
		SourceNextID,
	}
}

// ParseDataSource accepts any casing of a source's string form. Unknown
// strings map to SourceUnknown without an error: traversal accumulators may
// carry sources added after this build.
func ParseDataSource(s string) DataSource {
	lowered := strings.ToLower(strings.TrimSpace(s))
	for _, src := range DataSources() {
		if strings.ToLower(string(src)) == lowered {
			return src
		}
	}
	return SourceUnknown
}

func (s DataSource) String() string {
	return string(s)
}

// DataFetcher names the adapter which extracted a claim. It can differ from
// the claim's DataSource when the adapter proxies a third-party aggregator.
type DataFetcher string

const (
	FetcherRelationService    DataFetcher = "relation_service"
	FetcherAggregationService DataFetcher = "aggregation_service"
	FetcherDataService        DataFetcher = "data_service"
)

func (f DataFetcher) String() string {
	return string(f)
}
