// Package upstream defines the contract between the relation service and the
// remote data providers it aggregates, and the dispatch engine that crawls
// them. A fetcher turns one fetch target into graph writes plus follow-up
// targets; the dispatcher expands an initial target set breadth-first across
// every capable fetcher, bounded by depth and concurrency limits.
package upstream
