package graph

import (
	"time"

	"github.com/nextdotid/relationservice/config/params"
)

// RecordKind keys the freshness table. Identity metadata churns fast, domain
// resolutions churn slow.
type RecordKind uint8

const (
	KindIdentity RecordKind = iota
	KindContract
	KindProof
	KindHold
	KindResolve
)

// TTLFor returns the freshness window for a record kind. A record older than
// its window is outdated and queued for a background refetch.
func TTLFor(kind RecordKind) time.Duration {
	cfg := params.RelationConfig()
	switch kind {
	case KindResolve, KindHold, KindContract:
		return time.Duration(cfg.DomainTTLSeconds) * time.Second
	default:
		return time.Duration(cfg.IdentityTTLSeconds) * time.Second
	}
}

func outdated(updatedAt DateTime, kind RecordKind) bool {
	return time.Now().UTC().Sub(updatedAt.Time) > TTLFor(kind)
}
