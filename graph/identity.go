package graph

import (
	"fmt"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// IdentityVertexType is the vertex name in the graph database schema.
const IdentityVertexType = "Identities"

// Identity is a platform-scoped account, wallet or domain name.
type Identity struct {
	// UUID is generated on creation for global uniqueness across future
	// data-exchange scenarios. Write-once.
	UUID *uuid.UUID `json:"uuid,omitempty"`
	// Platform plus Identity form the stable primary key.
	Platform Platform `json:"platform"`
	Identity string   `json:"identity"`
	// UID is the secondary platform key, e.g. the Farcaster fid or the
	// Lens profile id.
	UID         string `json:"uid,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	ProfileURL  string `json:"profile_url,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	// CreatedAt is the account creation time on the source platform, when
	// the platform reports one.
	CreatedAt *DateTime `json:"created_at,omitempty"`
	// AddedAt is when this identity was first seen locally.
	AddedAt DateTime `json:"added_at"`
	// UpdatedAt is bumped on every refetch. The store keeps the max.
	UpdatedAt DateTime `json:"updated_at"`
	// ExpiredAt is the registration expiry for domain identities.
	ExpiredAt *DateTime `json:"expired_at,omitempty"`
	// Reverse marks the primary domain of a wallet. Only meaningful for
	// domain-system platforms.
	Reverse bool `json:"reverse,omitempty"`
}

// PrimaryKey is the composite store key. Stable across refetches.
func (i *Identity) PrimaryKey() string {
	return fmt.Sprintf("%s,%s", i.Platform, i.Identity)
}

// VertexType implements the vertex contract.
func (i *Identity) VertexType() string {
	return IdentityVertexType
}

// IsOutdated reports whether the record is past its freshness window and
// should be refetched.
func (i *Identity) IsOutdated() bool {
	return outdated(i.UpdatedAt, KindIdentity)
}

// IdentityRecord is an Identity as stored, carrying the vertex id assigned
// by the graph database.
type IdentityRecord struct {
	VID string
	Identity
}

// Status reports the record's lifecycle set: a persisted record is cached
// and possibly outdated, a record with no id yet is still being fetched.
func (r *IdentityRecord) Status() []DataStatus {
	if r.VID == "" {
		return []DataStatus{StatusFetching}
	}
	current := []DataStatus{StatusCached}
	if r.IsOutdated() {
		current = append(current, StatusOutdated)
	}
	return current
}

func (r *IdentityRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		VID        string   `json:"v_id"`
		Attributes Identity `json:"attributes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.VID = raw.VID
	r.Identity = raw.Attributes
	return nil
}

// IdentityWithSource is a traversal neighbor annotated with the union of
// data sources on the edges reaching it, plus the accumulated reverse flag
// for domain identities.
type IdentityWithSource struct {
	Identity IdentityRecord
	Sources  []DataSource
	Reverse  *bool
}

func (s *IdentityWithSource) UnmarshalJSON(data []byte) error {
	var raw struct {
		VID        string                 `json:"v_id"`
		Attributes map[string]interface{} `json:"attributes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	sourceList, ok := raw.Attributes["@source_list"]
	if !ok {
		return fmt.Errorf("vertex %s is missing the @source_list accumulator", raw.VID)
	}
	delete(raw.Attributes, "@source_list")
	rawSources, ok := sourceList.([]interface{})
	if !ok {
		return fmt.Errorf("vertex %s has a malformed @source_list accumulator", raw.VID)
	}
	sources := make([]DataSource, 0, len(rawSources))
	for _, rs := range rawSources {
		str, ok := rs.(string)
		if !ok {
			return fmt.Errorf("vertex %s has a non-string source", raw.VID)
		}
		sources = append(sources, ParseDataSource(str))
	}

	var reverse *bool
	if rawReverse, ok := raw.Attributes["@reverse"]; ok {
		delete(raw.Attributes, "@reverse")
		if b, ok := rawReverse.(bool); ok {
			reverse = &b
		}
	}

	attrBytes, err := json.Marshal(raw.Attributes)
	if err != nil {
		return err
	}
	var attrs Identity
	if err := json.Unmarshal(attrBytes, &attrs); err != nil {
		return err
	}

	s.Identity = IdentityRecord{VID: raw.VID, Identity: attrs}
	s.Sources = sources
	if attrs.Platform.IsDomainSystem() {
		s.Reverse = reverse
	} else {
		s.Reverse = nil
	}
	return nil
}
