package graph

import (
	"fmt"
	"strings"
	"time"
)

// datetimeLayout is the DATETIME text form used by the graph database.
const datetimeLayout = "2006-01-02 15:04:05"

// DateTime is a second-precision UTC timestamp carried in vertex and edge
// attributes. It marshals to the graph database DATETIME text form and
// accepts the common variants found in upstream payloads.
type DateTime struct {
	time.Time
}

// Now returns the current time truncated to second precision.
func Now() DateTime {
	return DateTime{time.Now().UTC().Truncate(time.Second)}
}

// FromUnix converts a second-based unix timestamp.
func FromUnix(ts int64) DateTime {
	return DateTime{time.Unix(ts, 0).UTC()}
}

// Timestamp returns the second-based unix form exposed on the query surface.
func (d DateTime) Timestamp() int64 {
	return d.Unix()
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.UTC().Format(datetimeLayout))), nil
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range []string{datetimeLayout, "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unsupported datetime form %q", s)
}
