package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp accepts either a calendar date ("2024-05-31") or an RFC 3339
// timestamp in request bodies. Dates are read as midnight UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp parses an RFC 3339 timestamp or a YYYY-MM-DD date into UTC
func ParseTimestamp(s string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return parsed, nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}

// TimePtr returns nil for a nil or zero timestamp
func (t *Timestamp) TimePtr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}
