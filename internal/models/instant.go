package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// storageLayout is fixed width in UTC so stored values sort as text.
const storageLayout = "2006-01-02T15:04:05.000000Z07:00"

// instantLayouts are tried in order when decoding. Backends that emit naive
// ISO-8601 timestamps (no offset) are read as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Instant is an ISO-8601 timestamp on the wire.
type Instant struct {
	time.Time
}

// NewInstant wraps t, dropping monotonic clock readings and sub-second noise
// below a microsecond so values survive a database round-trip unchanged.
func NewInstant(t time.Time) Instant {
	return Instant{Time: t.Round(0).Truncate(time.Microsecond)}
}

// ParseInstant parses s using the accepted ISO-8601 layouts.
func ParseInstant(s string) (Instant, error) {
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewInstant(t), nil
		}
	}
	return Instant{}, fmt.Errorf("invalid timestamp %q", s)
}

func (i Instant) String() string {
	if i.IsZero() {
		return ""
	}
	return i.UTC().Format(time.RFC3339Nano)
}

// Equal compares the underlying instants.
func (i Instant) Equal(other Instant) bool {
	return i.Time.Equal(other.Time)
}

func (i Instant) MarshalJSON() ([]byte, error) {
	if i.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(i.String())
}

func (i *Instant) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*i = Instant{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		*i = Instant{}
		return nil
	}
	parsed, err := ParseInstant(s)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

func (i Instant) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Instant) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*i = Instant{}
		return nil
	}
	parsed, err := ParseInstant(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Value stores the instant as fixed-width UTC text.
func (i Instant) Value() (driver.Value, error) {
	if i.IsZero() {
		return nil, nil
	}
	return i.UTC().Format(storageLayout), nil
}

func (i *Instant) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*i = Instant{}
		return nil
	case time.Time:
		*i = NewInstant(v)
		return nil
	case string:
		return i.UnmarshalText([]byte(v))
	case []byte:
		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Instant", src)
	}
}
