package repository

import (
	"database/sql"
	"encoding/json"
	"time"
)

// marshalMetadata serializes a metadata map to JSON, or NULL when empty.
func marshalMetadata(m map[string]string) *string {
	if len(m) == 0 {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

// unmarshalMetadata parses a JSON metadata column.
func unmarshalMetadata(s sql.NullString) map[string]string {
	if !s.Valid || s.String == "" {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s.String), &m); err != nil {
		return nil
	}
	return m
}

// formatTime renders a timestamp as RFC3339 UTC text.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// formatNullTime renders an optional timestamp, or nil for NULL.
func formatNullTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// parseTime parses an RFC3339 timestamp column.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// parseNullTime parses an optional RFC3339 timestamp column.
func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// boolToInt converts a bool to the 0/1 representation used in SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
