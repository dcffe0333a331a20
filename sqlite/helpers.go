package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// parseRFC3339 parses an RFC3339 formatted timestamp string.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// nullString maps a nil pointer to SQL NULL.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// stringPtr maps SQL NULL to a nil pointer.
func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// encodeTools stores tools as a JSON array, keeping nil distinct from empty.
func encodeTools(tools []string) (sql.NullString, error) {
	if tools == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tools)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeTools(ns sql.NullString) ([]string, error) {
	if !ns.Valid {
		return nil, nil
	}
	tools := []string{}
	if err := json.Unmarshal([]byte(ns.String), &tools); err != nil {
		return nil, err
	}
	return tools, nil
}
