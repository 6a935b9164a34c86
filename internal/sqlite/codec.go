package sqlite

import (
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/mesh-intelligence/vault/pkg/types"
)

// Composite list-valued fields (tags, sub-actions, schedules, linked entry
// ids) are persisted as JSON text. Encoding maps the absent container to SQL
// NULL; decoding maps NULL and malformed payloads to the empty container so
// one corrupt row can never fail a whole listing.

func encodeStringList(v []string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

func (b *Backend) decodeStringList(raw sql.NullString, field string) []string {
	if !raw.Valid || raw.String == "" || raw.String == "null" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		b.logger.Warn("malformed stored list, treating as empty",
			slog.String("field", field), slog.String("error", err.Error()))
		return nil
	}
	return out
}

func encodeSubActions(v []types.SubAction) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

func (b *Backend) decodeSubActions(raw sql.NullString) []types.SubAction {
	if !raw.Valid || raw.String == "" || raw.String == "null" {
		return nil
	}
	var out []types.SubAction
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		b.logger.Warn("malformed stored sub-actions, treating as empty",
			slog.String("error", err.Error()))
		return nil
	}
	return out
}

func encodeDayTimes(v map[string]string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

func (b *Backend) decodeDayTimes(raw sql.NullString) map[string]string {
	if !raw.Valid || raw.String == "" || raw.String == "null" {
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		b.logger.Warn("malformed stored day-time map, treating as empty",
			slog.String("error", err.Error()))
		return nil
	}
	return out
}

// Frequency is an opaque schedule payload: it round-trips untouched, but a
// stored value that is not valid JSON is dropped rather than propagated.
func encodeFrequency(v json.RawMessage) sql.NullString {
	if len(v) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(v), Valid: true}
}

func (b *Backend) decodeFrequency(raw sql.NullString) json.RawMessage {
	if !raw.Valid || raw.String == "" || raw.String == "null" {
		return nil
	}
	if !json.Valid([]byte(raw.String)) {
		b.logger.Warn("malformed stored frequency payload, treating as empty")
		return nil
	}
	return json.RawMessage(raw.String)
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func stringOrEmpty(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}
