package models

import (
	"encoding/json"
	"strconv"
)

// EntryID is a timeline entry identifier. Server-assigned identifiers are
// numeric; locally synthesized ones (pending messages, fallback events)
// are strings that never exist server-side. Storing both as strings makes
// deduplication uniform across the two id spaces.
type EntryID string

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *EntryID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = EntryID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = EntryID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as numbers and everything else as strings.
func (id EntryID) MarshalJSON() ([]byte, error) {
	if n, ok := id.Numeric(); ok {
		return json.Marshal(n)
	}
	return json.Marshal(string(id))
}

// Numeric returns the id as int64 when it is a server-assigned numeric
// identifier. Pending and fallback ids report ok=false and are excluded
// from incremental-poll cursors.
func (id EntryID) Numeric() (int64, bool) {
	if id == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (id EntryID) String() string { return string(id) }

// NumericID builds an EntryID from a server-assigned numeric identifier.
func NumericID(n int64) EntryID {
	return EntryID(strconv.FormatInt(n, 10))
}
