// Package tagged provides typed, best-effort access into the opaque
// "raw_metadata" / "periodical_metadata" JSON blobs that flow through the
// system unread by most components (spec §9 Design Notes: "a small
// helper that returns optional string with a documented key-precedence
// list"). Values are decoded once into map[string]any and coerced with
// spf13/cast so callers never type-assert against provider-supplied JSON.
package tagged

import (
	"encoding/json"

	"github.com/spf13/cast"
)

// Map is a decoded opaque-metadata document.
type Map map[string]any

// Decode parses raw JSON into a Map. A nil or empty payload decodes to
// an empty, non-nil Map so callers can index it unconditionally.
func Decode(raw json.RawMessage) Map {
	if len(raw) == 0 {
		return Map{}
	}
	var m Map
	if err := json.Unmarshal(raw, &m); err != nil {
		return Map{}
	}
	return m
}

// String returns the first present, non-empty string value among keys,
// in precedence order. ok is false if none of the keys holds a non-empty
// value.
func (m Map) String(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, present := m[k]; present {
			if s := cast.ToString(v); s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// Int returns the first present integer value among keys.
func (m Map) Int(keys ...string) (int, bool) {
	for _, k := range keys {
		if v, present := m[k]; present {
			return cast.ToInt(v), true
		}
	}
	return 0, false
}

// Bool returns the first present boolean value among keys.
func (m Map) Bool(keys ...string) (bool, bool) {
	for _, k := range keys {
		if v, present := m[k]; present {
			return cast.ToBool(v), true
		}
	}
	return false, false
}

// StringSlice returns the first present string-slice value among keys.
func (m Map) StringSlice(keys ...string) ([]string, bool) {
	for _, k := range keys {
		if v, present := m[k]; present {
			return cast.ToStringSlice(v), true
		}
	}
	return nil, false
}

// EditionID resolves the external edition identifier documented in spec
// §9 Design Notes: tagged access over "olid" then "edition_id".
func (m Map) EditionID() (string, bool) {
	return m.String("olid", "edition_id")
}

// Editions returns the tracking record's known-editions list
// (metadata.editions), used by the Orchestrator's "neither" mode
// fuzzy-match fallback (spec §4.4 step 4).
func (m Map) Editions() ([]any, bool) {
	v, present := m["editions"]
	if !present {
		return nil, false
	}
	s, ok := v.([]any)
	return s, ok
}
