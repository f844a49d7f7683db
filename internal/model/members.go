// members.go preserves the JSON members a nested struct does not model.
//
// Each nested type decodes its declared fields into a tagged shadow struct
// and everything else into Extra. A declared member whose value is null
// also goes to Extra, since the typed field cannot tell null from absent.
// Encoding starts from Extra and lays the set typed fields over it.

package model

import (
	"encoding/json"
	"maps"
	"slices"
)

// decodeObject decodes data into dst and returns the members of data that
// dst does not hold: names outside declared, and declared names set to null.
func decodeObject(data []byte, dst any, declared []string) (map[string]any, error) {
	if string(data) == "null" {
		return nil, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var extra map[string]any
	for name, value := range raw {
		if slices.Contains(declared, name) && string(value) != "null" {
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return nil, err
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[name] = v
	}
	return extra, nil
}

// members returns a fresh map seeded with extra, ready for the typed
// fields to be added.
func members(extra map[string]any) map[string]any {
	m := make(map[string]any, len(extra)+3)
	maps.Copy(m, extra)
	return m
}
