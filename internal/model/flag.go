// Package model defines the feature flag records that flow between the
// loader, the code generator and the remote sync engine.
//
// A Flag is built from one JSON file after schema validation and is not
// modified afterwards. Field names follow the JSON wire format of the
// remote flag service so a validated file can be sent as-is.
//
// Nested objects (filters, groups, multivariate, variants) keep the members
// they do not model in Extra. Encoding a decoded Flag reproduces the source
// document, so fields the remote service adds survive a round trip.
package model

import "encoding/json"

// Flag is one feature flag definition.
type Flag struct {
	Key                       string    `json:"key"`
	Name                      string    `json:"name"`
	Active                    bool      `json:"active"`
	Description               *string   `json:"description,omitempty"`
	Filters                   *Filters  `json:"filters,omitempty"`
	EnsureExperienceContinues *bool     `json:"ensure_experience_continues,omitempty"`
	Variants                  []Variant `json:"variants,omitempty"`
}

// MarshalJSON encodes f in field order. An empty but present Variants list
// is kept.
func (f Flag) MarshalJSON() ([]byte, error) {
	type plain Flag
	var variants *[]Variant
	if f.Variants != nil {
		variants = &f.Variants
	}
	return json.Marshal(struct {
		plain
		Variants *[]Variant `json:"variants,omitempty"`
	}{plain(f), variants})
}

// Filters holds the targeting rules of a flag.
type Filters struct {
	Groups       []Group
	Multivariate *Multivariate
	Payloads     map[string]any

	// Extra holds undeclared members and declared members set to null.
	Extra map[string]any
}

var filtersMembers = []string{"groups", "multivariate", "payloads"}

func (f *Filters) UnmarshalJSON(data []byte) error {
	var in struct {
		Groups       []Group        `json:"groups"`
		Multivariate *Multivariate  `json:"multivariate"`
		Payloads     map[string]any `json:"payloads"`
	}
	extra, err := decodeObject(data, &in, filtersMembers)
	if err != nil {
		return err
	}
	*f = Filters{Groups: in.Groups, Multivariate: in.Multivariate, Payloads: in.Payloads, Extra: extra}
	return nil
}

func (f Filters) MarshalJSON() ([]byte, error) {
	m := members(f.Extra)
	if f.Groups != nil {
		m["groups"] = f.Groups
	}
	if f.Multivariate != nil {
		m["multivariate"] = f.Multivariate
	}
	if f.Payloads != nil {
		m["payloads"] = f.Payloads
	}
	return json.Marshal(m)
}

// Group is one targeting group. Properties are passed through untouched.
type Group struct {
	Properties        []map[string]any
	RolloutPercentage *float64
	Variant           *string

	// Extra holds undeclared members and declared members set to null.
	Extra map[string]any
}

var groupMembers = []string{"properties", "rollout_percentage", "variant"}

func (g *Group) UnmarshalJSON(data []byte) error {
	var in struct {
		Properties        []map[string]any `json:"properties"`
		RolloutPercentage *float64         `json:"rollout_percentage"`
		Variant           *string          `json:"variant"`
	}
	extra, err := decodeObject(data, &in, groupMembers)
	if err != nil {
		return err
	}
	*g = Group{Properties: in.Properties, RolloutPercentage: in.RolloutPercentage, Variant: in.Variant, Extra: extra}
	return nil
}

func (g Group) MarshalJSON() ([]byte, error) {
	m := members(g.Extra)
	if g.Properties != nil {
		m["properties"] = g.Properties
	}
	if g.RolloutPercentage != nil {
		m["rollout_percentage"] = *g.RolloutPercentage
	}
	if g.Variant != nil {
		m["variant"] = *g.Variant
	}
	return json.Marshal(m)
}

// Multivariate lists the variants a multivariate flag can serve.
type Multivariate struct {
	Variants []Variant

	// Extra holds undeclared members.
	Extra map[string]any
}

var multivariateMembers = []string{"variants"}

func (mv *Multivariate) UnmarshalJSON(data []byte) error {
	var in struct {
		Variants []Variant `json:"variants"`
	}
	extra, err := decodeObject(data, &in, multivariateMembers)
	if err != nil {
		return err
	}
	*mv = Multivariate{Variants: in.Variants, Extra: extra}
	return nil
}

func (mv Multivariate) MarshalJSON() ([]byte, error) {
	m := members(mv.Extra)
	if mv.Variants == nil {
		m["variants"] = []Variant{}
	} else {
		m["variants"] = mv.Variants
	}
	return json.Marshal(m)
}

// Variant is one named arm of a multivariate flag.
type Variant struct {
	Key               string
	Name              *string
	RolloutPercentage float64

	// Extra holds undeclared members and a name set to null.
	Extra map[string]any
}

var variantMembers = []string{"key", "name", "rollout_percentage"}

func (v *Variant) UnmarshalJSON(data []byte) error {
	var in struct {
		Key               string  `json:"key"`
		Name              *string `json:"name"`
		RolloutPercentage float64 `json:"rollout_percentage"`
	}
	extra, err := decodeObject(data, &in, variantMembers)
	if err != nil {
		return err
	}
	*v = Variant{Key: in.Key, Name: in.Name, RolloutPercentage: in.RolloutPercentage, Extra: extra}
	return nil
}

func (v Variant) MarshalJSON() ([]byte, error) {
	m := members(v.Extra)
	m["key"] = v.Key
	if v.Name != nil {
		m["name"] = *v.Name
	}
	m["rollout_percentage"] = v.RolloutPercentage
	return json.Marshal(m)
}

// RemoteFlag is a Flag as stored by the remote service.
type RemoteFlag struct {
	Flag
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted,omitempty"`
}

// MarshalJSON adds the remote identity to the flag document. Without it the
// embedded Flag's encoder would drop ID and Deleted.
func (r RemoteFlag) MarshalJSON() ([]byte, error) {
	b, err := r.Flag.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	m["id"] = r.ID
	if r.Deleted {
		m["deleted"] = true
	}
	return json.Marshal(m)
}

// FromMap converts a validated JSON object into a Flag. It re-encodes data
// rather than copying fields by hand so optional members keep the exact
// values from the file.
func FromMap(data map[string]any) (Flag, error) {
	var f Flag
	b, err := json.Marshal(data)
	if err != nil {
		return f, err
	}
	err = json.Unmarshal(b, &f)
	return f, err
}

// Canonical returns the flag encoded with sorted keys and no indentation.
// Two flags with equal Canonical output are considered unchanged by sync.
func (f Flag) Canonical() ([]byte, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	// Round-trip through a generic value so map keys (payloads, group
	// properties) are emitted in sorted order.
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Pretty returns the flag as indented JSON with a trailing newline, the
// layout used for flag files on disk.
func (f Flag) Pretty() ([]byte, error) {
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
