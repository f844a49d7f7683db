// flag.go declares the feature flag schema and the entry point used by the
// loader, the MCP server and the CLI.
//
// Only the top level rejects unknown properties. Nested objects (filters,
// groups, variants) ignore members they do not declare, because the remote
// service adds fields there over time and older flag files must keep
// validating.

package schema

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/model"
)

// KeyPattern matches a flag key: lowercase alphanumerics, optionally
// hyphen-separated, never starting or ending with a hyphen.
var KeyPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// Limits on flag string fields.
const (
	MaxKeyLength         = 100
	MaxNameLength        = 200
	MaxDescriptionLength = 1000
)

// Property filter operators and types accepted inside targeting groups.
var (
	PropertyOperators = []string{
		"exact", "is_not", "icontains", "not_icontains", "regex", "not_regex",
		"gt", "gte", "lt", "lte", "is_set", "is_not_set",
		"is_date_exact", "is_date_before", "is_date_after",
	}
	PropertyTypes = []string{"person", "group", "cohort", "event"}
)

var rollout = Range(0, 100)

var variant = Object{
	AdditionalAllowed: true,
	Props: []Prop{
		{Name: "key", Field: String{Min: 1, Max: MaxKeyLength}, Required: true},
		{Name: "name", Field: String{Max: MaxNameLength}},
		{Name: "rollout_percentage", Field: rollout, Required: true},
	},
}

var property = Object{
	AdditionalAllowed: true,
	Props: []Prop{
		{Name: "key", Field: String{Min: 1}},
		{Name: "operator", Field: Enum{Values: PropertyOperators, Nullable: true}},
		{Name: "type", Field: Enum{Values: PropertyTypes}},
	},
}

var group = Object{
	AdditionalAllowed: true,
	Props: []Prop{
		{Name: "properties", Field: Array{Items: property}},
		{Name: "rollout_percentage", Field: Number{Min: rollout.Min, Max: rollout.Max, Nullable: true}},
		{Name: "variant", Field: String{Min: 1, Nullable: true}},
	},
}

// Flag is the schema of a single flag file.
var Flag = Object{
	AdditionalAllowed: false,
	Props: []Prop{
		{Name: "key", Field: String{Min: 1, Max: MaxKeyLength, Pattern: KeyPattern}, Required: true},
		{Name: "name", Field: String{Min: 1, Max: MaxNameLength}, Required: true},
		{Name: "active", Field: Bool{}, Required: true},
		{Name: "description", Field: String{Max: MaxDescriptionLength}},
		{Name: "filters", Field: Object{
			AdditionalAllowed: true,
			Props: []Prop{
				{Name: "groups", Field: Array{Items: group}},
				{Name: "multivariate", Field: Object{
					AdditionalAllowed: true,
					Nullable:          true,
					Props: []Prop{
						{Name: "variants", Field: Array{Items: variant}, Required: true},
					},
				}},
				{Name: "payloads", Field: Object{AdditionalAllowed: true}},
			},
		}},
		{Name: "ensure_experience_continues", Field: Bool{}},
		{Name: "variants", Field: Array{Items: variant}},
	},
}

// ValidateFlag checks data against the flag schema and returns it as a
// model.Flag. The data is not normalised or coerced: encoding the result
// yields the input document, nested members the schema does not declare
// included.
//
// On failure the error is a ValidationError(schema_violation) listing every
// violation; fileName, when not empty, is embedded in the message.
func ValidateFlag(data any, fileName string) (model.Flag, error) {
	violations := Validate(Flag, data)
	if len(violations) > 0 {
		msg := "invalid flag definition"
		if fileName != "" {
			msg = fmt.Sprintf("invalid flag definition in %s", fileName)
		}
		e := errs.Validation(errs.ReasonSchemaViolation, msg, violations...).
			With("violations", len(violations))
		if fileName != "" {
			e.With("file", fileName)
		}
		return model.Flag{}, e
	}

	f, err := model.FromMap(data.(map[string]any))
	if err != nil {
		return model.Flag{}, errs.Validation(errs.ReasonSchemaViolation, "flag cannot be decoded").Wrap(err)
	}
	return f, nil
}

// ValidKey reports whether key is an acceptable flag key.
func ValidKey(key string) bool {
	n := utf8.RuneCountInString(key)
	return n >= 1 && n <= MaxKeyLength && KeyPattern.MatchString(key)
}
