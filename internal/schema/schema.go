// Package schema validates decoded JSON against a declarative schema tree.
//
// A schema is a tree of Field values: String, Number, Bool, Enum, Array and
// Object. One recursive walker (Validate) checks data against any tree and
// returns every violation it finds, so a user fixing a flag file sees all
// problems at once rather than one per run.
//
// The feature flag schema itself is declared in flag.go and exposed through
// ValidateFlag. JSONSchema renders the same tree as a JSON Schema document
// for editors and external tooling.
//
// Walking rules:
//   - A value of the wrong fundamental type yields one violation and its
//     nested checks are skipped (no cascade of noise under a bad container)
//   - Arrays validate every element; the index is appended to the path
//   - Objects validate declared properties; undeclared properties are only
//     rejected when AdditionalAllowed is false
//   - JSON null is accepted only where the field is Nullable
package schema

import "regexp"

// Field is one node of a schema tree. The set of implementations is closed.
type Field interface {
	typeName() string
	nullable() bool
}

// String constrains a JSON string. Min and Max count characters (runes);
// a Max of zero means unbounded.
type String struct {
	Min      int
	Max      int
	Pattern  *regexp.Regexp
	Nullable bool
}

// Number constrains a JSON number to an inclusive range.
// Nil bounds are open.
type Number struct {
	Min      *float64
	Max      *float64
	Nullable bool
}

// Bool accepts a JSON boolean.
type Bool struct {
	Nullable bool
}

// Enum accepts one of a fixed set of strings.
type Enum struct {
	Values   []string
	Nullable bool
}

// Array validates every element against Items.
type Array struct {
	Items    Field
	Nullable bool
}

// Object validates declared properties in declaration order.
type Object struct {
	Props             []Prop
	AdditionalAllowed bool
	Nullable          bool
}

// Prop is a named property of an Object.
type Prop struct {
	Name     string
	Field    Field
	Required bool
}

func (String) typeName() string { return "string" }
func (Number) typeName() string { return "number" }
func (Bool) typeName() string   { return "boolean" }
func (Enum) typeName() string   { return "string" }
func (Array) typeName() string  { return "array" }
func (Object) typeName() string { return "object" }

func (f String) nullable() bool { return f.Nullable }
func (f Number) nullable() bool { return f.Nullable }
func (f Bool) nullable() bool   { return f.Nullable }
func (f Enum) nullable() bool   { return f.Nullable }
func (f Array) nullable() bool  { return f.Nullable }
func (f Object) nullable() bool { return f.Nullable }

// Range returns a Number bounded inclusively by lo and hi.
func Range(lo, hi float64) Number {
	return Number{Min: &lo, Max: &hi}
}
