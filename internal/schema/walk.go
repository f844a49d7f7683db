// walk.go implements the recursive validator over a schema tree.

package schema

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jpl-au/flagsync/internal/errs"
)

// Validate checks data against f and returns every violation found, in
// walk order. An empty result means data conforms.
//
// data is expected to be the output of encoding/json decoding into any:
// map[string]any, []any, string, float64 (or json.Number), bool or nil.
func Validate(f Field, data any) []errs.Violation {
	w := &walker{}
	w.walk(f, data, "")
	return w.out
}

type walker struct {
	out []errs.Violation
}

func (w *walker) add(at, format string, args ...any) {
	w.out = append(w.out, errs.Violation{Path: at, Message: fmt.Sprintf(format, args...)})
}

func (w *walker) walk(f Field, v any, at string) {
	if v == nil {
		if !f.nullable() {
			w.add(at, "must be %s, got null", article(f.typeName()))
		}
		return
	}

	switch f := f.(type) {
	case String:
		s, ok := v.(string)
		if !ok {
			w.mismatch(f, v, at)
			return
		}
		n := utf8.RuneCountInString(s)
		if n < f.Min {
			w.add(at, "must be at least %d characters, got %d", f.Min, n)
		}
		if f.Max > 0 && n > f.Max {
			w.add(at, "must be at most %d characters, got %d", f.Max, n)
		}
		if f.Pattern != nil && n >= f.Min && !f.Pattern.MatchString(s) {
			w.add(at, "must match pattern %s", f.Pattern.String())
		}

	case Number:
		n, ok := number(v)
		if !ok {
			w.mismatch(f, v, at)
			return
		}
		if f.Min != nil && n < *f.Min {
			w.add(at, "must be >= %s, got %s", fmtNum(*f.Min), fmtNum(n))
		}
		if f.Max != nil && n > *f.Max {
			w.add(at, "must be <= %s, got %s", fmtNum(*f.Max), fmtNum(n))
		}

	case Bool:
		if _, ok := v.(bool); !ok {
			w.mismatch(f, v, at)
		}

	case Enum:
		s, ok := v.(string)
		if !ok {
			w.mismatch(f, v, at)
			return
		}
		if !slices.Contains(f.Values, s) {
			w.add(at, "must be one of: %s", strings.Join(f.Values, ", "))
		}

	case Array:
		items, ok := v.([]any)
		if !ok {
			w.mismatch(f, v, at)
			return
		}
		for i, item := range items {
			w.walk(f.Items, item, index(at, i))
		}

	case Object:
		m, ok := v.(map[string]any)
		if !ok {
			w.mismatch(f, v, at)
			return
		}
		declared := make(map[string]bool, len(f.Props))
		for _, p := range f.Props {
			declared[p.Name] = true
			val, present := m[p.Name]
			if !present {
				if p.Required {
					w.add(join(at, p.Name), "is required")
				}
				continue
			}
			w.walk(p.Field, val, join(at, p.Name))
		}
		if !f.AdditionalAllowed {
			for _, k := range slices.Sorted(maps.Keys(m)) {
				if !declared[k] {
					w.add(join(at, k), "is not an allowed property")
				}
			}
		}
	}
}

func (w *walker) mismatch(f Field, v any, at string) {
	w.add(at, "must be %s, got %s", article(f.typeName()), jsonType(v))
}

// number accepts the numeric representations encoding/json produces.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func article(t string) string {
	switch t {
	case "array", "object":
		return "an " + t
	}
	return "a " + t
}

func fmtNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func join(at, name string) string {
	if at == "" {
		return name
	}
	return at + "." + name
}

func index(at string, i int) string {
	return at + "[" + strconv.Itoa(i) + "]"
}
