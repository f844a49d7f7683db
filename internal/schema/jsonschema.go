package schema

// JSONSchemaDraft is the $schema URI of documents produced by JSONSchema.
const JSONSchemaDraft = "http://json-schema.org/draft-07/schema#"

// JSONSchema renders the flag schema as a JSON Schema (draft-07) document
// suitable for editor integration. It accepts exactly the documents that
// ValidateFlag accepts.
func JSONSchema() map[string]any {
	doc := Render(Flag)
	doc["$schema"] = JSONSchemaDraft
	doc["title"] = "flagsync feature flag"
	return doc
}

// Render converts a schema tree into its JSON Schema form.
func Render(f Field) map[string]any {
	m := map[string]any{}
	switch f := f.(type) {
	case String:
		if f.Min > 0 {
			m["minLength"] = f.Min
		}
		if f.Max > 0 {
			m["maxLength"] = f.Max
		}
		if f.Pattern != nil {
			m["pattern"] = f.Pattern.String()
		}
	case Number:
		if f.Min != nil {
			m["minimum"] = *f.Min
		}
		if f.Max != nil {
			m["maximum"] = *f.Max
		}
	case Enum:
		vals := make([]any, 0, len(f.Values)+1)
		for _, v := range f.Values {
			vals = append(vals, v)
		}
		if f.Nullable {
			vals = append(vals, nil)
		}
		m["enum"] = vals
	case Array:
		m["items"] = Render(f.Items)
	case Object:
		props := make(map[string]any, len(f.Props))
		var required []string
		for _, p := range f.Props {
			props[p.Name] = Render(p.Field)
			if p.Required {
				required = append(required, p.Name)
			}
		}
		m["properties"] = props
		if len(required) > 0 {
			m["required"] = required
		}
		m["additionalProperties"] = f.AdditionalAllowed
	}

	if f.nullable() {
		m["type"] = []any{f.typeName(), "null"}
	} else {
		m["type"] = f.typeName()
	}
	return m
}
