package generate

import "text/template"

var funcs = template.FuncMap{
	"comment": commentSafe,
	"quote":   quote,
}

var tsTemplate = template.Must(template.New("typescript").Funcs(funcs).Parse(`// {{.Header}}

export const FeatureFlags = {
{{- range .Flags}}
  /**
   * {{comment .Name}}{{if not .Active}} (inactive){{end}}{{if .Description}}
   *
   * {{comment .Description}}{{end}}{{if .Variants}}
   *
   * Variants: {{range $i, $v := .Variants}}{{if $i}}, {{end}}{{$v}}{{end}}{{end}}
   */
  {{.Ident}}: {{quote .Key}},
{{- end}}
} as const;

export type FeatureFlagKey = (typeof FeatureFlags)[keyof typeof FeatureFlags];

export const ALL_FEATURE_FLAGS: readonly FeatureFlagKey[] = Object.values(FeatureFlags);
`))

var goTemplate = template.Must(template.New("go").Funcs(funcs).Parse(`// {{.Header}}

package {{.Package}}

// Key is a feature flag key.
type Key string

// Feature flag keys.
const (
{{- range .Flags}}
	// {{.Ident}}: {{comment .Name}}{{if not .Active}} (inactive){{end}}{{if .Description}}
	//
	// {{comment .Description}}{{end}}{{if .Variants}}
	//
	// Variants: {{range $i, $v := .Variants}}{{if $i}}, {{end}}{{$v}}{{end}}{{end}}
	{{.Ident}} Key = {{quote .Key}}
{{- end}}
)

// All lists every feature flag key.
var All = []Key{
{{- range .Flags}}
	{{.Ident}},
{{- end}}
}
`))
