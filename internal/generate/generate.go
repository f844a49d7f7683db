// Package generate renders validated flags as typed source constants.
//
// The target language follows the output file's extension: .ts, .tsx, .mts
// and .js produce a TypeScript const object, .go produces a Go constant
// block. Identifiers follow a naming Convention; the string value is always
// the flag key itself.
package generate

import (
	"bytes"
	"cmp"
	"errors"
	"go/format"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/model"
	"github.com/jpl-au/flagsync/internal/path"
)

// Header is the first line of every generated file.
const Header = "Code generated by flagsync. DO NOT EDIT."

// Target is an output language.
type Target string

const (
	TypeScript Target = "typescript"
	Go         Target = "go"
)

// TargetFor picks the target from the output file name.
func TargetFor(output string) (Target, error) {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".ts", ".tsx", ".mts", ".cts", ".js", ".mjs":
		return TypeScript, nil
	case ".go":
		return Go, nil
	}
	return "", errs.Generation("cannot infer output language from %s (use a .ts or .go file)", output).
		With("output", output)
}

// Options configures rendering.
type Options struct {
	Convention Convention
	Target     Target
	Package    string // Go package name; defaults to "flags"
}

// entry is one flag as seen by the templates.
type entry struct {
	Ident       string
	Key         string
	Name        string
	Description string
	Active      bool
	Variants    []string
}

type data struct {
	Header  string
	Package string
	Flags   []entry
}

// Render produces the generated source for flags. Flags are emitted sorted
// by key so output is stable across runs.
func Render(flags []model.Flag, opts Options) (string, error) {
	if opts.Convention == "" {
		opts.Convention = CamelCase
	}
	if _, err := ParseConvention(string(opts.Convention)); err != nil {
		return "", err
	}

	sorted := slices.Clone(flags)
	slices.SortFunc(sorted, func(a, b model.Flag) int { return cmp.Compare(a.Key, b.Key) })

	keys := make([]string, len(sorted))
	for i, f := range sorted {
		keys[i] = f.Key
	}
	ids, err := identifiers(keys, opts.Convention)
	if err != nil {
		return "", err
	}

	d := data{Header: Header, Package: cmp.Or(opts.Package, "flags")}
	for _, f := range sorted {
		id := ids[f.Key]
		if opts.Target == Go {
			id = Exported(id)
		}
		e := entry{Ident: id, Key: f.Key, Name: f.Name, Active: f.Active, Variants: variantKeys(f)}
		if f.Description != nil {
			e.Description = *f.Description
		}
		d.Flags = append(d.Flags, e)
	}

	var tmpl *template.Template
	switch opts.Target {
	case Go:
		tmpl = goTemplate
	case TypeScript, "":
		tmpl = tsTemplate
	default:
		return "", errs.Generation("unknown target %q", opts.Target)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return "", errs.Generation("rendering %s output", tmpl.Name()).Wrap(err)
	}

	if opts.Target == Go {
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return "", errs.Generation("formatting Go output").Wrap(err)
		}
		return string(src), nil
	}
	return buf.String(), nil
}

// variantKeys returns the variant keys of a multivariate flag, if any.
func variantKeys(f model.Flag) []string {
	var vs []model.Variant
	if f.Filters != nil && f.Filters.Multivariate != nil {
		vs = f.Filters.Multivariate.Variants
	}
	if len(vs) == 0 {
		vs = f.Variants
	}
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Key)
	}
	return out
}

// Write stores content at out, creating parent directories inside out's
// base. It reports whether the file changed; identical content is left
// untouched so file watchers downstream are not triggered needlessly.
func Write(out path.Safe, content string) (bool, error) {
	root, err := os.OpenRoot(out.Base())
	if err != nil {
		return false, errs.FileSystem(errs.OpAccess, out.Base(), err)
	}
	defer root.Close()

	rel := out.Rel()
	existing, err := root.ReadFile(rel)
	switch {
	case err == nil && string(existing) == content:
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, errs.FileSystem(errs.OpRead, out.Resolved(), err)
	}

	if dir := filepath.Dir(rel); dir != "." {
		if err := root.MkdirAll(dir, 0755); err != nil {
			return false, errs.FileSystem(errs.OpCreate, filepath.Join(out.Base(), dir), err)
		}
	}
	if err := root.WriteFile(rel, []byte(content), 0644); err != nil {
		return false, errs.FileSystem(errs.OpWrite, out.Resolved(), err)
	}
	return true, nil
}
