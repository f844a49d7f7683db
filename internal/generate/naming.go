// naming.go turns flag keys into identifiers for the generated source.

package generate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jpl-au/flagsync/internal/errs"
)

// Convention is a naming rule for generated identifiers.
type Convention string

const (
	CamelCase          Convention = "camelCase"
	SnakeCase          Convention = "snake_case"
	ScreamingSnakeCase Convention = "SCREAMING_SNAKE_CASE"
)

// Conventions lists every supported convention.
var Conventions = []Convention{CamelCase, SnakeCase, ScreamingSnakeCase}

// ParseConvention validates a convention name from configuration or flags.
func ParseConvention(s string) (Convention, error) {
	for _, c := range Conventions {
		if string(c) == s {
			return c, nil
		}
	}
	return "", errs.Generation("unknown naming convention %q (want camelCase, snake_case or SCREAMING_SNAKE_CASE)", s).
		With("convention", s)
}

// Identifier converts a flag key such as "new-checkout-v2" to an identifier
// under c. Keys starting with a digit get a leading underscore.
func Identifier(key string, c Convention) string {
	words := splitKey(key)
	var id string
	switch c {
	case SnakeCase:
		id = strings.Join(words, "_")
	case ScreamingSnakeCase:
		id = strings.ToUpper(strings.Join(words, "_"))
	default:
		var b strings.Builder
		for i, w := range words {
			if i == 0 {
				b.WriteString(w)
				continue
			}
			b.WriteString(upperFirst(w))
		}
		id = b.String()
	}
	if id == "" {
		return "_"
	}
	if unicode.IsDigit(rune(id[0])) {
		id = "_" + id
	}
	return id
}

// Exported returns the identifier with its first letter upper-cased, which
// Go output needs so the constants are visible outside the package.
func Exported(id string) string {
	if strings.HasPrefix(id, "_") {
		return "F" + id
	}
	return upperFirst(id)
}

// splitKey splits on hyphens and drops empty words ("a--b" is "a", "b").
func splitKey(key string) []string {
	var words []string
	for w := range strings.SplitSeq(strings.ToLower(key), "-") {
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// identifiers assigns an identifier to every key and fails when two keys
// collapse to the same name.
func identifiers(keys []string, c Convention) (map[string]string, error) {
	ids := make(map[string]string, len(keys))
	owner := make(map[string]string, len(keys))
	for _, k := range keys {
		id := Identifier(k, c)
		if prev, ok := owner[id]; ok {
			return nil, errs.Generation("flag keys %q and %q both generate identifier %s", prev, k, id).
				With("identifier", id)
		}
		owner[id] = k
		ids[k] = id
	}
	return ids, nil
}

// commentSafe keeps free text from terminating the surrounding comment.
func commentSafe(s string) string {
	s = strings.ReplaceAll(s, "*/", "* /")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func quote(s string) string { return fmt.Sprintf("%q", s) }
