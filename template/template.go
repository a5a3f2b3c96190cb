// Package template resolves ${metadata.path.to.value} placeholders inside
// configuration strings against a caller-supplied metadata bag.
//
// Substitution is total: for any template and any metadata value the result
// is a string, and the function never panics and never blocks. Placeholders
// that cannot be resolved are left untouched.
package template

import (
	"regexp"
	"strconv"
	"strings"
)

// placeholderPattern matches ${metadata.<dotted.path>} occurrences. The path
// segments are free-form; resolution decides whether they exist.
var placeholderPattern = regexp.MustCompile(`\$\{metadata\.([^}]+)\}`)

// Substitute replaces every ${metadata.<dotted.path>} occurrence in tmpl with
// the string form of the value found by walking the dotted path into
// metadata. Each placeholder resolves independently; a placeholder whose
// path is missing, whose value is nil, or whose value has no scalar string
// form is left as-is. A template with no placeholders is returned unchanged.
func Substitute(tmpl string, metadata map[string]any) string {
	if !strings.Contains(tmpl, "${metadata.") {
		return tmpl
	}
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		path := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := resolvePath(metadata, strings.Split(path, "."))
		if !ok {
			return match
		}
		s, ok := stringify(value)
		if !ok {
			return match
		}
		return s
	})
}

// resolvePath walks a dotted path into a loosely structured value. Any panic
// raised while walking (pathological map key types, reflective containers)
// is treated as "not found"; the function never propagates one.
func resolvePath(root any, segments []string) (value any, ok bool) {
	defer func() {
		if recover() != nil {
			value, ok = nil, false
		}
	}()

	current := root
	for _, seg := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, found := node[seg]
			if !found {
				return nil, false
			}
			current = next
		case map[string]string:
			next, found := node[seg]
			if !found {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// stringify converts a resolved scalar to its canonical string form.
// Maps, slices, functions and other structured values have no string form
// and report ok=false so the placeholder stays in place.
func stringify(v any) (string, bool) {
	switch value := v.(type) {
	case string:
		return value, true
	case bool:
		return strconv.FormatBool(value), true
	case int:
		return strconv.Itoa(value), true
	case int64:
		return strconv.FormatInt(value, 10), true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32), true
	default:
		return "", false
	}
}
