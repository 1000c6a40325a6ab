// Package ndpath implements node path syntax and algebra: absolute/relative
// node paths, name validation, and the join/append operations references
// are resolved against.
//
// A node path addresses only object members by name — there is no index or
// wildcard syntax, since reference and derived-base paths never address
// into arrays.
package ndpath

import (
	"regexp"
	"strings"

	"github.com/signadot/cfgtree/cfgerrors"
)

// Root is the canonical absolute root path.
const Root = "/"

var nameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsAbsolute reports whether p begins with "/".
func IsAbsolute(p string) bool {
	return strings.HasPrefix(p, "/")
}

// ValidateName reports whether s is a valid member name: non-empty, no "/",
// matching [A-Za-z_][A-Za-z0-9_]*.
func ValidateName(s string) error {
	if !nameRE.MatchString(s) {
		return cfgerrors.NewInvalidPath(s, "not a valid name")
	}
	return nil
}

// Clean normalizes trailing slashes: "/a/b/" -> "/a/b", "/" stays "/".
func Clean(p string) string {
	if p == Root {
		return p
	}
	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return Root
	}
	return trimmed
}

// ValidatePath reports whether p is a syntactically valid node path: every
// segment is a valid name, the empty relative form is invalid, and "/" is
// valid on its own.
func ValidatePath(p string) error {
	if p == Root {
		return nil
	}
	if p == "" {
		return cfgerrors.NewInvalidPath(p, "empty path")
	}
	body := p
	if IsAbsolute(p) {
		body = p[1:]
	}
	if body == "" {
		return cfgerrors.NewInvalidPath(p, "empty path")
	}
	for _, seg := range strings.Split(body, "/") {
		if err := ValidateName(seg); err != nil {
			return cfgerrors.NewInvalidPath(p, "invalid segment "+seg)
		}
	}
	return nil
}

// Append joins name onto p with exactly one "/" separator. Appending to the
// root does not double the slash.
func Append(p, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if p == Root {
		return Root + name, nil
	}
	return p + "/" + name, nil
}

// AppendRaw joins a diagnostic (non-name) segment such as an array index
// onto p, for use only in human-readable paths — never in a path that will
// be looked up via node_at_path.
func AppendRaw(p, seg string) string {
	if p == Root {
		return Root + seg
	}
	return p + "/" + seg
}

// ValidateReference validates ref as a reference path relative to current
// and returns its normalized absolute form. An absolute ref must itself
// validate. A relative ref is resolved against current: each ".." segment
// climbs one level (never above root), every other segment must be a valid
// name.
func ValidateReference(ref, current string) (string, error) {
	if ref == "" {
		return "", cfgerrors.NewInvalidPath(ref, "empty reference")
	}
	if IsAbsolute(ref) {
		if err := ValidatePath(ref); err != nil {
			return "", err
		}
		return Clean(ref), nil
	}

	var stack []string
	if current != "" && current != Root {
		stack = strings.Split(strings.TrimPrefix(Clean(current), "/"), "/")
	}

	for _, seg := range strings.Split(ref, "/") {
		switch seg {
		case "":
			return "", cfgerrors.NewInvalidPath(ref, "empty segment")
		case "..":
			if len(stack) == 0 {
				return "", cfgerrors.NewInvalidPath(ref, "climbs above root")
			}
			stack = stack[:len(stack)-1]
		default:
			if err := ValidateName(seg); err != nil {
				return "", cfgerrors.NewInvalidPath(ref, "invalid segment "+seg)
			}
			stack = append(stack, seg)
		}
	}
	if len(stack) == 0 {
		return Root, nil
	}
	return Root + strings.Join(stack, "/"), nil
}
