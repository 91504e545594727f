package debuginfo

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// AnonymousScope renders an unnamed scope (anonymous namespace or struct).
const AnonymousScope = "<anon>"

// TypeName is a qualified name: the enclosing scopes plus the leaf.
type TypeName struct {
	Scopes []string // outermost first; "" marks an anonymous scope
	Name   string   // "" for an anonymous type
}

// Anonymous reports whether the leaf has no name.
func (n TypeName) Anonymous() bool { return n.Name == "" }

// Segments returns the scopes followed by the leaf.
func (n TypeName) Segments() []string {
	out := make([]string, 0, len(n.Scopes)+1)
	out = append(out, n.Scopes...)
	return append(out, n.Name)
}

// EndsWith reports whether the qualified path ends with suffix.
func (n TypeName) EndsWith(suffix []string) bool {
	if len(suffix) == 0 {
		return false
	}
	segs := n.Segments()
	if len(suffix) > len(segs) {
		return false
	}
	tail := segs[len(segs)-len(suffix):]
	for i := range suffix {
		if tail[i] == "" || tail[i] != suffix[i] {
			return false
		}
	}
	return true
}

// Key is the registry key of the name.
func (n TypeName) Key() string {
	return n.String()
}

func (n TypeName) String() string {
	segs := n.Segments()
	for i, s := range segs {
		if s == "" {
			segs[i] = AnonymousScope
		}
	}
	return strings.Join(segs, "::")
}

// ErrMalformedName is returned by ParseTypeName for a lone ':'.
var ErrMalformedName = errors.New("malformed type name")

// IsIdentRune reports whether r may appear in a C identifier segment.
func IsIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ParseTypeName splits a destination name into path segments.
//
// Identifier runs are separated by "::" or ".". The first other character
// starts a verbatim tail that belongs to the last segment, so
// "std::less<ns::T *>" yields ["std", "less<ns::T *>"].
func ParseTypeName(input string) ([]string, error) {
	var out []string
	add := func(s string) {
		if s != "" {
			out = append(out, s)
		}
	}
	runes := []rune(input)
	i := 0
	for {
		start := i
		for i < len(runes) && IsIdentRune(runes[i]) {
			i++
		}
		part := string(runes[start:i])
		if i >= len(runes) {
			add(part)
			break
		}
		switch runes[i] {
		case ':':
			if i+1 >= len(runes) || runes[i+1] != ':' {
				return nil, fmt.Errorf("%w: %q: expected \"::\" at position %d", ErrMalformedName, input, i)
			}
			add(part)
			i += 2
			continue
		case '.':
			add(part)
			i++
			continue
		}
		add(part + string(runes[i:]))
		break
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q: empty name", ErrMalformedName, input)
	}
	return out, nil
}
