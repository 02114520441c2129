// Package segment implements the single-field string matchers used as
// leaves of the filter algebra.
package segment

import "strings"

// Kind identifies a matcher variant.
type Kind int

const (
	Any Kind = iota
	Exact
	Prefix
	Suffix
	Middle
)

func (k Kind) String() string {
	switch k {
	case Any:
		return "any"
	case Exact:
		return "exact"
	case Prefix:
		return "prefix"
	case Suffix:
		return "suffix"
	case Middle:
		return "middle"
	}
	return "unknown"
}

// Match is an immutable pattern over one coordinate field. The zero value
// is the universal Any matcher.
type Match struct {
	kind   Kind
	prefix string
	suffix string
}

// All matches every value, including an absent one.
var All = Match{kind: Any}

// NewExact matches s exactly.
func NewExact(s string) Match { return Match{kind: Exact, prefix: s} }

// NewPrefix matches values starting with p.
func NewPrefix(p string) Match { return Match{kind: Prefix, prefix: p} }

// NewSuffix matches values ending with s.
func NewSuffix(s string) Match { return Match{kind: Suffix, suffix: s} }

// NewMiddle matches values starting with p and ending with s.
func NewMiddle(p, s string) Match { return Match{kind: Middle, prefix: p, suffix: s} }

// Parse builds a matcher from a pattern containing at most one significant
// '*'. The first star decides the variant: "*" alone is Any, a leading star
// gives Suffix, a trailing star gives Prefix, and an inner star gives
// Middle. Text after the first star is taken literally.
func Parse(pattern string) Match {
	if pattern == "*" {
		return All
	}
	i := strings.IndexByte(pattern, '*')
	switch {
	case i < 0:
		return NewExact(pattern)
	case i == 0:
		return NewSuffix(pattern[1:])
	case i == len(pattern)-1:
		return NewPrefix(pattern[:i])
	default:
		return NewMiddle(pattern[:i], pattern[i+1:])
	}
}

// Kind returns the matcher variant.
func (m Match) Kind() Kind { return m.kind }

// Literal returns the fixed leading text the matcher requires, and whether
// the match is exact. Lookups use it to narrow prefix-range scans.
func (m Match) Literal() (string, bool) {
	switch m.kind {
	case Exact:
		return m.prefix, true
	case Prefix, Middle:
		return m.prefix, false
	}
	return "", false
}

// Matches reports whether value satisfies the matcher. An empty value is
// absent and only matches Any.
func (m Match) Matches(value string) bool {
	if m.kind == Any {
		return true
	}
	if value == "" {
		return false
	}
	switch m.kind {
	case Exact:
		return value == m.prefix
	case Prefix:
		return strings.HasPrefix(value, m.prefix)
	case Suffix:
		return strings.HasSuffix(value, m.suffix)
	case Middle:
		return len(value) >= len(m.prefix)+len(m.suffix) &&
			strings.HasPrefix(value, m.prefix) &&
			strings.HasSuffix(value, m.suffix)
	}
	return false
}

// String renders the matcher back in pattern form.
func (m Match) String() string {
	switch m.kind {
	case Exact:
		return m.prefix
	case Prefix:
		return m.prefix + "*"
	case Suffix:
		return "*" + m.suffix
	case Middle:
		return m.prefix + "*" + m.suffix
	}
	return "*"
}
