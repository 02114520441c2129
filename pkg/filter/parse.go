package filter

import (
	"strings"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/segment"
)

const maxSegments = 6

var leafFor = [maxSegments]func(segment.Match) *FieldFilter{
	GroupID, ArtifactID, Version, Type, Classifier, Scope,
}

// DefaultScopeFilter rejects test and provided scopes. Patterns without a
// scope segment carry it.
func DefaultScopeFilter() *AndFilter {
	return And(
		Not(Scope(segment.NewExact(artifact.ScopeTest))),
		Not(Scope(segment.NewExact(artifact.ScopeProvided))),
	)
}

// Parse builds a compacted filter from a coordinate pattern. An absent or
// empty scope segment excludes test and provided scopes.
func Parse(pattern string) (Filter, error) {
	return parse(pattern, true)
}

// ParseLookup is like Parse but an absent scope matches every scope. Graph
// lookups use it.
func ParseLookup(pattern string) (Filter, error) {
	return parse(pattern, false)
}

// MustParse is like Parse but panics on error.
func MustParse(pattern string) Filter {
	f, err := Parse(pattern)
	if err != nil {
		panic(err)
	}
	return f
}

func parse(pattern string, defaultScope bool) (Filter, error) {
	if strings.ContainsAny(pattern, " \t\r\n") {
		return nil, errors.New(errors.ErrCodeInvalidPattern, "pattern %q contains whitespace", pattern)
	}
	segs := strings.Split(pattern, ":")
	if len(segs) > maxSegments {
		return nil, errors.New(errors.ErrCodeInvalidPattern,
			"pattern %q has %d segments, at most %d allowed", pattern, len(segs), maxSegments)
	}

	var leaves []Filter
	for i, seg := range segs {
		if seg == "" || seg == "*" {
			continue
		}
		negate := strings.HasPrefix(seg, "!")
		if negate {
			seg = seg[1:]
			if seg == "" {
				return nil, errors.New(errors.ErrCodeInvalidPattern,
					"pattern %q: negated %s segment is empty", pattern, Field(i))
			}
		}
		var leaf Filter = leafFor[i](segment.Parse(seg))
		if negate {
			leaf = Not(leaf)
		}
		leaves = append(leaves, leaf)
	}

	if defaultScope && (len(segs) <= int(FieldScope) || segs[FieldScope] == "") {
		leaves = append(leaves, DefaultScopeFilter().Filters...)
	}
	return Compact(And(leaves...)), nil
}

// ParseAll combines include and exclude patterns: a subject is accepted
// when it matches any include and no exclude. With no includes, the empty
// pattern is used so the default scope exclusion applies. Exclude patterns
// are parsed like lookups so they match every scope unless one is given.
func ParseAll(includes, excludes []string) (Filter, error) {
	if len(includes) == 0 {
		includes = []string{""}
	}
	inc := make([]Filter, 0, len(includes))
	for _, p := range includes {
		f, err := Parse(p)
		if err != nil {
			return nil, err
		}
		inc = append(inc, f)
	}
	if len(excludes) == 0 {
		return Compact(Or(inc...)), nil
	}
	exc := make([]Filter, 0, len(excludes))
	for _, p := range excludes {
		f, err := ParseLookup(p)
		if err != nil {
			return nil, err
		}
		exc = append(exc, f)
	}
	return Compact(And(Or(inc...), Not(Or(exc...)))), nil
}
