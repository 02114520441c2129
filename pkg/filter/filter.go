// Package filter implements the predicate algebra used to select artifacts
// and dependency edges.
//
// Every filter answers two questions: does it accept a bare artifact, and
// does it accept a dependency edge reached through a chain of ancestors
// (root first). A filter that cannot answer for a subject returns an error
// carrying errors.ErrCodeUnsupported; callers must not treat that as a
// rejection.
//
// Leaves match one coordinate field (GroupID, ArtifactID, Version, Type,
// Classifier, Scope), the optional flag, the ancestor chain, or a semantic
// version range. And, Or and Not compose them.
//
// # Patterns
//
// Parse builds a filter from group:artifact:version:type:classifier:scope.
// Empty and "*" segments add no constraint; a leading '!' negates that
// segment only. When the scope segment is absent or empty, test and
// provided scopes are excluded:
//
//	f, _ := filter.Parse("org.nuxeo:!*-test")
//	ok, _ := f.AcceptArtifact(coord)
package filter

import (
	"strings"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
)

// Filter is a predicate over artifacts and dependency edges.
type Filter interface {
	// AcceptArtifact tests a single artifact.
	AcceptArtifact(c artifact.Coordinate) (bool, error)
	// AcceptDependency tests an edge target given the dependencies on the
	// path from the root to its parent, root first.
	AcceptDependency(dep artifact.Dependency, ancestors []artifact.Dependency) (bool, error)
	String() string
}

// AcceptAll accepts every subject.
var AcceptAll Filter = And()

// RejectAll rejects every subject.
var RejectAll Filter = Or()

// AndFilter accepts when every child accepts. Evaluation stops at the
// first rejection or error. An empty AndFilter accepts.
type AndFilter struct {
	Filters []Filter
}

// And returns the conjunction of fs.
func And(fs ...Filter) *AndFilter {
	return &AndFilter{Filters: fs}
}

func (f *AndFilter) AcceptArtifact(c artifact.Coordinate) (bool, error) {
	for _, child := range f.Filters {
		ok, err := child.AcceptArtifact(c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (f *AndFilter) AcceptDependency(dep artifact.Dependency, ancestors []artifact.Dependency) (bool, error) {
	for _, child := range f.Filters {
		ok, err := child.AcceptDependency(dep, ancestors)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (f *AndFilter) String() string {
	if len(f.Filters) == 0 {
		return "true"
	}
	return join(f.Filters, " && ")
}

// OrFilter accepts when any child accepts. Evaluation stops at the first
// acceptance or error. An empty OrFilter rejects.
type OrFilter struct {
	Filters []Filter
}

// Or returns the disjunction of fs.
func Or(fs ...Filter) *OrFilter {
	return &OrFilter{Filters: fs}
}

func (f *OrFilter) AcceptArtifact(c artifact.Coordinate) (bool, error) {
	for _, child := range f.Filters {
		ok, err := child.AcceptArtifact(c)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (f *OrFilter) AcceptDependency(dep artifact.Dependency, ancestors []artifact.Dependency) (bool, error) {
	for _, child := range f.Filters {
		ok, err := child.AcceptDependency(dep, ancestors)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (f *OrFilter) String() string {
	if len(f.Filters) == 0 {
		return "false"
	}
	return join(f.Filters, " || ")
}

// NotFilter inverts its child. Errors from the child are returned as is.
type NotFilter struct {
	Filter Filter
}

// Not returns the negation of f.
func Not(f Filter) *NotFilter {
	return &NotFilter{Filter: f}
}

func (f *NotFilter) AcceptArtifact(c artifact.Coordinate) (bool, error) {
	ok, err := f.Filter.AcceptArtifact(c)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (f *NotFilter) AcceptDependency(dep artifact.Dependency, ancestors []artifact.Dependency) (bool, error) {
	ok, err := f.Filter.AcceptDependency(dep, ancestors)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (f *NotFilter) String() string {
	return "!" + f.Filter.String()
}

// Compact replaces every composite holding exactly one child with that
// child, recursively. The result accepts and rejects exactly what f does.
func Compact(f Filter) Filter {
	switch v := f.(type) {
	case *AndFilter:
		if len(v.Filters) == 1 {
			return Compact(v.Filters[0])
		}
		return And(compactAll(v.Filters)...)
	case *OrFilter:
		if len(v.Filters) == 1 {
			return Compact(v.Filters[0])
		}
		return Or(compactAll(v.Filters)...)
	case *NotFilter:
		return Not(Compact(v.Filter))
	case *AncestorFilter:
		return Ancestor(Compact(v.Filter))
	}
	return f
}

func compactAll(fs []Filter) []Filter {
	out := make([]Filter, len(fs))
	for i, f := range fs {
		out[i] = Compact(f)
	}
	return out
}

func join(fs []Filter, sep string) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}
