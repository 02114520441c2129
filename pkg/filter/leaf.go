package filter

import (
	"fmt"
	"strconv"

	"github.com/Masterminds/semver/v3"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/segment"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/version"
)

// Field names a coordinate field.
type Field int

const (
	FieldGroupID Field = iota
	FieldArtifactID
	FieldVersion
	FieldType
	FieldClassifier
	FieldScope
)

var fieldNames = [...]string{"groupId", "artifactId", "version", "type", "classifier", "scope"}

func (f Field) String() string {
	if int(f) < len(fieldNames) {
		return fieldNames[f]
	}
	return "field(" + strconv.Itoa(int(f)) + ")"
}

// Value returns the field of c.
func (f Field) Value(c artifact.Coordinate) string {
	switch f {
	case FieldGroupID:
		return c.GroupID
	case FieldArtifactID:
		return c.ArtifactID
	case FieldVersion:
		return c.Version
	case FieldType:
		return c.Type
	case FieldClassifier:
		return c.Classifier
	case FieldScope:
		return c.Scope
	}
	return ""
}

// FieldFilter matches one coordinate field against a segment matcher.
type FieldFilter struct {
	Field Field
	Match segment.Match
}

// GroupID matches the group id.
func GroupID(m segment.Match) *FieldFilter { return &FieldFilter{Field: FieldGroupID, Match: m} }

// ArtifactID matches the artifact id.
func ArtifactID(m segment.Match) *FieldFilter { return &FieldFilter{Field: FieldArtifactID, Match: m} }

// Version matches the version string.
func Version(m segment.Match) *FieldFilter { return &FieldFilter{Field: FieldVersion, Match: m} }

// Type matches the artifact type.
func Type(m segment.Match) *FieldFilter { return &FieldFilter{Field: FieldType, Match: m} }

// Classifier matches the classifier.
func Classifier(m segment.Match) *FieldFilter { return &FieldFilter{Field: FieldClassifier, Match: m} }

// Scope matches the dependency scope.
func Scope(m segment.Match) *FieldFilter { return &FieldFilter{Field: FieldScope, Match: m} }

func (f *FieldFilter) AcceptArtifact(c artifact.Coordinate) (bool, error) {
	return f.Match.Matches(f.Field.Value(c)), nil
}

func (f *FieldFilter) AcceptDependency(dep artifact.Dependency, _ []artifact.Dependency) (bool, error) {
	return f.Match.Matches(f.Field.Value(dep.Coordinate)), nil
}

func (f *FieldFilter) String() string {
	return f.Field.String() + "=" + f.Match.String()
}

// OptionalFilter matches the optional flag of a dependency edge. It has no
// answer for bare artifacts.
type OptionalFilter struct {
	Optional bool
}

// Optional matches edges whose optional flag equals v.
func Optional(v bool) *OptionalFilter { return &OptionalFilter{Optional: v} }

func (f *OptionalFilter) AcceptArtifact(c artifact.Coordinate) (bool, error) {
	return false, errors.Unsupported("%s cannot test artifact %s: no dependency edge", f, c)
}

func (f *OptionalFilter) AcceptDependency(dep artifact.Dependency, _ []artifact.Dependency) (bool, error) {
	return dep.Optional == f.Optional, nil
}

func (f *OptionalFilter) String() string {
	return "optional=" + strconv.FormatBool(f.Optional)
}

// AncestorFilter accepts an edge when any of its ancestors, never the edge
// target itself, satisfies the wrapped filter. Each ancestor is tested with
// the chain above it.
type AncestorFilter struct {
	Filter Filter
}

// Ancestor wraps f.
func Ancestor(f Filter) *AncestorFilter { return &AncestorFilter{Filter: f} }

func (f *AncestorFilter) AcceptArtifact(c artifact.Coordinate) (bool, error) {
	return false, errors.Unsupported("%s cannot test artifact %s: no ancestor chain", f, c)
}

func (f *AncestorFilter) AcceptDependency(_ artifact.Dependency, ancestors []artifact.Dependency) (bool, error) {
	for i, a := range ancestors {
		ok, err := f.Filter.AcceptDependency(a, ancestors[:i])
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (f *AncestorFilter) String() string {
	return "ancestor(" + f.Filter.String() + ")"
}

// VersionRangeFilter accepts versions inside a semantic range such as
// ">=2.0, <3.0" or "~5.9". Candidates are read with the tolerant version
// parser; pre-release classifiers and snapshots become semver
// pre-releases, other classifiers are ignored. Absent or unparseable
// versions are rejected.
type VersionRangeFilter struct {
	expr        string
	constraints *semver.Constraints
}

// VersionRange parses a range expression.
func VersionRange(expr string) (*VersionRangeFilter, error) {
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPattern, err, "invalid version range %q", expr)
	}
	return &VersionRangeFilter{expr: expr, constraints: c}, nil
}

func (f *VersionRangeFilter) AcceptArtifact(c artifact.Coordinate) (bool, error) {
	return f.check(c.Version), nil
}

func (f *VersionRangeFilter) AcceptDependency(dep artifact.Dependency, _ []artifact.Dependency) (bool, error) {
	return f.check(dep.Version), nil
}

func (f *VersionRangeFilter) check(raw string) bool {
	if raw == "" {
		return false
	}
	v, err := version.Parse(raw)
	if err != nil {
		return false
	}
	var pre string
	switch {
	case v.Special():
		pre = v.Classifier
	case v.Snapshot:
		pre = "SNAPSHOT"
	}
	sv := semver.New(uint64(v.Major), uint64(v.Minor), uint64(v.Patch), pre, "")
	return f.constraints.Check(sv)
}

func (f *VersionRangeFilter) String() string {
	return fmt.Sprintf("version~%q", f.expr)
}
