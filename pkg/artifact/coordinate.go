// Package artifact defines the coordinate and dependency value types that
// identify artifacts throughout artgraph.
//
// A coordinate is written group:artifact[:version[:type[:classifier[:scope]]]].
// Empty segments mean "unspecified"; type then defaults to jar and scope
// to compile.
package artifact

import (
	"regexp"
	"strings"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
)

// Defaults applied by Parse and WithDefaults.
const (
	DefaultType  = "jar"
	DefaultScope = ScopeCompile
)

// Dependency scopes.
const (
	ScopeCompile  = "compile"
	ScopeRuntime  = "runtime"
	ScopeProvided = "provided"
	ScopeTest     = "test"
	ScopeSystem   = "system"
	ScopeImport   = "import"
)

// TypePOM is the type of metadata-only artifacts.
const TypePOM = "pom"

var (
	coordinateRe = regexp.MustCompile(`^([^: ]*):([^: ]*)(?::([^: ]*)(?::([^: ]*)(?::([^: ]*)(?::([^: ]*))?)?)?)?$`)

	// timestampRe matches a resolved snapshot: 1.0-20131022.123456-7.
	timestampRe = regexp.MustCompile(`^(.*)-(\d{8}\.\d{6})-(\d+)$`)
)

// Coordinate identifies one artifact. It is a comparable value type; the
// zero string means a field is absent.
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
	Type       string
	Classifier string
	Scope      string
}

// Parse parses a coordinate string and applies the type and scope defaults.
func Parse(s string) (Coordinate, error) {
	c, err := ParseRaw(s)
	if err != nil {
		return Coordinate{}, err
	}
	return c.WithDefaults(), nil
}

// ParseRaw parses a coordinate string and leaves unspecified fields empty.
func ParseRaw(s string) (Coordinate, error) {
	m := coordinateRe.FindStringSubmatch(s)
	if m == nil {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"invalid coordinate %q: expected group:artifact[:version[:type[:classifier[:scope]]]]", s)
	}
	if m[1] == "" || m[2] == "" {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"invalid coordinate %q: group and artifact are required", s)
	}
	return Coordinate{
		GroupID:    m[1],
		ArtifactID: m[2],
		Version:    m[3],
		Type:       m[4],
		Classifier: m[5],
		Scope:      m[6],
	}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Coordinate {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// WithDefaults fills an absent type and scope.
func (c Coordinate) WithDefaults() Coordinate {
	if c.Type == "" {
		c.Type = DefaultType
	}
	if c.Scope == "" {
		c.Scope = DefaultScope
	}
	return c
}

// WithScope returns a copy of c with the given scope.
func (c Coordinate) WithScope(scope string) Coordinate {
	c.Scope = scope
	return c
}

// WithVersion returns a copy of c with the given version.
func (c Coordinate) WithVersion(v string) Coordinate {
	c.Version = v
	return c
}

// String renders the GAV form group:artifact:version:type:classifier:scope.
func (c Coordinate) String() string {
	return strings.Join([]string{c.GroupID, c.ArtifactID, c.Version, c.Type, c.Classifier, c.Scope}, ":")
}

// ID is the node identity: the GAV form with the base version.
func (c Coordinate) ID() string {
	return strings.Join([]string{c.GroupID, c.ArtifactID, c.BaseVersion(), c.Type, c.Classifier, c.Scope}, ":")
}

// GA returns group:artifact.
func (c Coordinate) GA() string {
	return c.GroupID + ":" + c.ArtifactID
}

// GAV returns group:artifact:version.
func (c Coordinate) GAV() string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// ConflictKey groups coordinates that compete during version conflict
// resolution: group:artifact:type:classifier.
func (c Coordinate) ConflictKey() string {
	return strings.Join([]string{c.GroupID, c.ArtifactID, c.Type, c.Classifier}, ":")
}

// BaseVersion strips a resolved snapshot timestamp, turning
// 1.0-20131022.123456-7 into 1.0-SNAPSHOT.
func (c Coordinate) BaseVersion() string {
	return BaseVersion(c.Version)
}

// BaseVersion returns the release form of v.
func BaseVersion(v string) string {
	if m := timestampRe.FindStringSubmatch(v); m != nil {
		return m[1] + "-SNAPSHOT"
	}
	return v
}

// IsSnapshot reports whether the version is a snapshot, resolved or not.
func (c Coordinate) IsSnapshot() bool {
	return strings.HasSuffix(c.BaseVersion(), "-SNAPSHOT")
}

// SameArtifact reports whether c and o differ at most in version and scope.
func (c Coordinate) SameArtifact(o Coordinate) bool {
	return c.ConflictKey() == o.ConflictKey()
}

var extensions = map[string]string{
	"test-jar":     "jar",
	"ejb":          "jar",
	"ejb-client":   "jar",
	"maven-plugin": "jar",
	"bundle":       "jar",
	"java-source":  "jar",
	"javadoc":      "jar",
}

// Extension returns the file extension for the coordinate's type.
func (c Coordinate) Extension() string {
	t := c.Type
	if t == "" {
		t = DefaultType
	}
	if ext, ok := extensions[t]; ok {
		return ext
	}
	return t
}

// Filename returns the repository file name artifact-version[-classifier].ext.
func (c Coordinate) Filename() string {
	var b strings.Builder
	b.WriteString(c.ArtifactID)
	b.WriteByte('-')
	b.WriteString(c.Version)
	if c.Classifier != "" {
		b.WriteByte('-')
		b.WriteString(c.Classifier)
	}
	b.WriteByte('.')
	b.WriteString(c.Extension())
	return b.String()
}

// Dependency is a coordinate seen as an edge target: it carries the
// optional flag declared by the parent.
type Dependency struct {
	Coordinate
	Optional bool
}

// NewDependency returns a non-optional dependency on c.
func NewDependency(c Coordinate) Dependency {
	return Dependency{Coordinate: c}
}

// String renders the coordinate, suffixed with [optional] when set.
func (d Dependency) String() string {
	if d.Optional {
		return d.Coordinate.String() + " [optional]"
	}
	return d.Coordinate.String()
}
