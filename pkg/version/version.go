// Package version parses and orders artifact revision strings.
//
// Versions are parsed into a numeric triple, an optional classifier and a
// snapshot flag. Parsing is tolerant: any string containing a digit run
// yields a Version, with unparseable text folded into the classifier.
//
// # Ordering
//
// Versions compare by (major, minor, patch) first. For equal triples, a
// "special" (pre-release) classifier such as rc1, alpha, beta2 or a dated
// build like I20131022 sorts before any other classifier, including none.
// Two special or two non-special classifiers compare by raw byte order,
// not by release maturity: "GA" sorts before "HF01" only because 'G' < 'H'.
// A snapshot sorts immediately before the release with the same triple
// and classifier.
//
//	v1 := version.MustParse("2.0-rc1")
//	v2 := version.MustParse("2.0")
//	v1.Less(v2) // true
package version

import (
	"cmp"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
)

// SnapshotSuffix marks a development version.
const SnapshotSuffix = "-SNAPSHOT"

var (
	// specialRe matches the whole classifier: rc, alpha or beta with an
	// optional number, or one letter and an 8-digit date.
	specialRe = regexp.MustCompile(`(?i)^(?:(?:rc|alpha|beta)\d*|[a-z]\d{8})$`)

	fallbackRe = regexp.MustCompile(`^(\D*)(\d+)(?:\.(\d+))?(?:\.(\d+))?[-_.]?(.*)$`)

	filenameRe = regexp.MustCompile(`^(.*?)-(\d.*)\.jar$`)
)

// Version is an immutable parsed revision.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Classifier string
	Snapshot   bool

	raw string
}

// New returns a Version built from its parts.
func New(major, minor, patch int, classifier string, snapshot bool) Version {
	return Version{Major: major, Minor: minor, Patch: patch, Classifier: classifier, Snapshot: snapshot}
}

// Parse parses s. It fails only when s contains no digit.
func Parse(s string) (Version, error) {
	v := Version{raw: s}
	rest := s
	if strings.HasSuffix(rest, SnapshotSuffix) {
		rest = strings.TrimSuffix(rest, SnapshotSuffix)
		v.Snapshot = true
	}

	numeric := rest
	var classifier string
	if i := strings.LastIndexByte(rest, '-'); i >= 0 {
		numeric, classifier = rest[:i], rest[i+1:]
	}
	if parts, ok := parseNumeric(numeric); ok {
		v.Major, v.Minor, v.Patch = parts[0], parts[1], parts[2]
		v.Classifier = classifier
		return v, nil
	}

	m := fallbackRe.FindStringSubmatch(rest)
	if m == nil {
		return Version{}, errors.New(errors.ErrCodeInvalidVersion, "no numeric component in version %q", s)
	}
	var parts [3]int
	for i, field := range m[2:5] {
		if field == "" {
			continue
		}
		// Runs too large for int are clamped.
		n, err := strconv.Atoi(field)
		if err != nil {
			n = math.MaxInt
		}
		parts[i] = n
	}
	v.Major, v.Minor, v.Patch = parts[0], parts[1], parts[2]
	v.Classifier = joinClassifier(strings.Trim(m[1], "-_."), m[5])
	return v, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parseNumeric(s string) ([3]int, bool) {
	var parts [3]int
	if s == "" {
		return parts, false
	}
	fields := strings.Split(s, ".")
	if len(fields) > 3 {
		return parts, false
	}
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || strings.HasPrefix(f, "+") {
			return parts, false
		}
		parts[i] = n
	}
	return parts, true
}

func joinClassifier(prefix, suffix string) string {
	switch {
	case prefix == "":
		return suffix
	case suffix == "":
		return prefix
	default:
		return prefix + "-" + suffix
	}
}

// Special reports whether the classifier is a pre-release marker.
func (v Version) Special() bool {
	return v.Classifier != "" && specialRe.MatchString(v.Classifier)
}

// IsSpecialClassifier reports whether c would be treated as a pre-release
// classifier.
func IsSpecialClassifier(c string) bool {
	return c != "" && specialRe.MatchString(c)
}

// Original returns the string the version was parsed from, or the
// canonical form for versions built with New.
func (v Version) Original() string {
	if v.raw != "" {
		return v.raw
	}
	return v.String()
}

// String returns the canonical form major.minor.patch[-classifier][-SNAPSHOT].
func (v Version) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Classifier != "" {
		b.WriteByte('-')
		b.WriteString(v.Classifier)
	}
	if v.Snapshot {
		b.WriteString(SnapshotSuffix)
	}
	return b.String()
}

// Compare returns -1, 0 or +1 as a sorts before, equal to, or after b.
func Compare(a, b Version) int {
	if c := cmp.Compare(a.Major, b.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Patch, b.Patch); c != 0 {
		return c
	}
	if a.Classifier == b.Classifier {
		switch {
		case a.Snapshot == b.Snapshot:
			return 0
		case a.Snapshot:
			return -1
		default:
			return 1
		}
	}
	as, bs := a.Special(), b.Special()
	switch {
	case as && !bs:
		return -1
	case bs && !as:
		return 1
	}
	return strings.Compare(a.Classifier, b.Classifier)
}

// Compare compares v with o. See the package-level Compare.
func (v Version) Compare(o Version) int { return Compare(v, o) }

// Equal reports whether v and o compare equal.
func (v Version) Equal(o Version) bool { return Compare(v, o) == 0 }

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool { return Compare(v, o) < 0 }

// CompareStrings parses and compares two version strings.
func CompareStrings(a, b string) (int, error) {
	va, err := Parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return Compare(va, vb), nil
}

// Sort sorts versions in ascending order. The sort is stable so versions
// that compare equal keep their input order.
func Sort(vs []Version) {
	slices.SortStableFunc(vs, Compare)
}

// Max returns the greatest version, or false when vs is empty.
func Max(vs ...Version) (Version, bool) {
	if len(vs) == 0 {
		return Version{}, false
	}
	return slices.MaxFunc(vs, Compare), true
}

// FromFilename extracts the artifact name and version from a file named
// like "name-<version>.jar".
func FromFilename(filename string) (string, Version, error) {
	m := filenameRe.FindStringSubmatch(filename)
	if m == nil {
		return "", Version{}, errors.New(errors.ErrCodeInvalidVersion, "no version in file name %q", filename)
	}
	v, err := Parse(m[2])
	if err != nil {
		return "", Version{}, err
	}
	return m[1], v, nil
}
