package report

import (
	"strings"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
)

// Format selects how a coordinate becomes a report line.
type Format int

const (
	// GAV prints group:artifact:version:type:classifier:scope.
	GAV Format = iota
	// KVFileGAV prints filename=group:artifact:version:type:classifier:scope.
	KVFileGAV
)

var formatNames = map[Format]string{
	GAV:       "gav",
	KVFileGAV: "kv_f_gav",
}

// Formats lists the accepted format names.
func Formats() []string {
	return []string{formatNames[GAV], formatNames[KVFileGAV]}
}

// ParseFormat resolves a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if strings.EqualFold(s, name) {
			return f, nil
		}
	}
	return GAV, errors.New(errors.ErrCodeInvalidFormat,
		"unknown format %q (want one of %s)", s, strings.Join(Formats(), ", "))
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// Line renders c.
func (f Format) Line(c artifact.Coordinate) string {
	if f == KVFileGAV {
		return c.Filename() + "=" + c.String()
	}
	return c.String()
}
