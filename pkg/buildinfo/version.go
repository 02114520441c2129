// Package buildinfo holds version information stamped at link time:
//
//	go build -ldflags "-X github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/artgraph
package buildinfo

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// UserAgent identifies artgraph in repository requests.
func UserAgent() string {
	return fmt.Sprintf("artgraph/%s (%s; %s/%s)", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
