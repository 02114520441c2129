// Package resolve is the boundary between the dependency graph and the
// repositories that describe artifacts.
//
// A Resolver turns a root dependency into a Tree of its transitive
// dependencies. The Collector implements Resolver on top of a Source,
// which only has to return the declared dependencies of one artifact.
// Sources live next to this package: Static for in-memory and TOML
// repository files, and resolve/maven for remote Maven repositories.
//
// # Collection rules
//
// The Collector follows the usual Maven mediation rules:
//   - Breadth-first discovery; the nearest occurrence of an artifact wins
//     and farther occurrences of other versions become leaves that point
//     at their winner
//   - Scopes propagate through the table in DeriveScope
//   - Optional, test and provided dependencies of non-root artifacts are
//     not transitive
//   - The root's dependency management overrides transitive versions and
//     scopes, remembering the premanaged values
//   - Exclusions apply to the whole subtree below the declaring edge
package resolve

import (
	"context"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/filter"
)

// Request describes one resolution.
type Request struct {
	// Root is the dependency to resolve.
	Root artifact.Dependency
	// Filter selects edges to follow. Nil accepts everything.
	Filter filter.Filter
	// Depth bounds the tree: negative is unbounded, 0 keeps the root
	// only, n keeps nodes up to n edges below the root.
	Depth int
}

// Tree is a resolved dependency tree. Identical coordinates reached from
// several parents share one *Tree.
type Tree struct {
	Dependency artifact.Dependency
	Children   []*Tree

	// Winner is set when conflict mediation picked another version of
	// this artifact. The node is then kept as a leaf.
	Winner *artifact.Coordinate

	// PremanagedVersion and PremanagedScope hold the declared values
	// replaced by dependency management.
	PremanagedVersion string
	PremanagedScope   string
}

// Count returns the number of distinct trees reachable from t.
func (t *Tree) Count() int {
	if t == nil {
		return 0
	}
	seen := make(map[*Tree]bool)
	stack := []*Tree{t}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, n.Children...)
	}
	return len(seen)
}

// Resolver resolves a root dependency into a tree.
type Resolver interface {
	// Resolve returns the tree below req.Root, or nil when the filter
	// rejects the root itself.
	Resolve(ctx context.Context, req Request) (*Tree, error)
}

// Exclusion removes a group:artifact, either of which may be "*", from a
// subtree.
type Exclusion struct {
	GroupID    string
	ArtifactID string
}

// Matches reports whether the exclusion applies to c.
func (e Exclusion) Matches(c artifact.Coordinate) bool {
	return (e.GroupID == "*" || e.GroupID == c.GroupID) &&
		(e.ArtifactID == "*" || e.ArtifactID == c.ArtifactID)
}

func (e Exclusion) String() string {
	return e.GroupID + ":" + e.ArtifactID
}

// Declared is a dependency as written in a descriptor. Scope and type may
// be empty; the collector applies defaults.
type Declared struct {
	artifact.Dependency
	Exclusions []Exclusion
}

// Descriptor is what a Source knows about one artifact.
type Descriptor struct {
	// Coordinate is the artifact described, with its version resolved.
	Coordinate artifact.Coordinate
	// Dependencies are the declared dependencies in declaration order.
	Dependencies []Declared
	// Managed is the dependency management section. Only the root's
	// section is applied during collection.
	Managed []Declared
}

// Source returns artifact descriptors.
type Source interface {
	// Descriptor returns the descriptor of c. An empty version asks for
	// the latest known one. Unknown artifacts yield an error with code
	// NOT_FOUND.
	Descriptor(ctx context.Context, c artifact.Coordinate) (*Descriptor, error)
}

// Prefetcher is implemented by sources that can warm several descriptors
// at once. The collector calls it once per breadth-first level.
type Prefetcher interface {
	Prefetch(ctx context.Context, coords []artifact.Coordinate) error
}
