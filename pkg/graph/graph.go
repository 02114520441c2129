package graph

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/filter"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/resolve"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/segment"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/session"
)

// Node is one resolved artifact occurrence.
type Node struct {
	ID         string
	Dependency artifact.Dependency

	// Winner is set when mediation picked another version of the artifact.
	Winner *artifact.Coordinate

	PremanagedVersion string
	PremanagedScope   string

	children []string
	parents  []string
}

// Coordinate returns the node's coordinate.
func (n *Node) Coordinate() artifact.Coordinate { return n.Dependency.Coordinate }

// Conflicting reports whether another version of the artifact won
// mediation. Conflicting nodes are superseded occurrences.
func (n *Node) Conflicting() bool {
	return n.Winner != nil && *n.Winner != n.Dependency.Coordinate
}

// ChildIDs returns the ids of the node's dependencies in declaration order.
func (n *Node) ChildIDs() []string { return n.children }

// ParentIDs returns one id per incoming edge.
func (n *Node) ParentIDs() []string { return n.parents }

func (n *Node) String() string { return n.ID }

// Graph is the node arena.
type Graph struct {
	sess  *session.Session
	nodes map[string]*Node
	roots []string

	// sorted caches the ordered ids; nil when stale.
	sorted []string
}

// New creates an empty graph resolving through sess.
func New(sess *session.Session) *Graph {
	return &Graph{sess: sess, nodes: make(map[string]*Node)}
}

// Session returns the build session.
func (g *Graph) Session() *session.Session { return g.sess }

// AddRoot resolves c with its direct dependencies and adds it as a root.
// Adding a coordinate that is already a root returns the existing node.
func (g *Graph) AddRoot(ctx context.Context, c artifact.Coordinate) (*Node, error) {
	c = c.WithDefaults()
	if n, ok := g.nodes[c.ID()]; ok && g.IsRoot(n) {
		return n, nil
	}
	tree, err := g.resolve(ctx, artifact.NewDependency(c), nil, 1)
	if err != nil {
		return nil, err
	}
	return g.AddRootTree(tree), nil
}

// AddProject adds the session's project as a root, resolving its direct
// dependencies.
func (g *Graph) AddProject(ctx context.Context) (*Node, error) {
	if g.sess == nil || g.sess.Project == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "session has no project")
	}
	return g.AddRoot(ctx, g.sess.Project.Coordinate)
}

// AddRootTree imports a resolved tree and marks its top node as a root.
// A node already present as a dependency of another root takes the
// children of t, so a root always carries its own resolution. A nil tree
// is ignored.
func (g *Graph) AddRootTree(t *resolve.Tree) *Node {
	if t == nil {
		return nil
	}
	n, ok := g.nodes[t.Dependency.Coordinate.ID()]
	switch {
	case ok && g.IsRoot(n):
		return n
	case ok:
		g.adopt(n, t)
	default:
		n = g.newNode(t)
		g.link(n, t)
	}
	g.roots = append(g.roots, n.ID)
	return n
}

// AddTree imports a resolved tree. A node whose id is already present is
// left untouched, so re-adding is a no-op; every imported edge appends
// its parent to the child's parent list.
func (g *Graph) AddTree(t *resolve.Tree) *Node {
	if n, ok := g.nodes[t.Dependency.Coordinate.ID()]; ok {
		return n
	}
	n := g.newNode(t)
	g.link(n, t)
	return n
}

func (g *Graph) newNode(t *resolve.Tree) *Node {
	n := &Node{ID: t.Dependency.Coordinate.ID()}
	n.setTree(t)
	g.nodes[n.ID] = n
	g.sorted = nil
	if g.sess != nil {
		g.sess.Logger.Debug("node added", "id", n.ID)
	}
	return n
}

func (n *Node) setTree(t *resolve.Tree) {
	n.Dependency = t.Dependency
	n.Winner = t.Winner
	n.PremanagedVersion = t.PremanagedVersion
	n.PremanagedScope = t.PremanagedScope
}

// link imports the children of t below n.
func (g *Graph) link(n *Node, t *resolve.Tree) {
	for _, ct := range t.Children {
		child := g.AddTree(ct)
		n.children = append(n.children, child.ID)
		child.parents = append(child.parents, n.ID)
	}
}

// adopt replaces the occurrence data and outgoing edges of n with t.
func (g *Graph) adopt(n *Node, t *resolve.Tree) {
	for _, id := range n.children {
		if c, ok := g.nodes[id]; ok {
			if i := slices.Index(c.parents, n.ID); i >= 0 {
				c.parents = slices.Delete(c.parents, i, i+1)
			}
		}
	}
	n.children = nil
	n.setTree(t)
	g.link(n, t)
}

// ResolveDependencies rebuilds the graph: every current root is resolved
// again with f and depth (negative is unbounded). Roots rejected by f are
// dropped. Errors name the failing root and carry RESOLUTION_FAILED; the
// graph is left unchanged when any root fails.
func (g *Graph) ResolveDependencies(ctx context.Context, f filter.Filter, depth int) error {
	trees := make([]*resolve.Tree, 0, len(g.roots))
	for _, id := range g.roots {
		tree, err := g.resolve(ctx, g.nodes[id].Dependency, f, depth)
		if err != nil {
			return err
		}
		if tree != nil {
			trees = append(trees, tree)
		}
	}

	g.Reset()
	// Every root node exists before any subtree is linked, so a root
	// reached below another root keeps its own children.
	var tops []*Node
	for _, t := range trees {
		if _, ok := g.nodes[t.Dependency.Coordinate.ID()]; ok {
			tops = append(tops, nil)
			continue
		}
		n := g.newNode(t)
		g.roots = append(g.roots, n.ID)
		tops = append(tops, n)
	}
	for i, n := range tops {
		if n != nil {
			g.link(n, trees[i])
		}
	}
	return nil
}

func (g *Graph) resolve(ctx context.Context, dep artifact.Dependency, f filter.Filter, depth int) (*resolve.Tree, error) {
	if g.sess == nil || g.sess.Resolver == nil {
		return nil, errors.New(errors.ErrCodeInternal, "graph has no resolver")
	}
	tree, err := g.sess.Resolver.Resolve(ctx, resolve.Request{Root: dep, Filter: f, Depth: depth})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeResolution, err, "resolve %s", dep.Coordinate)
	}
	return tree, nil
}

// Reset removes all nodes and roots.
func (g *Graph) Reset() {
	g.nodes = make(map[string]*Node)
	g.roots = nil
	g.sorted = nil
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node { return g.nodes[id] }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Roots returns the root nodes in insertion order.
func (g *Graph) Roots() []*Node { return g.lookup(g.roots) }

// IsRoot reports whether n is a root.
func (g *Graph) IsRoot(n *Node) bool { return slices.Contains(g.roots, n.ID) }

// Nodes returns all nodes sorted by id.
func (g *Graph) Nodes() []*Node { return g.lookup(g.ids()) }

// Children returns the dependencies of n.
func (g *Graph) Children(n *Node) []*Node { return g.lookup(n.children) }

// Parents returns one node per incoming edge of n.
func (g *Graph) Parents(n *Node) []*Node { return g.lookup(n.parents) }

func (g *Graph) lookup(ids []string) []*Node {
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := g.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (g *Graph) ids() []string {
	if g.sorted == nil {
		g.sorted = make([]string, 0, len(g.nodes))
		for id := range g.nodes {
			g.sorted = append(g.sorted, id)
		}
		sort.Strings(g.sorted)
	}
	return g.sorted
}

// Find returns the nodes matching pattern, sorted by id. The scope
// segment defaults to any scope and the version segment is matched
// against the base version, as in node ids.
func (g *Graph) Find(pattern string) ([]*Node, error) {
	f, err := filter.ParseLookup(pattern)
	if err != nil {
		return nil, err
	}
	ids := g.ids()
	prefix := literalPrefix(pattern)
	start := sort.SearchStrings(ids, prefix)

	var out []*Node
	for _, id := range ids[start:] {
		if !strings.HasPrefix(id, prefix) {
			break
		}
		n := g.nodes[id]
		// Ids carry the base version, so lookups match against it too.
		c := n.Dependency.Coordinate
		c.Version = c.BaseVersion()
		ok, err := f.AcceptArtifact(c)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// FindUnique returns the single node matching pattern. Zero matches yield
// NOT_FOUND, several yield AMBIGUOUS listing the candidates.
func (g *Graph) FindUnique(pattern string) (*Node, error) {
	nodes, err := g.Find(pattern)
	if err != nil {
		return nil, err
	}
	switch len(nodes) {
	case 0:
		return nil, errors.New(errors.ErrCodeNotFound, "no node matches %q", pattern)
	case 1:
		return nodes[0], nil
	}
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return nil, errors.New(errors.ErrCodeAmbiguous, "%q matches %d nodes: %s", pattern, len(nodes), strings.Join(ids, ", "))
}

// literalPrefix returns the id prefix every match of pattern must have:
// an exact group contributes "group:" and lets an exact or starred
// artifact extend it.
func literalPrefix(pattern string) string {
	segs := strings.SplitN(pattern, ":", 3)
	var b strings.Builder
	for i, seg := range segs[:min(len(segs), 2)] {
		if seg == "" || strings.HasPrefix(seg, "!") {
			break
		}
		lit, exact := segment.Parse(seg).Literal()
		b.WriteString(lit)
		if !exact {
			break
		}
		if i == 0 || len(segs) > 2 {
			b.WriteByte(':')
		}
	}
	return b.String()
}

// Accept evaluates f against n reached through path, ordered from the
// root and excluding n.
func Accept(f filter.Filter, n *Node, path []*Node) (bool, error) {
	ancestors := make([]artifact.Dependency, len(path))
	for i, p := range path {
		ancestors[i] = p.Dependency
	}
	return f.AcceptDependency(n.Dependency, ancestors)
}

// Stats summarizes the graph.
type Stats struct {
	Nodes     int `json:"nodes"`
	Roots     int `json:"roots"`
	Edges     int `json:"edges"`
	Conflicts int `json:"conflicts"`
}

// Stats counts nodes, roots, edges and conflicting nodes.
func (g *Graph) Stats() Stats {
	s := Stats{Nodes: len(g.nodes), Roots: len(g.roots)}
	for _, n := range g.nodes {
		s.Edges += len(n.children)
		if n.Conflicting() {
			s.Conflicts++
		}
	}
	return s
}
