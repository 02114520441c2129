// Package traverse walks a dependency graph depth-first with an explicit
// stack.
//
// Each node is processed once: its first encounter recurses into its
// children, later encounters are reported as duplicates without
// recursion. A node excluded by scope, filter or the ignore set is marked
// visited without being reported, and its unvisited descendants join the
// ignore set so no other path brings them back.
package traverse

import (
	"errors"
	"slices"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/filter"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/graph"
)

// SkipChildren can be returned by a Func on enter to process the node
// without descending into it.
var SkipChildren = errors.New("skip children")

// Options controls a walk.
type Options struct {
	// Scopes lists the scopes to traverse. Empty allows all. An empty
	// node scope counts as compile.
	Scopes []string
	// Ignore holds ids to skip together with their descendants.
	Ignore []string
	// Filter, when set, excludes nodes it rejects given their path.
	Filter filter.Filter
	// Leave reports every processed node a second time after its
	// children.
	Leave bool
}

// Step is one callback event.
type Step struct {
	Node *graph.Node
	// Depth is 0 for roots.
	Depth int
	// Path lists the ancestors of Node from the root. It must not be
	// retained.
	Path []*graph.Node
	// New is false for repeated encounters and for nodes that lost
	// version mediation.
	New bool
	// Duplicate is true when the node was already processed on another
	// path.
	Duplicate bool
	// Leave is set on the event that follows the node's children.
	Leave bool
}

// Func receives steps. Returning an error other than SkipChildren stops
// the walk.
type Func func(Step) error

type frame struct {
	node  *graph.Node
	depth int
	next  int // index of the next child to enter
}

// Walk traverses g from roots.
func Walk(g *graph.Graph, roots []*graph.Node, opts Options, fn Func) error {
	w := &walker{
		g:       g,
		opts:    opts,
		fn:      fn,
		visited: make(map[string]bool),
		ignored: make(map[string]bool),
	}
	for _, id := range opts.Ignore {
		w.ignored[id] = true
	}
	for _, r := range roots {
		if err := w.walk(r); err != nil {
			return err
		}
	}
	return nil
}

type walker struct {
	g       *graph.Graph
	opts    Options
	fn      Func
	visited map[string]bool
	ignored map[string]bool
	stack   []frame
}

func (w *walker) walk(root *graph.Node) error {
	w.stack = w.stack[:0]
	ok, err := w.enter(root, 0)
	if err != nil || !ok {
		return err
	}
	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]
		children := top.node.ChildIDs()
		if top.next < len(children) {
			child := w.g.Node(children[top.next])
			top.next++
			if child == nil {
				continue
			}
			if _, err := w.enter(child, top.depth+1); err != nil {
				return err
			}
			continue
		}
		f := *top
		w.stack = w.stack[:len(w.stack)-1]
		if w.opts.Leave {
			if err := w.fn(Step{Node: f.node, Depth: f.depth, Path: w.path(), New: !f.node.Conflicting(), Leave: true}); err != nil {
				return err
			}
		}
	}
	return nil
}

// enter handles one encounter and pushes the node when its children must
// be visited.
func (w *walker) enter(n *graph.Node, depth int) (bool, error) {
	if w.visited[n.ID] {
		if w.ignored[n.ID] {
			return false, nil
		}
		err := w.fn(Step{Node: n, Depth: depth, Path: w.path(), Duplicate: true})
		if err == SkipChildren {
			err = nil
		}
		return false, err
	}
	w.visited[n.ID] = true

	excluded, err := w.excluded(n)
	if err != nil {
		return false, err
	}
	if excluded {
		w.ignore(n)
		return false, nil
	}

	err = w.fn(Step{Node: n, Depth: depth, Path: w.path(), New: !n.Conflicting()})
	switch {
	case err == SkipChildren:
		if w.opts.Leave {
			return false, w.fn(Step{Node: n, Depth: depth, Path: w.path(), New: !n.Conflicting(), Leave: true})
		}
		return false, nil
	case err != nil:
		return false, err
	}
	w.stack = append(w.stack, frame{node: n, depth: depth})
	return true, nil
}

func (w *walker) excluded(n *graph.Node) (bool, error) {
	if w.ignored[n.ID] {
		return true, nil
	}
	if len(w.opts.Scopes) > 0 {
		scope := n.Dependency.Scope
		if scope == "" {
			scope = artifact.DefaultScope
		}
		if !slices.Contains(w.opts.Scopes, scope) {
			return true, nil
		}
	}
	if w.opts.Filter != nil {
		ok, err := graph.Accept(w.opts.Filter, n, w.path())
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
	return false, nil
}

// ignore adds n and its unvisited descendants to the ignore set. They are
// marked visited so later paths skip them silently.
func (w *walker) ignore(n *graph.Node) {
	w.ignored[n.ID] = true
	pending := slices.Clone(n.ChildIDs())
	for len(pending) > 0 {
		id := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if w.visited[id] {
			continue
		}
		w.visited[id] = true
		w.ignored[id] = true
		if c := w.g.Node(id); c != nil {
			pending = append(pending, c.ChildIDs()...)
		}
	}
}

// path returns the nodes on the stack, root first.
func (w *walker) path() []*graph.Node {
	p := make([]*graph.Node, len(w.stack))
	for i, f := range w.stack {
		p[i] = f.node
	}
	return p
}
