package resolve

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/filter"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/observability"
)

// Collector implements Resolver by walking a Source breadth first.
type Collector struct {
	source Source
	logger *log.Logger
}

// NewCollector returns a Collector reading descriptors from src. A nil
// logger discards output.
func NewCollector(src Source, logger *log.Logger) *Collector {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Collector{source: src, logger: logger}
}

// Resolve collects the tree below req.Root.
func (c *Collector) Resolve(ctx context.Context, req Request) (tree *Tree, err error) {
	rootName := req.Root.Coordinate.String()
	start := time.Now()
	observability.Resolve().OnResolveStart(ctx, rootName)
	defer func() {
		observability.Resolve().OnResolveComplete(ctx, rootName, tree.Count(), time.Since(start), err)
	}()

	f := req.Filter
	if f == nil {
		f = filter.AcceptAll
	}
	root := req.Root
	root.Coordinate = root.Coordinate.WithDefaults()

	run := &collection{
		Collector: c,
		ctx:       ctx,
		filter:    f,
		depth:     req.Depth,
		descs:     make(map[string]*Descriptor),
		winners:   make(map[string]*Tree),
		managed:   make(map[string]Declared),
	}

	ok, err := f.AcceptDependency(root, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		c.logger.Debugf("root %s rejected by %s", root, f)
		return nil, nil
	}

	desc, err := run.descriptor(root.Coordinate)
	if err != nil {
		return nil, err
	}
	root.Coordinate.Version = desc.Coordinate.Version

	for _, m := range desc.Managed {
		run.managed[m.Coordinate.WithDefaults().ConflictKey()] = m
	}

	tree = &Tree{Dependency: root}
	run.winners[root.Coordinate.ConflictKey()] = tree
	if err := run.walk(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

type collection struct {
	*Collector
	ctx    context.Context
	filter filter.Filter
	depth  int

	descs   map[string]*Descriptor // by g:a:v
	winners map[string]*Tree       // by conflict key
	managed map[string]Declared    // root dependency management by conflict key
}

// pending is a node waiting for expansion.
type pending struct {
	tree       *Tree
	depth      int
	path       []artifact.Dependency // root first, including tree itself
	exclusions []Exclusion
}

func (r *collection) walk(root *Tree) error {
	level := []pending{{tree: root, path: []artifact.Dependency{root.Dependency}}}
	for len(level) > 0 {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		level = r.expandable(level)
		r.prefetch(level)

		var next []pending
		for _, p := range level {
			children, err := r.expand(p)
			if err != nil {
				return err
			}
			next = append(next, children...)
		}
		level = next
	}
	return nil
}

func (r *collection) expandable(level []pending) []pending {
	if r.depth < 0 {
		return level
	}
	out := level[:0]
	for _, p := range level {
		if p.depth < r.depth {
			out = append(out, p)
		}
	}
	return out
}

func (r *collection) prefetch(level []pending) {
	pf, ok := r.source.(Prefetcher)
	if !ok || len(level) < 2 {
		return
	}
	coords := make([]artifact.Coordinate, 0, len(level))
	for _, p := range level {
		if _, ok := r.descs[descKey(p.tree.Dependency.Coordinate)]; !ok {
			coords = append(coords, p.tree.Dependency.Coordinate)
		}
	}
	if len(coords) == 0 {
		return
	}
	if err := pf.Prefetch(r.ctx, coords); err != nil {
		r.logger.Debugf("prefetch of %d descriptors: %v", len(coords), err)
	}
}

func (r *collection) expand(p pending) ([]pending, error) {
	parent := p.tree
	isRoot := p.depth == 0

	desc, err := r.descriptor(parent.Dependency.Coordinate)
	if err != nil {
		if ctxErr := r.ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logger.Warnf("skipping dependencies of %s: %v", parent.Dependency.Coordinate, err)
		observability.Resolve().OnDescriptorMissing(r.ctx, parent.Dependency.Coordinate.String(), err)
		return nil, nil
	}

	var next []pending
	for _, d := range desc.Dependencies {
		child, ok := r.declaredToChild(d, parent, isRoot)
		if !ok {
			continue
		}
		if excluded(p.exclusions, child.Dependency.Coordinate) {
			r.logger.Debugf("%s excluded below %s", child.Dependency.Coordinate, parent.Dependency.Coordinate)
			continue
		}
		accepted, err := r.filter.AcceptDependency(child.Dependency, p.path)
		if err != nil {
			return nil, err
		}
		if !accepted {
			continue
		}

		coord := child.Dependency.Coordinate
		key := coord.ConflictKey()
		if w, found := r.winners[key]; found {
			if w.Dependency.Coordinate.ID() == coord.ID() {
				parent.Children = append(parent.Children, w)
				continue
			}
			winner := w.Dependency.Coordinate
			child.Winner = &winner
			parent.Children = append(parent.Children, child)
			r.logger.Debugf("%s loses to %s", coord, winner)
			observability.Resolve().OnConflict(r.ctx, key, winner.Version, coord.Version)
			continue
		}

		r.winners[key] = child
		parent.Children = append(parent.Children, child)
		r.logger.Debugf("%s -> %s", parent.Dependency.Coordinate, coord)

		path := append(slices.Clip(p.path), child.Dependency)
		exclusions := p.exclusions
		if len(d.Exclusions) > 0 {
			exclusions = append(slices.Clip(p.exclusions), d.Exclusions...)
		}
		next = append(next, pending{tree: child, depth: p.depth + 1, path: path, exclusions: exclusions})
	}
	return next, nil
}

// declaredToChild applies scope propagation and dependency management to
// a declared dependency of parent.
func (r *collection) declaredToChild(d Declared, parent *Tree, isRoot bool) (*Tree, bool) {
	coord := d.Coordinate
	if coord.Type == "" {
		coord.Type = artifact.DefaultType
	}
	declaredScope := coord.Scope
	if declaredScope == "" {
		declaredScope = artifact.DefaultScope
	}

	child := &Tree{Dependency: artifact.Dependency{Coordinate: coord, Optional: d.Optional}}
	if isRoot {
		child.Dependency.Scope = declaredScope
	} else {
		if d.Optional {
			return nil, false
		}
		scope, ok := DeriveScope(parent.Dependency.Scope, declaredScope)
		if !ok {
			return nil, false
		}
		child.Dependency.Scope = scope
	}

	if m, ok := r.managed[coord.ConflictKey()]; ok {
		mv, ms := m.Coordinate.Version, m.Coordinate.Scope
		switch {
		case child.Dependency.Version == "":
			child.Dependency.Version = mv
		case !isRoot && mv != "" && mv != child.Dependency.Version:
			child.PremanagedVersion = child.Dependency.Version
			child.Dependency.Version = mv
		}
		if !isRoot && ms != "" && ms != child.Dependency.Scope {
			child.PremanagedScope = child.Dependency.Scope
			child.Dependency.Scope = ms
		}
	}

	if child.Dependency.Version == "" {
		desc, err := r.descriptor(child.Dependency.Coordinate)
		if err != nil {
			r.logger.Warnf("no version for %s: %v", child.Dependency.Coordinate.GA(), err)
		} else {
			child.Dependency.Version = desc.Coordinate.Version
		}
	}
	return child, true
}

func (r *collection) descriptor(c artifact.Coordinate) (*Descriptor, error) {
	key := descKey(c)
	if d, ok := r.descs[key]; ok {
		return d, nil
	}
	d, err := r.source.Descriptor(r.ctx, c)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no descriptor for %s", c.GAV())
	}
	r.descs[key] = d
	if c.Version == "" {
		r.descs[descKey(d.Coordinate)] = d
	}
	return d, nil
}

func descKey(c artifact.Coordinate) string {
	return c.GAV()
}

func excluded(exclusions []Exclusion, c artifact.Coordinate) bool {
	for _, e := range exclusions {
		if e.Matches(c) {
			return true
		}
	}
	return false
}
