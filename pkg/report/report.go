package report

import (
	"bufio"
	"io"
	"slices"
	"strings"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/graph"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/traverse"
)

// Indent is repeated once per depth level in tree output.
const Indent = " |-- "

// Options configures both printers.
type Options struct {
	Format Format
	// Scopes restricts the walk to these scopes; empty allows all.
	Scopes []string
	// Ignore holds node ids skipped together with their descendants.
	Ignore []string
}

func (o Options) walk() traverse.Options {
	return traverse.Options{Scopes: o.Scopes, Ignore: o.Ignore}
}

// WriteTree prints the graph below roots, one line per encounter. A nil
// roots slice prints every graph root.
func WriteTree(w io.Writer, g *graph.Graph, roots []*graph.Node, opts Options) error {
	if roots == nil {
		roots = g.Roots()
	}
	bw := bufio.NewWriter(w)
	err := traverse.Walk(g, roots, opts.walk(), func(s traverse.Step) error {
		bw.WriteString(strings.Repeat(Indent, s.Depth))
		bw.WriteString(opts.Format.Line(s.Node.Coordinate()))
		bw.WriteString(annotations(s.Node))
		return bw.WriteByte('\n')
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

func annotations(n *graph.Node) string {
	var b strings.Builder
	if n.Dependency.Optional {
		b.WriteString(" [optional]")
	}
	if n.PremanagedVersion != "" {
		b.WriteString(" (version managed from " + n.PremanagedVersion + ")")
	}
	if n.PremanagedScope != "" {
		b.WriteString(" (scope managed from " + n.PremanagedScope + ")")
	}
	if n.Conflicting() {
		b.WriteString(" (conflicts with " + n.Winner.Version + ")")
	}
	return b.String()
}

// Lines returns the sorted distinct flat lines for the graph below roots.
// Roots are walked but not listed.
func Lines(g *graph.Graph, roots []*graph.Node, opts Options) ([]string, error) {
	if roots == nil {
		roots = g.Roots()
	}
	set := make(map[string]struct{})
	err := traverse.Walk(g, roots, opts.walk(), func(s traverse.Step) error {
		if !s.New || g.IsRoot(s.Node) || s.Node.Dependency.Type == artifact.TypePOM {
			return nil
		}
		set[opts.Format.Line(s.Node.Coordinate())] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(set))
	for l := range set {
		lines = append(lines, l)
	}
	slices.Sort(lines)
	return lines, nil
}

// WriteFlat prints Lines once the walk is complete.
func WriteFlat(w io.Writer, g *graph.Graph, roots []*graph.Node, opts Options) error {
	lines, err := Lines(g, roots, opts)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		bw.WriteString(l)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
