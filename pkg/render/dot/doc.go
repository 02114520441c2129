// Package dot exports a dependency graph as Graphviz DOT and renders it to
// SVG.
//
// Nodes are labelled by their id. Roots are drawn bold, conflict losers
// dashed and grey, optional dependencies dotted. Edges follow declaration
// order so repeated exports of the same graph are byte-identical.
//
//	g := graph.New(sess)
//	...
//	svg, err := dot.RenderSVG(ctx, dot.ToDOT(g, dot.Options{}))
package dot
