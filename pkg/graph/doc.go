// Package graph holds resolved dependencies as an arena of nodes.
//
// Nodes are identified by the canonical id of their coordinate
// (group:artifact:baseVersion:type:classifier:scope) and refer to each
// other by id. The same coordinate reached through several parents is a
// single node whose parent list records every incoming edge; the list is
// a bag, not a set.
//
// # Building
//
//	g := graph.New(sess)
//	root, err := g.AddRoot(ctx, artifact.MustParse("org.nuxeo:nuxeo-core:2.0"))
//	err = g.ResolveDependencies(ctx, filter.MustParse("org.nuxeo"), -1)
//
// AddRoot resolves direct dependencies only. ResolveDependencies rebuilds
// the whole graph from the current roots with a filter and a depth; roots
// rejected by the filter disappear.
//
// # Lookup
//
// Find narrows candidates with a range scan over the sorted ids using the
// literal group and artifact prefix of the pattern, then applies the
// pattern as a filter. FindUnique requires exactly one match.
//
// A Graph is not safe for concurrent use.
package graph
