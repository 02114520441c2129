// Package report prints resolved dependency graphs as plain text.
//
// Two layouts are available. [WriteTree] prints every encounter of every
// node, indented by depth and annotated with mediation notes:
//
//	org.nuxeo:core:2.0:jar::compile
//	 |-- org.nuxeo:api:2.0:jar::compile
//	 |--  |-- org.slf4j:slf4j-api:1.7:jar::compile (conflicts with 2.0)
//
// [WriteFlat] prints the sorted set of distinct lines, leaving out roots,
// pom artifacts and conflict losers. Build steps consume this form.
//
// Lines are rendered in a [Format]: plain coordinates ([GAV]) or
// file-name keyed coordinates ([KVFileGAV]).
package report
