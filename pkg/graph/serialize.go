package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Document is the node-link JSON form of a graph.
type Document struct {
	Roots []string       `json:"roots"`
	Nodes []DocumentNode `json:"nodes"`
	Edges []Edge         `json:"edges"`
	Stats Stats          `json:"stats"`
}

// DocumentNode is one node of a Document.
type DocumentNode struct {
	ID                string `json:"id"`
	GroupID           string `json:"group_id"`
	ArtifactID        string `json:"artifact_id"`
	Version           string `json:"version"`
	Type              string `json:"type,omitempty"`
	Classifier        string `json:"classifier,omitempty"`
	Scope             string `json:"scope,omitempty"`
	Optional          bool   `json:"optional,omitempty"`
	Winner            string `json:"winner,omitempty"`
	PremanagedVersion string `json:"premanaged_version,omitempty"`
	PremanagedScope   string `json:"premanaged_scope,omitempty"`
}

// Edge is a directed dependency edge.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Export converts g to its document form. Nodes are sorted by id and
// edges follow node order, then declaration order.
func Export(g *Graph) Document {
	doc := Document{Roots: make([]string, 0, len(g.roots)), Stats: g.Stats()}
	doc.Roots = append(doc.Roots, g.roots...)
	for _, n := range g.Nodes() {
		c := n.Dependency.Coordinate
		dn := DocumentNode{
			ID:                n.ID,
			GroupID:           c.GroupID,
			ArtifactID:        c.ArtifactID,
			Version:           c.Version,
			Type:              c.Type,
			Classifier:        c.Classifier,
			Scope:             c.Scope,
			Optional:          n.Dependency.Optional,
			PremanagedVersion: n.PremanagedVersion,
			PremanagedScope:   n.PremanagedScope,
		}
		if n.Conflicting() {
			dn.Winner = n.Winner.String()
		}
		doc.Nodes = append(doc.Nodes, dn)
		for _, child := range n.children {
			doc.Edges = append(doc.Edges, Edge{From: n.ID, To: child})
		}
	}
	return doc
}

// WriteJSON writes g as indented JSON.
func WriteJSON(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Export(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalJSON returns the JSON document of g.
func MarshalJSON(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
