// Package pom reads Maven project descriptors (pom.xml).
//
// Parse decodes one file. An effective project is obtained by merging the
// parent chain with Inherit and then calling Interpolate, which expands
// ${...} references from <properties>, project.* and parent.* values.
package pom

import (
	"bytes"
	"encoding/xml"
	"io"
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
)

// Project is the subset of a POM artgraph understands.
type Project struct {
	XMLName     xml.Name   `xml:"project"`
	GroupID     string     `xml:"groupId"`
	ArtifactID  string     `xml:"artifactId"`
	Version     string     `xml:"version"`
	Packaging   string     `xml:"packaging"`
	Name        string     `xml:"name"`
	Description string     `xml:"description"`
	URL         string     `xml:"url"`
	Parent      *Parent    `xml:"parent"`
	Properties  Properties `xml:"properties"`

	Dependencies         []Dependency `xml:"dependencies>dependency"`
	DependencyManagement []Dependency `xml:"dependencyManagement>dependencies>dependency"`
	Modules              []string     `xml:"modules>module"`
}

// Parent references the parent POM.
type Parent struct {
	GroupID      string `xml:"groupId"`
	ArtifactID   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath"`
}

// Dependency is a <dependency> element.
type Dependency struct {
	GroupID    string      `xml:"groupId"`
	ArtifactID string      `xml:"artifactId"`
	Version    string      `xml:"version"`
	Type       string      `xml:"type"`
	Classifier string      `xml:"classifier"`
	Scope      string      `xml:"scope"`
	Optional   string      `xml:"optional"`
	Exclusions []Exclusion `xml:"exclusions>exclusion"`
}

// Exclusion is an <exclusion> element.
type Exclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

// Properties holds <properties> children by element name, in document
// order.
type Properties struct {
	Keys   []string
	Values map[string]string
}

// UnmarshalXML decodes arbitrary child elements into the map.
func (p *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if p.Values == nil {
		p.Values = make(map[string]string)
	}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			p.Set(t.Name.Local, strings.TrimSpace(v))
		case xml.EndElement:
			return nil
		}
	}
}

// Get returns a property value.
func (p Properties) Get(key string) (string, bool) {
	v, ok := p.Values[key]
	return v, ok
}

// Set defines or replaces a property.
func (p *Properties) Set(key, value string) {
	if p.Values == nil {
		p.Values = make(map[string]string)
	}
	if _, ok := p.Values[key]; !ok {
		p.Keys = append(p.Keys, key)
	}
	p.Values[key] = value
}

// Parse decodes a POM.
func Parse(r io.Reader) (*Project, error) {
	var p Project
	if err := xml.NewDecoder(r).Decode(&p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse pom")
	}
	p.trim()
	return &p, nil
}

// ParseBytes decodes a POM held in memory.
func ParseBytes(data []byte) (*Project, error) {
	return Parse(bytes.NewReader(data))
}

// ReadFile decodes the POM at path.
func ReadFile(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "open %s", path)
	}
	defer f.Close()
	p, err := Parse(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", path)
	}
	return p, nil
}

func (p *Project) trim() {
	p.GroupID = strings.TrimSpace(p.GroupID)
	p.ArtifactID = strings.TrimSpace(p.ArtifactID)
	p.Version = strings.TrimSpace(p.Version)
	p.Packaging = strings.TrimSpace(p.Packaging)
	if p.Parent != nil {
		p.Parent.GroupID = strings.TrimSpace(p.Parent.GroupID)
		p.Parent.ArtifactID = strings.TrimSpace(p.Parent.ArtifactID)
		p.Parent.Version = strings.TrimSpace(p.Parent.Version)
	}
	for _, list := range [][]Dependency{p.Dependencies, p.DependencyManagement} {
		for i := range list {
			d := &list[i]
			d.GroupID = strings.TrimSpace(d.GroupID)
			d.ArtifactID = strings.TrimSpace(d.ArtifactID)
			d.Version = strings.TrimSpace(d.Version)
			d.Type = strings.TrimSpace(d.Type)
			d.Classifier = strings.TrimSpace(d.Classifier)
			d.Scope = strings.TrimSpace(d.Scope)
			d.Optional = strings.TrimSpace(d.Optional)
		}
	}
}

// EffectiveGroupID returns the group id, inherited from the parent when
// absent.
func (p *Project) EffectiveGroupID() string {
	if p.GroupID == "" && p.Parent != nil {
		return p.Parent.GroupID
	}
	return p.GroupID
}

// EffectiveVersion returns the version, inherited from the parent when
// absent.
func (p *Project) EffectiveVersion() string {
	if p.Version == "" && p.Parent != nil {
		return p.Parent.Version
	}
	return p.Version
}

// Coordinate returns the project coordinate. Packaging maps to type.
func (p *Project) Coordinate() artifact.Coordinate {
	t := p.Packaging
	if t == "" {
		t = artifact.DefaultType
	}
	return artifact.Coordinate{
		GroupID:    p.EffectiveGroupID(),
		ArtifactID: p.ArtifactID,
		Version:    p.EffectiveVersion(),
		Type:       t,
		Scope:      artifact.DefaultScope,
	}
}

// ParentCoordinate returns the parent POM coordinate, or false without
// parent.
func (p *Project) ParentCoordinate() (artifact.Coordinate, bool) {
	if p.Parent == nil || p.Parent.GroupID == "" || p.Parent.ArtifactID == "" {
		return artifact.Coordinate{}, false
	}
	return artifact.Coordinate{
		GroupID:    p.Parent.GroupID,
		ArtifactID: p.Parent.ArtifactID,
		Version:    p.Parent.Version,
		Type:       artifact.TypePOM,
	}, true
}

// Inherit merges parent into p following Maven inheritance: coordinates
// and properties are inherited when p lacks them, the parent's managed
// dependencies and dependencies come after p's own.
func (p *Project) Inherit(parent *Project) {
	if p.GroupID == "" {
		p.GroupID = parent.EffectiveGroupID()
	}
	if p.Version == "" {
		p.Version = parent.EffectiveVersion()
	}
	for _, k := range parent.Properties.Keys {
		if _, ok := p.Properties.Get(k); !ok {
			p.Properties.Set(k, parent.Properties.Values[k])
		}
	}
	p.DependencyManagement = mergeDeps(p.DependencyManagement, parent.DependencyManagement)
	p.Dependencies = mergeDeps(p.Dependencies, parent.Dependencies)
}

// mergeDeps appends entries of extra whose management key is not in base.
func mergeDeps(base, extra []Dependency) []Dependency {
	seen := make(map[string]bool, len(base))
	for _, d := range base {
		seen[d.Key()] = true
	}
	out := base
	for _, d := range extra {
		if !seen[d.Key()] {
			seen[d.Key()] = true
			out = append(out, d)
		}
	}
	return out
}

// Key identifies a dependency for management: group:artifact:type:classifier.
func (d Dependency) Key() string {
	t := d.Type
	if t == "" {
		t = artifact.DefaultType
	}
	return d.GroupID + ":" + d.ArtifactID + ":" + t + ":" + d.Classifier
}

// IsOptional reports whether <optional> is true.
func (d Dependency) IsOptional() bool {
	return strings.EqualFold(d.Optional, "true")
}

// Coordinate converts d without applying defaults.
func (d Dependency) Coordinate() artifact.Coordinate {
	return artifact.Coordinate{
		GroupID:    d.GroupID,
		ArtifactID: d.ArtifactID,
		Version:    d.Version,
		Type:       d.Type,
		Classifier: d.Classifier,
		Scope:      d.Scope,
	}
}

// IsImport reports whether d imports a bill of materials.
func (d Dependency) IsImport() bool {
	return d.Scope == artifact.ScopeImport && d.Type == artifact.TypePOM
}

var propertyRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// maxInterpolationPasses bounds nested property expansion.
const maxInterpolationPasses = 8

// Interpolate expands ${...} references in coordinates and dependency
// fields. Unknown properties are left as is.
func (p *Project) Interpolate() {
	lookup := func(key string) (string, bool) {
		switch key {
		case "project.groupId", "pom.groupId", "groupId":
			return p.EffectiveGroupID(), true
		case "project.artifactId", "pom.artifactId", "artifactId":
			return p.ArtifactID, true
		case "project.version", "pom.version", "version":
			return p.EffectiveVersion(), true
		}
		if p.Parent != nil {
			switch key {
			case "project.parent.groupId", "parent.groupId":
				return p.Parent.GroupID, true
			case "project.parent.version", "parent.version":
				return p.Parent.Version, true
			}
		}
		return p.Properties.Get(key)
	}
	expand := func(s string) string {
		for range maxInterpolationPasses {
			if !strings.Contains(s, "${") {
				return s
			}
			next := propertyRe.ReplaceAllStringFunc(s, func(m string) string {
				if v, ok := lookup(m[2 : len(m)-1]); ok {
					return v
				}
				return m
			})
			if next == s {
				return s
			}
			s = next
		}
		return s
	}

	p.GroupID = expand(p.GroupID)
	p.Version = expand(p.Version)
	if p.Parent != nil {
		p.Parent.Version = expand(p.Parent.Version)
	}
	for _, list := range [][]Dependency{p.Dependencies, p.DependencyManagement} {
		for i := range list {
			d := &list[i]
			d.GroupID = expand(d.GroupID)
			d.ArtifactID = expand(d.ArtifactID)
			d.Version = expand(d.Version)
			d.Type = expand(d.Type)
			d.Classifier = expand(d.Classifier)
			d.Scope = expand(d.Scope)
			d.Optional = expand(d.Optional)
		}
	}
}

// ApplyManagement fills missing versions and scopes of p's dependencies
// from its own dependency management.
func (p *Project) ApplyManagement() {
	managed := make(map[string]Dependency, len(p.DependencyManagement))
	for _, m := range p.DependencyManagement {
		managed[m.Key()] = m
	}
	for i := range p.Dependencies {
		d := &p.Dependencies[i]
		m, ok := managed[d.Key()]
		if !ok {
			continue
		}
		if d.Version == "" {
			d.Version = m.Version
		}
		if d.Scope == "" {
			d.Scope = m.Scope
		}
		if len(d.Exclusions) == 0 {
			d.Exclusions = m.Exclusions
		}
	}
}

// Unresolved reports whether s still contains a property reference.
func Unresolved(s string) bool {
	return strings.Contains(s, "${")
}

// Clone returns a deep copy of p that can be modified independently.
func (p *Project) Clone() *Project {
	c := *p
	if p.Parent != nil {
		parent := *p.Parent
		c.Parent = &parent
	}
	c.Properties = Properties{Keys: slices.Clone(p.Properties.Keys), Values: maps.Clone(p.Properties.Values)}
	c.Dependencies = slices.Clone(p.Dependencies)
	c.DependencyManagement = slices.Clone(p.DependencyManagement)
	c.Modules = slices.Clone(p.Modules)
	return &c
}

// Imports returns the bill-of-materials entries of the dependency
// management section.
func (p *Project) Imports() []Dependency {
	var out []Dependency
	for _, d := range p.DependencyManagement {
		if d.IsImport() {
			out = append(out, d)
		}
	}
	return out
}

// ImportManagement replaces the import entries of the dependency
// management section by the managed dependencies of boms. Entries
// declared by p take precedence, then boms in order.
func (p *Project) ImportManagement(boms ...*Project) {
	own := make([]Dependency, 0, len(p.DependencyManagement))
	for _, d := range p.DependencyManagement {
		if !d.IsImport() {
			own = append(own, d)
		}
	}
	for _, b := range boms {
		var managed []Dependency
		for _, d := range b.DependencyManagement {
			if !d.IsImport() {
				managed = append(managed, d)
			}
		}
		own = mergeDeps(own, managed)
	}
	p.DependencyManagement = own
}
