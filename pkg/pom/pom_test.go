package pom

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
)

const parentPOM = `<project>
  <groupId>org.nuxeo</groupId>
  <artifactId>parent</artifactId>
  <version>2.0</version>
  <packaging>pom</packaging>
  <properties>
    <junit.version>4.13</junit.version>
    <lib.version>1.0</lib.version>
  </properties>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>org.nuxeo</groupId>
        <artifactId>lib</artifactId>
        <version>${lib.version}</version>
      </dependency>
      <dependency>
        <groupId>junit</groupId>
        <artifactId>junit</artifactId>
        <version>${junit.version}</version>
        <scope>test</scope>
      </dependency>
    </dependencies>
  </dependencyManagement>
  <dependencies>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
      <version>2.0.9</version>
    </dependency>
  </dependencies>
</project>`

const childPOM = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <parent>
    <groupId>org.nuxeo</groupId>
    <artifactId>parent</artifactId>
    <version>2.0</version>
  </parent>
  <artifactId>api</artifactId>
  <properties>
    <lib.version>1.5</lib.version>
  </properties>
  <dependencies>
    <dependency>
      <groupId>${project.groupId}</groupId>
      <artifactId>lib</artifactId>
      <exclusions>
        <exclusion>
          <groupId>commons-logging</groupId>
          <artifactId>*</artifactId>
        </exclusion>
      </exclusions>
    </dependency>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
    </dependency>
    <dependency>
      <groupId>org.nuxeo</groupId>
      <artifactId>extra</artifactId>
      <version>${project.version}</version>
      <optional> true </optional>
    </dependency>
  </dependencies>
</project>`

func mustParse(t *testing.T, s string) *Project {
	t.Helper()
	p, err := Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return p
}

func TestParse(t *testing.T) {
	p := mustParse(t, childPOM)

	if p.ArtifactID != "api" {
		t.Errorf("ArtifactID = %q", p.ArtifactID)
	}
	if p.EffectiveGroupID() != "org.nuxeo" || p.EffectiveVersion() != "2.0" {
		t.Errorf("inherited coordinate = %s:%s", p.EffectiveGroupID(), p.EffectiveVersion())
	}
	if len(p.Dependencies) != 3 {
		t.Fatalf("Dependencies = %d, want 3", len(p.Dependencies))
	}
	if ex := p.Dependencies[0].Exclusions; len(ex) != 1 || ex[0].ArtifactID != "*" {
		t.Errorf("exclusions = %+v", ex)
	}
	if !p.Dependencies[2].IsOptional() {
		t.Error("extra should be optional")
	}
	if v, ok := p.Properties.Get("lib.version"); !ok || v != "1.5" {
		t.Errorf("lib.version = %q, %v", v, ok)
	}
	parent, ok := p.ParentCoordinate()
	if !ok || parent.String() != "org.nuxeo:parent:2.0:pom::" {
		t.Errorf("ParentCoordinate() = %s, %v", parent, ok)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "<project>", "not xml"} {
		if _, err := Parse(strings.NewReader(in)); !errors.Is(err, errors.ErrCodeInvalidManifest) {
			t.Errorf("Parse(%q) error = %v, want INVALID_MANIFEST", in, err)
		}
	}
}

func TestEffectiveProject(t *testing.T) {
	child := mustParse(t, childPOM)
	child.Inherit(mustParse(t, parentPOM))
	child.Interpolate()
	child.ApplyManagement()

	got := make(map[string]Dependency)
	for _, d := range child.Dependencies {
		got[d.ArtifactID] = d
	}

	tests := []struct {
		artifactID, version, scope string
	}{
		{"lib", "1.5", ""},
		{"junit", "4.13", "test"},
		{"extra", "2.0", ""},
		{"slf4j-api", "2.0.9", ""},
	}
	for _, tt := range tests {
		t.Run(tt.artifactID, func(t *testing.T) {
			d, ok := got[tt.artifactID]
			if !ok {
				t.Fatalf("dependency %s missing", tt.artifactID)
			}
			if d.Version != tt.version || d.Scope != tt.scope {
				t.Errorf("%s = %s/%s, want %s/%s", tt.artifactID, d.Version, d.Scope, tt.version, tt.scope)
			}
		})
	}
	if got["lib"].GroupID != "org.nuxeo" {
		t.Errorf("lib groupId = %q", got["lib"].GroupID)
	}
	if c := child.Coordinate(); c.String() != "org.nuxeo:api:2.0:jar::compile" {
		t.Errorf("Coordinate() = %s", c)
	}
}

func TestInterpolateUnknownProperty(t *testing.T) {
	p := mustParse(t, `<project><groupId>g</groupId><artifactId>a</artifactId><version>1</version>
<dependencies><dependency><groupId>g</groupId><artifactId>b</artifactId><version>${missing}</version></dependency></dependencies></project>`)
	p.Interpolate()
	if v := p.Dependencies[0].Version; v != "${missing}" || !Unresolved(v) {
		t.Errorf("version = %q, want unresolved reference kept", v)
	}
}

func TestInterpolateNested(t *testing.T) {
	p := mustParse(t, `<project><groupId>g</groupId><artifactId>a</artifactId><version>1</version>
<properties><major>3</major><full>${major}.1</full></properties>
<dependencies><dependency><groupId>g</groupId><artifactId>b</artifactId><version>${full}</version></dependency></dependencies></project>`)
	p.Interpolate()
	if v := p.Dependencies[0].Version; v != "3.1" {
		t.Errorf("version = %q, want 3.1", v)
	}
}

func TestInterpolateCycle(t *testing.T) {
	p := mustParse(t, `<project><groupId>g</groupId><artifactId>a</artifactId><version>1</version>
<properties><x>${y}</x><y>${x}</y></properties>
<dependencies><dependency><groupId>g</groupId><artifactId>b</artifactId><version>${x}</version></dependency></dependencies></project>`)
	p.Interpolate()
	if v := p.Dependencies[0].Version; !Unresolved(v) {
		t.Errorf("version = %q, want an unresolved reference", v)
	}
}

func TestDependencyKeyAndImport(t *testing.T) {
	d := Dependency{GroupID: "g", ArtifactID: "a"}
	if d.Key() != "g:a:jar:" {
		t.Errorf("Key() = %q", d.Key())
	}
	bom := Dependency{GroupID: "g", ArtifactID: "bom", Type: "pom", Scope: "import"}
	if !bom.IsImport() {
		t.Error("IsImport() = false for a BOM import")
	}
	if c := bom.Coordinate(); c.Type != artifact.TypePOM || c.Scope != artifact.ScopeImport {
		t.Errorf("Coordinate() = %+v", c)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pom.xml")
	if err := os.WriteFile(path, []byte(parentPOM), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if p.Packaging != "pom" || len(p.DependencyManagement) != 2 {
		t.Errorf("ReadFile() = %+v", p)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.xml")); !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("ReadFile(missing) error = %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := mustParse(t, childPOM)
	c := p.Clone()
	c.Dependencies[0].Version = "9"
	c.Properties.Set("lib.version", "9")
	c.Parent.Version = "9"

	if p.Dependencies[0].Version != "" {
		t.Error("Clone shares dependencies")
	}
	if v, _ := p.Properties.Get("lib.version"); v != "1.5" {
		t.Error("Clone shares properties")
	}
	if p.Parent.Version != "2.0" {
		t.Error("Clone shares parent")
	}
}

func TestImportManagement(t *testing.T) {
	p := mustParse(t, `<project><groupId>g</groupId><artifactId>a</artifactId><version>1</version>
<dependencyManagement><dependencies>
  <dependency><groupId>g</groupId><artifactId>bom</artifactId><version>1</version><type>pom</type><scope>import</scope></dependency>
  <dependency><groupId>g</groupId><artifactId>x</artifactId><version>1.0</version></dependency>
</dependencies></dependencyManagement></project>`)
	bom := mustParse(t, `<project><groupId>g</groupId><artifactId>bom</artifactId><version>1</version>
<dependencyManagement><dependencies>
  <dependency><groupId>g</groupId><artifactId>x</artifactId><version>2.0</version></dependency>
  <dependency><groupId>g</groupId><artifactId>y</artifactId><version>2.0</version></dependency>
</dependencies></dependencyManagement></project>`)

	if imports := p.Imports(); len(imports) != 1 || imports[0].ArtifactID != "bom" {
		t.Fatalf("Imports() = %+v", imports)
	}
	p.ImportManagement(bom)

	got := make(map[string]string)
	for _, d := range p.DependencyManagement {
		got[d.ArtifactID] = d.Version
	}
	want := map[string]string{"x": "1.0", "y": "2.0"}
	if len(got) != len(want) || got["x"] != want["x"] || got["y"] != want["y"] {
		t.Errorf("managed = %v, want %v", got, want)
	}
}
