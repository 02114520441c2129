package resolve

import (
	"context"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/version"
)

// Static is an in-memory Source. Descriptors are keyed by
// group:artifact:version; a request without version gets the highest one.
// It is safe for concurrent use.
type Static struct {
	mu    sync.RWMutex
	descs map[string]*Descriptor
}

// NewStatic returns a Static source holding ds.
func NewStatic(ds ...*Descriptor) *Static {
	s := &Static{descs: make(map[string]*Descriptor)}
	for _, d := range ds {
		s.Add(d)
	}
	return s
}

// Add registers d, replacing any descriptor with the same coordinate.
func (s *Static) Add(d *Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.descs[d.Coordinate.GAV()] = d
}

// Len returns the number of descriptors.
func (s *Static) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.descs)
}

// Descriptor implements Source.
func (s *Static) Descriptor(_ context.Context, c artifact.Coordinate) (*Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c.Version != "" {
		if d, ok := s.descs[c.GAV()]; ok {
			return d, nil
		}
		return nil, errors.New(errors.ErrCodeNotFound, "artifact %s not in repository", c.GAV())
	}

	var (
		best    *Descriptor
		bestVer version.Version
	)
	for _, d := range s.descs {
		if d.Coordinate.GA() != c.GA() {
			continue
		}
		v, err := version.Parse(d.Coordinate.Version)
		if err != nil {
			continue
		}
		if best == nil || bestVer.Less(v) {
			best, bestVer = d, v
		}
	}
	if best == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no versions of %s in repository", c.GA())
	}
	return best, nil
}

// repositoryFile is the TOML layout read by LoadRepositoryFile:
//
//	[[artifact]]
//	coordinate = "org.nuxeo:core:2.0"
//
//	[[artifact.dependency]]
//	coordinate = "org.nuxeo:api:2.0"
//	exclusions = ["commons-logging:*"]
//
//	[[artifact.dependency]]
//	coordinate = "org.nuxeo:test-utils:2.0:jar::test"
//
//	[[artifact.managed]]
//	coordinate = "org.nuxeo:runtime:2.1"
type repositoryFile struct {
	Artifacts []repositoryArtifact `toml:"artifact"`
}

type repositoryArtifact struct {
	Coordinate   string                 `toml:"coordinate"`
	Dependencies []repositoryDependency `toml:"dependency"`
	Managed      []repositoryDependency `toml:"managed"`
}

type repositoryDependency struct {
	Coordinate string   `toml:"coordinate"`
	Optional   bool     `toml:"optional"`
	Exclusions []string `toml:"exclusions"`
}

// LoadRepositoryFile reads an offline repository from a TOML file.
func LoadRepositoryFile(path string) (*Static, error) {
	var f repositoryFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read repository file %s", path)
	}
	return buildStatic(path, f)
}

// ParseRepository reads an offline repository from TOML text.
func ParseRepository(data string) (*Static, error) {
	var f repositoryFile
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse repository")
	}
	return buildStatic("<inline>", f)
}

func buildStatic(name string, f repositoryFile) (*Static, error) {
	s := NewStatic()
	for i, a := range f.Artifacts {
		c, err := artifact.ParseRaw(a.Coordinate)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s: artifact #%d", name, i+1)
		}
		if c.Version == "" {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "%s: artifact %s has no version", name, a.Coordinate)
		}
		d := &Descriptor{Coordinate: c.WithDefaults()}
		if d.Dependencies, err = declaredList(a.Dependencies); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s: dependencies of %s", name, a.Coordinate)
		}
		if d.Managed, err = declaredList(a.Managed); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s: managed dependencies of %s", name, a.Coordinate)
		}
		s.Add(d)
	}
	return s, nil
}

func declaredList(deps []repositoryDependency) ([]Declared, error) {
	out := make([]Declared, 0, len(deps))
	for _, rd := range deps {
		c, err := artifact.ParseRaw(rd.Coordinate)
		if err != nil {
			return nil, err
		}
		d := Declared{Dependency: artifact.Dependency{Coordinate: c, Optional: rd.Optional}}
		for _, ex := range rd.Exclusions {
			e, err := ParseExclusion(ex)
			if err != nil {
				return nil, err
			}
			d.Exclusions = append(d.Exclusions, e)
		}
		out = append(out, d)
	}
	return out, nil
}

// ParseExclusion parses group:artifact where either part may be "*". A
// bare group excludes all of its artifacts.
func ParseExclusion(s string) (Exclusion, error) {
	c, err := artifact.ParseRaw(s)
	if err == nil {
		return Exclusion{GroupID: c.GroupID, ArtifactID: c.ArtifactID}, nil
	}
	if s != "" && !strings.ContainsAny(s, ": ") {
		return Exclusion{GroupID: s, ArtifactID: "*"}, nil
	}
	return Exclusion{}, errors.New(errors.ErrCodeInvalidCoordinate, "invalid exclusion %q", s)
}
