// Package maven implements resolve.Source on top of Maven repositories.
//
// A descriptor is built from the effective project model: the POM is
// merged with its parent chain, properties are interpolated, imported
// bills of materials are folded into dependency management and the
// project's own management fills missing versions. Parsed models are
// memoized in an LRU; finished descriptors are also written to the
// persistent cache.
package maven

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/cache"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
	repo "github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/integrations/maven"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/pom"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/resolve"
)

const (
	// DefaultConcurrency bounds parallel POM downloads during prefetch.
	DefaultConcurrency = 8
	// DefaultMemoSize is the number of parsed models kept in memory.
	DefaultMemoSize = 2048

	maxParentDepth = 16
)

// Fetcher downloads repository files. *repo.Client implements it.
type Fetcher interface {
	BaseURL() string
	FetchPOM(ctx context.Context, groupID, artifactID, version string, refresh bool) ([]byte, error)
	FetchMetadata(ctx context.Context, groupID, artifactID string, refresh bool) (*repo.Metadata, error)
}

// Options configures a Source.
type Options struct {
	// Repositories are searched in order. At least one is required.
	Repositories []Fetcher
	// Cache stores finished descriptors. Nil disables it.
	Cache cache.Cache
	Keyer cache.Keyer
	TTL   time.Duration
	// Refresh bypasses cached reads; fresh results are still written.
	Refresh     bool
	Concurrency int
	MemoSize    int
	Logger      *log.Logger
}

// Source resolves descriptors from Maven repositories. It is safe for
// concurrent use.
type Source struct {
	repos       []Fetcher
	cache       cache.Cache
	keyer       cache.Keyer
	repoKey     string
	ttl         time.Duration
	refresh     bool
	concurrency int
	logger      *log.Logger

	// models holds inherited, uninterpolated projects keyed by GAV. They
	// are shared and must be cloned before modification.
	models *lru.Cache[string, *pom.Project]
	descs  *lru.Cache[string, *resolve.Descriptor]
	flight singleflight.Group
}

// New creates a Source.
func New(opts Options) (*Source, error) {
	if len(opts.Repositories) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no repository configured")
	}
	size := opts.MemoSize
	if size <= 0 {
		size = DefaultMemoSize
	}
	models, err := lru.New[string, *pom.Project](size)
	if err != nil {
		return nil, err
	}
	descs, err := lru.New[string, *resolve.Descriptor](size)
	if err != nil {
		return nil, err
	}

	s := &Source{
		repos:       opts.Repositories,
		cache:       opts.Cache,
		keyer:       opts.Keyer,
		ttl:         opts.TTL,
		refresh:     opts.Refresh,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
		models:      models,
		descs:       descs,
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.keyer == nil {
		s.keyer = cache.NewDefaultKeyer()
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultConcurrency
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	urls := make([]string, len(s.repos))
	for i, r := range s.repos {
		urls[i] = r.BaseURL()
	}
	s.repoKey = strings.Join(urls, ",")
	return s, nil
}

// Descriptor implements resolve.Source.
func (s *Source) Descriptor(ctx context.Context, c artifact.Coordinate) (*resolve.Descriptor, error) {
	if c.GroupID == "" || c.ArtifactID == "" {
		return nil, errors.New(errors.ErrCodeInvalidCoordinate, "incomplete coordinate %s", c)
	}
	if c.Version == "" {
		v, err := s.LatestVersion(ctx, c.GroupID, c.ArtifactID)
		if err != nil {
			return nil, err
		}
		c.Version = v
	}

	gav := c.GAV()
	if d, ok := s.descs.Get(gav); ok {
		return withCoordinate(d, c), nil
	}
	key := s.keyer.DescriptorKey(s.repoKey, gav)
	if !s.refresh {
		if data, ok, _ := s.cache.Get(ctx, key); ok {
			var d resolve.Descriptor
			if json.Unmarshal(data, &d) == nil {
				s.descs.Add(gav, &d)
				return withCoordinate(&d, c), nil
			}
		}
	}

	p, err := s.Project(ctx, c)
	if err != nil {
		return nil, err
	}
	d := s.describe(p)
	s.descs.Add(gav, d)
	if data, err := json.Marshal(d); err == nil {
		_ = s.cache.Set(ctx, key, data, s.ttl)
	}
	return withCoordinate(d, c), nil
}

// withCoordinate returns d describing c: descriptors are stored per GAV
// while callers ask with their own type, classifier and scope.
func withCoordinate(d *resolve.Descriptor, c artifact.Coordinate) *resolve.Descriptor {
	if d.Coordinate == c {
		return d
	}
	out := *d
	out.Coordinate = c
	return &out
}

// Prefetch warms descriptors of coords concurrently. Individual failures
// are left for Descriptor to report; only cancellation is returned.
func (s *Source) Prefetch(ctx context.Context, coords []artifact.Coordinate) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, c := range coords {
		g.Go(func() error {
			if _, err := s.Descriptor(gctx, c); err != nil {
				s.logger.Debugf("prefetch %s: %v", c.GAV(), err)
			}
			return gctx.Err()
		})
	}
	return g.Wait()
}

// LatestVersion returns the newest version published by the first
// repository that knows groupId:artifactId.
func (s *Source) LatestVersion(ctx context.Context, groupID, artifactID string) (string, error) {
	var lastErr error
	for _, r := range s.repos {
		md, err := r.FetchMetadata(ctx, groupID, artifactID, s.refresh)
		if err != nil {
			if !errors.Is(err, errors.ErrCodeNotFound) {
				return "", err
			}
			lastErr = err
			continue
		}
		if v := md.LatestVersion(); v != "" {
			return v, nil
		}
	}
	if lastErr == nil {
		lastErr = errors.New(errors.ErrCodeNotFound, "no versions of %s:%s", groupID, artifactID)
	}
	return "", lastErr
}

// Project returns the effective project model of c.
func (s *Source) Project(ctx context.Context, c artifact.Coordinate) (*pom.Project, error) {
	return s.project(ctx, c, nil)
}

func (s *Source) project(ctx context.Context, c artifact.Coordinate, importing []string) (*pom.Project, error) {
	model, err := s.model(ctx, c, nil)
	if err != nil {
		return nil, err
	}
	p := model.Clone()
	s.complete(ctx, p, append(importing, c.GAV()))
	return p, nil
}

// LoadProject reads a local pom.xml and returns its descriptor. Parents
// are looked up next to the file first (relativePath, ../pom.xml by
// default) and in the repositories otherwise.
func (s *Source) LoadProject(ctx context.Context, path string) (*resolve.Descriptor, error) {
	p, err := s.localModel(ctx, path, 0)
	if err != nil {
		return nil, err
	}
	p = p.Clone()
	s.complete(ctx, p, nil)
	return s.describe(p), nil
}

func (s *Source) localModel(ctx context.Context, path string, depth int) (*pom.Project, error) {
	p, err := pom.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pc, ok := p.ParentCoordinate()
	if !ok {
		return p, nil
	}
	if depth >= maxParentDepth {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "parent chain of %s is too deep", path)
	}

	rel := p.Parent.RelativePath
	if rel == "" {
		rel = "../pom.xml"
	}
	local := filepath.Join(filepath.Dir(path), rel)
	if info, err := os.Stat(local); err == nil && info.IsDir() {
		local = filepath.Join(local, "pom.xml")
	}
	if parent, err := s.localModel(ctx, local, depth+1); err == nil &&
		parent.EffectiveGroupID() == pc.GroupID && parent.ArtifactID == pc.ArtifactID &&
		parent.EffectiveVersion() == pc.Version {
		p.Inherit(parent)
		return p, nil
	}

	parent, err := s.model(ctx, pc, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parent of %s", path)
	}
	p.Inherit(parent)
	return p, nil
}

// model returns the inherited, uninterpolated project of c. chain holds
// the GAVs being loaded below the caller and breaks parent cycles.
func (s *Source) model(ctx context.Context, c artifact.Coordinate, chain []string) (*pom.Project, error) {
	gav := c.GAV()
	if p, ok := s.models.Get(gav); ok {
		return p, nil
	}
	for _, k := range chain {
		if k == gav {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "parent cycle through %s", gav)
		}
	}
	if len(chain) >= maxParentDepth {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "parent chain of %s is too deep", gav)
	}

	// Concurrent loads of one GAV share the download. The parsed result
	// is shared too, so inheritance works on a clone.
	v, err, _ := s.flight.Do(gav, func() (any, error) {
		data, err := s.fetchPOM(ctx, c)
		if err != nil {
			return nil, err
		}
		p, err := pom.ParseBytes(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "pom of %s", gav)
		}
		s.logger.Debugf("loaded pom %s", gav)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p := v.(*pom.Project).Clone()
	if pc, ok := p.ParentCoordinate(); ok {
		parent, err := s.model(ctx, pc, append(chain, gav))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parent of %s", gav)
		}
		p.Inherit(parent)
	}
	s.models.Add(gav, p)
	return p, nil
}

func (s *Source) fetchPOM(ctx context.Context, c artifact.Coordinate) ([]byte, error) {
	var firstErr error
	for _, r := range s.repos {
		data, err := r.FetchPOM(ctx, c.GroupID, c.ArtifactID, c.Version, s.refresh)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, errors.ErrCodeNotFound) {
			return nil, err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// complete interpolates p, folds imported BOMs into its management and
// applies that management to its dependencies. importing lists the BOMs
// being completed above p.
func (s *Source) complete(ctx context.Context, p *pom.Project, importing []string) {
	p.Interpolate()
	if imports := p.Imports(); len(imports) > 0 {
		var boms []*pom.Project
		for _, imp := range imports {
			if pom.Unresolved(imp.Version) {
				s.logger.Warnf("%s: unresolved import %s:%s:%s", p.Coordinate().GAV(), imp.GroupID, imp.ArtifactID, imp.Version)
				continue
			}
			ic := imp.Coordinate()
			if slices.Contains(importing, ic.GAV()) {
				continue
			}
			bom, err := s.project(ctx, ic, importing)
			if err != nil {
				s.logger.Warnf("%s: import %s:%s:%s: %v", p.Coordinate().GAV(), imp.GroupID, imp.ArtifactID, imp.Version, err)
				continue
			}
			boms = append(boms, bom)
		}
		p.ImportManagement(boms...)
	}
	p.ApplyManagement()
}

// describe converts an effective project. Dependencies whose coordinates
// still reference unknown properties are dropped.
func (s *Source) describe(p *pom.Project) *resolve.Descriptor {
	d := &resolve.Descriptor{Coordinate: p.Coordinate()}
	convert := func(list []pom.Dependency) []resolve.Declared {
		out := make([]resolve.Declared, 0, len(list))
		for _, dep := range list {
			if dep.GroupID == "" || dep.ArtifactID == "" || pom.Unresolved(dep.GroupID) || pom.Unresolved(dep.ArtifactID) {
				s.logger.Debugf("%s: skipping unresolved dependency %s:%s", d.Coordinate.GAV(), dep.GroupID, dep.ArtifactID)
				continue
			}
			decl := resolve.Declared{
				Dependency: artifact.Dependency{Coordinate: dep.Coordinate(), Optional: dep.IsOptional()},
			}
			if pom.Unresolved(decl.Coordinate.Version) {
				decl.Coordinate.Version = ""
			}
			for _, ex := range dep.Exclusions {
				decl.Exclusions = append(decl.Exclusions, resolve.Exclusion{GroupID: ex.GroupID, ArtifactID: ex.ArtifactID})
			}
			out = append(out, decl)
		}
		return out
	}
	d.Dependencies = convert(p.Dependencies)
	d.Managed = convert(p.DependencyManagement)
	return d
}
