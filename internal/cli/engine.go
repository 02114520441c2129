package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/cache"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/filter"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/graph"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/integrations"
	repo "github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/integrations/maven"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/resolve"
	mavensrc "github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/resolve/maven"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/session"
)

// sourceFlags select where descriptors come from.
type sourceFlags struct {
	repos    []string
	repoFile string
	noCache  bool
	refresh  bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringSliceVar(&f.repos, "repo", nil, "repository URL, replaces the configured list (repeatable)")
	fl.StringVar(&f.repoFile, "repo-file", "", "resolve offline from a TOML repository file")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable the persistent cache")
	fl.BoolVar(&f.refresh, "refresh", false, "ignore cached entries and fetch again")
}

// resolveFlags are shared by commands that build a graph.
type resolveFlags struct {
	sourceFlags
	includes []string
	excludes []string
	depth    int
}

func (f *resolveFlags) register(cmd *cobra.Command) {
	f.sourceFlags.register(cmd)
	fl := cmd.Flags()
	fl.StringArrayVarP(&f.includes, "include", "i", nil, "include pattern group:artifact:version:type:classifier:scope (repeatable)")
	fl.StringArrayVarP(&f.excludes, "exclude", "x", nil, "exclude pattern (repeatable)")
	fl.IntVar(&f.depth, "depth", -1, "maximum depth below the root, -1 for unbounded")
}

func (f *resolveFlags) request(root string) graphRequest {
	return graphRequest{root: root, files: true, includes: f.includes, excludes: f.excludes, depth: f.depth}
}

// engine owns the descriptor source shared by every graph it builds.
type engine struct {
	source resolve.Source
	maven  *mavensrc.Source // nil when offline
	cache  cache.Cache
}

func (c *CLI) newEngine(ctx context.Context, f sourceFlags) (*engine, error) {
	logger := loggerFromContext(ctx)
	if f.repoFile != "" {
		static, err := resolve.LoadRepositoryFile(f.repoFile)
		if err != nil {
			return nil, err
		}
		logger.Debugf("loaded %d artifacts from %s", static.Len(), f.repoFile)
		return &engine{source: static, cache: cache.NewNullCache()}, nil
	}

	cch, err := c.openCache(ctx, f.noCache)
	if err != nil {
		return nil, err
	}
	repos := f.repos
	if len(repos) == 0 {
		repos = c.Config.Repositories
	}
	hc := integrations.NewHTTPClient(c.Config.HTTP.Timeout)
	keyer := c.cacheKeyer()
	fetchers := make([]mavensrc.Fetcher, 0, len(repos))
	for _, url := range repos {
		mc := repo.NewClient(url, cch, c.Config.Cache.TTL)
		mc.SetHTTPClient(hc)
		mc.SetKeyer(keyer)
		fetchers = append(fetchers, mc)
	}
	src, err := mavensrc.New(mavensrc.Options{
		Repositories: fetchers,
		Cache:        cch,
		Keyer:        keyer,
		TTL:          c.Config.Cache.TTL,
		Refresh:      f.refresh,
		Logger:       logger,
	})
	if err != nil {
		cch.Close()
		return nil, err
	}
	logger.Debug("repositories", "urls", strings.Join(repos, ","))
	return &engine{source: src, maven: src, cache: cch}, nil
}

func (e *engine) Close() error { return e.cache.Close() }

// graphRequest describes one graph build.
type graphRequest struct {
	root string // coordinate, or pom.xml path when files is set
	// files allows root to name a local project file.
	files    bool
	includes []string
	excludes []string
	depth    int
}

// build resolves req into a graph with its own session.
func (e *engine) build(ctx context.Context, logger *log.Logger, req graphRequest) (*graph.Graph, error) {
	f, err := filter.ParseAll(req.includes, req.excludes)
	if err != nil {
		return nil, err
	}

	var (
		src     = e.source
		project *resolve.Descriptor
		root    artifact.Coordinate
	)
	if path, ok := pomPath(req.root); ok && req.files {
		if e.maven == nil {
			return nil, errors.Unsupported("pom.xml roots need a remote repository, not a repository file")
		}
		if project, err = e.maven.LoadProject(ctx, path); err != nil {
			return nil, err
		}
		src = resolve.Chain{resolve.NewStatic(project), e.source}
	} else if root, err = artifact.Parse(req.root); err != nil {
		return nil, err
	}

	sess := session.New(resolve.NewCollector(src, logger),
		session.WithLogger(logger),
		session.WithProject(project),
	)
	g := graph.New(sess)
	if project != nil {
		_, err = g.AddProject(ctx)
	} else {
		_, err = g.AddRoot(ctx, root)
	}
	if err != nil {
		return nil, err
	}
	if err := g.ResolveDependencies(ctx, f, req.depth); err != nil {
		return nil, err
	}
	sess.Logger.Debug("graph built", "root", req.root, "nodes", g.Len())
	return g, nil
}

// pomPath reports whether arg names a project file rather than a
// coordinate. A directory stands for the pom.xml inside it.
func pomPath(arg string) (string, bool) {
	if strings.HasSuffix(arg, ".xml") {
		return arg, true
	}
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return filepath.Join(arg, "pom.xml"), true
	}
	return "", false
}

// buildGraph resolves root for a command, with a spinner on stderr.
func (c *CLI) buildGraph(cmd *cobra.Command, f *resolveFlags, root string) (*graph.Graph, error) {
	ctx := cmd.Context()
	e, err := c.newEngine(ctx, f.sourceFlags)
	if err != nil {
		return nil, err
	}
	defer e.Close()

	spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Resolving "+root+"...")
	spinner.Start()
	prog := newProgress(loggerFromContext(ctx))
	g, err := e.build(ctx, loggerFromContext(ctx), f.request(root))
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	s := g.Stats()
	prog.done(fmt.Sprintf("Resolved %d artifacts, %d conflicts", s.Nodes, s.Conflicts))
	return g, nil
}
