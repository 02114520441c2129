// Package cli implements the artgraph command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/internal/config"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/buildinfo"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/cache"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
)

const appName = "artgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before the first command runs unless already set.
	Config     *config.Config
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Artgraph resolves and reports Maven artifact dependency graphs",
		Long: `Artgraph resolves the transitive dependencies of a Maven artifact or pom.xml,
selects subsets with include/exclude coordinate patterns and prints them as
trees, flat lists or graphs.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if c.Config != nil {
				return nil
			}
			cfg, err := config.Load(config.Options{Path: c.configPath})
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/artgraph/config.toml)")

	root.AddCommand(c.treeCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.findCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// openCache returns the configured cache backend, or a null cache when
// disabled.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Redis.Addr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis at %s", c.Config.Redis.Addr)
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		loggerFromContext(ctx).Warnf("file cache disabled: %v", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// cacheKeyer returns the keyer for the configured backend. Redis is shared
// with other tenants, so its keys carry the application prefix.
func (c *CLI) cacheKeyer() cache.Keyer {
	if c.Config != nil && c.Config.Cache.Backend == config.BackendRedis {
		return cache.NewScopedKeyer(cache.NewDefaultKeyer(), appName+":")
	}
	return cache.NewDefaultKeyer()
}

// cacheDir returns the file cache location: the configured directory or
// $XDG_CACHE_HOME/artgraph.
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}
