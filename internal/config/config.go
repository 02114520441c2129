// Package config loads artgraph settings.
//
// Sources are applied in order, later ones winning:
//
//  1. built-in defaults
//  2. the TOML file at $XDG_CONFIG_HOME/artgraph/config.toml
//  3. a .env file in the working directory
//  4. ARTGRAPH_* environment variables
//
// Command-line flags are applied on top by the CLI.
//
// Example config.toml:
//
//	repositories = ["https://repo1.maven.org/maven2", "https://packages.nuxeo.com/repository/maven-public"]
//
//	[cache]
//	backend = "redis"
//	ttl = "72h"
//
//	[redis]
//	addr = "localhost:6379"
//
//	[http]
//	timeout = "30s"
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/integrations"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/integrations/maven"
)

const (
	appName   = "artgraph"
	envPrefix = "ARTGRAPH_"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the merged configuration.
type Config struct {
	Repositories []string    `toml:"repositories"`
	Cache        CacheConfig `toml:"cache"`
	Redis        RedisConfig `toml:"redis"`
	HTTP         HTTPConfig  `toml:"http"`
	Serve        ServeConfig `toml:"serve"`
}

type CacheConfig struct {
	Backend string        `toml:"backend"`
	TTL     time.Duration `toml:"ttl"`
	// Dir overrides the file cache location.
	Dir string `toml:"dir"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type HTTPConfig struct {
	Timeout time.Duration `toml:"timeout"`
}

type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Repositories: []string{maven.DefaultRepository},
		Cache:        CacheConfig{Backend: BackendFile, TTL: 24 * time.Hour},
		Redis:        RedisConfig{Addr: "localhost:6379"},
		HTTP:         HTTPConfig{Timeout: integrations.DefaultHTTPTimeout},
		Serve:        ServeConfig{Addr: ":8080"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/artgraph/config.toml, falling back
// to ~/.config/artgraph/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Options selects the files Load reads.
type Options struct {
	// Path is the TOML file. Empty uses DefaultPath, which may be absent.
	// An explicit path must exist.
	Path string
	// EnvFile is the dotenv file, ".env" when empty. It may be absent.
	EnvFile string
}

// Load merges defaults, the config file, the dotenv file and the
// environment.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	path, explicit := opts.Path, opts.Path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			path = ""
		}
	}
	if path != "" {
		if err := cfg.loadFile(path, explicit); err != nil {
			return nil, err
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load %s", envFile)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "config file %s", path)
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "config file %s: unknown key %s", path, undecoded[0])
	}
	return nil
}

// ApplyEnv overrides settings from ARTGRAPH_* variables found by lookup.
// ARTGRAPH_REPOSITORIES is a comma-separated list.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("REPOSITORIES"); ok {
		c.Repositories = splitList(v)
	}
	if v, ok := get("CACHE_BACKEND"); ok {
		c.Cache.Backend = strings.ToLower(v)
	}
	if v, ok := get("CACHE_DIR"); ok {
		c.Cache.Dir = v
	}
	if v, ok := get("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := get("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := get("SERVE_ADDR"); ok {
		c.Serve.Addr = v
	}

	if v, ok := get("REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%sREDIS_DB", envPrefix)
		}
		c.Redis.DB = db
	}
	for name, dst := range map[string]*time.Duration{
		"CACHE_TTL":    &c.Cache.TTL,
		"HTTP_TIMEOUT": &c.HTTP.Timeout,
	} {
		v, ok := get(name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s%s", envPrefix, name)
		}
		*dst = d
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if len(c.Repositories) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no repositories configured")
	}
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendNone}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput,
			"unknown cache backend %q (want %s, %s or %s)", c.Cache.Backend, BackendFile, BackendRedis, BackendNone)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "http timeout must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
