package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/internal/config"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
)

// testRepository has one conflict: impl asks for api 1.0 below the root,
// which already declares api 2.0.
const testRepository = `
[[artifact]]
coordinate = "org.nuxeo:core:2.0"

[[artifact.dependency]]
coordinate = "org.nuxeo:api:2.0"

[[artifact.dependency]]
coordinate = "org.nuxeo:impl:2.0"

[[artifact.dependency]]
coordinate = "junit:junit:4.12:jar::test"

[[artifact]]
coordinate = "org.nuxeo:impl:2.0"

[[artifact.dependency]]
coordinate = "org.nuxeo:api:1.0"

[[artifact]]
coordinate = "org.nuxeo:api:2.0"

[[artifact]]
coordinate = "org.nuxeo:api:1.0"

[[artifact]]
coordinate = "junit:junit:4.12"
`

func writeRepository(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repo.toml")
	if err := os.WriteFile(path, []byte(testRepository), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()
	return cfg
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	c.Config = cfg
	root := c.RootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestTreeCommand(t *testing.T) {
	repo := writeRepository(t)
	out, _, err := execute(t, testConfig(t), "tree", "org.nuxeo:core:2.0", "--repo-file", repo)
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	for _, want := range []string{
		"org.nuxeo:core:2.0:jar::compile\n",
		" |-- org.nuxeo:api:2.0:jar::compile\n",
		" |-- org.nuxeo:impl:2.0:jar::compile\n",
		"org.nuxeo:api:1.0:jar::compile (conflicts with 2.0)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("tree output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "junit") {
		t.Errorf("test scope should be filtered by default:\n%s", out)
	}
}

func TestListCommand(t *testing.T) {
	repo := writeRepository(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "default",
			want: "org.nuxeo:api:2.0:jar::compile\norg.nuxeo:impl:2.0:jar::compile\n",
		},
		{
			name: "exclude",
			args: []string{"-x", "org.nuxeo:impl"},
			want: "org.nuxeo:api:2.0:jar::compile\n",
		},
		{
			name: "include test scope",
			args: []string{"-i", ":::::test", "-i", ":::::compile"},
			want: "junit:junit:4.12:jar::test\norg.nuxeo:api:2.0:jar::compile\norg.nuxeo:impl:2.0:jar::compile\n",
		},
		{
			name: "depth",
			args: []string{"--depth", "0"},
			want: "",
		},
		{
			name: "kv format",
			args: []string{"--format", "kv_f_gav", "-x", "org.nuxeo:impl"},
			want: "api-2.0.jar=org.nuxeo:api:2.0:jar::compile\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"list", "org.nuxeo:core:2.0", "--repo-file", repo}, tt.args...)
			out, _, err := execute(t, testConfig(t), args...)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if out != tt.want {
				t.Errorf("list output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestListCommandOutputFile(t *testing.T) {
	repo := writeRepository(t)
	path := filepath.Join(t.TempDir(), "deps.txt")
	out, stderr, err := execute(t, testConfig(t), "list", "org.nuxeo:core:2.0", "--repo-file", repo, "-o", path)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty", out)
	}
	if !strings.Contains(stderr, path) {
		t.Errorf("stderr should name %s: %q", path, stderr)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "org.nuxeo:api:2.0:jar::compile\n") {
		t.Errorf("file content = %q", data)
	}
}

func TestReportCommandErrors(t *testing.T) {
	repo := writeRepository(t)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"bad format", []string{"list", "org.nuxeo:core:2.0", "--format", "xml"}, errors.ErrCodeInvalidFormat},
		{"bad pattern", []string{"list", "org.nuxeo:core:2.0", "-i", "a:b:c:d:e:f:g"}, errors.ErrCodeInvalidPattern},
		{"missing root", []string{"tree", "org.nuxeo:missing:1.0"}, errors.ErrCodeNotFound},
		{"pom without repository", []string{"tree", "pom.xml"}, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--repo-file", repo)
			_, _, err := execute(t, testConfig(t), args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestFindCommand(t *testing.T) {
	repo := writeRepository(t)

	out, _, err := execute(t, testConfig(t), "find", "org.nuxeo:core:2.0", "org.nuxeo:api", "--repo-file", repo)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	want := "org.nuxeo:api:1.0:jar::compile\norg.nuxeo:api:2.0:jar::compile\n"
	if out != want {
		t.Errorf("find = %q, want %q", out, want)
	}

	out, _, err = execute(t, testConfig(t), "find", "org.nuxeo:core:2.0", "*:impl", "--unique", "--repo-file", repo)
	if err != nil {
		t.Fatalf("find --unique: %v", err)
	}
	if out != "org.nuxeo:impl:2.0:jar::compile\n" {
		t.Errorf("find --unique = %q", out)
	}

	_, _, err = execute(t, testConfig(t), "find", "org.nuxeo:core:2.0", "org.nuxeo:api", "--unique", "--repo-file", repo)
	if !errors.Is(err, errors.ErrCodeAmbiguous) {
		t.Errorf("ambiguous find error = %v", err)
	}

	_, stderr, err := execute(t, testConfig(t), "find", "org.nuxeo:core:2.0", "com.acme", "--repo-file", repo)
	if err != nil {
		t.Fatalf("find without match: %v", err)
	}
	if !strings.Contains(stderr, "No node matches com.acme") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestGraphCommand(t *testing.T) {
	repo := writeRepository(t)

	out, _, err := execute(t, testConfig(t), "graph", "org.nuxeo:core:2.0", "--repo-file", repo)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.HasPrefix(out, "digraph") {
		t.Errorf("DOT output should start with digraph: %q", out)
	}
	if !strings.Contains(out, `"org.nuxeo:core:2.0:jar::compile" -> "org.nuxeo:api:2.0:jar::compile"`) {
		t.Errorf("DOT output missing root edge:\n%s", out)
	}

	out, _, err = execute(t, testConfig(t), "graph", "org.nuxeo:core:2.0", "--json", "--repo-file", repo)
	if err != nil {
		t.Fatalf("graph --json: %v", err)
	}
	if !strings.Contains(out, `"org.nuxeo:impl:2.0:jar::compile"`) {
		t.Errorf("JSON output missing impl node:\n%s", out)
	}

	_, _, err = execute(t, testConfig(t), "graph", "org.nuxeo:core:2.0", "--json", "--svg", "--repo-file", repo)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("--json --svg error = %v", err)
	}
}

func TestVersionCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"compare less", []string{"version", "compare", "5.6-RC1", "5.6"}, "5.6-RC1 < 5.6\n"},
		{"compare equal", []string{"version", "compare", "1.0", "1.0"}, "1.0 = 1.0\n"},
		{"compare greater", []string{"version", "compare", "1.10", "1.9"}, "1.10 > 1.9\n"},
		{"sort", []string{"version", "sort", "1.10", "1.2", "1.9"}, "1.2\n1.9\n1.10\n"},
		{"sort reverse", []string{"version", "sort", "-r", "1.10", "1.2", "1.9"}, "1.10\n1.9\n1.2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, testConfig(t), tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestCacheCommands(t *testing.T) {
	cfg := testConfig(t)
	out, _, err := execute(t, cfg, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out); got != cfg.Cache.Dir {
		t.Errorf("cache path = %q, want %q", got, cfg.Cache.Dir)
	}

	stale := filepath.Join(cfg.Cache.Dir, "entry")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := execute(t, cfg, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("cache entry survived clear: %v", err)
	}

	cfg.Cache.Backend = config.BackendRedis
	if _, _, err := execute(t, cfg, "cache", "clear"); !errors.IsUnsupported(err) {
		t.Errorf("redis cache clear error = %v, want UNSUPPORTED", err)
	}
}

func TestCacheDirDefault(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	c := New(io.Discard, LogInfo)
	dir, err := c.cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(xdg, "artgraph"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestOpenCacheDisabled(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.Config = testConfig(t)

	for _, tc := range []struct {
		name    string
		backend string
		noCache bool
	}{
		{"flag", config.BackendFile, true},
		{"backend none", config.BackendNone, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c.Config.Cache.Backend = tc.backend
			cch, err := c.openCache(context.Background(), tc.noCache)
			if err != nil {
				t.Fatal(err)
			}
			defer cch.Close()
			if _, ok, _ := cch.Get(context.Background(), "k"); ok {
				t.Error("null cache returned a hit")
			}
		})
	}
}

func TestCacheKeyer(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.Config = testConfig(t)

	for _, tc := range []struct {
		backend string
		scoped  bool
	}{
		{config.BackendRedis, true},
		{config.BackendFile, false},
		{config.BackendNone, false},
	} {
		t.Run(tc.backend, func(t *testing.T) {
			c.Config.Cache.Backend = tc.backend
			k := c.cacheKeyer()
			for _, key := range []string{
				k.HTTPKey("maven", "g/a/1.0/a-1.0.pom"),
				k.DescriptorKey("central", "g:a:1.0"),
				k.MetadataKey("central", "g:a"),
			} {
				if got := strings.HasPrefix(key, "artgraph:"); got != tc.scoped {
					t.Errorf("key %q scoped = %v, want %v", key, got, tc.scoped)
				}
			}
		})
	}
}

func TestPomPath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		arg    string
		want   string
		wantOK bool
	}{
		{"pom.xml", "pom.xml", true},
		{"sub/project.xml", "sub/project.xml", true},
		{dir, filepath.Join(dir, "pom.xml"), true},
		{"org.nuxeo:core:2.0", "", false},
	}
	for _, tt := range tests {
		got, ok := pomPath(tt.arg)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("pomPath(%q) = %q, %v; want %q, %v", tt.arg, got, ok, tt.want, tt.wantOK)
		}
	}
}
