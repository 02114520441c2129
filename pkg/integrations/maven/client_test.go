package maven

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/cache"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
)

const testPOM = `<?xml version="1.0"?>
<project>
  <groupId>org.example</groupId>
  <artifactId>mylib</artifactId>
  <version>1.0.0</version>
</project>`

const testMetadata = `<?xml version="1.0"?>
<metadata>
  <groupId>org.example</groupId>
  <artifactId>mylib</artifactId>
  <versioning>
    <latest>1.1.0-SNAPSHOT</latest>
    <release>1.0.0</release>
    <versions>
      <version>0.9</version>
      <version>1.0.0</version>
    </versions>
  </versioning>
</metadata>`

func newTestServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/maven2/org/example/mylib/1.0.0/mylib-1.0.0.pom":
			w.Write([]byte(testPOM))
		case "/maven2/org/example/mylib/maven-metadata.xml":
			w.Write([]byte(testMetadata))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(server.URL+"/maven2/", c, time.Hour)
	client.SetHTTPClient(server.Client())
	return client
}

func TestClientFetchPOM(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, newTestServer(t, &hits))

	for _, refresh := range []bool{false, false, true} {
		data, err := client.FetchPOM(context.Background(), "org.example", "mylib", "1.0.0", refresh)
		if err != nil {
			t.Fatalf("FetchPOM() error: %v", err)
		}
		if string(data) != testPOM {
			t.Errorf("FetchPOM() = %q", data)
		}
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2 (one cached, one refresh)", got)
	}
}

func TestClientFetchPOMNotFound(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, newTestServer(t, &hits))

	_, err := client.FetchPOM(context.Background(), "org.example", "missing", "1.0", false)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("FetchPOM() error = %v, want NOT_FOUND", err)
	}
}

func TestClientFetchPOMIncomplete(t *testing.T) {
	client := NewClient("", cache.NewNullCache(), time.Hour)
	_, err := client.FetchPOM(context.Background(), "org.example", "mylib", "", false)
	if !errors.Is(err, errors.ErrCodeInvalidCoordinate) {
		t.Errorf("FetchPOM() error = %v, want INVALID_COORDINATE", err)
	}
}

func TestClientFetchMetadata(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, newTestServer(t, &hits))

	md, err := client.FetchMetadata(context.Background(), "org.example", "mylib", false)
	if err != nil {
		t.Fatalf("FetchMetadata() error: %v", err)
	}
	if md.Versioning.Release != "1.0.0" {
		t.Errorf("release = %q", md.Versioning.Release)
	}
	if len(md.Versioning.Versions) != 2 {
		t.Errorf("versions = %v", md.Versioning.Versions)
	}

	again, err := client.FetchMetadata(context.Background(), "org.example", "mylib", false)
	if err != nil {
		t.Fatalf("FetchMetadata() error: %v", err)
	}
	if again.LatestVersion() != "1.0.0" {
		t.Errorf("cached LatestVersion() = %q", again.LatestVersion())
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
}

func TestMetadataLatestVersion(t *testing.T) {
	tests := []struct {
		name string
		v    Versioning
		want string
	}{
		{"release", Versioning{Release: "2.0", Latest: "2.1-SNAPSHOT"}, "2.0"},
		{"latest", Versioning{Latest: "2.1-SNAPSHOT"}, "2.1-SNAPSHOT"},
		{"max listed", Versioning{Versions: []string{"1.9", "1.10", "1.2"}}, "1.10"},
		{"empty", Versioning{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := &Metadata{Versioning: tt.v}
			if got := md.LatestVersion(); got != tt.want {
				t.Errorf("LatestVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPOMURL(t *testing.T) {
	tests := []struct {
		g, a, v string
		want    string
	}{
		{"org.nuxeo", "api", "2.0", "https://r/org/nuxeo/api/2.0/api-2.0.pom"},
		{"org.nuxeo", "api", "2.0-SNAPSHOT", "https://r/org/nuxeo/api/2.0-SNAPSHOT/api-2.0-SNAPSHOT.pom"},
		{"org.nuxeo", "api", "2.0-20240101.120000-3", "https://r/org/nuxeo/api/2.0-SNAPSHOT/api-2.0-20240101.120000-3.pom"},
	}
	for _, tt := range tests {
		t.Run(tt.v, func(t *testing.T) {
			if got := POMURL("https://r", tt.g, tt.a, tt.v); got != tt.want {
				t.Errorf("POMURL() = %q, want %q", got, tt.want)
			}
		})
	}
	if got := MetadataURL("https://r", "org.nuxeo", "api"); got != "https://r/org/nuxeo/api/maven-metadata.xml" {
		t.Errorf("MetadataURL() = %q", got)
	}
}
