package maven

import (
	"context"
	"encoding/xml"
	stderrors "errors"
	"strings"
	"time"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/buildinfo"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/cache"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/integrations"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/version"
)

// DefaultRepository is Maven Central.
const DefaultRepository = "https://repo1.maven.org/maven2"

// Metadata is the GA-level maven-metadata.xml document.
type Metadata struct {
	GroupID    string     `xml:"groupId" json:"group_id"`
	ArtifactID string     `xml:"artifactId" json:"artifact_id"`
	Versioning Versioning `xml:"versioning" json:"versioning"`
}

// Versioning lists the published versions of an artifact.
type Versioning struct {
	Latest      string   `xml:"latest" json:"latest,omitempty"`
	Release     string   `xml:"release" json:"release,omitempty"`
	Versions    []string `xml:"versions>version" json:"versions,omitempty"`
	LastUpdated string   `xml:"lastUpdated" json:"last_updated,omitempty"`
}

// LatestVersion returns the release version, falling back to the latest
// version and then to the highest listed version. It returns "" when the
// document lists nothing.
func (m *Metadata) LatestVersion() string {
	if m.Versioning.Release != "" {
		return m.Versioning.Release
	}
	if m.Versioning.Latest != "" {
		return m.Versioning.Latest
	}
	var vs []version.Version
	for _, s := range m.Versioning.Versions {
		if v, err := version.Parse(s); err == nil {
			vs = append(vs, v)
		}
	}
	if best, ok := version.Max(vs...); ok {
		return best.Original()
	}
	return ""
}

// Client fetches project descriptors and metadata from a Maven repository
// using the standard layout.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client for the repository at baseURL. An empty
// baseURL selects Maven Central. Responses are kept in c for ttl.
func NewClient(baseURL string, c cache.Cache, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultRepository
	}
	return &Client{
		Client:  integrations.NewClient(c, "maven", ttl, map[string]string{
			"Accept":     "application/xml",
			"User-Agent": buildinfo.UserAgent(),
		}),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// BaseURL returns the repository root.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchPOM returns the raw pom.xml of groupId:artifactId:version.
//
// Returns an error with code NOT_FOUND when the repository has no such
// file and NETWORK_ERROR for transport failures.
func (c *Client) FetchPOM(ctx context.Context, groupID, artifactID, ver string, refresh bool) ([]byte, error) {
	if groupID == "" || artifactID == "" || ver == "" {
		return nil, errors.New(errors.ErrCodeInvalidCoordinate, "incomplete coordinate %s:%s:%s", groupID, artifactID, ver)
	}
	url := POMURL(c.baseURL, groupID, artifactID, ver)
	data, err := c.CachedBytes(ctx, url, refresh, func() ([]byte, error) {
		return c.GetBytes(ctx, url)
	})
	if err != nil {
		return nil, translate(err, "pom %s:%s:%s", groupID, artifactID, ver)
	}
	return data, nil
}

// FetchMetadata returns the maven-metadata.xml of groupId:artifactId.
func (c *Client) FetchMetadata(ctx context.Context, groupID, artifactID string, refresh bool) (*Metadata, error) {
	url := MetadataURL(c.baseURL, groupID, artifactID)
	var md Metadata
	err := c.Cached(ctx, url, refresh, &md, func() error {
		data, err := c.GetBytes(ctx, url)
		if err != nil {
			return err
		}
		return xml.Unmarshal(data, &md)
	})
	if err != nil {
		return nil, translate(err, "metadata %s:%s", groupID, artifactID)
	}
	return &md, nil
}

// POMURL returns the location of a project descriptor in the standard
// repository layout. Snapshot files live in their base version directory.
func POMURL(baseURL, groupID, artifactID, ver string) string {
	return strings.Join([]string{
		baseURL,
		strings.ReplaceAll(groupID, ".", "/"),
		artifactID,
		artifact.BaseVersion(ver),
		artifactID + "-" + ver + ".pom",
	}, "/")
}

// MetadataURL returns the location of the GA-level maven-metadata.xml.
func MetadataURL(baseURL, groupID, artifactID string) string {
	return strings.Join([]string{
		baseURL,
		strings.ReplaceAll(groupID, ".", "/"),
		artifactID,
		"maven-metadata.xml",
	}, "/")
}

func translate(err error, format string, args ...any) error {
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	case stderrors.Is(err, integrations.ErrNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, err, format, args...)
	case stderrors.Is(err, integrations.ErrNetwork):
		return errors.Wrap(errors.ErrCodeNetwork, err, format, args...)
	default:
		return errors.Wrap(errors.ErrCodeInvalidManifest, err, format, args...)
	}
}
