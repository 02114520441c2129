// Package maven provides an HTTP client for Maven repositories.
//
// Files are located with the standard repository layout:
//
//	<base>/<group as path>/<artifactId>/<version>/<artifactId>-<version>.pom
//	<base>/<group as path>/<artifactId>/maven-metadata.xml
//
// # Usage
//
//	client := maven.NewClient(maven.DefaultRepository, cache, 24*time.Hour)
//	data, err := client.FetchPOM(ctx, "org.apache.commons", "commons-lang3", "3.14.0", false)
//
// Responses are cached for the configured TTL. Pass refresh=true to bypass
// the cache. Missing files yield errors with code NOT_FOUND; transport
// failures yield NETWORK_ERROR after retries.
package maven
