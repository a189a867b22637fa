package gcp

import (
	"context"
	"io"
	"regexp"
	"strings"

	"google.golang.org/api/option"
)

// RemoteFile is one entry of a remote folder listing.
type RemoteFile struct {
	ID       string // Drive file id or GCS object name
	Name     string // sanitized, safe to use as a local filename
	MimeType string
}

// Source lists and opens the files of one remote folder.
type Source interface {
	List(ctx context.Context) ([]RemoteFile, error)
	Open(ctx context.Context, f RemoteFile) (io.ReadCloser, error)
}

var unsafeNameChars = regexp.MustCompile(`[\\/*?%:"<>|]`)

// SanitizeFilename replaces characters that are not allowed in local filenames.
func SanitizeFilename(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// IsGCSURI reports whether folder names a gs:// location rather than a Drive folder id.
func IsGCSURI(folder string) bool {
	return strings.HasPrefix(folder, "gs://")
}

// ParseGCSURI splits gs://bucket/prefix into bucket and a prefix that ends in
// "/" unless it is empty.
func ParseGCSURI(uri string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(uri, "gs://")
	if !found || rest == "" {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", false
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return bucket, prefix, true
}

// clientOptions authenticates with a service account key file when one is
// configured, otherwise with application default credentials.
func clientOptions(credentialsFile string, scopes ...string) []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(scopes...)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	return opts
}
