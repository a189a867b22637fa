package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// NewStorageClient creates a GCS client able to read sources and write exports.
func NewStorageClient(ctx context.Context, credentialsFile string) (*storage.Client, error) {
	client, err := storage.NewClient(ctx, clientOptions(credentialsFile, storage.ScopeReadWrite)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return client, nil
}

// BucketSource reads the objects directly under a GCS prefix.
type BucketSource struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewBucketSource returns a Source for a gs://bucket/prefix location.
func NewBucketSource(client *storage.Client, uri string) (*BucketSource, error) {
	bucket, prefix, ok := ParseGCSURI(uri)
	if !ok {
		return nil, fmt.Errorf("invalid GCS location %q", uri)
	}
	return &BucketSource{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *BucketSource) List(ctx context.Context) ([]RemoteFile, error) {
	query := &storage.Query{Prefix: s.prefix, Delimiter: "/"}
	it := s.client.Bucket(s.bucket).Objects(ctx, query)

	var files []RemoteFile
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list gs://%s/%s: %w", s.bucket, s.prefix, err)
		}
		// Synthetic "directory" entries only carry a Prefix.
		if attrs.Name == "" || strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		files = append(files, RemoteFile{
			ID:       attrs.Name,
			Name:     SanitizeFilename(path.Base(attrs.Name)),
			MimeType: attrs.ContentType,
		})
	}
	return files, nil
}

func (s *BucketSource) Open(ctx context.Context, f RemoteFile) (io.ReadCloser, error) {
	r, err := s.client.Bucket(s.bucket).Object(f.ID).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", s.bucket, f.ID, err)
	}
	return r, nil
}

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName, contentType string, content io.Reader) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, content); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			slog.Info("Object already exists, skipping.", "gcsObject", objectName)
			return nil
		}
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}
