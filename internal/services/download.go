package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/authdocflow/internal/gcp"
	"github.com/Lllllllleong/authdocflow/internal/models"
	"github.com/Lllllllleong/authdocflow/internal/pipeline"
)

// downloadAll materializes the supported files of a listing in dir and
// returns one Document per listed file, in listing order. Unsupported files
// are returned without a path so the orchestrator reports them. Files that
// could not be downloaded are reported and left out; failed counts them.
func (f *ExtractionFunction) downloadAll(ctx context.Context, logCtx *slog.Logger, source gcp.Source, files []gcp.RemoteFile, dir string, progress pipeline.Progress) (docs []models.Document, failed int, err error) {
	persistent := f.config.DownloadDir != ""
	workers := f.config.DownloadWorkers
	if workers < 1 {
		workers = 1
	}

	all := make([]models.Document, len(files))
	errs := make([]error, len(files))
	used := make(map[string]bool, len(files))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, file := range files {
		kind, ok := models.KindFromName(file.Name)
		all[i] = models.Document{ID: file.ID, Name: file.Name, Kind: kind}
		if !ok {
			continue
		}

		// Drive allows several files with the same name in one folder.
		localName := file.Name
		if used[localName] {
			localName = gcp.SanitizeFilename(file.ID) + "_" + file.Name
		}
		used[localName] = true
		path := filepath.Join(dir, localName)
		all[i].Path = path

		if persistent && alreadyDownloaded(path) {
			logCtx.Debug("File already downloaded, skipping.", "file", file.Name)
			continue
		}

		idx := i
		eg.Go(func() error {
			errs[idx] = f.downloadFile(gctx, source, files[idx], path)
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	docs = make([]models.Document, 0, len(all))
	for i, doc := range all {
		if errs[i] != nil {
			logCtx.Error("Download failed.", "file", doc.Name, "fileId", doc.ID, "error", errs[i])
			progress.Log(ctx, fmt.Sprintf("Erro ao baixar %s: %v", doc.Name, errs[i]))
			failed++
			continue
		}
		docs = append(docs, doc)
	}
	logCtx.Info("Folder downloaded.", "documents", len(docs), "failed", failed)
	return docs, failed, nil
}

func alreadyDownloaded(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// downloadFile copies one remote file to localPath, retrying with a doubling
// backoff. A partial file is removed before each retry.
func (f *ExtractionFunction) downloadFile(ctx context.Context, source gcp.Source, file gcp.RemoteFile, localPath string) error {
	const maxRetries = 4
	backoff := f.retryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := func() error {
			rc, err := source.Open(ctx, file)
			if err != nil {
				return err
			}
			defer rc.Close()

			out, err := os.Create(localPath)
			if err != nil {
				return fmt.Errorf("failed to create local file at %s: %w", localPath, err)
			}
			if _, err := io.Copy(out, rc); err != nil {
				out.Close()
				os.Remove(localPath)
				return fmt.Errorf("failed to copy %s to local file: %w", file.Name, err)
			}
			return out.Close()
		}()

		if err == nil {
			return nil
		}

		lastErr = err
		slog.Warn(
			"Download failed, will retry.",
			"file", file.Name,
			"attempt", i+1,
			"maxRetries", maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("download of %s failed after all retries: %w", file.Name, lastErr)
}
