package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/Lllllllleong/authdocflow/internal/config"
	"github.com/Lllllllleong/authdocflow/internal/gcp"
	"github.com/Lllllllleong/authdocflow/internal/models"
	"github.com/Lllllllleong/authdocflow/internal/pipeline"
	"github.com/Lllllllleong/authdocflow/internal/textract"
)

// ErrInvalidRequest reports a request that is missing a required parameter.
var ErrInvalidRequest = errors.New("invalid request")

// Publisher writes a table to one tab of a spreadsheet.
type Publisher interface {
	Publish(ctx context.Context, spreadsheetID, tab string, rows [][]string) (gcp.Published, error)
}

// RunRecorder persists the status and progress log of a run.
type RunRecorder interface {
	Start(ctx context.Context, runID string, run models.Run) error
	Complete(ctx context.Context, runID string, run models.Run) error
	Fail(ctx context.Context, runID, errDetails string) error
	AppendLog(ctx context.Context, runID string, entry models.RunLogEntry) error
}

// Archiver stores an exported file and returns its URI.
type Archiver interface {
	Archive(ctx context.Context, objectName, contentType string, content io.Reader) (string, error)
}

// SourceFunc resolves a folder id to the Source that reads it.
type SourceFunc func(ctx context.Context, folderID string) (gcp.Source, error)

type ExtractionConfig struct {
	DownloadDir       string
	DownloadWorkers   int
	IncludeSourceFile bool
}

type ExtractionFunction struct {
	sources   SourceFunc
	acquirer  pipeline.TextAcquirer
	publisher Publisher
	recorder  RunRecorder
	archiver  Archiver // nil when no export bucket is configured
	config    ExtractionConfig

	progressOut  io.Writer
	retryBackoff time.Duration
	closers      []func() error
}

// NewExtraction creates the Google API clients described by cfg.
func NewExtraction(ctx context.Context, cfg *config.Config) (*ExtractionFunction, error) {
	driveSvc, err := gcp.NewDriveService(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	sheetsSvc, err := gcp.NewSheetsService(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	f := &ExtractionFunction{
		acquirer:  textract.New(cfg.Textract(), slog.Default()),
		publisher: gcp.NewSheetsPublisher(sheetsSvc, cfg.SpreadsheetTitle),
		recorder:  nopRecorder{},
		config: ExtractionConfig{
			DownloadDir:       cfg.DownloadDir,
			DownloadWorkers:   cfg.DownloadWorkers,
			IncludeSourceFile: cfg.IncludeSourceFile,
		},
		retryBackoff: time.Second,
	}

	if cfg.ProjectID != "" {
		firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		store := gcp.NewRunStore(firestoreClient, cfg.RunsCollection)
		f.recorder = store
		f.closers = append(f.closers, store.Close)
	}

	storageClient := lazyStorage(cfg.CredentialsFile)
	f.closers = append(f.closers, storageClient.close)
	if cfg.ExportBucket != "" {
		f.archiver = &bucketArchiver{client: storageClient, bucket: cfg.ExportBucket}
	}

	f.sources = func(ctx context.Context, folderID string) (gcp.Source, error) {
		if gcp.IsGCSURI(folderID) {
			client, err := storageClient.get(ctx)
			if err != nil {
				return nil, err
			}
			return gcp.NewBucketSource(client, folderID)
		}
		return gcp.NewDriveSource(driveSvc, folderID), nil
	}
	slog.Info("Extraction logic initialized.", "firestore", cfg.ProjectID != "", "exportBucket", cfg.ExportBucket)
	return f, nil
}

// SetProgressOutput also prints every progress line to w.
func (f *ExtractionFunction) SetProgressOutput(w io.Writer) {
	f.progressOut = w
}

// Close releases the clients created by NewExtraction.
func (f *ExtractionFunction) Close() error {
	var errs []error
	for _, c := range f.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Process runs one extraction: list and download the folder, extract a
// record per document and publish the deduplicated table.
func (f *ExtractionFunction) Process(ctx context.Context, req *models.ExtractRequest) (*models.ExtractResponse, error) {
	if req.FolderID == "" {
		return nil, fmt.Errorf("%w: folderId must be set", ErrInvalidRequest)
	}
	if req.TabName == "" {
		return nil, fmt.Errorf("%w: tabName must be set", ErrInvalidRequest)
	}

	runID := uuid.NewString()
	logCtx := slog.With("runId", runID, "folderId", req.FolderID, "spreadsheetId", req.SpreadsheetID, "tab", req.TabName)
	logCtx.Info("Starting extraction run.")

	err := f.recorder.Start(ctx, runID, models.Run{
		FolderID:      req.FolderID,
		SpreadsheetID: req.SpreadsheetID,
		TabName:       req.TabName,
	})
	if err != nil {
		logCtx.Error("Failed to create run record.", "error", err)
		return nil, err
	}
	progress := newProgressLog(runID, f.recorder, f.progressOut, logCtx)

	source, err := f.sources(ctx, req.FolderID)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, runID, "failed to open folder", err)
	}
	files, err := source.List(ctx)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, runID, "failed to list folder", err)
	}
	logCtx.Info("Folder listed.", "fileCount", len(files))

	workDir, cleanup, err := f.workDir()
	if err != nil {
		return nil, f.handleError(ctx, logCtx, runID, "failed to prepare download directory", err)
	}
	defer cleanup()

	docs, failed, err := f.downloadAll(ctx, logCtx, source, files, workDir, progress)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, runID, "failed to download folder", err)
	}

	schema := models.Schema{IncludeSourceFile: f.config.IncludeSourceFile}
	orchestrator := pipeline.New(f.acquirer, nil, schema, progress, logCtx)
	result := orchestrator.Run(ctx, docs)

	published, err := f.publisher.Publish(ctx, req.SpreadsheetID, req.TabName, result.Table.Clone().Rows())
	if err != nil {
		return nil, f.handleError(ctx, logCtx, runID, "failed to publish table", err)
	}
	logCtx = logCtx.With("spreadsheetId", published.SpreadsheetID)

	exportURI, err := f.export(ctx, logCtx, runID, req, result.Table)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, runID, "failed to export table", err)
	}

	progress.Log(ctx, fmt.Sprintf("Concluído! Dados extraídos para a aba '%s' da planilha: %s", req.TabName, published.URL))

	run := models.Run{
		SpreadsheetID:  published.SpreadsheetID,
		SpreadsheetURL: published.URL,
		DocumentCount:  len(files),
		RecordCount:    len(result.Table.Records),
		SkippedCount:   result.Skipped + failed,
	}
	if err := f.recorder.Complete(ctx, runID, run); err != nil {
		logCtx.Error("Failed to mark run as completed.", "error", err)
	}

	logCtx.Info("Extraction run complete.", "records", run.RecordCount, "skipped", run.SkippedCount)
	return &models.ExtractResponse{
		Status:         "success",
		RunID:          runID,
		SpreadsheetID:  published.SpreadsheetID,
		SpreadsheetURL: published.URL,
		RecordCount:    run.RecordCount,
		SkippedCount:   run.SkippedCount,
		ExportURI:      exportURI,
	}, nil
}

// workDir returns the configured download directory, or a temporary one that
// cleanup removes.
func (f *ExtractionFunction) workDir() (string, func(), error) {
	if f.config.DownloadDir != "" {
		if err := os.MkdirAll(f.config.DownloadDir, 0o755); err != nil {
			return "", nil, err
		}
		return f.config.DownloadDir, func() {}, nil
	}
	dir, err := os.MkdirTemp("", "authdocflow-*")
	if err != nil {
		return "", nil, err
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

func (f *ExtractionFunction) handleError(ctx context.Context, logCtx *slog.Logger, runID, message string, originalErr error) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)
	if err := f.recorder.Fail(ctx, runID, fullError); err != nil {
		logCtx.Error("CRITICAL: Failed to mark run as FAILED after a processing error.", "updateError", err)
	}
	return fmt.Errorf("%s: %w", message, originalErr)
}

type nopRecorder struct{}

func (nopRecorder) Start(context.Context, string, models.Run) error             { return nil }
func (nopRecorder) Complete(context.Context, string, models.Run) error          { return nil }
func (nopRecorder) Fail(context.Context, string, string) error                  { return nil }
func (nopRecorder) AppendLog(context.Context, string, models.RunLogEntry) error { return nil }

// storageHandle creates the GCS client on first use so runs that never touch
// a bucket need no storage credentials.
type storageHandle struct {
	mu              sync.Mutex
	client          *storage.Client
	credentialsFile string
}

func lazyStorage(credentialsFile string) *storageHandle {
	return &storageHandle{credentialsFile: credentialsFile}
}

func (h *storageHandle) get(ctx context.Context) (*storage.Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client != nil {
		return h.client, nil
	}
	client, err := gcp.NewStorageClient(ctx, h.credentialsFile)
	if err != nil {
		return nil, err
	}
	h.client = client
	return client, nil
}

func (h *storageHandle) close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client == nil {
		return nil
	}
	return h.client.Close()
}
