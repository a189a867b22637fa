package gcp

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/Lllllllleong/authdocflow/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// RunStore keeps one document per extraction run, with the progress log in a
// "log" sub-collection.
type RunStore struct {
	client     *firestore.Client
	collection string
}

func NewRunStore(client *firestore.Client, collection string) *RunStore {
	return &RunStore{client: client, collection: collection}
}

func (s *RunStore) doc(runID string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(runID)
}

// Start creates the run document with status RUNNING.
func (s *RunStore) Start(ctx context.Context, runID string, run models.Run) error {
	run.Status = models.RunStatusRunning
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if _, err := s.doc(runID).Set(ctx, run); err != nil {
		return fmt.Errorf("failed to create run document: %w", err)
	}
	return nil
}

// Complete records the counts and destination of a successful run.
func (s *RunStore) Complete(ctx context.Context, runID string, run models.Run) error {
	updates := []firestore.Update{
		{Path: "status", Value: models.RunStatusCompleted},
		{Path: "spreadsheetId", Value: run.SpreadsheetID},
		{Path: "spreadsheetUrl", Value: run.SpreadsheetURL},
		{Path: "documentCount", Value: run.DocumentCount},
		{Path: "recordCount", Value: run.RecordCount},
		{Path: "skippedCount", Value: run.SkippedCount},
		{Path: "completedAt", Value: time.Now()},
	}
	if _, err := s.doc(runID).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update run to COMPLETED: %w", err)
	}
	return nil
}

// Fail marks the run FAILED with the error that aborted it.
func (s *RunStore) Fail(ctx context.Context, runID, errDetails string) error {
	updates := []firestore.Update{
		{Path: "status", Value: models.RunStatusFailed},
		{Path: "errorDetails", Value: errDetails},
		{Path: "completedAt", Value: time.Now()},
	}
	if _, err := s.doc(runID).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update run to FAILED: %w", err)
	}
	return nil
}

// AppendLog stores one progress line. Entries are keyed by sequence number so
// readers can order them.
func (s *RunStore) AppendLog(ctx context.Context, runID string, entry models.RunLogEntry) error {
	ref := s.doc(runID).Collection("log").Doc(fmt.Sprintf("%06d", entry.Seq))
	if _, err := ref.Set(ctx, entry); err != nil {
		return fmt.Errorf("failed to append run log: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RunStore) Close() error {
	return s.client.Close()
}
