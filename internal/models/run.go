package models

import "time"

// Run statuses stored in Firestore.
const (
	RunStatusRunning   = "RUNNING"
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
)

// Run is the Firestore record of one extraction run.
type Run struct {
	FolderID       string    `firestore:"folderId,omitempty"`
	SpreadsheetID  string    `firestore:"spreadsheetId,omitempty"`
	TabName        string    `firestore:"tabName,omitempty"`
	Status         string    `firestore:"status,omitempty"`
	ErrorDetails   string    `firestore:"errorDetails,omitempty"`
	DocumentCount  int       `firestore:"documentCount,omitempty"`
	RecordCount    int       `firestore:"recordCount,omitempty"`
	SkippedCount   int       `firestore:"skippedCount,omitempty"`
	SpreadsheetURL string    `firestore:"spreadsheetUrl,omitempty"`
	CreatedAt      time.Time `firestore:"createdAt,omitempty"`
	CompletedAt    time.Time `firestore:"completedAt,omitempty"`
}

// RunLogEntry is one line of a run's progress log, ordered by Seq.
type RunLogEntry struct {
	Seq     int       `firestore:"seq"`
	Message string    `firestore:"message"`
	At      time.Time `firestore:"at"`
}
