package models

// These structs define the JSON payloads accepted by the HTTP and Pub/Sub
// entry points and returned to their callers.

// ExtractRequest identifies the source folder and the destination tab of a run.
// FolderID is either a Drive folder id or a gs://bucket/prefix location.
// An empty SpreadsheetID makes the publisher create a new spreadsheet.
type ExtractRequest struct {
	FolderID      string `json:"folderId"`
	SpreadsheetID string `json:"spreadsheetId"`
	TabName       string `json:"tabName"`

	// ExportPath, when set, also writes the table to a local .xlsx file.
	// Only the CLI sets it.
	ExportPath string `json:"-"`
}

// ExtractResponse is returned once the table has been published.
type ExtractResponse struct {
	Status         string `json:"status"`
	RunID          string `json:"runId"`
	SpreadsheetID  string `json:"spreadsheetId"`
	SpreadsheetURL string `json:"spreadsheetUrl"`
	RecordCount    int    `json:"recordCount"`
	SkippedCount   int    `json:"skippedCount"`
	ExportURI      string `json:"exportUri,omitempty"`
}
