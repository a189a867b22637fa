package gcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// NewSheetsService creates a Sheets client allowed to create and edit spreadsheets.
func NewSheetsService(ctx context.Context, credentialsFile string, extra ...option.ClientOption) (*sheets.Service, error) {
	opts := append(clientOptions(credentialsFile, sheets.SpreadsheetsScope), extra...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets client: %w", err)
	}
	return svc, nil
}

// Published identifies where a table was written.
type Published struct {
	SpreadsheetID string
	URL           string
	Created       bool
}

// SheetsPublisher overwrites one tab of a spreadsheet with a table.
type SheetsPublisher struct {
	svc   *sheets.Service
	title string // used when a spreadsheet has to be created
}

func NewSheetsPublisher(svc *sheets.Service, title string) *SheetsPublisher {
	return &SheetsPublisher{svc: svc, title: title}
}

// Publish makes sure the spreadsheet and the tab exist, clears the tab and
// writes rows starting at A1. An empty or unknown spreadsheetID creates a new
// spreadsheet.
func (p *SheetsPublisher) Publish(ctx context.Context, spreadsheetID, tab string, rows [][]string) (Published, error) {
	logCtx := slog.With("spreadsheetId", spreadsheetID, "tab", tab)

	ss, created, err := p.ensureSpreadsheet(ctx, spreadsheetID)
	if err != nil {
		return Published{}, err
	}
	id := ss.SpreadsheetId
	if created {
		logCtx.Info("Created spreadsheet.", "newSpreadsheetId", id)
	}

	if !hasTab(ss, tab) {
		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: tab}},
			}},
		}
		if _, err := p.svc.Spreadsheets.BatchUpdate(id, req).Context(ctx).Do(); err != nil {
			return Published{}, fmt.Errorf("failed to add tab %q: %w", tab, err)
		}
		logCtx.Info("Added tab.")
	}

	sheetRange := quoteTab(tab)
	if _, err := p.svc.Spreadsheets.Values.Clear(id, sheetRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return Published{}, fmt.Errorf("failed to clear tab %q: %w", tab, err)
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = c
		}
		values[i] = cells
	}
	_, err = p.svc.Spreadsheets.Values.Update(id, sheetRange+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return Published{}, fmt.Errorf("failed to write values to tab %q: %w", tab, err)
	}

	logCtx.Info("Spreadsheet updated.", "rows", len(rows))
	return Published{SpreadsheetID: id, URL: SpreadsheetURL(id), Created: created}, nil
}

func (p *SheetsPublisher) ensureSpreadsheet(ctx context.Context, id string) (*sheets.Spreadsheet, bool, error) {
	const fields = "spreadsheetId,sheets.properties.title"
	if id != "" {
		ss, err := p.svc.Spreadsheets.Get(id).Fields(fields).Context(ctx).Do()
		if err == nil {
			return ss, false, nil
		}
		if !isNotFound(err) {
			return nil, false, fmt.Errorf("failed to get spreadsheet %s: %w", id, err)
		}
	}

	ss, err := p.svc.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: p.title},
	}).Fields(fields).Context(ctx).Do()
	if err != nil {
		return nil, false, fmt.Errorf("failed to create spreadsheet: %w", err)
	}
	return ss, true, nil
}

// SpreadsheetURL is the browser address of a spreadsheet.
func SpreadsheetURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id
}

func hasTab(ss *sheets.Spreadsheet, tab string) bool {
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			return true
		}
	}
	return false
}

// quoteTab turns a tab title into an A1 sheet reference.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
