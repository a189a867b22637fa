package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Lllllllleong/authdocflow/internal/gcp"
	"github.com/Lllllllleong/authdocflow/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// export writes the table as XLSX to the local path requested by the caller
// and to the export bucket, whichever are configured. It returns the archive
// URI, if any.
func (f *ExtractionFunction) export(ctx context.Context, logCtx *slog.Logger, runID string, req *models.ExtractRequest, table models.Table) (string, error) {
	if req.ExportPath == "" && f.archiver == nil {
		return "", nil
	}

	buf, err := renderXLSX(req.TabName, table)
	if err != nil {
		return "", err
	}

	if req.ExportPath != "" {
		if err := os.WriteFile(req.ExportPath, buf.Bytes(), 0o644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", req.ExportPath, err)
		}
		logCtx.Info("Table exported.", "path", req.ExportPath)
	}

	if f.archiver == nil {
		return "", nil
	}
	uri, err := f.archiver.Archive(ctx, fmt.Sprintf("exports/%s.xlsx", runID), xlsxContentType, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return "", err
	}
	logCtx.Info("Table archived.", "uri", uri)
	return uri, nil
}

// renderXLSX lays the table out on a single sheet, header in row 1.
func renderXLSX(sheetName string, table models.Table) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := xlsxSheetName(sheetName)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet %q: %w", sheet, err)
	}

	for i, row := range table.Rows() {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	for i := range table.Schema.Columns() {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, 30)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render xlsx: %w", err)
	}
	return buf, nil
}

// xlsxSheetName drops the characters Excel rejects in sheet names and applies
// its 31 character limit.
func xlsxSheetName(name string) string {
	var out []rune
	for _, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			continue
		}
		out = append(out, r)
	}
	if len(out) > 31 {
		out = out[:31]
	}
	s := strings.Trim(string(out), "'")
	if s == "" {
		return "Dados"
	}
	return s
}

type bucketArchiver struct {
	client *storageHandle
	bucket string
}

func (a *bucketArchiver) Archive(ctx context.Context, objectName, contentType string, content io.Reader) (string, error) {
	client, err := a.client.get(ctx)
	if err != nil {
		return "", err
	}
	if err := gcp.SaveToGCSAtomically(ctx, client.Bucket(a.bucket), objectName, contentType, content); err != nil {
		return "", fmt.Errorf("failed to archive export: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", a.bucket, objectName), nil
}
