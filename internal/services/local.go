package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Lllllllleong/authdocflow/internal/config"
	"github.com/Lllllllleong/authdocflow/internal/models"
	"github.com/Lllllllleong/authdocflow/internal/pipeline"
	"github.com/Lllllllleong/authdocflow/internal/textract"
)

// LocalDocuments lists the regular files directly inside dir, sorted by name.
func LocalDocuments(dir string) ([]models.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var docs []models.Document
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		kind, _ := models.KindFromName(e.Name())
		docs = append(docs, models.Document{
			Name: e.Name(),
			Kind: kind,
			Path: filepath.Join(dir, e.Name()),
		})
	}
	return docs, nil
}

// ProcessLocal extracts the documents of a local directory and writes the
// table to xlsxPath. Nothing leaves the machine.
func ProcessLocal(ctx context.Context, cfg *config.Config, dir, xlsxPath string, out io.Writer) (models.Table, error) {
	logCtx := slog.With("dir", dir)

	docs, err := LocalDocuments(dir)
	if err != nil {
		return models.Table{}, err
	}

	progress := newProgressLog("local", nopRecorder{}, out, logCtx)
	acquirer := textract.New(cfg.Textract(), logCtx)
	schema := models.Schema{IncludeSourceFile: cfg.IncludeSourceFile}
	result := pipeline.New(acquirer, nil, schema, progress, logCtx).Run(ctx, docs)

	buf, err := renderXLSX("Dados", result.Table)
	if err != nil {
		return models.Table{}, err
	}
	if err := os.WriteFile(xlsxPath, buf.Bytes(), 0o644); err != nil {
		return models.Table{}, fmt.Errorf("failed to write %s: %w", xlsxPath, err)
	}
	progress.Log(ctx, fmt.Sprintf("Concluído! Dados extraídos para %s", xlsxPath))
	return result.Table, nil
}
