// Package pipeline runs acquisition, extraction and deduplication over a batch
// of documents.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/authdocflow/internal/fields"
	"github.com/Lllllllleong/authdocflow/internal/models"
)

// TextAcquirer produces the text of one document.
type TextAcquirer interface {
	Acquire(ctx context.Context, doc models.Document) (models.AcquiredText, error)
}

// FieldExtractor turns acquired text and a filename into a record.
type FieldExtractor interface {
	Extract(text, filename string) models.Record
}

// Progress receives one human-readable line per processed or skipped document.
type Progress interface {
	Log(ctx context.Context, line string)
}

// Result is the outcome of one run.
type Result struct {
	Table     models.Table
	Processed int
	Skipped   int
}

// Orchestrator processes documents strictly one after another.
type Orchestrator struct {
	acquirer  TextAcquirer
	extractor FieldExtractor
	schema    models.Schema
	progress  Progress
	logger    *slog.Logger
}

// New wires an Orchestrator. A nil extractor selects the default cascade.
func New(acq TextAcquirer, ext FieldExtractor, schema models.Schema, progress Progress, logger *slog.Logger) *Orchestrator {
	if ext == nil {
		ext = fields.Cascade{}
	}
	if progress == nil {
		progress = nopProgress{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		acquirer:  acq,
		extractor: ext,
		schema:    schema,
		progress:  progress,
		logger:    logger,
	}
}

// Run processes docs in order and returns the deduplicated table. Documents
// whose processing faults are logged and left out; the batch always completes.
func (o *Orchestrator) Run(ctx context.Context, docs []models.Document) Result {
	var res Result
	records := make([]models.Record, 0, len(docs))

	for _, doc := range docs {
		if !doc.Kind.Valid() {
			o.logger.Debug("Skipping unsupported file.", "document", doc.Name)
			o.progress.Log(ctx, fmt.Sprintf("Ignorado (formato não suportado): %s", doc.Name))
			res.Skipped++
			continue
		}

		rec, err := o.processOne(ctx, doc)
		if err != nil {
			o.logger.Error("Document processing failed.", "document", doc.Name, "documentId", doc.ID, "error", err)
			o.progress.Log(ctx, fmt.Sprintf("Erro ao processar %s: %v", doc.Name, err))
			res.Skipped++
			continue
		}
		records = append(records, rec)
		res.Processed++
		o.progress.Log(ctx, fmt.Sprintf("Processado: %s", doc.Name))
	}

	res.Table = models.Table{
		Schema:  o.schema,
		Records: fields.Dedupe(o.schema, records),
	}
	o.logger.Info("Batch processed.",
		"documents", len(docs),
		"processed", res.Processed,
		"skipped", res.Skipped,
		"records", len(res.Table.Records),
	)
	return res
}

// processOne turns a panic anywhere in acquisition or extraction into an error.
func (o *Orchestrator) processOne(ctx context.Context, doc models.Document) (rec models.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	text, err := o.acquirer.Acquire(ctx, doc)
	if err != nil {
		return models.Record{}, fmt.Errorf("acquire text: %w", err)
	}
	if text.Provenance == models.ProvenanceEmpty {
		o.logger.Warn("No text acquired, using filename only.", "document", doc.Name)
		o.progress.Log(ctx, fmt.Sprintf("Sem texto extraído: %s", doc.Name))
	}
	return o.extractor.Extract(text.Text, doc.Name), nil
}

type nopProgress struct{}

func (nopProgress) Log(context.Context, string) {}
