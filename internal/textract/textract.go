// Package textract turns downloaded documents into plain text.
//
// DOCX is read natively, legacy DOC goes through an external converter and
// PDF uses its text layer, falling back to OCR of rendered pages when the
// text layer is empty or unreadable.
package textract

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Lllllllleong/authdocflow/internal/models"
)

// Config names the external tools and OCR settings.
type Config struct {
	Pdftoppm      string // if empty -> "pdftoppm"
	Tesseract     string // if empty -> "tesseract"
	TesseractLang string // default "por"
	DocConverter  string // legacy .doc converter, default "antiword"
	DPI           int    // page rasterization; default 72, the native PDF resolution
}

// Acquirer produces the best-effort text of a document.
type Acquirer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	pageTexts func(path string) ([]string, error)
	pageCount func(path string) (int, error)
}

// New returns an Acquirer backed by the real external tools.
func New(cfg Config, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "por"
	}
	if cfg.DocConverter == "" {
		cfg.DocConverter = "antiword"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 72
	}
	return &Acquirer{
		cfg:       cfg,
		runner:    execRunner{},
		logger:    logger,
		pageTexts: textLayerPages,
		pageCount: pdfPageCount,
	}
}

// Acquire returns the text of doc. Failures of individual tiers are logged and
// resolve to empty text; an error means the document itself is unusable.
func (a *Acquirer) Acquire(ctx context.Context, doc models.Document) (models.AcquiredText, error) {
	if _, err := os.Stat(doc.Path); err != nil {
		return models.EmptyText(), fmt.Errorf("stat %s: %w", doc.Path, err)
	}
	logCtx := a.logger.With("document", doc.Name, "kind", doc.Kind)

	switch doc.Kind {
	case models.KindDOCX:
		text, err := extractDocx(doc.Path)
		if err != nil {
			return models.EmptyText(), fmt.Errorf("read docx %s: %w", doc.Name, err)
		}
		return models.NewAcquiredText(text, models.ProvenanceNative), nil
	case models.KindLegacyDOC:
		return a.acquireDoc(ctx, logCtx, doc.Path), nil
	case models.KindPDF:
		return a.acquirePDF(ctx, logCtx, doc.Path), nil
	default:
		return models.EmptyText(), fmt.Errorf("unsupported document kind %q", doc.Kind)
	}
}
