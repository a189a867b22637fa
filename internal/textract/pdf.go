package textract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Lllllllleong/authdocflow/internal/models"
)

// acquirePDF tries the text layer first and only OCRs when it produced nothing.
func (a *Acquirer) acquirePDF(ctx context.Context, logCtx *slog.Logger, path string) models.AcquiredText {
	pages, err := a.pageTexts(path)
	if err != nil {
		logCtx.Warn("PDF text layer unreadable, falling back to OCR.", "error", err)
	} else if text := strings.Join(pages, "\n"); strings.TrimSpace(text) != "" {
		return models.NewAcquiredText(text, models.ProvenanceNative)
	} else {
		logCtx.Info("PDF has no text layer, falling back to OCR.", "pages", len(pages))
	}

	text, err := a.ocrPDF(ctx, logCtx, path)
	if err != nil {
		logCtx.Error("OCR of PDF failed.", "error", err)
		return models.EmptyText()
	}
	return models.NewAcquiredText(text, models.ProvenanceOCR)
}

// textLayerPages returns the plain text of each page that has any.
// The reader panics on some malformed files, so panics count as failures.
func textLayerPages(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	for i := 1; i <= r.NumPage(); i++ {
		if text, ok := pageText(r, i); ok {
			pages = append(pages, text)
		}
	}
	return pages, nil
}

func pageText(r *pdf.Reader, n int) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()
	p := r.Page(n)
	if p.V.IsNull() {
		return "", false
	}
	text, err := p.GetPlainText(nil)
	if err != nil || text == "" {
		return "", false
	}
	return text, true
}

func pdfPageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(f, conf)
}

// ocrPDF renders each page and runs tesseract on it. Pages that fail or read
// as blank are left out.
func (a *Acquirer) ocrPDF(ctx context.Context, logCtx *slog.Logger, path string) (string, error) {
	n, err := a.pageCount(path)
	if err != nil {
		return "", fmt.Errorf("count pages: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "authdoc-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var texts []string
	for page := 1; page <= n; page++ {
		text, err := a.ocrPage(ctx, path, tmpDir, page)
		if err != nil {
			logCtx.Warn("OCR page skipped.", "page", page, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		texts = append(texts, text)
	}
	logCtx.Debug("OCR finished.", "pages", n, "pagesWithText", len(texts))
	return strings.Join(texts, "\n"), nil
}

func (a *Acquirer) ocrPage(ctx context.Context, path, dir string, page int) (string, error) {
	prefix := filepath.Join(dir, fmt.Sprintf("page-%05d", page))
	p := strconv.Itoa(page)

	// pdftoppm -r <dpi> -f <n> -l <n> -png -singlefile <in.pdf> <prefix>  ->  <prefix>.png
	_, errb, err := a.runner.Run(ctx, a.cfg.Pdftoppm,
		"-r", strconv.Itoa(a.cfg.DPI), "-f", p, "-l", p, "-png", "-singlefile", path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	// tesseract <image> stdout -l <lang>
	out, errb, err := a.runner.Run(ctx, a.cfg.Tesseract, prefix+".png", "stdout", "-l", a.cfg.TesseractLang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
