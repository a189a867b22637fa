package textract

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/authdocflow/internal/models"
)

// fakeRunner answers tool invocations from canned output keyed by tool name.
// For tesseract the key is "tesseract:<image base name>".
type fakeRunner struct {
	out   map[string]string
	fail  map[string]bool
	calls []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	key := name
	if name == "tesseract" {
		key = name + ":" + filepath.Base(args[0])
	}
	f.calls = append(f.calls, key)
	if f.fail[key] {
		return nil, []byte("boom"), errors.New("exit status 1")
	}
	return []byte(f.out[key]), nil, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAcquirer(r *fakeRunner) *Acquirer {
	a := New(Config{}, quietLogger())
	a.runner = r
	return a
}

func touch(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	return path
}

func writeDocx(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	fw, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = fw.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func TestAcquireDocxParagraphs(t *testing.T) {
	path := writeDocx(t, `
<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:t>Nome:</w:t></w:r><w:r><w:tab/><w:t>João Silva</w:t></w:r></w:p>
<w:p></w:p>
<w:p><w:r><w:t xml:space="preserve">Rota </w:t></w:r><w:r><w:t>7</w:t><w:br/><w:t>linha</w:t></w:r></w:p>`)

	a := newTestAcquirer(&fakeRunner{})
	got, err := a.Acquire(context.Background(), models.Document{Name: "test.docx", Kind: models.KindDOCX, Path: path})

	require.NoError(t, err)
	assert.Equal(t, models.ProvenanceNative, got.Provenance)
	assert.Equal(t, "Nome:\tJoão Silva\n\nRota 7\nlinha", got.Text)
}

func TestAcquireDocxWithoutTextIsEmpty(t *testing.T) {
	path := writeDocx(t, `<w:p></w:p><w:p><w:r><w:t>  </w:t></w:r></w:p>`)

	got, err := newTestAcquirer(&fakeRunner{}).Acquire(context.Background(),
		models.Document{Name: "test.docx", Kind: models.KindDOCX, Path: path})

	require.NoError(t, err)
	assert.Equal(t, models.EmptyText(), got)
}

func TestAcquireCorruptDocxIsAFault(t *testing.T) {
	path := touch(t, "broken.docx")

	_, err := newTestAcquirer(&fakeRunner{}).Acquire(context.Background(),
		models.Document{Name: "broken.docx", Kind: models.KindDOCX, Path: path})

	assert.Error(t, err)
}

func TestAcquireMissingFile(t *testing.T) {
	_, err := newTestAcquirer(&fakeRunner{}).Acquire(context.Background(),
		models.Document{Name: "gone.pdf", Kind: models.KindPDF, Path: filepath.Join(t.TempDir(), "gone.pdf")})

	assert.Error(t, err)
}

func TestAcquirePDFTextLayer(t *testing.T) {
	r := &fakeRunner{}
	a := newTestAcquirer(r)
	a.pageTexts = func(string) ([]string, error) { return []string{"Nome: Ana", "Rota 3"}, nil }
	a.pageCount = func(string) (int, error) {
		t.Fatal("OCR must not run when the text layer has content")
		return 0, nil
	}

	got, err := a.Acquire(context.Background(), models.Document{Name: "a.pdf", Kind: models.KindPDF, Path: touch(t, "a.pdf")})

	require.NoError(t, err)
	assert.Equal(t, models.AcquiredText{Text: "Nome: Ana\nRota 3", Provenance: models.ProvenanceNative}, got)
	assert.Empty(t, r.calls)
}

func TestAcquirePDFFallsBackToOCR(t *testing.T) {
	r := &fakeRunner{out: map[string]string{
		"tesseract:page-00001.png": "Nome: Maria\n",
		"tesseract:page-00002.png": "  \n",
		"tesseract:page-00003.png": "Rota 12\n",
	}}
	a := newTestAcquirer(r)
	a.pageTexts = func(string) ([]string, error) { return []string{" ", ""}, nil }
	a.pageCount = func(string) (int, error) { return 3, nil }

	got, err := a.Acquire(context.Background(), models.Document{Name: "scan.pdf", Kind: models.KindPDF, Path: touch(t, "scan.pdf")})

	require.NoError(t, err)
	assert.Equal(t, models.ProvenanceOCR, got.Provenance)
	assert.Equal(t, "Nome: Maria\n\nRota 12\n", got.Text)
	assert.Equal(t, []string{
		"pdftoppm", "tesseract:page-00001.png",
		"pdftoppm", "tesseract:page-00002.png",
		"pdftoppm", "tesseract:page-00003.png",
	}, r.calls)
}

func TestAcquirePDFUnreadableTextLayerFallsBackToOCR(t *testing.T) {
	r := &fakeRunner{
		out:  map[string]string{"tesseract:page-00002.png": "Órgão: DER"},
		fail: map[string]bool{"tesseract:page-00001.png": true},
	}
	a := newTestAcquirer(r)
	a.pageTexts = func(string) ([]string, error) { return nil, errors.New("malformed xref") }
	a.pageCount = func(string) (int, error) { return 2, nil }

	got, err := a.Acquire(context.Background(), models.Document{Name: "scan.pdf", Kind: models.KindPDF, Path: touch(t, "scan.pdf")})

	require.NoError(t, err)
	assert.Equal(t, models.AcquiredText{Text: "Órgão: DER", Provenance: models.ProvenanceOCR}, got)
}

func TestAcquirePDFOCRFailureIsEmpty(t *testing.T) {
	a := newTestAcquirer(&fakeRunner{})
	a.pageTexts = func(string) ([]string, error) { return nil, nil }
	a.pageCount = func(string) (int, error) { return 0, errors.New("not a pdf") }

	got, err := a.Acquire(context.Background(), models.Document{Name: "x.pdf", Kind: models.KindPDF, Path: touch(t, "x.pdf")})

	require.NoError(t, err)
	assert.Equal(t, models.EmptyText(), got)
}

func TestAcquireLegacyDoc(t *testing.T) {
	r := &fakeRunner{out: map[string]string{"antiword": "Nome: Pedro\n"}}
	got, err := newTestAcquirer(r).Acquire(context.Background(),
		models.Document{Name: "old.doc", Kind: models.KindLegacyDOC, Path: touch(t, "old.doc")})

	require.NoError(t, err)
	assert.Equal(t, models.AcquiredText{Text: "Nome: Pedro\n", Provenance: models.ProvenanceNative}, got)
}

func TestAcquireLegacyDocFailureIsEmpty(t *testing.T) {
	r := &fakeRunner{fail: map[string]bool{"antiword": true}}
	got, err := newTestAcquirer(r).Acquire(context.Background(),
		models.Document{Name: "old.doc", Kind: models.KindLegacyDOC, Path: touch(t, "old.doc")})

	require.NoError(t, err)
	assert.Equal(t, models.EmptyText(), got)
}

func TestTextLayerPagesRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("not a pdf ", 10)), 0o644))

	_, err := textLayerPages(path)
	assert.Error(t, err)
}
