package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Lllllllleong/authdocflow/internal/config"
	"github.com/Lllllllleong/authdocflow/internal/models"
)

func TestLocalDocuments(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.docx", "a.PDF", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755))

	docs, err := LocalDocuments(dir)
	require.NoError(t, err)

	require.Len(t, docs, 3)
	assert.Equal(t, models.Document{Name: "a.PDF", Kind: models.KindPDF, Path: filepath.Join(dir, "a.PDF")}, docs[0])
	assert.Equal(t, models.KindDOCX, docs[1].Kind)
	assert.False(t, docs[2].Kind.Valid())
}

func TestProcessLocal(t *testing.T) {
	dir := t.TempDir()
	doc := docxBytes(t, "Nome: Carla Dias", "Órgão: SEMOB", "Rota 22", "Ano: 2019")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "carla.docx"), []byte(doc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notas.txt"), []byte("x"), 0o644))

	cfg := &config.Config{DownloadWorkers: 1, OCRDPI: 72, RunsCollection: "runs"}
	out := filepath.Join(t.TempDir(), "saida.xlsx")
	var progress bytes.Buffer

	table, err := ProcessLocal(context.Background(), cfg, dir, out, &progress)
	require.NoError(t, err)

	require.Len(t, table.Records, 1)
	assert.Equal(t, "Carla Dias", table.Records[0].Name)
	assert.Contains(t, progress.String(), "Ignorado (formato não suportado): notas.txt")
	assert.Contains(t, progress.String(), "Concluído!")

	x, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer x.Close()
	rows, err := x.GetRows("Dados")
	require.NoError(t, err)
	assert.Equal(t, []string{"Carla Dias", "SEMOB", "22", "2019"}, rows[1])
}
