package fields

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/authdocflow/internal/models"
)

func TestExtractBodyFields(t *testing.T) {
	text := `AUTORIZAÇÃO DE TRÁFEGO
Nome: João da Silva
Órgão: Secretaria de Transportes
Rota: 42
Ano de Autorização: 2020`

	rec := Extract(text, "qualquer.pdf")

	assert.Equal(t, "João da Silva", rec.Name)
	assert.Equal(t, "Secretaria de Transportes", rec.IssuingBody)
	assert.Equal(t, "42", rec.Route)
	assert.Equal(t, "2020", rec.AuthorizationDate)
	assert.Equal(t, "qualquer.pdf", rec.SourceFile)
}

func TestExtractIssuingBodyVariants(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Orgao - DER", "DER"},
		{"ÓRGÃO: Prefeitura", "Prefeitura"},
		{"dados\nórgão   ANTT\n", "ANTT"},
		{"Subórgão: X", models.NotFound},
	}
	for _, tt := range tests {
		rec := Extract(tt.text, "x.pdf")
		assert.Equal(t, tt.want, rec.IssuingBody, "text %q", tt.text)
	}
}

func TestExtractDatePrecedence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"long date wins over year label", "Ano: 2019\nemitido em 12 de Janeiro de 2021", "12 de janeiro de 2021"},
		{"year label", "Ano da Autorizacao - 2018", "2018"},
		{"accented year label", "Ano de Autorização: 2017", "2017"},
		{"upper case date is normalized", "10 DE MAIO DE 2022", "10 de maio de 2022"},
		{"no date", "Rota 3", models.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text, "x.pdf").AuthorizationDate)
		})
	}
}

func TestExtractRouteStopsAtLineEnd(t *testing.T) {
	rec := Extract("Rota: 15 Norte\nNome: Ana", "x.docx")
	assert.Equal(t, "15 Norte", rec.Route)
	assert.Equal(t, "Ana", rec.Name)
}

func TestExtractBodyWinsOverFilename(t *testing.T) {
	rec := Extract("Trecho autorizado: Rota 42", "Permissao ROTA 99 2020.pdf")
	assert.Equal(t, "42", rec.Route)
	assert.Equal(t, models.NotFound, rec.AuthorizationDate)
}

func TestExtractFallbackIsAllOrNothing(t *testing.T) {
	filename := "ORG_A-ORG_B-ORG_C-ORGD-João Silva, Maria Souza-ROTA12-2019-2023.docx"

	rec := Extract("Nome: Fulano de Tal", filename)

	assert.Equal(t, "Fulano de Tal", rec.Name)
	assert.Equal(t, models.NotFound, rec.Route)
	assert.Equal(t, models.NotFound, rec.IssuingBody)
	assert.Equal(t, models.NotFound, rec.AuthorizationDate)
}

func TestExtractScenarioBracketFilename(t *testing.T) {
	filename := "[ABC] João Silva - Rota 7.pdf"

	rec := Extract("Autorizado em 5 de março de 2021, Rota 7", filename)

	assert.Equal(t, models.Record{
		Name:              models.NotFound,
		IssuingBody:       models.NotFound,
		Route:             "7",
		AuthorizationDate: "5 de março de 2021",
		SourceFile:        filename,
	}, rec)
}

func TestExtractScenarioStructuralFallback(t *testing.T) {
	filename := "ORG_A-ORG_B-ORG_C-ORGD-João Silva, Maria Souza-ROTA12-2019-2023.docx"

	rec := Extract("", filename)

	assert.Equal(t, "ORGD", rec.IssuingBody)
	assert.Equal(t, "Maria Souza", rec.Name)
	assert.Equal(t, "12", rec.Route)
	assert.Equal(t, "2023", rec.AuthorizationDate)
}

func TestExtractFilenameLayouts(t *testing.T) {
	tests := []struct {
		filename string
		want     models.Record
	}{
		{
			filename: "[DER] Carlos Souza - Rota 7 - 2021.pdf",
			want: models.Record{
				Name: "Carlos Souza", IssuingBody: "DER", Route: "7",
				AuthorizationDate: "2021", SourceFile: "[DER] Carlos Souza - Rota 7 - 2021.pdf",
			},
		},
		{
			filename: "A-B-C-SEMOB-Transportes Lima-ROTA 3B.doc",
			want: models.Record{
				Name: "Transportes Lima", IssuingBody: "SEMOB", Route: "3B",
				AuthorizationDate: models.NotFound, SourceFile: "A-B-C-SEMOB-Transportes Lima-ROTA 3B.doc",
			},
		},
		{
			filename: "digitalizado.pdf",
			want: models.Record{
				Name: models.NotFound, IssuingBody: models.NotFound, Route: models.NotFound,
				AuthorizationDate: models.NotFound, SourceFile: "digitalizado.pdf",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract("   \n", tt.filename))
		})
	}
}

func TestExtractNeverReturnsEmptyFields(t *testing.T) {
	inputs := []struct{ text, filename string }{
		{"", ""},
		{"Nome:   ", "a-b-c-d-.pdf"},
		{"Rota:\n", "[] - Rota .pdf"},
		{"Órgão:\t", "---- .docx"},
		{strings.Repeat("x", 100), "a-b-c-d-e, -f.pdf"},
	}
	for _, in := range inputs {
		rec := Extract(in.text, in.filename)
		for _, v := range []string{rec.Name, rec.IssuingBody, rec.Route, rec.AuthorizationDate, rec.SourceFile} {
			require.NotEmpty(t, v)
			assert.Equal(t, strings.TrimSpace(v), v)
		}
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	text := "Nome: Ana\nRota 9\n1 de abril de 2020"
	filename := "A-B-C-D-E.pdf"
	assert.Equal(t, Extract(text, filename), Extract(text, filename))
	assert.Equal(t, Extract(text, filename), Cascade{}.Extract(text, filename))
}
