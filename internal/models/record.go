package models

import "strings"

// NotFound is the cell value of every field the extractor could not recover.
const NotFound = "Não encontrado"

// Record holds the fields extracted from a single document.
type Record struct {
	Name              string
	IssuingBody       string
	Route             string
	AuthorizationDate string
	SourceFile        string
}

// OrNotFound trims v and substitutes the sentinel for an empty result.
func OrNotFound(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return NotFound
	}
	return v
}

// Schema is the column layout of a published table.
type Schema struct {
	IncludeSourceFile bool
}

// Columns returns the header row.
func (s Schema) Columns() []string {
	cols := []string{"Nome", "Órgão", "Rota", "Ano de Autorização"}
	if s.IncludeSourceFile {
		cols = append(cols, "Arquivo")
	}
	return cols
}

// Values returns the cells of r in column order.
func (s Schema) Values(r Record) []string {
	vals := []string{r.Name, r.IssuingBody, r.Route, r.AuthorizationDate}
	if s.IncludeSourceFile {
		vals = append(vals, r.SourceFile)
	}
	return vals
}

// Table is the ordered result of one pipeline run.
type Table struct {
	Schema  Schema
	Records []Record
}

// Rows returns the header followed by one row per record.
func (t Table) Rows() [][]string {
	rows := make([][]string, 0, len(t.Records)+1)
	rows = append(rows, t.Schema.Columns())
	for _, r := range t.Records {
		rows = append(rows, t.Schema.Values(r))
	}
	return rows
}

// Clone returns a copy that shares no backing array with t.
func (t Table) Clone() Table {
	recs := make([]Record, len(t.Records))
	copy(recs, t.Records)
	return Table{Schema: t.Schema, Records: recs}
}
