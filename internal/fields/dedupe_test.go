package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lllllllleong/authdocflow/internal/models"
)

func rec(name, route, file string) models.Record {
	return models.Record{
		Name:              name,
		IssuingBody:       "DER",
		Route:             route,
		AuthorizationDate: "2021",
		SourceFile:        file,
	}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	in := []models.Record{
		rec("Ana", "1", "a.pdf"),
		rec("Bia", "2", "b.pdf"),
		rec("Ana", "1", "c.pdf"),
		rec("Caio", "3", "d.pdf"),
		rec("Bia", "2", "e.pdf"),
	}

	out := Dedupe(models.Schema{}, in)

	assert.Equal(t, []models.Record{in[0], in[1], in[3]}, out)
}

func TestDedupeSourceColumnMakesRowsDistinct(t *testing.T) {
	in := []models.Record{
		rec("Ana", "1", "a.pdf"),
		rec("Ana", "1", "b.pdf"),
		rec("Ana", "1", "a.pdf"),
	}

	out := Dedupe(models.Schema{IncludeSourceFile: true}, in)

	assert.Equal(t, in[:2], out)
}

func TestDedupeIsExact(t *testing.T) {
	in := []models.Record{
		rec("Ana", "1", "a.pdf"),
		rec("ana", "1", "a.pdf"),
		rec("Ana ", "1", "a.pdf"),
	}
	assert.Len(t, Dedupe(models.Schema{}, in), 3)
}

func TestDedupeIdempotent(t *testing.T) {
	in := []models.Record{
		rec("Ana", "1", "a.pdf"),
		rec("Ana", "1", "a.pdf"),
		rec("Bia", "2", "b.pdf"),
		rec("Ana", "1", "a.pdf"),
	}
	once := Dedupe(models.Schema{}, in)
	twice := Dedupe(models.Schema{}, once)

	assert.Equal(t, once, twice)
	assert.LessOrEqual(t, len(once), len(in))
}

func TestDedupeEmpty(t *testing.T) {
	assert.Empty(t, Dedupe(models.Schema{}, nil))
}
