package fields

import "github.com/Lllllllleong/authdocflow/internal/models"

// Dedupe drops every record whose schema columns all equal those of an earlier
// record. Survivors keep their relative order. Values are compared verbatim.
func Dedupe(schema models.Schema, records []models.Record) []models.Record {
	seen := make(map[models.Record]struct{}, len(records))
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		key := r
		if !schema.IncludeSourceFile {
			key.SourceFile = ""
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
