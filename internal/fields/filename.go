package fields

import (
	"regexp"
	"strings"

	"github.com/Lllllllleong/authdocflow/internal/models"
)

var (
	reFileRoute   = regexp.MustCompile(`(?i)ROTA\s*([A-Za-z0-9]+)`)
	reFileYear    = regexp.MustCompile(`\b\d{4}\b`)
	reTrailingTag = regexp.MustCompile(`(?i)^\s*(?:ROTA\s*[A-Za-z0-9]+|\d{4})\s*$`)
	reBracket     = regexp.MustCompile(`(?i)^\s*\[(.*?)\]\s*(.*?)\s*-\s*Rota`)
)

type filenameFields struct {
	name        string
	issuingBody string
	route       string
	year        string
}

// parseFilename reads fields from names such as
//
//	ORG_A-ORG_B-ORG_C-ORGD-Holder, Name-ROTA12-2019-2023.pdf
//	[ORGD] Name - Rota 7.pdf
//
// Route and year are searched in the whole name regardless of layout.
func parseFilename(filename string) filenameFields {
	base := filename
	if _, ok := models.KindFromName(filename); ok {
		base = filename[:strings.LastIndex(filename, ".")]
	}
	norm := strings.ReplaceAll(base, "_", " ")

	var f filenameFields
	if parts := strings.Split(norm, "-"); len(parts) >= 4 {
		f.issuingBody = strings.TrimSpace(parts[3])

		rest := parts[4:]
		for len(rest) > 0 && reTrailingTag.MatchString(rest[len(rest)-1]) {
			rest = rest[:len(rest)-1]
		}
		remainder := strings.TrimSpace(strings.Join(rest, "-"))
		if _, after, ok := strings.Cut(remainder, ","); ok {
			f.name = strings.TrimSpace(after)
		} else {
			f.name = remainder
		}
	} else if m := reBracket.FindStringSubmatch(norm); m != nil {
		f.issuingBody = strings.TrimSpace(m[1])
		f.name = strings.TrimSpace(m[2])
	}

	if m := reFileRoute.FindStringSubmatch(norm); m != nil {
		f.route = m[1]
	}
	// The rightmost 4-digit group is taken as the year, even when it is a serial number.
	if years := reFileYear.FindAllString(norm, -1); len(years) > 0 {
		f.year = years[len(years)-1]
	}
	return f
}
