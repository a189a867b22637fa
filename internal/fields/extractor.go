// Package fields recovers the name, issuing body, route and authorization
// date of an authorization document from its text and filename.
//
// Body text always wins. The filename is only consulted when no field at all
// matched in the body, and then it supplies every field it can.
package fields

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Lllllllleong/authdocflow/internal/models"
)

var (
	reName  = regexp.MustCompile(`(?i)Nome\s*[:\-]?\s*(.+)`)
	reBody  = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])[OÓ]rg[aã]o\s*[:\-]?\s*(.+)`)
	reRoute = regexp.MustCompile(`(?i)Rota\s*[:\-]?\s*([\p{L}\p{N}_ \t]+)`)
	reDate  = regexp.MustCompile(`(?i)(\d{1,2}º?\s+de\s+\p{L}+?\s+de\s+\d{4})`)
	reYear  = regexp.MustCompile(`(?i)(?:Ano\s+d[ea]\s+Autoriza[çc][ãa]o|Ano)\s*[:\-]?\s*(\d{4})`)
)

// Cascade is the field extractor used by the pipeline.
type Cascade struct{}

// Extract implements the pipeline's extractor contract.
func (Cascade) Extract(text, filename string) models.Record {
	return Extract(text, filename)
}

// Extract applies the rule cascade to the acquired text and the filename.
// It is a pure function: unmatched fields become models.NotFound.
func Extract(text, filename string) models.Record {
	name := firstGroup(reName, text)
	body := firstGroup(reBody, text)
	route := firstGroup(reRoute, text)
	date := authorizationDate(text)

	if name == "" && body == "" && route == "" && date == "" {
		fn := parseFilename(filename)
		name, body, route, date = fn.name, fn.issuingBody, fn.route, fn.year
	}

	return models.Record{
		Name:              models.OrNotFound(name),
		IssuingBody:       models.OrNotFound(body),
		Route:             models.OrNotFound(route),
		AuthorizationDate: models.OrNotFound(date),
		SourceFile:        models.OrNotFound(filename),
	}
}

// authorizationDate prefers a long-form date anywhere in the text over a
// labelled year.
func authorizationDate(text string) string {
	if d := firstGroup(reDate, text); d != "" {
		return capitalize(d)
	}
	return firstGroup(reYear, text)
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
