package textract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// extractDocx returns the text of every paragraph of word/document.xml,
// one paragraph per line, in document order.
func extractDocx(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	return docxParagraphs(rc)
}

func docxParagraphs(rd io.Reader) (string, error) {
	decoder := xml.NewDecoder(rd)

	var (
		paragraphs []string
		open       []*strings.Builder // nested paragraphs (text boxes) stack up
		runDepth   int
		inText     bool
	)
	current := func() *strings.Builder {
		if len(open) == 0 {
			return nil
		}
		return open[len(open)-1]
	}

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				open = append(open, &strings.Builder{})
			case "r":
				runDepth++
			case "t":
				inText = true
			case "tab":
				if b := current(); b != nil && runDepth > 0 {
					b.WriteByte('\t')
				}
			case "br", "cr":
				if b := current(); b != nil && runDepth > 0 {
					b.WriteByte('\n')
				}
			}

		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				if b := current(); b != nil {
					paragraphs = append(paragraphs, b.String())
					open = open[:len(open)-1]
				}
			case "r":
				if runDepth > 0 {
					runDepth--
				}
			case "t":
				inText = false
			}

		case xml.CharData:
			if b := current(); b != nil && inText {
				b.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
