package models

import (
	"path/filepath"
	"strings"
)

// Kind is the declared format of an input document.
type Kind string

const (
	KindPDF       Kind = "PDF"
	KindDOCX      Kind = "DOCX"
	KindLegacyDOC Kind = "LEGACY_DOC"
)

// Valid reports whether k is one of the processed kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPDF, KindDOCX, KindLegacyDOC:
		return true
	}
	return false
}

// KindFromName infers the document kind from the file extension.
// ok is false for every extension the pipeline does not process.
func KindFromName(name string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF, true
	case ".docx":
		return KindDOCX, true
	case ".doc":
		return KindLegacyDOC, true
	default:
		return "", false
	}
}

// Document is a single input file that has already been materialized locally.
type Document struct {
	ID   string // storage id in the remote file store, empty for local files
	Name string // original filename; fields are extracted from it
	Kind Kind
	Path string // local path of the downloaded content
}

// Provenance tells which acquisition tier produced a text.
type Provenance string

const (
	ProvenanceNative Provenance = "NATIVE_LAYER"
	ProvenanceOCR    Provenance = "OCR"
	ProvenanceEmpty  Provenance = "EMPTY"
)

// AcquiredText is the plain text recovered from one document.
type AcquiredText struct {
	Text       string
	Provenance Provenance
}

// EmptyText is the result of an acquisition where no tier found content.
func EmptyText() AcquiredText {
	return AcquiredText{Provenance: ProvenanceEmpty}
}

// NewAcquiredText tags text with its provenance, collapsing blank text to EMPTY.
func NewAcquiredText(text string, p Provenance) AcquiredText {
	if strings.TrimSpace(text) == "" {
		return EmptyText()
	}
	return AcquiredText{Text: text, Provenance: p}
}
