// Package parser turns source files into the flat element stream the
// structure builder consumes.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docstruct/internal/structure"
)

// Stream is the linear content of one source document.
type Stream struct {
	Title    string
	Elements []structure.Element
}

// Parser converts raw document bytes into an element stream.
type Parser interface {
	Parse(r io.Reader, filename string) (*Stream, error)
}

// UnsupportedFormatError reports a file extension no parser handles.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file extension: %s", e.Ext)
}

// Options tune parser behavior.
type Options struct {
	// FallbackPdftotext shells out to pdftotext when the PDF library fails.
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, &UnsupportedFormatError{Ext: ext}
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// baseTitle strips the directory and extension from a filename.
func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func intPtr(n int) *int {
	return &n
}

func paragraph(style, text string) structure.Element {
	return structure.Element{Kind: structure.KindParagraph, Style: style, Text: text}
}

// headingStyle maps an HTML/Markdown heading rank to a style name. Rank 1
// is the document title; deeper ranks become Heading 1 and below.
func headingStyle(rank int) string {
	if rank <= 1 {
		return "Title"
	}
	return fmt.Sprintf("Heading %d", rank-1)
}
