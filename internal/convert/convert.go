// Package convert runs one source file through format detection, parsing
// and structure building.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docstruct/internal/doctree"
	"github.com/dgallion1/docstruct/internal/parser"
	"github.com/dgallion1/docstruct/internal/structure"
)

// ErrEmptyInput is returned for a zero-byte upload.
var ErrEmptyInput = errors.New("empty input")

// Options configures a Converter.
type Options struct {
	Parser    parser.Options
	Structure structure.Options
	Logger    *slog.Logger
}

// Result is the outcome of one conversion.
type Result struct {
	Document *doctree.Document
	Warnings []structure.Warning
	Format   string // lower-case extension without the dot
	Elements int    // elements read from the source
	Duration time.Duration
	// ParseError is set when the source could not be read. Document is then
	// empty.
	ParseError error
}

// Converter is safe for concurrent use; every call builds with its own
// structure.Builder.
type Converter struct {
	opts Options
	log  *slog.Logger
}

func New(opts Options) *Converter {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Converter{opts: opts, log: log}
}

// Convert reads the content of filename from r and builds its document.
// Unsupported extensions and empty input are errors; a file that fails to
// parse yields an empty document and a nil error.
func (c *Converter) Convert(ctx context.Context, r io.Reader, filename string) (*Result, error) {
	start := time.Now()
	log := c.log.With("filename", filename)

	p, err := parser.ForFile(filename, c.opts.Parser)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Format: format(filename)}
	log = log.With("format", res.Format)

	stream, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		res.Document = doctree.New(title(filename))
		res.ParseError = err
		res.Duration = time.Since(start)
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := c.opts.Structure
	opts.Logger = log
	res.Document = doctree.New(stream.Title)
	res.Elements = len(stream.Elements)
	res.Warnings = structure.Build(res.Document, stream.Elements, opts)
	res.Duration = time.Since(start)

	log.Info("converted document",
		"elements", res.Elements,
		"nodes", res.Document.Len(),
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func format(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

func title(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
