package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dgallion1/docstruct/internal/chunker"
	"github.com/dgallion1/docstruct/internal/convert"
	"github.com/dgallion1/docstruct/internal/parser"
	"github.com/dgallion1/docstruct/internal/structure"
)

const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
	formatHTML     = "html"
	formatChunks   = "chunks"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("docstruct", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", formatJSON, "Output: json|markdown|html|chunks")
	unknownStyles := fs.String("unknown-styles", "paragraph", "Unrecognized paragraph styles: paragraph|skip")
	keepEmpty := fs.Bool("keep-empty", false, "Keep empty paragraphs as nodes")
	pdftotext := fs.Bool("pdftotext", true, "Fall back to pdftotext for unreadable PDFs")
	chunkSize := fs.Int("chunk-size", 1500, "Target chunk size in tokens (chunks output)")
	overlap := fs.Int("overlap", 200, "Chunk overlap in tokens (chunks output)")
	minChunk := fs.Int("min-chunk", 100, "Smallest chunk to emit in tokens (chunks output)")
	verbose := fs.Bool("v", false, "Log conversion details to stderr")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: docstruct [options] <input-file>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}
	inputFile := fs.Arg(0)

	*format = strings.ToLower(*format)
	switch *format {
	case formatJSON, formatMarkdown, formatHTML, formatChunks:
	default:
		fmt.Fprintf(stderr, "Invalid format %q\n", *format)
		return 2
	}
	policy, err := structure.ParseUnknownStylePolicy(*unknownStyles)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid -unknown-styles: %v\n", err)
		return 2
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	f, err := os.Open(inputFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading file: %v\n", err)
		return 1
	}
	defer f.Close()

	conv := convert.New(convert.Options{
		Parser:    parser.Options{FallbackPdftotext: *pdftotext},
		Structure: structure.Options{UnknownStyles: policy, KeepEmpty: *keepEmpty},
		Logger:    log,
	})
	res, err := conv.Convert(context.Background(), f, inputFile)
	if err != nil {
		var unsupported *parser.UnsupportedFormatError
		switch {
		case errors.As(err, &unsupported):
			fmt.Fprintf(stderr, "Unsupported file type %q\n", unsupported.Ext)
		case errors.Is(err, convert.ErrEmptyInput):
			fmt.Fprintf(stderr, "Input file is empty\n")
		default:
			fmt.Fprintf(stderr, "Error converting file: %v\n", err)
		}
		return 1
	}
	if res.ParseError != nil {
		fmt.Fprintf(stderr, "Warning: could not parse %s: %v\n", inputFile, res.ParseError)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "Warning: %s: %s\n", w.Type, w.Message)
	}

	doc := res.Document
	switch *format {
	case formatMarkdown:
		err = doc.ExportMarkdown(stdout)
	case formatHTML:
		err = doc.ExportHTML(stdout)
	case formatChunks:
		chunks := chunker.ChunkDocument(doc, chunker.Config{ChunkSize: *chunkSize, ChunkOverlap: *overlap, MinChunk: *minChunk})
		err = writeJSON(stdout, chunks)
	default:
		err = writeJSON(stdout, doc)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}
	return 0
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
