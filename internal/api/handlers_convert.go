package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/docstruct/internal/chunker"
	"github.com/dgallion1/docstruct/internal/convert"
	"github.com/dgallion1/docstruct/internal/doctree"
	"github.com/dgallion1/docstruct/internal/parser"
	"github.com/dgallion1/docstruct/internal/pipeline"
	"github.com/dgallion1/docstruct/internal/structure"
)

// Output formats for conversion results.
const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
	formatHTML     = "html"
	formatChunks   = "chunks"
)

func validFormat(f string) bool {
	switch f {
	case formatJSON, formatMarkdown, formatHTML, formatChunks:
		return true
	}
	return false
}

// outputFormat reads ?format=, defaulting to json.
func outputFormat(r *http.Request) (string, error) {
	f := strings.ToLower(r.URL.Query().Get("format"))
	if f == "" {
		return formatJSON, nil
	}
	if !validFormat(f) {
		return "", fmt.Errorf("unknown format %q (want json, markdown, html or chunks)", f)
	}
	return f, nil
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	format, err := outputFormat(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename, data, status, err := s.readUpload(header.Filename, file)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	res, err := s.orchestrator.Converter().Convert(r.Context(), bytes.NewReader(data), filename)
	if err != nil {
		s.orchestrator.Stats().Record(pipeline.Outcome{Failed: true})
		writeConvertError(w, err)
		return
	}
	s.orchestrator.Stats().Record(pipeline.Outcome{
		Format:     res.Format,
		DurationMs: res.Duration.Milliseconds(),
		Warnings:   len(res.Warnings),
		Failed:     res.ParseError != nil,
	})
	if title := r.FormValue("title"); title != "" {
		res.Document.Name = title
	}

	s.writeResult(w, r, res, format)
}

// readUpload sanitizes the filename, checks the extension and reads at most
// MaxUploadBytes. On failure it returns the HTTP status to answer with.
func (s *Server) readUpload(name string, f multipart.File) (string, []byte, int, error) {
	filename := sanitizeFilename(name)
	if !parser.IsSupportedExtension(filename) {
		return filename, nil, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, http.StatusInternalServerError, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return filename, nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	if len(data) == 0 {
		return filename, nil, http.StatusBadRequest, convert.ErrEmptyInput
	}
	return filename, data, 0, nil
}

func writeConvertError(w http.ResponseWriter, err error) {
	var unsupported *parser.UnsupportedFormatError
	switch {
	case errors.Is(err, convert.ErrEmptyInput), errors.As(err, &unsupported):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		jsonError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
	}
}

// convertResponse is the JSON body for format=json.
type convertResponse struct {
	Title      string              `json:"title"`
	Format     string              `json:"format"`
	Elements   int                 `json:"elements"`
	Nodes      int                 `json:"nodes"`
	Empty      bool                `json:"empty"`
	ParseError string              `json:"parse_error,omitempty"`
	Warnings   []structure.Warning `json:"warnings"`
	Document   *doctree.DocTree    `json:"document"`
}

// writeResult renders a conversion result in the requested format.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, res *convert.Result, format string) {
	doc := res.Document
	switch format {
	case formatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		if err := doc.ExportMarkdown(w); err != nil {
			s.log.Error("markdown export failed", "error", err)
		}
	case formatHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := doc.ExportHTML(w); err != nil {
			s.log.Error("html export failed", "error", err)
		}
	case formatChunks:
		cfg := s.chunkConfig(r)
		chunks := chunker.ChunkDocument(doc, cfg)
		if chunks == nil {
			chunks = []doctree.Chunk{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"title":  doc.Name,
			"chunks": chunks,
		})
	default:
		resp := convertResponse{
			Title:    doc.Name,
			Format:   res.Format,
			Elements: res.Elements,
			Nodes:    doc.Len(),
			Empty:    doc.IsEmpty(),
			Warnings: res.Warnings,
			Document: doc.Tree(),
		}
		if resp.Warnings == nil {
			resp.Warnings = []structure.Warning{}
		}
		if res.ParseError != nil {
			resp.ParseError = res.ParseError.Error()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// chunkConfig applies chunk_size, overlap and min_chunk query overrides to
// the configured defaults.
func (s *Server) chunkConfig(r *http.Request) chunker.Config {
	cfg := chunker.Config{
		ChunkSize:    s.cfg.DefaultChunkSize,
		ChunkOverlap: s.cfg.DefaultChunkOverlap,
		MinChunk:     chunker.DefaultConfig().MinChunk,
	}
	q := r.URL.Query()
	if n, err := strconv.Atoi(q.Get("chunk_size")); err == nil && n > 0 {
		cfg.ChunkSize = n
	}
	if n, err := strconv.Atoi(q.Get("overlap")); err == nil && n > 0 {
		cfg.ChunkOverlap = n
	}
	if n, err := strconv.Atoi(q.Get("min_chunk")); err == nil && n > 0 {
		cfg.MinChunk = n
	}
	return cfg
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
