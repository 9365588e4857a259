package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docstruct/internal/structure"
)

func TestMarkdownParser_Headings(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

## Section B
`
	p := &MarkdownParser{}
	stream, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stream.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", stream.Title)
	}

	want := []struct {
		kind  structure.Kind
		style string
		text  string
	}{
		{structure.KindHeading, "Title", "Title"},
		{structure.KindParagraph, "Normal", "Intro text."},
		{structure.KindHeading, "Heading 1", "Section A"},
		{structure.KindParagraph, "Normal", "Section A content."},
		{structure.KindHeading, "Heading 2", "Subsection A1"},
		{structure.KindHeading, "Heading 1", "Section B"},
	}
	if len(stream.Elements) != len(want) {
		t.Fatalf("expected %d elements, got %d", len(want), len(stream.Elements))
	}
	for i, w := range want {
		el := stream.Elements[i]
		if el.Kind != w.kind || el.Style != w.style || el.Text != w.text {
			t.Errorf("element[%d]: expected %s/%q/%q, got %s/%q/%q", i, w.kind, w.style, w.text, el.Kind, el.Style, el.Text)
		}
	}
}

func TestMarkdownParser_NestedLists(t *testing.T) {
	input := `- one
  - one.a
  - one.b
- two

1. first
2. second
`
	p := &MarkdownParser{}
	stream, err := p.Parse(strings.NewReader(input), "lists.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct {
		text  string
		numID int
		ilvl  int
	}{
		{"one", 1, 0},
		{"one.a", 1, 1},
		{"one.b", 1, 1},
		{"two", 1, 0},
		{"first", 2, 0},
		{"second", 2, 0},
	}
	if len(stream.Elements) != len(want) {
		t.Fatalf("expected %d elements, got %d", len(want), len(stream.Elements))
	}
	for i, w := range want {
		el := stream.Elements[i]
		numID, ilvl, ok := el.Numbering()
		if !ok {
			t.Fatalf("element[%d] %q has no numbering", i, el.Text)
		}
		if el.Text != w.text || numID != w.numID || ilvl != w.ilvl {
			t.Errorf("element[%d]: expected %q num=%d ilvl=%d, got %q num=%d ilvl=%d", i, w.text, w.numID, w.ilvl, el.Text, numID, ilvl)
		}
	}
}

func TestMarkdownParser_CodeQuoteAndImage(t *testing.T) {
	input := "> quoted words\n\n```\nGET /api/users\nPOST /api/users\n```\n\n![a chart](img/chart.PNG)\n"
	p := &MarkdownParser{}
	stream, err := p.Parse(strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stream.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(stream.Elements))
	}

	if q := stream.Elements[0]; q.Style != "Quote" || q.Text != "quoted words" {
		t.Errorf("expected quote, got %q/%q", q.Style, q.Text)
	}
	if c := stream.Elements[1]; c.Style != "Code" || c.Text != "GET /api/users\nPOST /api/users" {
		t.Errorf("expected code block, got %q/%q", c.Style, c.Text)
	}
	fig := stream.Elements[2]
	if fig.Kind != structure.KindFigure || fig.Picture == nil {
		t.Fatalf("expected figure, got %s", fig.Kind)
	}
	if fig.Picture.Name != "chart.PNG" || fig.Picture.Format != "png" || fig.Picture.Description != "a chart" {
		t.Errorf("unexpected picture %+v", *fig.Picture)
	}
}

func TestMarkdownParser_Table(t *testing.T) {
	input := "| Name | Qty |\n|------|-----|\n| apple | 3 |\n| pear | 5 |\n"
	p := &MarkdownParser{}
	stream, err := p.Parse(strings.NewReader(input), "t.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stream.Elements) != 1 || stream.Elements[0].Table == nil {
		t.Fatalf("expected one table element, got %d", len(stream.Elements))
	}
	rows := stream.Elements[0].Table.Rows
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if !rows[0][0].ColHeader || rows[1][0].ColHeader {
		t.Errorf("expected only the first row to be a header")
	}
	if rows[2][1].Text != "5" {
		t.Errorf("expected %q, got %q", "5", rows[2][1].Text)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	stream, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stream.Elements) != 0 {
		t.Errorf("expected 0 elements for empty input, got %d", len(stream.Elements))
	}
}

func TestMarkdownParser_TitleStripping(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"docs/plain.md", "plain"},
	}
	p := &MarkdownParser{}
	for _, tt := range tests {
		stream, err := p.Parse(strings.NewReader("text"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if stream.Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, stream.Title)
		}
	}
}

func TestMarkdownParser_SkipsBreaksAndReferences(t *testing.T) {
	input := "See [the docs][ref].\n\n---\n\n<div>raw</div>\n\n[ref]: https://example.com/docs\n\nAfter.\n"
	p := &MarkdownParser{}
	stream, err := p.Parse(strings.NewReader(input), "refs.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"See the docs.", "After."}
	if len(stream.Elements) != len(want) {
		t.Fatalf("expected %d elements, got %d", len(want), len(stream.Elements))
	}
	for i, w := range want {
		if stream.Elements[i].Text != w {
			t.Errorf("element[%d]: expected %q, got %q", i, w, stream.Elements[i].Text)
		}
	}
}
