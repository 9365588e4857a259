package parser

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/docstruct/internal/doctree"
	"github.com/dgallion1/docstruct/internal/structure"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Stream, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(src))

	m := &mdReader{src: src}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		m.block(n, "Normal")
	}
	return &Stream{Title: baseTitle(filename), Elements: m.elements}, nil
}

type mdReader struct {
	src      []byte
	elements []structure.Element
	lists    int // numbering ids handed out so far
}

func (m *mdReader) emit(el structure.Element) {
	m.elements = append(m.elements, el)
}

// block emits the elements of one block node. style is the paragraph style
// for plain text at this position ("Quote" inside block quotes).
func (m *mdReader) block(n ast.Node, style string) {
	switch node := n.(type) {
	case *ast.Heading:
		m.emit(structure.Element{Kind: structure.KindHeading, Tag: "heading", Style: headingStyle(node.Level), Text: inlineText(node, m.src)})
	case *ast.Paragraph, *ast.TextBlock:
		m.paragraph(n, style)
	case *ast.Blockquote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			m.block(c, "Quote")
		}
	case *ast.List:
		m.lists++
		m.list(node, m.lists, 0)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		m.emit(paragraph("Code", strings.TrimRight(blockLines(n, m.src), "\n")))
	case *east.Table:
		m.emit(structure.Element{Kind: structure.KindTable, Tag: "table", Table: m.table(node)})
	case *ast.ThematicBreak, *ast.HTMLBlock:
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			m.block(c, style)
		}
	}
}

// paragraph emits the paragraph text, then one figure per image in it.
func (m *mdReader) paragraph(n ast.Node, style string) {
	images := collectImages(n)
	if t := inlineText(n, m.src); t != "" || len(images) == 0 {
		m.emit(paragraph(style, t))
	}
	for _, img := range images {
		m.emit(structure.Element{Kind: structure.KindFigure, Tag: "image", Picture: m.picture(img)})
	}
}

func (m *mdReader) picture(img *ast.Image) *doctree.PictureData {
	dest := string(img.Destination)
	pic := &doctree.PictureData{
		Name:        path.Base(dest),
		Description: inlineText(img, m.src),
	}
	if ext := strings.TrimPrefix(path.Ext(dest), "."); ext != "" {
		pic.Format = strings.ToLower(ext)
	}
	return pic
}

// list emits one list item per entry. Each top-level list gets its own
// numbering id; nested lists share it with a deeper indent.
func (m *mdReader) list(list *ast.List, numID, depth int) {
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		var parts []string
		var nested []*ast.List
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			switch cn := c.(type) {
			case *ast.List:
				nested = append(nested, cn)
			default:
				if t := inlineText(c, m.src); t != "" {
					parts = append(parts, t)
				}
			}
		}
		m.emit(structure.Element{
			Kind:  structure.KindListItem,
			Tag:   "li",
			Style: "List Paragraph",
			Text:  strings.Join(parts, "\n"),
			NumID: intPtr(numID),
			Ilvl:  intPtr(depth),
		})
		for _, sub := range nested {
			m.list(sub, numID, depth+1)
		}
	}
}

func (m *mdReader) table(t *east.Table) *structure.TableSpec {
	spec := &structure.TableSpec{}
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		_, header := row.(*east.TableHeader)
		var cells []structure.CellSpec
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, structure.CellSpec{
				Text:      inlineText(c, m.src),
				ColSpan:   1,
				ColHeader: header,
			})
		}
		spec.Rows = append(spec.Rows, cells)
	}
	return spec
}

// inlineText flattens the inline content under n. Images contribute
// nothing; their alt text is kept on the figure.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Segment.Value(src))
				if t.HardLineBreak() || t.SoftLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(t.Value)
			case *ast.AutoLink:
				buf.Write(t.Label(src))
			case *ast.Image, *ast.RawHTML:
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

func collectImages(n ast.Node) []*ast.Image {
	var out []*ast.Image
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if img, ok := c.(*ast.Image); ok && entering {
			out = append(out, img)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return buf.String()
}
