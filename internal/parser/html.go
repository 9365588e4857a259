package parser

import (
	"fmt"
	"io"
	"math"
	"path"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/docstruct/internal/doctree"
	"github.com/dgallion1/docstruct/internal/structure"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Stream, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	stream := &Stream{Title: baseTitle(filename)}
	if title := findTitle(doc); title != "" {
		stream.Title = title
	}

	h := &htmlReader{}
	if body := findBody(doc); body != nil {
		h.walk(body, "Normal")
	} else {
		h.walk(doc, "Normal")
	}
	stream.Elements = h.elements
	return stream, nil
}

type htmlReader struct {
	elements []structure.Element
	lists    int
}

func (h *htmlReader) emit(el structure.Element) {
	h.elements = append(h.elements, el)
}

// walk emits elements for the children of n. Runs of text and inline
// elements between blocks become one paragraph.
func (h *htmlReader) walk(n *html.Node, style string) {
	var loose strings.Builder
	flush := func() {
		if t := collapseSpace(loose.String()); t != "" {
			h.emit(paragraph(style, t))
		}
		loose.Reset()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode, c.Type == html.ElementNode && inlineAtoms[c.DataAtom]:
			writeText(&loose, c, false)
		case c.Type == html.ElementNode:
			flush()
			h.element(c, style)
		}
	}
	flush()
}

var inlineAtoms = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Br: true, atom.Cite: true,
	atom.Code: true, atom.Dfn: true, atom.Em: true, atom.I: true, atom.Kbd: true,
	atom.Label: true, atom.Mark: true, atom.Q: true, atom.S: true, atom.Samp: true,
	atom.Small: true, atom.Span: true, atom.Strong: true, atom.Sub: true,
	atom.Sup: true, atom.Time: true, atom.U: true, atom.Var: true,
}

func (h *htmlReader) element(n *html.Node, style string) {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Nav, atom.Footer, atom.Header, atom.Head, atom.Noscript, atom.Template:
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		rank := int(n.Data[1] - '0')
		h.emit(structure.Element{Kind: structure.KindHeading, Tag: n.Data, Style: headingStyle(rank), Text: textContent(n)})
	case atom.P:
		h.paragraph(n, style)
	case atom.Blockquote:
		h.walk(n, "Quote")
	case atom.Pre:
		h.emit(paragraph("Code", strings.Trim(rawText(n), "\n")))
	case atom.Ul, atom.Ol:
		h.lists++
		h.list(n, h.lists, 0)
	case atom.Table:
		h.emit(structure.Element{Kind: structure.KindTable, Tag: "table", Table: htmlTable(n)})
	case atom.Img:
		h.emit(structure.Element{Kind: structure.KindFigure, Tag: "img", Picture: htmlPicture(n)})
	case atom.Figure:
		h.figure(n)
	case atom.Br, atom.Hr:
	default:
		h.walk(n, style)
	}
}

// paragraph emits the paragraph text followed by any images inside it.
func (h *htmlReader) paragraph(n *html.Node, style string) {
	imgs := findAll(n, atom.Img)
	if t := textContent(n); t != "" || len(imgs) == 0 {
		h.emit(paragraph(style, t))
	}
	for _, img := range imgs {
		h.emit(structure.Element{Kind: structure.KindFigure, Tag: "img", Picture: htmlPicture(img)})
	}
}

func (h *htmlReader) figure(n *html.Node) {
	var caption *string
	if fc := findAll(n, atom.Figcaption); len(fc) > 0 {
		t := textContent(fc[0])
		caption = &t
	}
	imgs := findAll(n, atom.Img)
	if len(imgs) == 0 {
		h.emit(structure.Element{Kind: structure.KindFigure, Tag: "figure", Picture: &doctree.PictureData{}, Caption: caption})
		return
	}
	for i, img := range imgs {
		el := structure.Element{Kind: structure.KindFigure, Tag: "figure", Picture: htmlPicture(img)}
		if i == 0 {
			el.Caption = caption
		}
		h.emit(el)
	}
}

// list emits each li as a list item; nested ul/ol inside an li share the
// numbering id one indent deeper.
func (h *htmlReader) list(n *html.Node, numID, depth int) {
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		var nested []*html.Node
		var buf strings.Builder
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				nested = append(nested, c)
				continue
			}
			writeText(&buf, c, false)
		}
		h.emit(structure.Element{
			Kind:  structure.KindListItem,
			Tag:   "li",
			Style: "List Paragraph",
			Text:  collapseSpace(buf.String()),
			NumID: intPtr(numID),
			Ilvl:  intPtr(depth),
		})
		for _, sub := range nested {
			h.list(sub, numID, depth+1)
		}
	}
}

type pendingSpan struct {
	rows    int // rows still covered below the current one
	colSpan int
}

// htmlTable reads rows in document order. A cell with rowspan=N is followed
// by N-1 synthetic continuation cells in the rows below it.
func htmlTable(table *html.Node) *structure.TableSpec {
	spec := &structure.TableSpec{}
	pending := map[int]*pendingSpan{}
	for _, tr := range tableRows(table) {
		var row []structure.CellSpec
		col := 0
		flushUntil := func(limit int) {
			for {
				p, ok := pending[col]
				if !ok || col >= limit {
					return
				}
				row = append(row, structure.CellSpec{RowSpan: structure.SpanContinuation, ColSpan: p.colSpan})
				if p.rows--; p.rows == 0 {
					delete(pending, col)
				}
				col += p.colSpan
			}
		}

		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
				continue
			}
			flushUntil(math.MaxInt)
			colSpan := max(intAttr(c, "colspan"), 1)
			rowSpan := max(intAttr(c, "rowspan"), 1)
			header := c.DataAtom == atom.Th
			rowHeader := header && strings.EqualFold(attr(c, "scope"), "row")
			row = append(row, structure.CellSpec{
				Text:      textContent(c),
				ColSpan:   colSpan,
				ColHeader: header && !rowHeader,
				RowHeader: rowHeader,
			})
			if rowSpan > 1 {
				pending[col] = &pendingSpan{rows: rowSpan - 1, colSpan: colSpan}
			}
			col += colSpan
		}

		// Spans to the right of the last source cell.
		cols := make([]int, 0, len(pending))
		for k := range pending {
			if k >= col {
				cols = append(cols, k)
			}
		}
		slices.Sort(cols)
		for _, k := range cols {
			p := pending[k]
			if p == nil {
				continue
			}
			for col < k {
				row = append(row, structure.CellSpec{ColSpan: 1})
				col++
			}
			flushUntil(k + 1)
		}
		spec.Rows = append(spec.Rows, row)
	}
	return spec
}

func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Tr:
			rows = append(rows, c)
		case atom.Thead, atom.Tbody, atom.Tfoot:
			for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.Type == html.ElementNode && tr.DataAtom == atom.Tr {
					rows = append(rows, tr)
				}
			}
		}
	}
	return rows
}

func htmlPicture(img *html.Node) *doctree.PictureData {
	src := attr(img, "src")
	pic := &doctree.PictureData{Description: attr(img, "alt")}
	if src != "" && !strings.HasPrefix(src, "data:") {
		pic.Name = path.Base(src)
		pic.Format = strings.ToLower(strings.TrimPrefix(path.Ext(pic.Name), "."))
	}
	pic.Width = intAttr(img, "width")
	pic.Height = intAttr(img, "height")
	return pic
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func intAttr(n *html.Node, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(attr(n, key)))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
		out = append(out, findAll(c, a)...)
	}
	return out
}

// writeText appends the text under n. Unless raw, whitespace runs in text
// nodes are squashed to one space; <br> always yields a newline.
func writeText(buf *strings.Builder, n *html.Node, raw bool) {
	if n.Type == html.TextNode {
		if raw {
			buf.WriteString(n.Data)
		} else {
			buf.WriteString(squashSpace(n.Data))
		}
		return
	}
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style:
			return
		case atom.Br:
			buf.WriteByte('\n')
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(buf, c, raw)
	}
}

func squashSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			return " "
		}
		return ""
	}
	out := strings.Join(fields, " ")
	if unicode.IsSpace(rune(s[0])) {
		out = " " + out
	}
	if unicode.IsSpace(rune(s[len(s)-1])) {
		out += " "
	}
	return out
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	writeText(&buf, n, false)
	return collapseSpace(buf.String())
}

// rawText keeps whitespace, for preformatted blocks.
func rawText(n *html.Node) string {
	var buf strings.Builder
	writeText(&buf, n, true)
	return buf.String()
}

func collapseSpace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
