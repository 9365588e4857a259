package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/fumiama/go-docx"
	"github.com/fumiama/imgsz"

	"github.com/dgallion1/docstruct/internal/doctree"
	"github.com/dgallion1/docstruct/internal/structure"
)

// DOCXParser handles .docx files.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*Stream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	src := bytes.NewReader(data)

	doc, err := docx.Parse(src, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	styles, err := readStyleNames(src, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read docx styles: %w", err)
	}

	d := &docxReader{doc: doc, styles: styles}
	stream := &Stream{Title: baseTitle(filename)}
	for _, item := range doc.Document.Body.Items {
		stream.Elements = append(stream.Elements, d.item(item)...)
	}
	return stream, nil
}

type docxReader struct {
	doc    *docx.Docx
	styles map[string]string // style id -> display name
}

func (d *docxReader) item(item any) []structure.Element {
	switch v := item.(type) {
	case *docx.Paragraph:
		return d.paragraph(v)
	case *docx.Table:
		return []structure.Element{{Kind: structure.KindTable, Tag: "w:tbl", Table: d.table(v)}}
	case *docx.SectPr:
		return nil
	}
	return []structure.Element{{Kind: structure.KindUnknown, Tag: fmt.Sprintf("%T", item)}}
}

// paragraph returns the text element followed by one figure per drawing.
// A paragraph holding only drawings yields just the figures.
func (d *docxReader) paragraph(p *docx.Paragraph) []structure.Element {
	el := structure.Element{
		Kind:  structure.KindParagraph,
		Tag:   "w:p",
		Text:  strings.TrimSpace(docxParagraphText(p)),
		Style: d.styleName(p),
	}
	if numID, ilvl, ok := docxNumbering(p); ok {
		el.NumID, el.Ilvl = intPtr(numID), intPtr(ilvl)
	}
	drawings := docxDrawings(p)
	var out []structure.Element
	if el.Text != "" || len(drawings) == 0 {
		out = append(out, el)
	}
	for _, drawing := range drawings {
		out = append(out, structure.Element{Kind: structure.KindFigure, Tag: "w:drawing", Picture: d.picture(drawing)})
	}
	return out
}

func (d *docxReader) styleName(p *docx.Paragraph) string {
	if p.Properties == nil || p.Properties.Style == nil || p.Properties.Style.Val == "" {
		return "Normal"
	}
	id := p.Properties.Style.Val
	if name, ok := d.styles[id]; ok {
		return name
	}
	return splitStyleID(id)
}

// docxNumbering reads w:numPr. A numbering id of 0 removes numbering.
func docxNumbering(p *docx.Paragraph) (numID, ilvl int, ok bool) {
	if p.Properties == nil || p.Properties.NumProperties == nil {
		return 0, 0, false
	}
	np := p.Properties.NumProperties
	if np.NumID == nil || np.Ilvl == nil {
		return 0, 0, false
	}
	numID, err := strconv.Atoi(np.NumID.Val)
	if err != nil || numID == 0 {
		return 0, 0, false
	}
	ilvl, err = strconv.Atoi(np.Ilvl.Val)
	if err != nil {
		return 0, 0, false
	}
	return numID, ilvl, true
}

func docxParagraphText(p *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range p.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRunText(&buf, c)
		case *docx.Hyperlink:
			writeRunText(&buf, &c.Run)
		}
	}
	return buf.String()
}

func writeRunText(buf *strings.Builder, run *docx.Run) {
	for _, rc := range run.Children {
		switch t := rc.(type) {
		case *docx.Text:
			buf.WriteString(t.Text)
		case *docx.Tab:
			buf.WriteByte('\t')
		case *docx.BarterRabbet:
			buf.WriteByte('\n')
		}
	}
}

func docxDrawings(p *docx.Paragraph) []*docx.Drawing {
	var out []*docx.Drawing
	for _, child := range p.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if drawing, ok := rc.(*docx.Drawing); ok {
				out = append(out, drawing)
			}
		}
	}
	return out
}

// picture resolves a drawing's embedded image and reads its dimensions.
func (d *docxReader) picture(drawing *docx.Drawing) *doctree.PictureData {
	var docPr *docx.WPDocPr
	var graphic *docx.AGraphic
	switch {
	case drawing.Inline != nil:
		docPr, graphic = drawing.Inline.DocPr, drawing.Inline.Graphic
	case drawing.Anchor != nil:
		docPr, graphic = drawing.Anchor.DocPr, drawing.Anchor.Graphic
	}

	pic := &doctree.PictureData{}
	if docPr != nil {
		pic.Description = docPr.Name
	}
	if graphic == nil || graphic.GraphicData == nil || graphic.GraphicData.Pic == nil || graphic.GraphicData.Pic.BlipFill == nil {
		return pic
	}
	target, err := d.doc.ReferTarget(graphic.GraphicData.Pic.BlipFill.Blip.Embed)
	if err != nil {
		return pic
	}
	pic.Name = strings.TrimPrefix(target, "media/")
	media := d.doc.Media(pic.Name)
	if media == nil {
		return pic
	}
	pic.Bytes = len(media.Data)
	if size, format, err := imgsz.DecodeSize(bytes.NewReader(media.Data)); err == nil {
		pic.Width, pic.Height, pic.Format = size.Width, size.Height, format
	}
	return pic
}

// table maps a w:tbl onto source rows. w:gridSpan sets the column span and
// a w:vMerge without val="restart" continues the cell above.
func (d *docxReader) table(t *docx.Table) *structure.TableSpec {
	spec := &structure.TableSpec{}
	for _, row := range t.TableRows {
		cells := make([]structure.CellSpec, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			cs := structure.CellSpec{Text: docxCellText(cell), ColSpan: 1}
			if props := cell.TableCellProperties; props != nil {
				if props.GridSpan != nil && props.GridSpan.Val > 1 {
					cs.ColSpan = props.GridSpan.Val
				}
				if props.VMerge != nil && props.VMerge.Val != "restart" {
					cs.RowSpan = structure.SpanContinuation
				}
			}
			cells = append(cells, cs)
		}
		spec.Rows = append(spec.Rows, cells)
	}
	return spec
}

func docxCellText(cell *docx.WTableCell) string {
	var parts []string
	for _, p := range cell.Paragraphs {
		if text := strings.TrimSpace(docxParagraphText(p)); text != "" {
			parts = append(parts, text)
		}
	}
	for _, nested := range cell.Tables {
		for _, row := range nested.TableRows {
			for _, c := range row.TableCells {
				if text := docxCellText(c); text != "" {
					parts = append(parts, text)
				}
			}
		}
	}
	return strings.Join(parts, "\n")
}

type docxStyles struct {
	Styles []struct {
		Type string `xml:"type,attr"`
		ID   string `xml:"styleId,attr"`
		Name struct {
			Val string `xml:"val,attr"`
		} `xml:"name"`
	} `xml:"style"`
}

// readStyleNames maps paragraph style ids in word/styles.xml to display
// names. A package without styles.xml yields an empty map.
func readStyleNames(r io.ReaderAt, size int64) (map[string]string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	for _, f := range zr.File {
		if f.Name != "word/styles.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		var styles docxStyles
		err = xml.NewDecoder(rc).Decode(&styles)
		rc.Close()
		if err != nil {
			return nil, err
		}
		for _, s := range styles.Styles {
			if s.Type != "paragraph" || s.ID == "" || s.Name.Val == "" {
				continue
			}
			names[s.ID] = displayStyleName(s.Name.Val)
		}
	}
	return names, nil
}

// displayStyleName converts built-in lowercase names ("heading 1",
// "list paragraph") to the names Word shows.
func displayStyleName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// splitStyleID turns a style id like "Heading1" or "ListParagraph" into
// "Heading 1" or "List Paragraph".
func splitStyleID(id string) string {
	var sb strings.Builder
	runes := []rune(id)
	for i, r := range runes {
		if i > 0 {
			prev := runes[i-1]
			if (unicode.IsUpper(r) && unicode.IsLower(prev)) || (unicode.IsDigit(r) && unicode.IsLetter(prev)) {
				sb.WriteByte(' ')
			}
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
