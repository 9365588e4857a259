package doctree

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExportHTML renders the document as a standalone HTML page.
func (d *Document) ExportHTML(w io.Writer) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	head := element(atom.Head)
	title := element(atom.Title)
	title.AppendChild(textNode(d.Name))
	head.AppendChild(title)
	root.AppendChild(head)
	body := element(atom.Body)
	root.AppendChild(body)
	doc.AppendChild(root)

	d.appendHTML(body, Root, 0)

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func (d *Document) appendHTML(parent *html.Node, ref Ref, headingDepth int) {
	for _, c := range d.nodes[ref].Children {
		n := d.nodes[c]
		switch n.Label {
		case LabelTitle:
			parent.AppendChild(textElement(atom.H1, n.Text))
			d.appendHTML(parent, c, 1)
		case LabelSectionHeader:
			parent.AppendChild(textElement(headingAtom(headingDepth+1), n.Text))
			d.appendHTML(parent, c, headingDepth+1)
		case LabelGroup:
			if n.Group == GroupList {
				ul := element(atom.Ul)
				d.appendHTML(ul, c, headingDepth)
				// A nested list belongs inside the preceding item.
				if parent.DataAtom == atom.Ul && parent.LastChild != nil && parent.LastChild.DataAtom == atom.Li {
					parent.LastChild.AppendChild(ul)
				} else {
					parent.AppendChild(ul)
				}
			} else {
				section := element(atom.Section)
				d.appendHTML(section, c, headingDepth)
				parent.AppendChild(section)
			}
		case LabelListItem:
			li := textElement(atom.Li, n.Text)
			if parent.DataAtom != atom.Ul {
				ul := element(atom.Ul)
				ul.AppendChild(li)
				parent.AppendChild(ul)
			} else {
				parent.AppendChild(li)
			}
			d.appendHTML(li, c, headingDepth)
		case LabelTable:
			if n.Table != nil {
				parent.AppendChild(htmlTable(n.Table))
			}
		case LabelPicture:
			fig := element(atom.Figure)
			img := element(atom.Img)
			if n.Picture != nil && n.Picture.Name != "" {
				img.Attr = append(img.Attr, html.Attribute{Key: "src", Val: n.Picture.Name})
			}
			if n.Picture != nil && n.Picture.Description != "" {
				img.Attr = append(img.Attr, html.Attribute{Key: "alt", Val: n.Picture.Description})
			}
			fig.AppendChild(img)
			if n.Caption != "" {
				fig.AppendChild(textElement(atom.Figcaption, n.Caption))
			}
			parent.AppendChild(fig)
		default:
			parent.AppendChild(textElement(atom.P, n.Text))
			d.appendHTML(parent, c, headingDepth)
		}
	}
}

func htmlTable(t *TableData) *html.Node {
	table := element(atom.Table)
	rows := make([]*html.Node, t.NumRows)
	for r := range rows {
		rows[r] = element(atom.Tr)
		table.AppendChild(rows[r])
	}
	for _, cell := range t.Cells {
		if cell.StartRow < 0 || cell.StartRow >= t.NumRows {
			continue
		}
		tag := atom.Td
		if cell.IsColHeader || cell.IsRowHeader {
			tag = atom.Th
		}
		td := textElement(tag, cell.Text)
		if span := cell.EndRow - cell.StartRow; span > 1 {
			td.Attr = append(td.Attr, html.Attribute{Key: "rowspan", Val: strconv.Itoa(span)})
		}
		if span := cell.EndCol - cell.StartCol; span > 1 {
			td.Attr = append(td.Attr, html.Attribute{Key: "colspan", Val: strconv.Itoa(span)})
		}
		rows[cell.StartRow].AppendChild(td)
	}
	return table
}

func headingAtom(level int) atom.Atom {
	switch level {
	case 1:
		return atom.H1
	case 2:
		return atom.H2
	case 3:
		return atom.H3
	case 4:
		return atom.H4
	case 5:
		return atom.H5
	}
	return atom.H6
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func textElement(a atom.Atom, text string) *html.Node {
	n := element(a)
	n.AppendChild(textNode(text))
	return n
}

func textNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}
