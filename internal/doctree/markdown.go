package doctree

import (
	"io"
	"strings"
)

// ExportMarkdown renders the document as GitHub-flavored Markdown.
//
// Headings are written at their section depth, list items are indented two
// spaces per enclosing list group, and merged table cells are repeated in
// every slot they cover.
func (d *Document) ExportMarkdown(w io.Writer) error {
	var blocks []string
	var walk func(ref Ref, headingDepth, listDepth int)
	walk = func(ref Ref, headingDepth, listDepth int) {
		for _, c := range d.nodes[ref].Children {
			n := d.nodes[c]
			switch n.Label {
			case LabelTitle:
				blocks = append(blocks, "# "+oneLine(n.Text))
				walk(c, 1, 0)
			case LabelSectionHeader:
				level := headingDepth + 1
				if level > 6 {
					level = 6
				}
				blocks = append(blocks, strings.Repeat("#", level)+" "+oneLine(n.Text))
				walk(c, headingDepth+1, 0)
			case LabelGroup:
				if n.Group == GroupList {
					walk(c, headingDepth, listDepth+1)
				} else {
					walk(c, headingDepth, listDepth)
				}
			case LabelListItem:
				indent := ""
				if listDepth > 1 {
					indent = strings.Repeat("  ", listDepth-1)
				}
				item := indent + "- " + oneLine(n.Text)
				// Consecutive items form one tight list.
				if len(blocks) > 0 && isListLine(blocks[len(blocks)-1]) {
					blocks[len(blocks)-1] += "\n" + item
				} else {
					blocks = append(blocks, item)
				}
				walk(c, headingDepth, listDepth)
			case LabelTable:
				if n.Table != nil && n.Table.NumRows > 0 && n.Table.NumCols > 0 {
					blocks = append(blocks, markdownTable(n.Table))
				}
			case LabelPicture:
				blocks = append(blocks, "<!-- image -->")
				if n.Caption != "" {
					blocks = append(blocks, oneLine(n.Caption))
				}
			default:
				if n.Text != "" {
					blocks = append(blocks, n.Text)
				}
				walk(c, headingDepth, listDepth)
			}
		}
	}
	walk(Root, 0, 0)

	out := strings.Join(blocks, "\n\n")
	if out != "" {
		out += "\n"
	}
	_, err := io.WriteString(w, out)
	return err
}

func isListLine(block string) bool {
	last := block[strings.LastIndex(block, "\n")+1:]
	return strings.HasPrefix(strings.TrimLeft(last, " "), "- ")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func markdownTable(t *TableData) string {
	grid := t.Grid()
	rows := make([][]string, t.NumRows)
	for r := range grid {
		rows[r] = make([]string, t.NumCols)
		for c, idx := range grid[r] {
			if idx >= 0 {
				rows[r][c] = strings.ReplaceAll(oneLine(t.Cells[idx].Text), "|", `\|`)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for _, cell := range cells {
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}
	writeRow(rows[0])
	sb.WriteString("|")
	for range t.NumCols {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return strings.TrimRight(sb.String(), "\n")
}
