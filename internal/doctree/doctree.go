package doctree

import "strings"

// Label classifies a content node.
type Label string

const (
	LabelTitle         Label = "title"
	LabelSectionHeader Label = "section_header"
	LabelParagraph     Label = "paragraph"
	LabelListItem      Label = "list_item"
	LabelTable         Label = "table"
	LabelPicture       Label = "picture"
	LabelGroup         Label = "group"
)

// GroupLabel classifies a structural (textless) group node.
type GroupLabel string

const (
	GroupSection GroupLabel = "section"
	GroupList    GroupLabel = "list"
)

// Ref is an opaque handle to a node in a Document. The zero Ref is the
// document root, so it can be passed as "no parent".
type Ref int

// Root is the document root.
const Root Ref = 0

// Node is one element of the document tree.
type Node struct {
	Ref      Ref
	Parent   Ref
	Label    Label
	Group    GroupLabel // set when Label == LabelGroup
	Name     string     // group name
	Text     string
	Page     int // source page (0 if N/A)
	Table    *TableData
	Picture  *PictureData
	Caption  string
	Children []Ref
}

// TableCell is one logical cell of a table grid. Offsets are half-open:
// the cell covers rows [StartRow, EndRow) and columns [StartCol, EndCol).
type TableCell struct {
	Text        string `json:"text"`
	RowSpan     int    `json:"row_span"`
	ColSpan     int    `json:"col_span"`
	StartRow    int    `json:"start_row_offset_idx"`
	EndRow      int    `json:"end_row_offset_idx"`
	StartCol    int    `json:"start_col_offset_idx"`
	EndCol      int    `json:"end_col_offset_idx"`
	IsColHeader bool   `json:"column_header"`
	IsRowHeader bool   `json:"row_header"`
}

// TableData is a rectangular table grid.
type TableData struct {
	NumRows int         `json:"num_rows"`
	NumCols int         `json:"num_cols"`
	Cells   []TableCell `json:"table_cells"`
}

// Grid expands the cells into a NumRows x NumCols matrix of cell indexes;
// slots not covered by any cell hold -1.
func (t *TableData) Grid() [][]int {
	grid := make([][]int, t.NumRows)
	for r := range grid {
		grid[r] = make([]int, t.NumCols)
		for c := range grid[r] {
			grid[r][c] = -1
		}
	}
	for i, cell := range t.Cells {
		for r := cell.StartRow; r < cell.EndRow && r < t.NumRows; r++ {
			for c := cell.StartCol; c < cell.EndCol && c < t.NumCols; c++ {
				grid[r][c] = i
			}
		}
	}
	return grid
}

// PictureData describes an embedded image. Image bytes are not copied.
type PictureData struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Format      string `json:"format,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Bytes       int    `json:"bytes,omitempty"`
}

// Document is the tree built from a linear document stream. Children are
// kept in insertion order at every level.
type Document struct {
	Name  string
	nodes []Node // nodes[0] is the root
}

// New creates an empty document.
func New(name string) *Document {
	return &Document{
		Name:  name,
		nodes: []Node{{Ref: Root, Label: LabelGroup, Name: "_root_"}},
	}
}

func (d *Document) add(n Node) Ref {
	if int(n.Parent) < 0 || int(n.Parent) >= len(d.nodes) {
		n.Parent = Root
	}
	n.Ref = Ref(len(d.nodes))
	d.nodes = append(d.nodes, n)
	d.nodes[n.Parent].Children = append(d.nodes[n.Parent].Children, n.Ref)
	return n.Ref
}

// AddText appends a text node under parent.
func (d *Document) AddText(parent Ref, label Label, text string) Ref {
	return d.add(Node{Parent: parent, Label: label, Text: text})
}

// AddHeading appends a section header under parent.
func (d *Document) AddHeading(parent Ref, text string) Ref {
	return d.add(Node{Parent: parent, Label: LabelSectionHeader, Text: text})
}

// AddGroup appends a structural group under parent.
func (d *Document) AddGroup(parent Ref, label GroupLabel, name string) Ref {
	return d.add(Node{Parent: parent, Label: LabelGroup, Group: label, Name: name})
}

// AddTable appends a table under parent.
func (d *Document) AddTable(parent Ref, data TableData) Ref {
	return d.add(Node{Parent: parent, Label: LabelTable, Table: &data})
}

// AddPicture appends a picture under parent. A nil caption means none.
func (d *Document) AddPicture(parent Ref, data PictureData, caption *string) Ref {
	n := Node{Parent: parent, Label: LabelPicture, Picture: &data}
	if caption != nil {
		n.Caption = *caption
	}
	return d.add(n)
}

// SetPage records the source page of a node.
func (d *Document) SetPage(ref Ref, page int) {
	if d.valid(ref) {
		d.nodes[ref].Page = page
	}
}

func (d *Document) valid(ref Ref) bool {
	return int(ref) >= 0 && int(ref) < len(d.nodes)
}

// Node returns a copy of the node for ref.
func (d *Document) Node(ref Ref) (Node, bool) {
	if !d.valid(ref) {
		return Node{}, false
	}
	return d.nodes[ref], true
}

// Children returns the children of ref in insertion order.
func (d *Document) Children(ref Ref) []Ref {
	if !d.valid(ref) {
		return nil
	}
	return append([]Ref(nil), d.nodes[ref].Children...)
}

// Len returns the number of nodes, excluding the root.
func (d *Document) Len() int {
	return len(d.nodes) - 1
}

// IsEmpty reports whether nothing was added to the document.
func (d *Document) IsEmpty() bool {
	return d.Len() == 0
}

// Depth returns the number of ancestors of ref below the root.
func (d *Document) Depth(ref Ref) int {
	depth := 0
	for d.valid(ref) && ref != Root {
		ref = d.nodes[ref].Parent
		if ref != Root {
			depth++
		}
	}
	return depth
}

// Walk visits every node depth-first in document order. Returning false
// from fn skips the node's children.
func (d *Document) Walk(fn func(n Node, depth int) bool) {
	var walk func(ref Ref, depth int)
	walk = func(ref Ref, depth int) {
		for _, child := range d.nodes[ref].Children {
			if fn(d.nodes[child], depth) {
				walk(child, depth+1)
			}
		}
	}
	walk(Root, 0)
}

// Text flattens all text content into a single newline-joined string.
func (d *Document) Text() string {
	var sb strings.Builder
	d.Walk(func(n Node, _ int) bool {
		text := n.Text
		if n.Table != nil {
			var cells []string
			for _, c := range n.Table.Cells {
				if c.Text != "" {
					cells = append(cells, c.Text)
				}
			}
			text = strings.Join(cells, " ")
		}
		if text != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(text)
		}
		return true
	})
	return sb.String()
}
