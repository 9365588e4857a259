package doctree

import "encoding/json"

// DocTree is the nested, serializable view of a Document.
type DocTree struct {
	Title    string     `json:"title"`    // Document name (from metadata or filename)
	Children []*DocNode `json:"children"` // Top-level nodes
}

// DocNode is a recursive node of the nested view.
type DocNode struct {
	Label    Label        `json:"label"`
	Group    GroupLabel   `json:"group,omitempty"`
	Name     string       `json:"name,omitempty"`
	Text     string       `json:"text,omitempty"`
	Page     int          `json:"page,omitempty"` // Source page (0 if N/A)
	Table    *TableData   `json:"table,omitempty"`
	Picture  *PictureData `json:"picture,omitempty"`
	Caption  string       `json:"caption,omitempty"`
	Children []*DocNode   `json:"children,omitempty"`
}

// Chunk is a sized text segment with structural context.
type Chunk struct {
	Text       string   `json:"text"`       // Chunk text content
	Index      int      `json:"index"`      // Sequence number within document
	Breadcrumb []string `json:"breadcrumb"` // Heading hierarchy, e.g. ["Financial Results", "Revenue", "Q4"]
	PageStart  int      `json:"page_start,omitempty"`
	PageEnd    int      `json:"page_end,omitempty"`
}

// Tree returns the nested view of the document.
func (d *Document) Tree() *DocTree {
	var build func(ref Ref) []*DocNode
	build = func(ref Ref) []*DocNode {
		children := d.nodes[ref].Children
		if len(children) == 0 {
			return nil
		}
		out := make([]*DocNode, 0, len(children))
		for _, c := range children {
			n := d.nodes[c]
			out = append(out, &DocNode{
				Label:    n.Label,
				Group:    n.Group,
				Name:     n.Name,
				Text:     n.Text,
				Page:     n.Page,
				Table:    n.Table,
				Picture:  n.Picture,
				Caption:  n.Caption,
				Children: build(c),
			})
		}
		return out
	}
	tree := &DocTree{Title: d.Name, Children: build(Root)}
	if tree.Children == nil {
		tree.Children = []*DocNode{}
	}
	return tree
}

// MarshalJSON encodes the document as its nested view.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Tree())
}
