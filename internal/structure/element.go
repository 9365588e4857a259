// Package structure rebuilds the hierarchy implied by a flat stream of
// word-processing blocks: nested sections from heading styles, nested lists
// from numbering metadata, and table grids from cell span attributes.
package structure

import (
	"fmt"

	"github.com/dgallion1/docstruct/internal/doctree"
)

// Kind is the block type reported by a reader.
type Kind int

const (
	KindUnknown Kind = iota
	KindParagraph
	KindHeading
	KindListItem
	KindTable
	KindFigure
)

func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindListItem:
		return "list_item"
	case KindTable:
		return "table"
	case KindFigure:
		return "figure"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// Element is one block of the linear input stream. Readers fill it once;
// the builder never modifies it.
type Element struct {
	Kind  Kind
	Tag   string // source element name, used in diagnostics
	Text  string
	Style string // style display name, e.g. "Heading 2" or "List Paragraph"

	// NumID and Ilvl are the list numbering identity and indent depth.
	// An element is a list item only when both are present.
	NumID *int
	Ilvl  *int

	Table   *TableSpec
	Picture *doctree.PictureData
	Caption *string

	Page int // 1-based source page, 0 if unknown
}

// Numbering returns the list numbering of the element and whether both
// parts are present.
func (e Element) Numbering() (numID, ilvl int, ok bool) {
	if e.NumID == nil || e.Ilvl == nil {
		return 0, 0, false
	}
	return *e.NumID, *e.Ilvl, true
}

// RowSpan marks whether a cell begins a vertical merge (or is unmerged) or
// continues the merge of the cell above it.
type RowSpan uint8

const (
	SpanStart RowSpan = iota
	SpanContinuation
)

// CellSpec is one source cell of a table row.
type CellSpec struct {
	Text      string
	ColSpan   int // grid columns covered; values < 1 are read as 1
	RowSpan   RowSpan
	ColHeader bool
	RowHeader bool
}

// TableSpec is a table as it appears in the source: rows of cells in
// document order, with vertically merged cells repeated as continuations.
type TableSpec struct {
	Rows [][]CellSpec
}

// WarningType categorizes builder diagnostics.
type WarningType string

const (
	WarningUnknownElement WarningType = "unknown_element"
	WarningUnknownStyle   WarningType = "unknown_style"
	WarningMalformedList  WarningType = "malformed_list"
	WarningLevelClamped   WarningType = "level_clamped"
	WarningTableGeometry  WarningType = "table_geometry"
)

// Warning is a non-fatal anomaly met while building.
type Warning struct {
	Type    WarningType `json:"type"`
	Message string      `json:"message"`
}
