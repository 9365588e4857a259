package structure

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dgallion1/docstruct/internal/doctree"
)

// BuildGrid resolves a source table into a rectangular grid of cells.
//
// The column count is the widest row's summed column span. Each Start cell
// takes the next free slot in its row and covers ColSpan columns (clipped at
// the grid edge). A Continuation cell extends the cell directly above it
// when that cell starts in the same column; otherwise it is kept as a cell
// of its own. Slots no cell covers are filled with empty 1x1 cells, so the
// cells of the result always tile the grid exactly once.
func BuildGrid(spec TableSpec) (doctree.TableData, []Warning) {
	rows := len(spec.Rows)
	cols := 0
	for _, row := range spec.Rows {
		width := 0
		for _, cs := range row {
			width += max(cs.ColSpan, 1)
		}
		cols = max(cols, width)
	}
	data := doctree.TableData{NumRows: rows, NumCols: cols}
	if rows == 0 || cols == 0 {
		return data, nil
	}

	var warnings []Warning
	warnf := func(format string, args ...any) {
		warnings = append(warnings, Warning{Type: WarningTableGeometry, Message: fmt.Sprintf(format, args...)})
	}

	owner := make([][]int, rows)
	for r := range owner {
		owner[r] = make([]int, cols)
		for c := range owner[r] {
			owner[r][c] = -1
		}
	}
	claim := func(idx, r, from, to int) {
		for c := from; c < to; c++ {
			owner[r][c] = idx
		}
	}

	cells := make([]doctree.TableCell, 0, rows*cols)
	for r, row := range spec.Rows {
		c := 0
		for _, cs := range row {
			for c < cols && owner[r][c] >= 0 {
				c++
			}
			if c >= cols {
				warnf("row %d: cell %q has no free column, dropped", r, cs.Text)
				break
			}

			if cs.RowSpan == SpanContinuation {
				if r > 0 {
					if above := owner[r-1][c]; above >= 0 && cells[above].StartCol == c && cells[above].EndRow == r {
						cells[above].EndRow = r + 1
						claim(above, r, c, cells[above].EndCol)
						c = cells[above].EndCol
						continue
					}
				}
				warnf("row %d col %d: merge continuation without an owner above", r, c)
			}

			end := c + max(cs.ColSpan, 1)
			if end > cols {
				end = cols
			}
			cells = append(cells, doctree.TableCell{
				Text:        cs.Text,
				StartRow:    r,
				EndRow:      r + 1,
				StartCol:    c,
				EndCol:      end,
				IsColHeader: cs.ColHeader,
				IsRowHeader: cs.RowHeader,
			})
			claim(len(cells)-1, r, c, end)
			c = end
		}
	}

	padded := 0
	for r := range owner {
		for c := range owner[r] {
			if owner[r][c] < 0 {
				cells = append(cells, doctree.TableCell{StartRow: r, EndRow: r + 1, StartCol: c, EndCol: c + 1})
				owner[r][c] = len(cells) - 1
				padded++
			}
		}
	}
	if padded > 0 {
		warnf("%d grid slots had no source cell, padded with empty cells", padded)
	}

	for i := range cells {
		cells[i].RowSpan = cells[i].EndRow - cells[i].StartRow
		cells[i].ColSpan = cells[i].EndCol - cells[i].StartCol
	}
	slices.SortStableFunc(cells, func(a, b doctree.TableCell) int {
		return cmp.Or(cmp.Compare(a.StartRow, b.StartRow), cmp.Compare(a.StartCol, b.StartCol))
	})
	data.Cells = cells
	return data, warnings
}
