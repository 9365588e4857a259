package structure

import (
	"strconv"

	"github.com/dgallion1/docstruct/internal/doctree"
)

// placeHeading inserts a heading at depth curr relative to the open level.
//
//   - curr == open: the heading sits at the open level under its parent.
//   - curr > open: textless section groups bridge the skipped depths, and
//     the heading nests under the deepest of them.
//   - curr < open: everything at curr and below is closed before the
//     heading takes slot curr.
func placeHeading(tree Tree, levels *Levels, curr int, text string) doctree.Ref {
	open := levels.OpenLevel()
	if curr > open {
		for i := open; i < curr; i++ {
			levels.Set(i, tree.AddGroup(levels.Parent(i), doctree.GroupSection, groupName(i)))
		}
	}
	levels.ClearFrom(curr)
	ref := tree.AddHeading(levels.Parent(curr), text)
	levels.Set(curr, ref)
	return ref
}

// placeUnleveledHeading attaches a heading without a level where a paragraph
// would go. The tracker is left unchanged.
func placeUnleveledHeading(tree Tree, levels *Levels, text string) doctree.Ref {
	return tree.AddHeading(levels.Parent(levels.OpenLevel()), text)
}

func placeTitle(tree Tree, levels *Levels, text string) doctree.Ref {
	levels.Reset()
	ref := tree.AddText(doctree.Root, doctree.LabelTitle, text)
	levels.Set(0, ref)
	return ref
}

func groupName(level int) string {
	return "header-" + strconv.Itoa(level)
}
