package structure

import (
	"fmt"

	"github.com/dgallion1/docstruct/internal/doctree"
)

// listContext describes the list currently open.
type listContext struct {
	baseLevel int
	numID     int
	indent    int
}

// listState tracks at most one open list and places list items.
type listState struct {
	ctx  *listContext
	warn func(WarningType, string)
}

func (s *listState) active() bool {
	return s.ctx != nil
}

// item places one list item and returns its node. A numbering id different
// from the open list's always closes it and opens a new list.
func (s *listState) item(tree Tree, levels *Levels, numID, ilvl int, text string) doctree.Ref {
	if ilvl < 0 {
		s.warnf(WarningMalformedList, "negative list indent %d read as 0", ilvl)
		ilvl = 0
	}
	if s.ctx != nil && s.ctx.numID != numID {
		s.close(levels)
	}
	if s.ctx == nil {
		return s.open(tree, levels, numID, ilvl, text)
	}

	base := s.ctx.baseLevel
	ilvl = s.clampIndent(base, ilvl)
	switch {
	case ilvl > s.ctx.indent:
		for d := base + s.ctx.indent + 1; d <= base+ilvl; d++ {
			levels.Set(d, tree.AddGroup(levels.Parent(d), doctree.GroupList, "list"))
		}
	case ilvl < s.ctx.indent:
		levels.ClearFrom(base + ilvl + 1)
	}
	s.ctx.indent = ilvl
	return tree.AddText(levels.Get(base+ilvl), doctree.LabelListItem, text)
}

// open starts a list at the open level. An opening item with indent n gets
// n+1 nested groups so every item sits at depth base+indent.
func (s *listState) open(tree Tree, levels *Levels, numID, ilvl int, text string) doctree.Ref {
	base := levels.OpenLevel()
	ilvl = s.clampIndent(base, ilvl)
	s.ctx = &listContext{baseLevel: base, numID: numID, indent: ilvl}
	for d := base; d <= base+ilvl; d++ {
		levels.Set(d, tree.AddGroup(levels.Parent(d), doctree.GroupList, "list"))
	}
	return tree.AddText(levels.Get(base+ilvl), doctree.LabelListItem, text)
}

// close ends the open list, releasing its slots.
func (s *listState) close(levels *Levels) {
	if s.ctx == nil {
		return
	}
	levels.ClearFrom(s.ctx.baseLevel)
	s.ctx = nil
}

func (s *listState) clampIndent(base, ilvl int) int {
	if limit := MaxLevels - 1 - base; ilvl > limit {
		s.warnf(WarningLevelClamped, "list indent %d exceeds nesting limit, clamped to %d", ilvl, limit)
		return limit
	}
	return ilvl
}

func (s *listState) warnf(t WarningType, format string, args ...any) {
	if s.warn != nil {
		s.warn(t, fmt.Sprintf(format, args...))
	}
}
