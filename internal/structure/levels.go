package structure

import "github.com/dgallion1/docstruct/internal/doctree"

// MaxLevels is the number of nesting slots tracked per document.
const MaxLevels = 10

// Levels maps nesting depth to the node currently open at that depth.
// Set slots always form a prefix: once slot k is empty, every slot after it
// is empty too.
type Levels struct {
	slots [MaxLevels]doctree.Ref
	set   [MaxLevels]bool
}

// OpenLevel returns the lowest unset slot, or 0 when every slot is set.
func (l *Levels) OpenLevel() int {
	for i, ok := range l.set {
		if !ok {
			return i
		}
	}
	return 0
}

// Set records ref as the open node at level.
func (l *Levels) Set(level int, ref doctree.Ref) {
	if level < 0 || level >= MaxLevels {
		return
	}
	l.slots[level] = ref
	l.set[level] = true
}

// Get returns the node open at level. Negative or unset levels resolve to
// the document root.
func (l *Levels) Get(level int) doctree.Ref {
	if level < 0 || level >= MaxLevels || !l.set[level] {
		return doctree.Root
	}
	return l.slots[level]
}

// Parent returns the node new content at level attaches to.
func (l *Levels) Parent(level int) doctree.Ref {
	return l.Get(level - 1)
}

// ClearFrom unsets level and every deeper slot.
func (l *Levels) ClearFrom(level int) {
	for i := max(level, 0); i < MaxLevels; i++ {
		l.slots[i] = doctree.Root
		l.set[i] = false
	}
}

// Reset unsets every slot.
func (l *Levels) Reset() {
	l.ClearFrom(0)
}
