package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dgallion1/docstruct/internal/doctree"
)

func TestLevelsOpenLevel(t *testing.T) {
	var l Levels
	assert.Equal(t, 0, l.OpenLevel())
	assert.Equal(t, doctree.Root, l.Parent(0))

	l.Set(0, 5)
	l.Set(1, 6)
	assert.Equal(t, 2, l.OpenLevel())
	assert.Equal(t, doctree.Ref(6), l.Parent(2))

	l.ClearFrom(1)
	assert.Equal(t, 1, l.OpenLevel())
	assert.Equal(t, doctree.Root, l.Get(1))
	assert.Equal(t, doctree.Ref(5), l.Get(0))
}

func TestLevelsAllSet(t *testing.T) {
	var l Levels
	for i := range MaxLevels {
		l.Set(i, doctree.Ref(i+1))
	}
	assert.Equal(t, 0, l.OpenLevel())

	l.Reset()
	assert.Equal(t, 0, l.OpenLevel())
	for i := range MaxLevels {
		assert.Equal(t, doctree.Root, l.Get(i))
	}
}

func TestLevelsOutOfRange(t *testing.T) {
	var l Levels
	l.Set(MaxLevels, 3)
	l.Set(-1, 3)
	assert.Equal(t, 0, l.OpenLevel())
	assert.Equal(t, doctree.Root, l.Get(-1))
	assert.Equal(t, doctree.Root, l.Get(MaxLevels))
}
