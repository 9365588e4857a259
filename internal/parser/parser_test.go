package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForFile(t *testing.T) {
	tests := map[string]Parser{
		"a.txt":      &TextParser{},
		"a.MD":       &MarkdownParser{},
		"a.markdown": &MarkdownParser{},
		"a.csv":      &CSVParser{},
		"a.htm":      &HTMLParser{},
		"a.docx":     &DOCXParser{},
		"a.pdf":      &PDFParser{FallbackPdftotext: true},
	}
	for name, want := range tests {
		got, err := ForFile(name, Options{FallbackPdftotext: true})
		require.NoError(t, err, name)
		assert.IsType(t, want, got, name)
		assert.True(t, IsSupportedExtension(name), name)
	}
}

func TestForFile_Unsupported(t *testing.T) {
	_, err := ForFile("deck.pptx", Options{})
	var unsupported *UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, ".pptx", unsupported.Ext)
	assert.False(t, IsSupportedExtension("deck.pptx"))
}

func TestSplitBlocks(t *testing.T) {
	blocks := splitBlocks("line one\nline two  \n\n\n   \nnext block\n")
	assert.Equal(t, []string{"line one\nline two", "next block"}, blocks)
}
