package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docstruct/internal/doctree"
	"github.com/dgallion1/docstruct/internal/parser"
)

const scenarioMarkdown = `# Doc

## A

- x
  - y

z
`

func newConverter() *Converter {
	return New(Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

// labels lists "depth label text" for every node.
func labels(d *doctree.Document) []string {
	var out []string
	d.Walk(func(n doctree.Node, depth int) bool {
		text := n.Text
		if n.Label == doctree.LabelGroup {
			text = string(n.Group)
		}
		out = append(out, fmt.Sprintf("%d %s %s", depth, n.Label, text))
		return true
	})
	return out
}

func TestConvertMarkdownScenario(t *testing.T) {
	res, err := newConverter().Convert(context.Background(), strings.NewReader(scenarioMarkdown), "notes/doc.md")
	require.NoError(t, err)
	require.NoError(t, res.ParseError)

	assert.Equal(t, "md", res.Format)
	assert.Equal(t, 5, res.Elements)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "doc", res.Document.Name)
	assert.Equal(t, []string{
		"0 title Doc",
		"1 section_header A",
		"2 group list",
		"3 list_item x",
		"3 group list",
		"4 list_item y",
		"2 paragraph z",
	}, labels(res.Document))
}

func TestConvertHTMLTitleAndTable(t *testing.T) {
	src := `<html><head><title>Quarterly</title></head><body>
<h1>Report</h1>
<table><tr><th colspan="2">wide</th></tr><tr><td>a</td><td>b</td></tr></table>
</body></html>`
	res, err := newConverter().Convert(context.Background(), strings.NewReader(src), "q.html")
	require.NoError(t, err)
	assert.Equal(t, "Quarterly", res.Document.Name)

	var table *doctree.TableData
	res.Document.Walk(func(n doctree.Node, _ int) bool {
		if n.Table != nil {
			table = n.Table
		}
		return true
	})
	require.NotNil(t, table)
	assert.Equal(t, 2, table.NumRows)
	assert.Equal(t, 2, table.NumCols)
	require.Len(t, table.Cells, 3)
	assert.Equal(t, 2, table.Cells[0].ColSpan)
	assert.True(t, table.Cells[0].IsColHeader)
}

func TestConvertParseFailureYieldsEmptyDocument(t *testing.T) {
	res, err := newConverter().Convert(context.Background(), strings.NewReader("not a zip"), "broken.docx")
	require.NoError(t, err)
	require.Error(t, res.ParseError)
	assert.True(t, res.Document.IsEmpty())
	assert.Equal(t, "broken", res.Document.Name)
	assert.Equal(t, "docx", res.Format)
}

func TestConvertEmptyInput(t *testing.T) {
	_, err := newConverter().Convert(context.Background(), strings.NewReader(""), "empty.txt")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestConvertUnsupportedFormat(t *testing.T) {
	_, err := newConverter().Convert(context.Background(), strings.NewReader("x"), "slides.pptx")
	var unsupported *parser.UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, ".pptx", unsupported.Ext)
}

func TestConvertCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newConverter().Convert(ctx, strings.NewReader("text"), "a.txt")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvertConcurrent(t *testing.T) {
	c := newConverter()
	var wg sync.WaitGroup
	results := make([][]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.Convert(context.Background(), strings.NewReader(scenarioMarkdown), "doc.md")
			if err == nil {
				results[i] = labels(res.Document)
			}
		}()
	}
	wg.Wait()
	for i := 1; i < len(results); i++ {
		assert.Equal(t, results[0], results[i])
	}
	assert.Len(t, results[0], 7)
}
