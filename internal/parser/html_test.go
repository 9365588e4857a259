package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docstruct/internal/structure"
)

func TestHTMLParser_Blocks(t *testing.T) {
	input := `<html><head><title>Guide</title><style>p{}</style></head><body>
<nav>skip me</nav>
<h1>Guide</h1>
<p>Intro <b>bold</b>
   text.</p>
<h3>Deep</h3>
<blockquote><p>wise words</p></blockquote>
<div>loose <em>inline</em> run<p>inner</p></div>
<pre>a  b
c</pre>
<figure><img src="/img/plot.svg" alt="plot" width="40" height="30"><figcaption>Figure 1</figcaption></figure>
<footer>skip too</footer>
</body></html>`

	stream, err := (&HTMLParser{}).Parse(strings.NewReader(input), "guide.html")
	require.NoError(t, err)
	assert.Equal(t, "Guide", stream.Title)

	var got []string
	for _, el := range stream.Elements {
		got = append(got, el.Style+"|"+el.Text)
	}
	assert.Equal(t, []string{
		"Title|Guide",
		"Normal|Intro bold text.",
		"Heading 2|Deep",
		"Quote|wise words",
		"Normal|loose inline run",
		"Normal|inner",
		"Code|a  b\nc",
		"|",
	}, got)

	fig := stream.Elements[len(stream.Elements)-1]
	require.Equal(t, structure.KindFigure, fig.Kind)
	assert.Equal(t, "plot.svg", fig.Picture.Name)
	assert.Equal(t, "svg", fig.Picture.Format)
	assert.Equal(t, 40, fig.Picture.Width)
	require.NotNil(t, fig.Caption)
	assert.Equal(t, "Figure 1", *fig.Caption)
}

func TestHTMLParser_NestedLists(t *testing.T) {
	input := `<ul><li>a<ul><li>a.1</li></ul></li><li>b</li></ul><ol><li>one</li></ol>`
	stream, err := (&HTMLParser{}).Parse(strings.NewReader(input), "l.html")
	require.NoError(t, err)
	require.Len(t, stream.Elements, 4)

	want := []struct {
		text        string
		numID, ilvl int
	}{{"a", 1, 0}, {"a.1", 1, 1}, {"b", 1, 0}, {"one", 2, 0}}
	for i, w := range want {
		numID, ilvl, ok := stream.Elements[i].Numbering()
		require.True(t, ok)
		assert.Equal(t, w.text, stream.Elements[i].Text)
		assert.Equal(t, w.numID, numID)
		assert.Equal(t, w.ilvl, ilvl)
	}
}

func TestHTMLParser_RowspanBecomesContinuation(t *testing.T) {
	input := `<table>
<thead><tr><th>Region</th><th colspan="2">Sales</th></tr></thead>
<tbody>
<tr><th scope="row" rowspan="2">North</th><td>1</td><td rowspan="2">tall</td></tr>
<tr><td>2</td></tr>
</tbody></table>`
	stream, err := (&HTMLParser{}).Parse(strings.NewReader(input), "t.html")
	require.NoError(t, err)
	require.Len(t, stream.Elements, 1)
	rows := stream.Elements[0].Table.Rows
	require.Len(t, rows, 3)

	assert.True(t, rows[0][0].ColHeader)
	assert.Equal(t, 2, rows[0][1].ColSpan)
	assert.True(t, rows[1][0].RowHeader)
	require.Len(t, rows[2], 3)
	assert.Equal(t, structure.SpanContinuation, rows[2][0].RowSpan)
	assert.Equal(t, "2", rows[2][1].Text)
	assert.Equal(t, structure.SpanContinuation, rows[2][2].RowSpan)

	data, warnings := structure.BuildGrid(*stream.Elements[0].Table)
	assert.Empty(t, warnings)
	assert.Equal(t, 3, data.NumCols)
	require.Len(t, data.Cells, 6)
	var north, tall bool
	for _, c := range data.Cells {
		if c.Text == "North" {
			north = c.RowSpan == 2 && c.IsRowHeader
		}
		if c.Text == "tall" {
			tall = c.RowSpan == 2 && c.StartCol == 2
		}
	}
	assert.True(t, north)
	assert.True(t, tall)
}
