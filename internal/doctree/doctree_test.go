package doctree

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// sample builds:
//
//	Title "Report"
//	  Heading "Intro"
//	    list: "a", list: "a.1"
//	    paragraph "after"
//	    table 2x2 with a wide header
//	    picture
func sample() *Document {
	d := New("report")
	title := d.AddText(Root, LabelTitle, "Report")
	intro := d.AddHeading(title, "Intro")
	list := d.AddGroup(intro, GroupList, "list")
	d.AddText(list, LabelListItem, "a")
	nested := d.AddGroup(list, GroupList, "list")
	d.AddText(nested, LabelListItem, "a.1")
	p := d.AddText(intro, LabelParagraph, "after")
	d.SetPage(p, 2)
	d.AddTable(intro, TableData{NumRows: 2, NumCols: 2, Cells: []TableCell{
		{Text: "wide", RowSpan: 1, ColSpan: 2, StartRow: 0, EndRow: 1, StartCol: 0, EndCol: 2, IsColHeader: true},
		{Text: "x|y", RowSpan: 1, ColSpan: 1, StartRow: 1, EndRow: 2, StartCol: 0, EndCol: 1},
		{Text: "z", RowSpan: 1, ColSpan: 1, StartRow: 1, EndRow: 2, StartCol: 1, EndCol: 2},
	}})
	caption := "Figure 1"
	d.AddPicture(intro, PictureData{Name: "image1.png", Format: "png"}, &caption)
	return d
}

func TestDocumentStructure(t *testing.T) {
	d := sample()
	assert.Equal(t, 9, d.Len())
	assert.False(t, d.IsEmpty())
	assert.True(t, New("x").IsEmpty())

	top := d.Children(Root)
	require.Len(t, top, 1)
	title, ok := d.Node(top[0])
	require.True(t, ok)
	assert.Equal(t, LabelTitle, title.Label)
	assert.Equal(t, 0, d.Depth(title.Ref))

	intro, _ := d.Node(title.Children[0])
	assert.Equal(t, 1, d.Depth(intro.Ref))
	assert.Len(t, intro.Children, 4)

	_, ok = d.Node(Ref(99))
	assert.False(t, ok)
}

func TestInvalidParentAttachesToRoot(t *testing.T) {
	d := New("x")
	ref := d.AddText(Ref(42), LabelParagraph, "p")
	n, _ := d.Node(ref)
	assert.Equal(t, Root, n.Parent)
	assert.Equal(t, []Ref{ref}, d.Children(Root))
}

func TestWalkSkipsChildren(t *testing.T) {
	d := sample()
	var seen []string
	d.Walk(func(n Node, depth int) bool {
		seen = append(seen, n.Text)
		return n.Label != LabelSectionHeader
	})
	assert.Equal(t, []string{"Report", "Intro"}, seen)
}

func TestText(t *testing.T) {
	assert.Equal(t, "Report\nIntro\na\na.1\nafter\nwide x|y z", sample().Text())
}

func TestGrid(t *testing.T) {
	var table *TableData
	sample().Walk(func(n Node, _ int) bool {
		if n.Table != nil {
			table = n.Table
		}
		return true
	})
	require.NotNil(t, table)
	assert.Equal(t, [][]int{{0, 0}, {1, 2}}, table.Grid())
}

func TestTreeJSON(t *testing.T) {
	out, err := json.Marshal(sample())
	require.NoError(t, err)

	var tree DocTree
	require.NoError(t, json.Unmarshal(out, &tree))
	assert.Equal(t, "report", tree.Title)
	require.Len(t, tree.Children, 1)
	intro := tree.Children[0].Children[0]
	assert.Equal(t, LabelSectionHeader, intro.Label)
	require.Len(t, intro.Children, 4)
	assert.Equal(t, GroupList, intro.Children[0].Group)
	assert.Equal(t, 2, intro.Children[1].Page)
	assert.Equal(t, 2, intro.Children[2].Table.Cells[0].ColSpan)
	assert.Equal(t, "Figure 1", intro.Children[3].Caption)

	assert.Contains(t, string(out), `"start_row_offset_idx"`)
}

func TestEmptyTreeJSON(t *testing.T) {
	out, err := json.Marshal(New("empty"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"empty","children":[]}`, string(out))
}

func TestExportMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sample().ExportMarkdown(&buf))
	want := "# Report\n\n" +
		"## Intro\n\n" +
		"- a\n  - a.1\n\n" +
		"after\n\n" +
		"| wide | wide |\n|---|---|\n| x\\|y | z |\n\n" +
		"<!-- image -->\n\n" +
		"Figure 1\n"
	assert.Equal(t, want, buf.String())
}

func TestExportMarkdownParsesBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sample().ExportMarkdown(&buf))

	src := buf.Bytes()
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(src))

	var headings, lists, tables int
	require.NoError(t, ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Heading:
			headings++
		case *ast.List:
			lists++
		case *east.Table:
			tables++
		}
		return ast.WalkContinue, nil
	}))
	assert.Equal(t, 2, headings)
	assert.Equal(t, 2, lists) // outer list plus the nested one
	assert.Equal(t, 1, tables)
}

func TestExportHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sample().ExportHTML(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>report</title>")
	assert.Contains(t, out, "<h1>Report</h1>")
	assert.Contains(t, out, "<h2>Intro</h2>")
	assert.Contains(t, out, "<ul><li>a<ul><li>a.1</li></ul></li></ul>")
	assert.Contains(t, out, `<th colspan="2">wide</th>`)
	assert.Contains(t, out, `<img src="image1.png"/>`)
	assert.Contains(t, out, "<figcaption>Figure 1</figcaption>")

	// The output is well-formed enough to parse back.
	_, err := html.Parse(strings.NewReader(out))
	assert.NoError(t, err)
}
