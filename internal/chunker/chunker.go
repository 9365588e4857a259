package chunker

import (
	"strings"

	"github.com/dgallion1/docstruct/internal/doctree"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     100,
	}
}

// ChunkDocument chunks a built document. See ChunkTree.
func ChunkDocument(doc *doctree.Document, cfg Config) []doctree.Chunk {
	return ChunkTree(doc.Tree(), cfg)
}

// ChunkTree walks a DocTree and produces structure-aware chunks. Content
// between two headings forms one section; its chunks carry the titles of
// the enclosing headings as breadcrumb.
func ChunkTree(tree *doctree.DocTree, cfg Config) []doctree.Chunk {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1500
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = 100
	}

	c := &collector{cfg: cfg}
	c.section(tree.Children, nil)
	return c.chunks
}

type collector struct {
	cfg    Config
	chunks []doctree.Chunk
}

// section emits the content of children under breadcrumb bc. Headings
// close the running body and open a nested section.
func (c *collector) section(children []*doctree.DocNode, bc []string) {
	var b body
	for _, child := range children {
		switch {
		case child.Label == doctree.LabelTitle, child.Label == doctree.LabelSectionHeader:
			c.emit(&b, bc)
			c.section(child.Children, appendCrumb(bc, child.Text))
		case child.Label == doctree.LabelGroup && child.Group == doctree.GroupSection:
			c.emit(&b, bc)
			c.section(child.Children, bc)
		default:
			b.add(child)
		}
	}
	c.emit(&b, bc)
}

// emit splits the accumulated body into chunks and resets it.
func (c *collector) emit(b *body, bc []string) {
	defer b.reset()
	text := strings.Join(b.blocks, "\n\n")
	if text == "" {
		return
	}
	parts := []string{text}
	if EstimateTokens(text) > c.cfg.ChunkSize {
		parts = splitText(text, c.cfg.ChunkSize, c.cfg.ChunkOverlap)
	}
	for _, part := range parts {
		if EstimateTokens(part) < c.cfg.MinChunk {
			continue
		}
		c.chunks = append(c.chunks, doctree.Chunk{
			Text:       part,
			Index:      len(c.chunks),
			Breadcrumb: copyBreadcrumb(bc),
			PageStart:  b.pageStart,
			PageEnd:    b.pageEnd,
		})
	}
}

// body accumulates rendered content blocks of one section.
type body struct {
	blocks             []string
	pageStart, pageEnd int
}

func (b *body) reset() {
	*b = body{}
}

func (b *body) add(n *doctree.DocNode) {
	var sb strings.Builder
	renderNode(&sb, n, 0)
	if text := strings.TrimSpace(sb.String()); text != "" {
		b.blocks = append(b.blocks, text)
	}
	b.pages(n)
}

func (b *body) pages(n *doctree.DocNode) {
	if n.Page > 0 {
		if b.pageStart == 0 || n.Page < b.pageStart {
			b.pageStart = n.Page
		}
		b.pageEnd = max(b.pageEnd, n.Page)
	}
	for _, child := range n.Children {
		b.pages(child)
	}
}

// renderNode writes the plain-text form of a content node. depth counts
// the enclosing list groups.
func renderNode(sb *strings.Builder, n *doctree.DocNode, depth int) {
	switch n.Label {
	case doctree.LabelListItem:
		writeLine(sb, strings.Repeat("  ", max(depth-1, 0))+"- "+n.Text)
	case doctree.LabelTable:
		if n.Table != nil {
			for _, row := range tableRows(n.Table) {
				writeLine(sb, strings.Join(row, " | "))
			}
		}
	case doctree.LabelPicture:
		if n.Caption != "" {
			writeLine(sb, n.Caption)
		}
	default:
		if n.Text != "" {
			writeLine(sb, n.Text)
		}
	}

	next := depth
	if n.Label == doctree.LabelGroup && n.Group == doctree.GroupList {
		next = depth + 1
	}
	for _, child := range n.Children {
		renderNode(sb, child, next)
	}
}

func writeLine(sb *strings.Builder, s string) {
	if sb.Len() > 0 {
		sb.WriteByte('\n')
	}
	sb.WriteString(s)
}

// tableRows returns the cell text of each grid row; a merged cell is
// listed once, in the row and column where it starts.
func tableRows(t *doctree.TableData) [][]string {
	rows := make([][]string, t.NumRows)
	for _, cell := range t.Cells {
		if cell.StartRow >= 0 && cell.StartRow < t.NumRows {
			rows[cell.StartRow] = append(rows[cell.StartRow], cell.Text)
		}
	}
	return rows
}

func appendCrumb(bc []string, title string) []string {
	out := make([]string, 0, len(bc)+1)
	out = append(out, bc...)
	if title != "" {
		out = append(out, title)
	}
	return out
}

// splitText breaks text into chunks of approximately targetTokens, with overlap.
func splitText(text string, targetTokens, overlapTokens int) []string {
	// Split by paragraphs first.
	paragraphs := splitByParagraphs(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, para := range paragraphs {
		paraTokens := EstimateTokens(para)

		// If a single paragraph exceeds the target, split it further.
		if paraTokens > targetTokens {
			// Flush current buffer.
			if currentTokens > 0 {
				result = append(result, current.String())
				current.Reset()
				currentTokens = 0
			}
			// Split the large paragraph by sentences.
			subParts := splitBySentences(para, targetTokens, overlapTokens)
			result = append(result, subParts...)
			continue
		}

		// Would adding this paragraph exceed the target?
		if currentTokens+paraTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())

			// Start next chunk with overlap from end of current.
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitBySentences breaks a large paragraph into sentence-based chunks.
func splitBySentences(text string, targetTokens, overlapTokens int) []string {
	sentences := splitSentences(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range sentences {
		sentTokens := EstimateTokens(sent)

		if currentTokens+sentTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	return sentences
}

// getOverlapText extracts the last N tokens worth of text for overlap.
func getOverlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	// Approximate: 1.33 tokens per word.
	targetWords := int(float64(targetTokens) / 1.33)
	if targetWords <= 0 || len(words) <= targetWords {
		return ""
	}
	return strings.Join(words[len(words)-targetWords:], " ")
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}
