package structure

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"

	"github.com/dgallion1/docstruct/internal/doctree"
)

// Tree is the node-creation surface the builder writes to. *doctree.Document
// implements it.
type Tree interface {
	AddText(parent doctree.Ref, label doctree.Label, text string) doctree.Ref
	AddHeading(parent doctree.Ref, text string) doctree.Ref
	AddGroup(parent doctree.Ref, label doctree.GroupLabel, name string) doctree.Ref
	AddTable(parent doctree.Ref, data doctree.TableData) doctree.Ref
	AddPicture(parent doctree.Ref, data doctree.PictureData, caption *string) doctree.Ref
}

// pager is implemented by trees that record source pages.
type pager interface {
	SetPage(ref doctree.Ref, page int)
}

// UnknownStylePolicy selects how paragraphs with unrecognized styles are
// handled.
type UnknownStylePolicy int

const (
	// UnknownAsParagraph keeps the text as a plain paragraph.
	UnknownAsParagraph UnknownStylePolicy = iota
	// UnknownSkip drops the paragraph.
	UnknownSkip
)

// ParseUnknownStylePolicy maps "paragraph" or "skip" to a policy.
func ParseUnknownStylePolicy(s string) (UnknownStylePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "paragraph":
		return UnknownAsParagraph, nil
	case "skip":
		return UnknownSkip, nil
	}
	return 0, fmt.Errorf("unknown style policy %q", s)
}

// Options configures a Builder.
type Options struct {
	UnknownStyles UnknownStylePolicy
	// KeepEmpty emits nodes for paragraphs with no text. Empty paragraphs
	// always take part in list closing either way.
	KeepEmpty bool
	Logger    *slog.Logger
}

// Builder consumes elements one at a time and writes the resulting
// hierarchy into a Tree. A Builder serves one document.
type Builder struct {
	tree     Tree
	opts     Options
	log      *slog.Logger
	levels   Levels
	lists    listState
	warnings []Warning
}

// NewBuilder returns a builder writing into tree.
func NewBuilder(tree Tree, opts Options) *Builder {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	b := &Builder{tree: tree, opts: opts, log: log}
	b.lists.warn = b.warn
	return b
}

// Build runs every element through a new builder and returns the warnings.
func Build(tree Tree, elements []Element, opts Options) []Warning {
	return BuildSeq(tree, slices.Values(elements), opts)
}

// BuildSeq is Build over a lazily produced element stream.
func BuildSeq(tree Tree, elements iter.Seq[Element], opts Options) []Warning {
	b := NewBuilder(tree, opts)
	for el := range elements {
		b.Add(el)
	}
	return b.Warnings()
}

// Warnings returns the diagnostics collected so far.
func (b *Builder) Warnings() []Warning {
	return slices.Clone(b.warnings)
}

// Add places one element.
func (b *Builder) Add(el Element) {
	cl, err := Classify(el)
	var kindErr *KindError
	if errors.As(err, &kindErr) {
		b.warn(WarningUnknownElement, kindErr.Error())
		return
	}

	switch cl.Class {
	case ClassTable:
		b.addTable(el)
	case ClassFigure:
		b.addFigure(el)
	default:
		b.addText(el, cl, err)
	}
}

func (b *Builder) addText(el Element, cl Classified, classifyErr error) {
	text := strings.TrimSpace(el.Text)

	if cl.Class == ClassListItem {
		b.setPage(b.lists.item(b.tree, &b.levels, cl.NumID, cl.Ilvl, text), el.Page)
		return
	}
	if (el.NumID == nil) != (el.Ilvl == nil) {
		b.warn(WarningMalformedList, fmt.Sprintf("paragraph %q has partial numbering, treated as plain text", preview(text)))
	}
	// Tables and figures leave an open list alone; the next non-list
	// paragraph ends it.
	if b.lists.active() {
		b.lists.close(&b.levels)
	}

	if text == "" && !b.opts.KeepEmpty {
		return
	}

	var styleErr *StyleError
	if errors.As(classifyErr, &styleErr) {
		if b.opts.UnknownStyles == UnknownSkip {
			b.warn(WarningUnknownStyle, styleErr.Error()+", paragraph skipped")
			return
		}
		b.warn(WarningUnknownStyle, styleErr.Error()+", kept as paragraph")
	}

	var ref doctree.Ref
	switch cl.Class {
	case ClassTitle:
		ref = placeTitle(b.tree, &b.levels, text)
	case ClassHeading:
		if !cl.Style.HasLevel {
			ref = placeUnleveledHeading(b.tree, &b.levels, text)
			break
		}
		ref = placeHeading(b.tree, &b.levels, b.clampHeading(cl.Style.Level), text)
	default:
		ref = b.tree.AddText(b.levels.Parent(b.levels.OpenLevel()), doctree.LabelParagraph, text)
	}
	b.setPage(ref, el.Page)
}

func (b *Builder) clampHeading(level int) int {
	clamped := min(max(level, 0), MaxLevels-1)
	if clamped != level {
		b.warn(WarningLevelClamped, fmt.Sprintf("heading level %d outside 0..%d, clamped to %d", level, MaxLevels-1, clamped))
	}
	return clamped
}

func (b *Builder) addTable(el Element) {
	var spec TableSpec
	if el.Table != nil {
		spec = *el.Table
	}
	data, warnings := BuildGrid(spec)
	for _, w := range warnings {
		b.warn(w.Type, w.Message)
	}
	ref := b.tree.AddTable(b.levels.Parent(b.levels.OpenLevel()), data)
	b.setPage(ref, el.Page)
}

func (b *Builder) addFigure(el Element) {
	var data doctree.PictureData
	if el.Picture != nil {
		data = *el.Picture
	}
	ref := b.tree.AddPicture(b.levels.Parent(b.levels.OpenLevel()), data, el.Caption)
	b.setPage(ref, el.Page)
}

func (b *Builder) setPage(ref doctree.Ref, page int) {
	if page <= 0 {
		return
	}
	if p, ok := b.tree.(pager); ok {
		p.SetPage(ref, page)
	}
}

func (b *Builder) warn(t WarningType, msg string) {
	b.warnings = append(b.warnings, Warning{Type: t, Message: msg})
	b.log.Warn(msg, "type", string(t))
}

func preview(s string) string {
	if r := []rune(s); len(r) > 40 {
		return string(r[:40]) + "..."
	}
	return s
}
