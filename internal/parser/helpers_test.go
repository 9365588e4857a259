package parser

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dgallion1/docstruct/internal/doctree"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recorder is a structure.Tree that logs each insertion as
// "<depth> <label> <detail>".
type recorder struct {
	depth map[doctree.Ref]int
	out   []string
	next  doctree.Ref
}

func (r *recorder) add(parent doctree.Ref, line string) doctree.Ref {
	if r.depth == nil {
		r.depth = make(map[doctree.Ref]int)
	}
	r.next++
	d := 0
	if parent != doctree.Root {
		d = r.depth[parent] + 1
	}
	r.depth[r.next] = d
	r.out = append(r.out, fmt.Sprintf("%d %s", d, line))
	return r.next
}

func (r *recorder) lines() []string { return r.out }

func (r *recorder) AddText(parent doctree.Ref, label doctree.Label, text string) doctree.Ref {
	return r.add(parent, string(label)+" "+text)
}

func (r *recorder) AddHeading(parent doctree.Ref, text string) doctree.Ref {
	return r.add(parent, string(doctree.LabelSectionHeader)+" "+text)
}

func (r *recorder) AddGroup(parent doctree.Ref, label doctree.GroupLabel, _ string) doctree.Ref {
	return r.add(parent, "group "+string(label))
}

func (r *recorder) AddTable(parent doctree.Ref, data doctree.TableData) doctree.Ref {
	return r.add(parent, fmt.Sprintf("table %dx%d", data.NumRows, data.NumCols))
}

func (r *recorder) AddPicture(parent doctree.Ref, data doctree.PictureData, _ *string) doctree.Ref {
	return r.add(parent, "picture "+data.Name)
}
