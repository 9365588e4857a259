package structure

import (
	"fmt"
	"strconv"
	"strings"
)

// StyleClass is the closed set of paragraph style categories.
type StyleClass int

const (
	StyleGeneric StyleClass = iota
	StyleTitle
	StyleHeading
	StyleUnrecognized
)

// Style is a parsed paragraph style name.
type Style struct {
	Class    StyleClass
	Name     string
	Level    int
	HasLevel bool
}

// genericStyles are body styles that become plain paragraphs.
var genericStyles = map[string]bool{
	"Paragraph":      true,
	"Normal":         true,
	"Subtitle":       true,
	"Author":         true,
	"Default Text":   true,
	"List Paragraph": true,
	"List Bullet":    true,
	"Quote":          true,
	"Intense Quote":  true,
	"Caption":        true,
	"Body Text":      true,
	"No Spacing":     true,
	"Code":           true,
}

// ParseStyle splits a style name into name and optional level and sorts it
// into a StyleClass. "Heading 2" and "Heading:2" both yield
// {StyleHeading, "Heading", 2}. An empty name is "Normal".
func ParseStyle(raw string) Style {
	if raw == "" {
		raw = "Normal"
	}
	st := Style{Name: raw}

	if parts := strings.Split(raw, ":"); len(parts) == 2 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			st.Name, st.Level, st.HasLevel = parts[0], n, true
		}
	}
	if !st.HasLevel && strings.Contains(raw, "Heading") {
		if parts := strings.Split(raw, " "); len(parts) == 2 {
			if n, err := strconv.Atoi(parts[1]); err == nil {
				st.Name, st.Level, st.HasLevel = parts[0], n, true
			}
		}
	}

	switch {
	case st.Name == "Title":
		st.Class = StyleTitle
	case strings.Contains(st.Name, "Heading"):
		st.Class = StyleHeading
	case genericStyles[st.Name], strings.HasPrefix(st.Name, "List "):
		st.Class = StyleGeneric
	default:
		st.Class = StyleUnrecognized
	}
	return st
}

// Class is the semantic kind of a classified element.
type Class int

const (
	ClassParagraph Class = iota
	ClassTitle
	ClassHeading
	ClassListItem
	ClassTable
	ClassFigure
)

// Classified is an element's semantic kind plus the metadata derived from it.
type Classified struct {
	Class Class
	Style Style
	NumID int // valid for ClassListItem
	Ilvl  int // valid for ClassListItem
}

// StyleError reports a paragraph style that matches no known category.
type StyleError struct {
	Style string
}

func (e *StyleError) Error() string {
	return fmt.Sprintf("unrecognized paragraph style %q", e.Style)
}

// KindError reports an element kind the builder cannot place.
type KindError struct {
	Kind Kind
	Tag  string
}

func (e *KindError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("unsupported element %s (%s)", e.Tag, e.Kind)
	}
	return fmt.Sprintf("unsupported element kind %s", e.Kind)
}

// Classify maps an element to its semantic kind. Numbering wins over style:
// any text element carrying both a numbering id and an indent level is a
// list item. A text element whose style is unrecognized is returned as
// ClassParagraph together with a *StyleError so the caller can pick a
// fallback.
func Classify(el Element) (Classified, error) {
	switch el.Kind {
	case KindTable:
		return Classified{Class: ClassTable}, nil
	case KindFigure:
		return Classified{Class: ClassFigure}, nil
	case KindParagraph, KindHeading, KindListItem:
	default:
		return Classified{}, &KindError{Kind: el.Kind, Tag: el.Tag}
	}

	st := ParseStyle(el.Style)
	if numID, ilvl, ok := el.Numbering(); ok {
		return Classified{Class: ClassListItem, Style: st, NumID: numID, Ilvl: ilvl}, nil
	}

	switch st.Class {
	case StyleTitle:
		return Classified{Class: ClassTitle, Style: st}, nil
	case StyleHeading:
		return Classified{Class: ClassHeading, Style: st}, nil
	case StyleGeneric:
		return Classified{Class: ClassParagraph, Style: st}, nil
	}
	if el.Kind == KindHeading {
		st.Class = StyleHeading
		return Classified{Class: ClassHeading, Style: st}, nil
	}
	return Classified{Class: ClassParagraph, Style: st}, &StyleError{Style: el.Style}
}
