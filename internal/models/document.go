package models

import "strings"

// Element categories produced by the document parsers under evaluation.
const (
	CategoryParagraph = "paragraph"
	CategoryHeading1  = "heading1"
	CategoryHeader    = "header"
	CategoryFooter    = "footer"
	CategoryFootnote  = "footnote"
	CategoryCaption   = "caption"
	CategoryEquation  = "equation"
	CategoryFigure    = "figure"
	CategoryList      = "list"
	CategoryTable     = "table"
	CategoryChart     = "chart"
	CategoryIndex     = "index"
)

// Corpus maps a document (image) identifier to its parsed document.
type Corpus map[string]Document

type Document struct {
	Elements []Element `json:"elements"`
}

type Element struct {
	ID          int     `json:"id"`
	Category    string  `json:"category"`
	Coordinates []Point `json:"coordinates"`
	Content     Content `json:"content"`
}

// Point is one corner of an element's bounding quadrilateral. Units are
// whatever the producing parser used.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Content struct {
	Text     string `json:"text"`
	HTML     string `json:"html"`
	Markdown string `json:"markdown"`
}

// Is reports whether the element belongs to category, ignoring case.
func (e Element) Is(category string) bool {
	return strings.EqualFold(e.Category, category)
}

// Keys returns the document identifiers of the corpus in unspecified order.
func (c Corpus) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
