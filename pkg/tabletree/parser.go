package tabletree

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Parser turns a table markup blob into a tree.
type Parser interface {
	Parse(markup string) (*Node, error)
}

type ParserConfig struct {
	// StructureOnly skips cell content tokenization; cells get nil content.
	StructureOnly bool
	// IgnoreNodes lists extra tags whose markup is dropped while their
	// children and text are kept.
	IgnoreNodes []string
}

// HTMLParser parses HTML table markup. It is safe for concurrent use.
type HTMLParser struct {
	config ParserConfig
	strip  map[string]bool
}

var _ Parser = (*HTMLParser)(nil)

// Row group wrappers never appear in the tree. The HTML parser inserts
// tbody on its own, so keeping them would make identical tables differ.
var transparentTags = []string{"thead", "tbody"}

func NewWithConfig(config ParserConfig) *HTMLParser {
	strip := make(map[string]bool, len(transparentTags)+len(config.IgnoreNodes))
	for _, tag := range transparentTags {
		strip[tag] = true
	}
	for _, tag := range config.IgnoreNodes {
		tag = strings.ToLower(strings.TrimSpace(tag))
		switch tag {
		case "", TagRoot, TagTable, TagRow, TagCell:
			continue
		}
		strip[tag] = true
	}

	return &HTMLParser{
		config: config,
		strip:  strip,
	}
}

func New(structureOnly bool) *HTMLParser {
	return NewWithConfig(ParserConfig{StructureOnly: structureOnly})
}

// Parse builds the tree for every table directly under the document body.
// It returns ErrNoTable if there is none and a *MarkupParseError if a
// table cannot be represented.
func (p *HTMLParser) Parse(markup string) (*Node, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, ErrNoTable
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, &MarkupParseError{Reason: "parsing html", Err: err}
	}

	tables := doc.Find(TagRoot).First().ChildrenFiltered(TagTable)
	if tables.Length() == 0 {
		return nil, ErrNoTable
	}

	root := NewStructural(TagRoot)
	for _, n := range tables.Nodes {
		built, err := p.build(n)
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, built...)
	}
	return root, nil
}

// build converts an element into zero or more tree nodes; stripped tags
// contribute their children in place.
func (p *HTMLParser) build(n *html.Node) ([]*Node, error) {
	if n.Type != html.ElementNode {
		return nil, nil
	}
	if p.strip[n.Data] {
		return p.buildChildren(n)
	}
	if n.Data == TagCell {
		cell, err := p.buildCell(n)
		if err != nil {
			return nil, err
		}
		return []*Node{cell}, nil
	}

	children, err := p.buildChildren(n)
	if err != nil {
		return nil, err
	}
	return []*Node{NewStructural(n.Data, children...)}, nil
}

func (p *HTMLParser) buildChildren(n *html.Node) ([]*Node, error) {
	var nodes []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		built, err := p.build(c)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, built...)
	}
	return nodes, nil
}

func (p *HTMLParser) buildCell(n *html.Node) (*Node, error) {
	rowspan, err := spanAttr(n, "rowspan")
	if err != nil {
		return nil, err
	}
	colspan, err := spanAttr(n, "colspan")
	if err != nil {
		return nil, err
	}

	var content []string
	if !p.config.StructureOnly {
		content = p.tokenize(n)
	}
	return NewCell(rowspan, colspan, content), nil
}

// tokenize returns the cell's content: one token per character of text
// and one token per opening or closing descendant tag. The cell's own tags
// are not included.
func (p *HTMLParser) tokenize(cell *html.Node) []string {
	var tokens []string
	for c := cell.FirstChild; c != nil; c = c.NextSibling {
		tokens = p.appendTokens(tokens, c)
	}
	return tokens
}

func (p *HTMLParser) appendTokens(tokens []string, n *html.Node) []string {
	switch n.Type {
	case html.TextNode:
		for _, r := range n.Data {
			tokens = append(tokens, string(r))
		}
	case html.ElementNode:
		keep := !p.strip[n.Data]
		if keep {
			tokens = append(tokens, "<"+n.Data+">")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			tokens = p.appendTokens(tokens, c)
		}
		if keep && n.Data != "unk" {
			tokens = append(tokens, "</"+n.Data+">")
		}
	}
	return tokens
}

func spanAttr(n *html.Node, key string) (int, error) {
	for _, a := range n.Attr {
		if a.Key != key {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(a.Val))
		if err != nil {
			return 0, &MarkupParseError{Reason: key + " is not an integer", Err: err}
		}
		if v < 1 {
			return 0, &MarkupParseError{Reason: key + " must be at least 1 (got " + a.Val + ")"}
		}
		return v, nil
	}
	return 1, nil
}
