// Package tabletree builds ordered labeled trees from table markup.
//
// A tree has a structural root (tag "body") whose children are the
// tables of one document in order. Rows and cells hang below each table.
// Only cell nodes (tag "td") carry a row span, a column span and a content
// token sequence; every other node is purely structural.
package tabletree

import (
	"fmt"
	"strings"
)

const (
	TagRoot  = "body"
	TagTable = "table"
	TagRow   = "tr"
	TagCell  = "td"
)

type Node struct {
	Tag      string
	Rowspan  int
	Colspan  int
	Content  []string
	Children []*Node
}

// NewCell returns a td node. Spans below one are raised to one.
func NewCell(rowspan, colspan int, content []string) *Node {
	return &Node{
		Tag:     TagCell,
		Rowspan: max(rowspan, 1),
		Colspan: max(colspan, 1),
		Content: content,
	}
}

// NewStructural returns a non-cell node with the given children.
func NewStructural(tag string, children ...*Node) *Node {
	return &Node{Tag: tag, Children: children}
}

func (n *Node) IsCell() bool {
	return n.Tag == TagCell
}

// Size returns the number of nodes in the subtree rooted at n.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	size := 1
	for _, c := range n.Children {
		size += c.Size()
	}
	return size
}

// Clone returns a deep copy of the subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{Tag: n.Tag, Rowspan: n.Rowspan, Colspan: n.Colspan}
	if n.Content != nil {
		cp.Content = append([]string(nil), n.Content...)
	}
	for _, c := range n.Children {
		cp.Children = append(cp.Children, c.Clone())
	}
	return cp
}

// WithoutContent returns a deep copy with every cell's content removed.
func (n *Node) WithoutContent() *Node {
	cp := n.Clone()
	cp.walk(func(m *Node) {
		if m.IsCell() {
			m.Content = nil
		}
	})
	return cp
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// Bracket renders the tree in bracket notation, for debugging.
func (n *Node) Bracket() string {
	var b strings.Builder
	n.bracket(&b)
	return b.String()
}

func (n *Node) bracket(b *strings.Builder) {
	b.WriteByte('{')
	if n.IsCell() {
		fmt.Fprintf(b, `"tag": %s, "colspan": %d, "rowspan": %d, "text": %q`,
			n.Tag, n.Colspan, n.Rowspan, strings.Join(n.Content, ""))
	} else {
		fmt.Fprintf(b, `"tag": %s`, n.Tag)
	}
	for _, c := range n.Children {
		c.bracket(b)
	}
	b.WriteByte('}')
}
