// Package csharp provides a lossless, immutable syntax tree for C# source files.
//
// Trees are built from tree-sitter parse results. Every token keeps the trivia
// (whitespace, comments, preprocessor lines) that precedes it so printing a tree
// reproduces the original text exactly. Nodes are never mutated; the With*
// helpers return copies that share all untouched children with the original.
package csharp

import (
	"strings"
)

// Point is a 1-based line/column position
type Point struct {
	Line   int
	Column int
}

// Span is the original source range a node was parsed from
type Span struct {
	Start      int
	End        int
	StartPoint Point
	EndPoint   Point
}

// IsZero reports whether the span is absent (synthesized nodes)
func (s Span) IsZero() bool {
	return s.StartPoint.Line == 0
}

// Node is an immutable syntax tree node. Tokens have no children.
type Node struct {
	kind     string
	field    string
	named    bool
	leading  string
	text     string
	children []*Node
	span     Span
}

// NewToken creates a synthesized token. As in tree-sitter, a token whose kind
// is its own text (punctuation, keywords) is anonymous.
func NewToken(kind string, text string) *Node {
	return &Node{kind: kind, text: text, named: kind != text || kind == "identifier"}
}

// NewNode creates a synthesized inner node
func NewNode(kind string, children ...*Node) *Node {
	return &Node{kind: kind, named: true, children: children}
}

func (n *Node) Kind() string {
	return n.kind
}

// Field returns the tree-sitter field name this node occupies in its parent
func (n *Node) Field() string {
	return n.field
}

func (n *Node) IsNamed() bool {
	return n.named
}

func (n *Node) IsToken() bool {
	return len(n.children) == 0
}

func (n *Node) Span() Span {
	return n.span
}

func (n *Node) Children() []*Node {
	return n.children
}

func (n *Node) ChildCount() int {
	return len(n.children)
}

func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// NamedChildren returns the children that are not punctuation or keywords
func (n *Node) NamedChildren() []*Node {
	var result []*Node
	for _, child := range n.children {
		if child.named {
			result = append(result, child)
		}
	}
	return result
}

// ChildByField returns the first child carrying the given field name
func (n *Node) ChildByField(field string) *Node {
	for _, child := range n.children {
		if child.field == field {
			return child
		}
	}
	return nil
}

// FirstChildOfKind returns the first direct child whose kind is one of kinds
func (n *Node) FirstChildOfKind(kinds ...string) *Node {
	for _, child := range n.children {
		for _, kind := range kinds {
			if child.kind == kind {
				return child
			}
		}
	}
	return nil
}

// LastChildOfKind returns the last direct child whose kind is one of kinds
func (n *Node) LastChildOfKind(kinds ...string) *Node {
	for i := len(n.children) - 1; i >= 0; i-- {
		for _, kind := range kinds {
			if n.children[i].kind == kind {
				return n.children[i]
			}
		}
	}
	return nil
}

// ChildrenOfKind returns every direct child of the given kind
func (n *Node) ChildrenOfKind(kind string) []*Node {
	var result []*Node
	for _, child := range n.children {
		if child.kind == kind {
			result = append(result, child)
		}
	}
	return result
}

// IndexOf returns the position of child among the direct children or -1
func (n *Node) IndexOf(child *Node) int {
	for i, each := range n.children {
		if each == child {
			return i
		}
	}
	return -1
}

// HasToken reports whether a direct child token has the given text
func (n *Node) HasToken(text string) bool {
	for _, child := range n.children {
		if child.IsToken() && child.text == text {
			return true
		}
	}
	return false
}

// Tokens returns the leaves of the subtree in document order
func (n *Node) Tokens() []*Node {
	var tokens []*Node
	n.walkTokens(func(token *Node) {
		tokens = append(tokens, token)
	})
	return tokens
}

func (n *Node) walkTokens(fn func(token *Node)) {
	if n.IsToken() {
		fn(n)
		return
	}
	for _, child := range n.children {
		child.walkTokens(fn)
	}
}

// FirstToken returns the leftmost leaf, which owns the node's leading trivia
func (n *Node) FirstToken() *Node {
	current := n
	for !current.IsToken() {
		current = current.children[0]
	}
	return current
}

// TokenText returns the text of a token, without trivia
func (n *Node) TokenText() string {
	return n.text
}

// Leading returns the trivia in front of the node's first token
func (n *Node) Leading() string {
	return n.FirstToken().leading
}

// String prints the subtree including its leading trivia
func (n *Node) String() string {
	var sb strings.Builder
	n.walkTokens(func(token *Node) {
		sb.WriteString(token.leading)
		sb.WriteString(token.text)
	})
	return sb.String()
}

// Text prints the subtree without the leading trivia of its first token
func (n *Node) Text() string {
	var sb strings.Builder
	first := true
	n.walkTokens(func(token *Node) {
		if !first {
			sb.WriteString(token.leading)
		}
		first = false
		sb.WriteString(token.text)
	})
	return sb.String()
}

// CompactText concatenates token text with all trivia removed
func (n *Node) CompactText() string {
	var sb strings.Builder
	n.walkTokens(func(token *Node) {
		sb.WriteString(token.text)
	})
	return sb.String()
}

// Location returns the span of the node, or of the first descendant that has one
func (n *Node) Location() Span {
	if !n.span.IsZero() {
		return n.span
	}
	for _, child := range n.children {
		if span := child.Location(); !span.IsZero() {
			return span
		}
	}
	return Span{}
}

func (n *Node) clone() *Node {
	copied := *n
	return &copied
}

// WithChildren returns a copy of n with the given children
func (n *Node) WithChildren(children []*Node) *Node {
	copied := n.clone()
	copied.children = children
	return copied
}

// WithField returns a copy of n tagged with a field name
func (n *Node) WithField(field string) *Node {
	if n.field == field {
		return n
	}
	copied := n.clone()
	copied.field = field
	return copied
}

// WithText returns a copy of a token with new text
func (n *Node) WithText(text string) *Node {
	Assert("WithText requires a token", n.IsToken())
	copied := n.clone()
	copied.text = text
	return copied
}

// ReplaceChild returns a copy of n with old replaced by replacement. The field
// name of old is carried over.
func (n *Node) ReplaceChild(old *Node, replacement *Node) *Node {
	idx := n.IndexOf(old)
	if idx < 0 || old == replacement {
		return n
	}
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	children[idx] = replacement.WithField(old.field)
	return n.WithChildren(children)
}

// RemoveChild returns a copy of n without child
func (n *Node) RemoveChild(child *Node) *Node {
	idx := n.IndexOf(child)
	if idx < 0 {
		return n
	}
	children := make([]*Node, 0, len(n.children)-1)
	children = append(children, n.children[:idx]...)
	children = append(children, n.children[idx+1:]...)
	return n.WithChildren(children)
}

// InsertChild returns a copy of n with child inserted at index
func (n *Node) InsertChild(index int, child *Node) *Node {
	children := make([]*Node, 0, len(n.children)+1)
	children = append(children, n.children[:index]...)
	children = append(children, child)
	children = append(children, n.children[index:]...)
	return n.WithChildren(children)
}

// WithLeading returns a copy of n whose first token carries the given trivia
func (n *Node) WithLeading(leading string) *Node {
	if n.IsToken() {
		if n.leading == leading {
			return n
		}
		copied := n.clone()
		copied.leading = leading
		return copied
	}
	first := n.children[0]
	return n.ReplaceChild(first, first.WithLeading(leading))
}

// TrimLeading drops the leading trivia of the first token
func (n *Node) TrimLeading() *Node {
	return n.WithLeading("")
}

// Find returns the first node in the subtree, in pre-order, for which match holds
func (n *Node) Find(match func(*Node) bool) *Node {
	if match(n) {
		return n
	}
	for _, child := range n.children {
		if found := child.Find(match); found != nil {
			return found
		}
	}
	return nil
}

// Walk calls fn for every node in pre-order. Returning false skips the children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}
