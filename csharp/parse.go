package csharp

import (
	"fmt"
	"os"

	"fortio.org/safecast"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
)

// File is a parsed C# compilation unit
type File struct {
	Path        string
	Source      []byte
	Root        *Node
	Newline     string
	ParseErrors []ParseError
}

// ParseError describes a region tree-sitter could not parse
type ParseError struct {
	Location Span
	Text     string
	Missing  bool
}

func (e ParseError) Error() string {
	if e.Missing {
		return fmt.Sprintf("missing %s at %d:%d", e.Text, e.Location.StartPoint.Line, e.Location.StartPoint.Column)
	}
	return fmt.Sprintf("syntax error at %d:%d near %q", e.Location.StartPoint.Line, e.Location.StartPoint.Column, e.Text)
}

// Language returns the tree-sitter C# language
func Language() *tree_sitter.Language {
	return tree_sitter.NewLanguage(tree_sitter_csharp.Language())
}

// ParseCSharp parses C# source code and returns a tree-sitter tree
func ParseCSharp(source []byte) (*tree_sitter.Tree, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(Language()); err != nil {
		return nil, fmt.Errorf("loading C# grammar: %w", err)
	}
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned no tree")
	}
	return tree, nil
}

// ReadFile reads and parses a C# file from disk
func ReadFile(path string) (*File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFile(path, source)
}

// ParseFile parses source into a lossless syntax tree
func ParseFile(path string, source []byte) (*File, error) {
	tree, err := ParseCSharp(source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	defer tree.Close()

	b := &builder{source: source}
	root, err := b.convert(tree.RootNode(), "")
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", path, err)
	}
	eof := &Node{kind: "eof", named: true, leading: string(source[b.offset:])}
	root = root.WithChildren(append(append([]*Node{}, root.children...), eof))

	return &File{
		Path:        path,
		Source:      source,
		Root:        root,
		Newline:     DetectNewline(source),
		ParseErrors: b.errors,
	}, nil
}

// builder converts a tree-sitter tree. offset is the end of the last emitted
// token; everything between it and the next token becomes leading trivia.
type builder struct {
	source []byte
	offset uint
	errors []ParseError
}

func (b *builder) convert(tsNode *tree_sitter.Node, field string) (*Node, error) {
	span, err := b.span(tsNode)
	if err != nil {
		return nil, err
	}
	if tsNode.IsMissing() {
		b.errors = append(b.errors, ParseError{Location: span, Text: tsNode.Kind(), Missing: true})
	} else if tsNode.IsError() {
		b.errors = append(b.errors, ParseError{Location: span, Text: tsNode.Utf8Text(b.source)})
	}

	node := &Node{
		kind:  tsNode.Kind(),
		field: field,
		named: tsNode.IsNamed(),
		span:  span,
	}
	if tsNode.ChildCount() == 0 {
		start, end := tsNode.StartByte(), tsNode.EndByte()
		if start < b.offset {
			// zero width or overlapping tokens produced by error recovery
			start = b.offset
		}
		if end < start {
			end = start
		}
		node.leading = string(b.source[b.offset:start])
		node.text = string(b.source[start:end])
		b.offset = end
		return node, nil
	}

	cursor := tsNode.Walk()
	defer cursor.Close()
	if cursor.GotoFirstChild() {
		for {
			child := cursor.Node()
			// comments and preprocessor directives stay in the trivia of the next token;
			// error recovery also reports skipped text as extras, those are kept as nodes
			if !child.IsExtra() || child.IsError() || child.HasError() {
				converted, err := b.convert(child, cursor.FieldName())
				if err != nil {
					return nil, err
				}
				node.children = append(node.children, converted)
			}
			if !cursor.GotoNextSibling() {
				break
			}
		}
	}
	if len(node.children) == 0 {
		// every child was trivia, keep an empty token so the node still prints
		node.children = []*Node{{kind: "", leading: "", text: ""}}
	}
	return node, nil
}

func (b *builder) span(tsNode *tree_sitter.Node) (Span, error) {
	start, err := safecast.Conv[int](tsNode.StartByte())
	if err != nil {
		return Span{}, err
	}
	end, err := safecast.Conv[int](tsNode.EndByte())
	if err != nil {
		return Span{}, err
	}
	startPoint, err := toPoint(tsNode.StartPosition())
	if err != nil {
		return Span{}, err
	}
	endPoint, err := toPoint(tsNode.EndPosition())
	if err != nil {
		return Span{}, err
	}
	return Span{Start: start, End: end, StartPoint: startPoint, EndPoint: endPoint}, nil
}

func toPoint(p tree_sitter.Point) (Point, error) {
	row, err := safecast.Conv[int](p.Row)
	if err != nil {
		return Point{}, err
	}
	col, err := safecast.Conv[int](p.Column)
	if err != nil {
		return Point{}, err
	}
	// Convert from 0-based to 1-based
	return Point{Line: row + 1, Column: col + 1}, nil
}

// DetectNewline returns the line terminator used by source
func DetectNewline(source []byte) string {
	for i, c := range source {
		if c == '\n' {
			if i > 0 && source[i-1] == '\r' {
				return "\r\n"
			}
			return "\n"
		}
	}
	return "\n"
}
