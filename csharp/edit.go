package csharp

import "strings"

// RemoveLine drops child from parent. When the removed node started its own line,
// the line goes with it; any comments in front of it are kept on the following token.
func RemoveLine(parent *Node, child *Node) *Node {
	idx := parent.IndexOf(child)
	if idx < 0 {
		return parent
	}
	removedLeading := child.Leading()
	result := parent.RemoveChild(child)
	next := result.Child(idx)
	if next == nil {
		return result
	}
	var leading string
	if strings.Contains(removedLeading, "\n") {
		leading = TriviaBeforeLastLine(removedLeading) + next.Leading()
	} else {
		leading = removedLeading
	}
	return result.ReplaceChild(next, next.WithLeading(leading))
}

// RemoveListItem removes item from a comma separated list (attribute lists,
// argument lists, parameter lists) together with one adjacent separator.
func RemoveListItem(list *Node, item *Node) *Node {
	idx := list.IndexOf(item)
	if idx < 0 {
		return list
	}
	children := list.children
	if next := list.Child(idx + 1); next != nil && next.IsToken() && next.text == "," {
		// take the following comma, the next item inherits our trivia
		rest := make([]*Node, 0, len(children)-2)
		rest = append(rest, children[:idx]...)
		if after := list.Child(idx + 2); after != nil {
			rest = append(rest, after.WithLeading(item.Leading()))
			rest = append(rest, children[idx+3:]...)
		}
		return list.WithChildren(rest)
	}
	if prev := list.Child(idx - 1); prev != nil && prev.IsToken() && prev.text == "," {
		rest := make([]*Node, 0, len(children)-2)
		rest = append(rest, children[:idx-1]...)
		rest = append(rest, children[idx+1:]...)
		return list.WithChildren(rest)
	}
	return list.RemoveChild(item)
}

// InsertLineBefore inserts node at index so that it takes over the line of the
// child currently there; that child moves to a new line with the same indentation.
func InsertLineBefore(parent *Node, index int, node *Node, newline string) *Node {
	occupant := parent.Child(index)
	if occupant == nil {
		return parent.InsertChild(index, node)
	}
	leading := occupant.Leading()
	indent := Indentation(leading)
	if !strings.Contains(leading, "\n") {
		indent = ""
	}
	moved := occupant.WithLeading(newline + indent)
	result := parent.ReplaceChild(occupant, moved)
	return result.InsertChild(index, node.WithLeading(leading))
}

// InsertLineAfter inserts node on a new line after the child at index, using
// the indentation of that child.
func InsertLineAfter(parent *Node, index int, node *Node, newline string) *Node {
	anchor := parent.Child(index)
	Assert("InsertLineAfter requires an anchor", anchor != nil)
	indent := Indentation(anchor.Leading())
	return parent.InsertChild(index+1, node.WithLeading(newline+indent))
}

// PrependCommentLine returns trivia with an extra comment line at the end, so
// the comment sits directly above the token that owns the trivia.
func PrependCommentLine(leading string, comment string, newline string) string {
	indent := Indentation(leading)
	if !strings.Contains(leading, "\n") {
		return leading + comment + newline
	}
	return leading + comment + newline + indent
}
