package csharp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const editSource = `class A
{
    [Ignore]
    public void M() { }
}
`

func attributeList(name string) *Node {
	return NewNode("attribute_list",
		NewToken("[", "["),
		NewNode("attribute", NewToken("identifier", name)),
		NewToken("]", "]"),
	)
}

func TestRemoveLine(t *testing.T) {
	method := findKind(parse(t, editSource).Root, "method_declaration")
	require.NotNil(t, method)

	result := RemoveLine(method, method.FirstChildOfKind("attribute_list"))
	assert.Equal(t, "\n    public void M() { }", result.String())
	// the original tree is untouched
	assert.Equal(t, "\n    [Ignore]\n    public void M() { }", method.String())
}

func TestRemoveLineKeepsComments(t *testing.T) {
	method := findKind(parse(t, "class A\n{\n    // keep me\n    [Ignore]\n    void M() { }\n}\n").Root, "method_declaration")
	require.NotNil(t, method)

	result := RemoveLine(method, method.FirstChildOfKind("attribute_list"))
	assert.Equal(t, "\n    // keep me\n    void M() { }", result.String())
}

func TestInsertLineBefore(t *testing.T) {
	method := findKind(parse(t, editSource).Root, "method_declaration")
	require.NotNil(t, method)

	result := InsertLineBefore(method, 0, attributeList("TestMethod"), "\n")
	assert.Equal(t, "\n    [TestMethod]\n    [Ignore]\n    public void M() { }", result.String())
}

func TestInsertLineAfter(t *testing.T) {
	method := findKind(parse(t, editSource).Root, "method_declaration")
	require.NotNil(t, method)

	result := InsertLineAfter(method, 0, attributeList("DataRow"), "\r\n")
	assert.Equal(t, "\n    [Ignore]\r\n    [DataRow]\n    public void M() { }", result.String())
}

func TestRemoveListItem(t *testing.T) {
	list := findKind(parse(t, "[A, B, C]\nclass X { }\n").Root, "attribute_list")
	require.NotNil(t, list)
	attrs := list.ChildrenOfKind("attribute")
	require.Len(t, attrs, 3)

	tests := []struct {
		name     string
		item     *Node
		expected string
	}{
		{"first", attrs[0], "[B, C]"},
		{"middle", attrs[1], "[A, C]"},
		{"last", attrs[2], "[A, B]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RemoveListItem(list, tt.item).String())
		})
	}

	single := findKind(parse(t, "[A]\nclass X { }\n").Root, "attribute_list")
	require.NotNil(t, single)
	assert.Equal(t, "[]", RemoveListItem(single, single.FirstChildOfKind("attribute")).String())
}

func TestPrependCommentLine(t *testing.T) {
	assert.Equal(t, "\n    //\"a@b.c\"\n    ", PrependCommentLine("\n    ", `//"a@b.c"`, "\n"))
	assert.Equal(t, "//x\n", PrependCommentLine("", "//x", "\n"))
}

func TestTrivia(t *testing.T) {
	assert.Equal(t, "\t\t", Indentation("\n\n\t\t"))
	assert.Equal(t, "", Indentation(" "))
	assert.Equal(t, "\n    // c", TriviaBeforeLastLine("\n    // c\r\n    "))
	assert.Equal(t, "", TriviaBeforeLastLine("  "))
}

func TestNodeEditsAreImmutable(t *testing.T) {
	root := parse(t, "class A { }\n").Root
	decl := findKind(root, "class_declaration")
	require.NotNil(t, decl)

	renamed := decl.WithLeading("\n")
	assert.Equal(t, "\nclass A { }", renamed.String())
	assert.Equal(t, "class A { }", decl.String())
	assert.Same(t, decl, decl.WithLeading(""))
	assert.Same(t, decl, decl.ReplaceChild(decl.Child(0), decl.Child(0)))
}
