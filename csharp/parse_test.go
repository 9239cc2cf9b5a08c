package csharp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, source string) *File {
	t.Helper()
	file, err := ParseFile("Test.cs", []byte(source))
	require.NoError(t, err)
	return file
}

func findKind(root *Node, kind string) *Node {
	return root.Find(func(n *Node) bool { return n.Kind() == kind })
}

func TestParseIsLossless(t *testing.T) {
	sources := map[string]string{
		"comments": `// header
using NUnit.Framework;

/* block */
namespace Sample
{
    /// <summary>doc</summary>
    public class Tests // trailing
    {
        [Test] public void M() { Assert.AreEqual(1, 1); }
    }
}
`,
		"crlf":           "using System;\r\n\r\nclass A\r\n{\r\n    void M() { }\r\n}\r\n",
		"preprocessor":   "#if DEBUG\nusing System;\n#endif\nclass A { }\n",
		"no_final_break": "class A { }",
		"syntax_error":   "class A { void M( }\n",
		"tabs":           "class A\n{\n\tint x = 1;\n}\n",
	}
	for name, source := range sources {
		t.Run(name, func(t *testing.T) {
			file := parse(t, source)
			assert.Equal(t, source, file.Root.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	assert.Empty(t, parse(t, "class A { }\n").ParseErrors)

	source := "class A { void M( }\n"
	file := parse(t, source)
	require.NotEmpty(t, file.ParseErrors)
	for _, parseErr := range file.ParseErrors {
		assert.Equal(t, 1, parseErr.Location.StartPoint.Line, parseErr.Error())
	}
	// the skipped text stays a node instead of disappearing into trivia
	errorNode := findKind(file.Root, "ERROR")
	require.NotNil(t, errorNode)
	assert.Contains(t, errorNode.Text(), "M(")
	assert.Equal(t, source, file.Root.String())
}

func TestDetectNewline(t *testing.T) {
	assert.Equal(t, "\r\n", DetectNewline([]byte("a\r\nb\n")))
	assert.Equal(t, "\n", DetectNewline([]byte("a\nb\r\n")))
	assert.Equal(t, "\n", DetectNewline([]byte("single line")))
}

func TestDeclarationAccessors(t *testing.T) {
	file := parse(t, `class A
{
    [Test]
    public static void Check(int value) { Run(value, "x"); }
}
`)
	method := findKind(file.Root, "method_declaration")
	require.NotNil(t, method)
	assert.Equal(t, "Check", DeclarationName(method))
	assert.Equal(t, []string{"public", "static"}, Modifiers(method))
	assert.True(t, HasModifier(method, "static"))
	assert.False(t, HasModifier(method, "abstract"))

	attr := findKind(method, "attribute")
	require.NotNil(t, attr)
	assert.Equal(t, "Test", AttributeName(attr).CompactText())
	assert.Empty(t, AttributeArguments(attr))

	call := findKind(method, "invocation_expression")
	require.NotNil(t, call)
	assert.Equal(t, "Run", InvocationFunction(call).CompactText())
	args := Arguments(call)
	require.Len(t, args, 2)
	assert.Equal(t, "value", ArgumentExpression(args[0]).CompactText())
	assert.True(t, IsStringLiteral(ArgumentExpression(args[1])))

	// the method starts on its own line below the class brace
	assert.Equal(t, "\n    ", method.Leading())
	assert.Equal(t, "[Test]", method.FirstChildOfKind("attribute_list").Text())
}

func TestNamedArguments(t *testing.T) {
	file := parse(t, "[TestCase(1, TestName = \"one\")]\nclass A { }\n")
	attr := findKind(file.Root, "attribute")
	require.NotNil(t, attr)
	args := AttributeArguments(attr)
	require.Len(t, args, 2)
	assert.Equal(t, "", ArgumentName(args[0]))
	assert.Equal(t, "TestName", ArgumentName(args[1]))
	assert.Equal(t, `"one"`, ArgumentExpression(args[1]).CompactText())

	// an assignment passed to a method stays a positional argument
	file = parse(t, "class A { void M() { Run(x = 1); } }\n")
	call := findKind(file.Root, "invocation_expression")
	require.NotNil(t, call)
	callArgs := Arguments(call)
	require.Len(t, callArgs, 1)
	assert.Equal(t, "", ArgumentName(callArgs[0]))
	assert.Equal(t, "x=1", ArgumentExpression(callArgs[0]).CompactText())
}

func TestStringLiteralValue(t *testing.T) {
	file := parse(t, "class A { string a = \"x\\ty\"; string b = @\"c:\\dir\"\"q\"\"\"; }\n")
	var values []string
	file.Root.Walk(func(n *Node) bool {
		if IsStringLiteral(n) {
			value, ok := StringLiteralValue(n)
			assert.True(t, ok)
			values = append(values, value)
			return false
		}
		return true
	})
	assert.Equal(t, []string{"x\ty", `c:\dir"q"`}, values)
}

func TestIsValidIdentifier(t *testing.T) {
	for _, valid := range []string{"Source", "_cases", "@class", "Data2"} {
		assert.True(t, IsValidIdentifier(valid), valid)
	}
	for _, invalid := range []string{"", "2cases", "has space", "a.b", "@"} {
		assert.False(t, IsValidIdentifier(invalid), invalid)
	}
}

func TestAssertPanicsWithMigrationPanic(t *testing.T) {
	assert.NotPanics(t, func() { Assert("fine", true) })
	assert.PanicsWithValue(t, MigrationPanic{Message: "broken"}, func() { Assert("broken", false) })
	assert.Equal(t, "internal migration error: broken", MigrationPanic{Message: "broken"}.Error())
}
