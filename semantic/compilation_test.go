package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
)

const sampleSource = `using NUnit.Framework;
using System.Collections.Generic;

namespace Demo
{
    public class Calculator
    {
        public static int Add(int a, int b) { return a + b; }
        public string Name { get; set; }
    }

    [TestFixture]
    public class CalculatorTests
    {
        private List<int> items = new List<int>();
        private int[] numbers = new int[0];

        private static IEnumerable<object[]> Cases() { yield return new object[] { 1 }; }

        [Test]
        public void Check(string label)
        {
            var count = 3;
            var calc = new Calculator();
            Assert.AreEqual(3, Calculator.Add(1, 2));
            Assert.That(count, Is.Not.EqualTo(4));
            Assert.IsTrue(label.StartsWith("x") && items.Count > 0);
            Assert.AreEqual("c", calc.Name);
            Assert.AreEqual(0, numbers.Length);
        }
    }
}
`

func compile(t *testing.T, sources map[string]string) (*Compilation, map[string]*csharp.File) {
	t.Helper()
	files := map[string]*csharp.File{}
	var parsed []*csharp.File
	for path, source := range sources {
		file, err := csharp.ParseFile(path, []byte(source))
		require.NoError(t, err)
		files[path] = file
		parsed = append(parsed, file)
	}
	return NewCompilation(parsed...), files
}

func findInvocation(root *csharp.Node, text string) *csharp.Node {
	return root.Find(func(n *csharp.Node) bool {
		return n.Kind() == "invocation_expression" && n.CompactText() == text
	})
}

func TestSymbolOfInvocations(t *testing.T) {
	c, files := compile(t, map[string]string{"Sample.cs": sampleSource})
	root := files["Sample.cs"].Root

	tests := []struct {
		name          string
		call          string
		declaringType string
		member        string
	}{
		{"nunit assert", `Assert.AreEqual(3,Calculator.Add(1,2))`, "NUnit.Framework.Assert", "AreEqual"},
		{"user type", `Calculator.Add(1,2)`, "Demo.Calculator", "Add"},
		{"constraint chain", `Is.Not.EqualTo(4)`, ConstraintExpression, "EqualTo"},
		{"string method on parameter", `label.StartsWith("x")`, "System.String", "StartsWith"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := findInvocation(root, tt.call)
			require.NotNil(t, call, tt.call)
			symbol, ok := c.SymbolOf(call)
			require.True(t, ok)
			assert.Equal(t, tt.declaringType, symbol.DeclaringType)
			assert.Equal(t, tt.member, symbol.Name)
		})
	}
}

func TestSymbolOfRequiresNUnitImport(t *testing.T) {
	c, files := compile(t, map[string]string{
		"Plain.cs": "class Assert { public static void AreEqual(int a, int b) { } }\nclass T { void M() { Assert.AreEqual(1, 2); Is.Null(); } }\n",
	})
	root := files["Plain.cs"].Root

	symbol, ok := c.SymbolOf(findInvocation(root, "Assert.AreEqual(1,2)"))
	require.True(t, ok)
	assert.Equal(t, "Assert", symbol.DeclaringType)
	assert.False(t, symbol.InNamespace("NUnit.Framework"))

	_, ok = c.SymbolOf(findInvocation(root, "Is.Null()"))
	assert.False(t, ok)
}

func TestSymbolOfAttributes(t *testing.T) {
	c, files := compile(t, map[string]string{
		"Attrs.cs": `using NUnit.Framework;

[NUnit.Framework.TestFixtureAttribute]
public class A
{
    [Test, Custom, Ignore]
    public void M() { }
}

public class CustomAttribute : System.Attribute { }
`,
	})
	var names []string
	var declaring []string
	files["Attrs.cs"].Root.Walk(func(n *csharp.Node) bool {
		if n.Kind() == "attribute" {
			symbol, ok := c.SymbolOf(n)
			require.True(t, ok, n.CompactText())
			names = append(names, symbol.Name)
			declaring = append(declaring, symbol.DeclaringType)
			return false
		}
		return true
	})
	assert.Equal(t, []string{"TestFixtureAttribute", "TestAttribute", "CustomAttribute", "IgnoreAttribute"}, names)
	assert.Equal(t, []string{
		"NUnit.Framework.TestFixtureAttribute",
		"NUnit.Framework.TestAttribute",
		"CustomAttribute",
		"NUnit.Framework.IgnoreAttribute",
	}, declaring)
}

func TestStaticTypeOf(t *testing.T) {
	c, files := compile(t, map[string]string{"Sample.cs": sampleSource})
	root := files["Sample.cs"].Root

	tests := []struct {
		expression string
		fullName   string
		check      func(TypeInfo) bool
	}{
		{"count", "System.Int32", nil},
		{"label", "System.String", TypeInfo.IsString},
		{"items", "List<int>", nil},
		{"numbers", "int[]", TypeInfo.IsArray},
		{"calc", "Demo.Calculator", nil},
		{"calc.Name", "System.String", TypeInfo.IsString},
		{"items.Count", "System.Int32", TypeInfo.IsNumeric},
		{`label.StartsWith("x")&&items.Count>0`, "System.Boolean", TypeInfo.IsBoolean},
		{"Calculator.Add(1,2)", "System.Int32", nil},
	}
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			var expr *csharp.Node
			root.Walk(func(n *csharp.Node) bool {
				if expr != nil {
					return false
				}
				// skip declarations so identifiers resolve at their use site
				if n.Kind() == "variable_declaration" || n.Kind() == "field_declaration" || n.Kind() == "parameter" {
					return false
				}
				if n.Kind() != "argument" && n.CompactText() == tt.expression {
					expr = n
					return false
				}
				return true
			})
			require.NotNil(t, expr, tt.expression)
			info := c.StaticTypeOf(expr)
			assert.Equal(t, tt.fullName, info.FullName)
			if tt.check != nil {
				assert.True(t, tt.check(info))
			}
		})
	}
}

func TestStaticTypeOfLiterals(t *testing.T) {
	c, files := compile(t, map[string]string{
		"Literals.cs": "class A { void M() { Use(1L, 2.5f, 3.0m, 'c', \"s\", true, typeof(int), 4u); } }\n",
	})
	call := findInvocation(files["Literals.cs"].Root, `Use(1L,2.5f,3.0m,'c',"s",true,typeof(int),4u)`)
	require.NotNil(t, call)

	var types []string
	for _, arg := range csharp.Arguments(call) {
		types = append(types, c.StaticTypeOf(csharp.ArgumentExpression(arg)).FullName)
	}
	assert.Equal(t, []string{
		"System.Int64", "System.Single", "System.Decimal", "System.Char",
		"System.String", "System.Boolean", "System.Type", "System.UInt32",
	}, types)
}

func TestFindDeclaration(t *testing.T) {
	c, _ := compile(t, map[string]string{"Sample.cs": sampleSource})

	decl, ok := c.FindDeclaration(func(d Declaration) bool {
		return d.Name == "Cases" && d.Kind == DeclarationMethod
	})
	require.True(t, ok)
	assert.Equal(t, "CalculatorTests", decl.ContainingType)
	assert.Equal(t, "Demo.CalculatorTests", decl.ContainingTypeFullName)
	assert.True(t, decl.IsStatic)
	assert.Equal(t, "Sample.cs", decl.File)

	decl, ok = c.FindDeclaration(func(d Declaration) bool { return d.Name == "Name" })
	require.True(t, ok)
	assert.Equal(t, DeclarationProperty, decl.Kind)
	assert.Equal(t, "string", decl.TypeName)

	_, ok = c.FindDeclaration(func(d Declaration) bool { return d.Name == "Missing" })
	assert.False(t, ok)
}

func TestDeclarationsAcrossFiles(t *testing.T) {
	c, _ := compile(t, map[string]string{
		"Tests.cs":  "using NUnit.Framework;\npublic class Tests { }\n",
		"Source.cs": "public class Source { public static object[] Data => null; }\n",
	})
	decl, ok := c.FindDeclaration(func(d Declaration) bool { return d.Name == "Data" })
	require.True(t, ok)
	assert.Equal(t, "Source.cs", decl.File)
	assert.Equal(t, "Source", decl.ContainingType)

	assert.True(t, c.ImportsNUnit("Tests.cs"))
	assert.False(t, c.ImportsNUnit("Source.cs"))
}

func TestNormalizeAttributeName(t *testing.T) {
	tests := []struct {
		written   string
		name      string
		qualified bool
	}{
		{"Test", "Test", false},
		{"TestAttribute", "Test", false},
		{"NUnit.Framework.TestFixture", "TestFixture", true},
		{"global::NUnit.Framework.SetUpAttribute", "SetUp", true},
		{"Attribute", "Attribute", false},
	}
	for _, tt := range tests {
		t.Run(tt.written, func(t *testing.T) {
			name, qualified := NormalizeAttributeName(tt.written)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.qualified, qualified)
		})
	}
}

func TestTypeFromName(t *testing.T) {
	assert.Equal(t, TypeInfo{SpecialString, "System.String"}, TypeFromName("System.String"))
	assert.Equal(t, TypeInfo{SpecialInt32, "System.Int32"}, TypeFromName("int?"))
	assert.Equal(t, TypeInfo{FullName: "System.IO.FileInfo"}, TypeFromName("System.IO.FileInfo"))
	assert.False(t, TypeFromName("var").IsKnown())
	assert.True(t, TypeFromName("byte[]").IsArray())
}
