package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"A.cs":                 "class A { }",
		"src/B.cs":             "class B { }",
		"src/Form.Designer.cs": "class F { }",
		"bin/Debug/C.cs":       "class C { }",
		"generated/D.cs":       "class D { }",
		"notes.txt":            "not code",
		".gitignore":           "generated/\n",
	})

	files, err := Discover(root, []string{"*.Designer.cs"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "A.cs"),
		filepath.Join(root, "src", "B.cs"),
	}, files)
}

func TestDiscoverSingleFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"A.cs": "class A { }", "notes.txt": "x"})

	files, err := Discover(filepath.Join(root, "A.cs"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "A.cs")}, files)

	_, err = Discover(filepath.Join(root, "notes.txt"), nil)
	assert.Error(t, err)

	_, err = Discover(filepath.Join(root, "missing"), nil)
	assert.Error(t, err)
}

func TestIsEligible(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		eligible bool
	}{
		{"top level using", "using NUnit.Framework;\nclass A { }\n", true},
		{"using inside namespace", "namespace N\n{\n    using NUnit.Framework;\n    class A { }\n}\n", true},
		{"legacy only", "using NUnit.Framework.Legacy;\nclass A { }\n", false},
		{"static using", "using static NUnit.Framework.Assert;\nclass A { }\n", false},
		{"no NUnit", "using System;\nclass A { }\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := csharp.ParseFile("A.cs", []byte(tt.source))
			require.NoError(t, err)
			assert.Equal(t, tt.eligible, IsEligible(file))
		})
	}
}

const crossFileTests = `using NUnit.Framework;

public class CrossFileTests
{
    [TestCaseSource(typeof(Data), "Cases")]
    public void FromData(int x)
    {
        Assert.That(x, Is.Positive);
    }
}
`

const crossFileExpected = `using Microsoft.VisualStudio.TestTools.UnitTesting;

[TestClass]
public class CrossFileTests
{
    [TestMethod]
    [DynamicData("Cases", typeof(Data))]
    public void FromData(int x)
    {
        Assert.IsTrue(x > 0);
    }
}
`

const crossFileData = `using System.Collections.Generic;

public static class Data
{
    public static IEnumerable<object[]> Cases()
    {
        yield return new object[] { 1 };
    }
}
`

func TestMigrate(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"CrossFileTests.cs": crossFileTests,
		"Data.cs":           crossFileData,
	})
	paths := []string{
		filepath.Join(root, "CrossFileTests.cs"),
		filepath.Join(root, "Data.cs"),
		filepath.Join(root, "Missing.cs"),
	}

	results, err := Migrate(context.Background(), paths, Options{Jobs: 2})
	require.NoError(t, err)
	require.Len(t, results, 3)

	tests := results[0]
	assert.Equal(t, paths[0], tests.Path)
	assert.NoError(t, tests.Err)
	assert.True(t, tests.Changed)
	assert.Positive(t, tests.Changes)
	assert.Empty(t, tests.Diagnostics)
	assert.Equal(t, crossFileExpected, string(tests.Output))

	data := results[1]
	assert.True(t, data.Skipped)
	assert.False(t, data.Changed)
	assert.Nil(t, data.Output)

	missing := results[2]
	assert.Error(t, missing.Err)
	assert.ErrorIs(t, missing.Err, os.ErrNotExist)
	assert.ErrorIs(t, Failed(results), os.ErrNotExist)
}

func TestMigrateReportsSortedDiagnostics(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"Mixed.cs": `using NUnit.Framework;

[TestFixture]
public class Mixed
{
    [Test, Order(2)]
    public void Second()
    {
        Assert.Warn("later");
    }
}
`,
	})

	results, err := Migrate(context.Background(), []string{filepath.Join(root, "Mixed.cs")}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	diags := results[0].Diagnostics
	require.Len(t, diags, 2)
	assert.Equal(t, 6, diags[0].Location.Line)
	assert.Equal(t, "Attribute is not supported", diags[0].Info)
	assert.Equal(t, 9, diags[1].Location.Line)
	assert.Equal(t, "Unsupported assertion expression", diags[1].Info)
}

func TestMigrateHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"A.cs": "using NUnit.Framework;\nclass A { }\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Migrate(ctx, []string{filepath.Join(root, "A.cs")}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWrite(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"sub/A.cs": "old a",
		"B.cs":     "old b",
		"C.cs":     "old c",
	})
	results := []FileResult{
		{Path: filepath.Join(root, "sub", "A.cs"), Changed: true, Output: []byte("new a")},
		{Path: filepath.Join(root, "B.cs"), Output: []byte("new b")},
		{Path: filepath.Join(root, "C.cs"), Changed: true, Output: []byte("new c"), Err: errors.New("failed")},
	}

	t.Run("out dir", func(t *testing.T) {
		outDir := filepath.Join(t.TempDir(), "out")
		written, err := Write(results, root, outDir)
		require.NoError(t, err)
		target := filepath.Join(outDir, "sub", "A.cs")
		assert.Equal(t, []string{target}, written)
		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "new a", string(content))

		original, err := os.ReadFile(filepath.Join(root, "sub", "A.cs"))
		require.NoError(t, err)
		assert.Equal(t, "old a", string(original))
	})

	t.Run("in place", func(t *testing.T) {
		written, err := Write(results, root, "")
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "sub", "A.cs")}, written)
		for name, expected := range map[string]string{"sub/A.cs": "new a", "B.cs": "old b", "C.cs": "old c"} {
			content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
			require.NoError(t, err)
			assert.Equal(t, expected, string(content), name)
		}
	})
}
