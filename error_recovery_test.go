package main

import (
	"strings"
	"testing"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
	"github.com/heshanpadmasiri/nunitMSTest/nunit"
	"github.com/heshanpadmasiri/nunitMSTest/semantic"
)

func TestErrorRecovery(t *testing.T) {
	// Order has no MSTest counterpart and Assert.Warn is not translated
	source := []byte(`using NUnit.Framework;

public class MixedTests
{
    [Test]
    public void Valid()
    {
        Assert.True(true);
    }

    [Test]
    [Order(1)]
    public void Ordered()
    {
        Assert.IsNull(null);
    }

    [Test]
    public void Warns()
    {
        Assert.Warn("not yet");
    }
}
`)

	migrate := func(t *testing.T, options nunit.Options) nunit.Result {
		file, err := csharp.ParseFile("MixedTests.cs", source)
		if err != nil {
			t.Fatalf("Failed to parse: %v", err)
		}
		result, err := nunit.NewRewriter(semantic.NewCompilation(file), options, nil).Rewrite(file)
		if err != nil {
			t.Fatalf("Migration failed: %v", err)
		}
		return result
	}

	t.Run("unsupported constructs are reported and kept", func(t *testing.T) {
		result := migrate(t, nunit.Options{})

		if len(result.Diagnostics) != 2 {
			t.Fatalf("Expected 2 diagnostics, got %d: %v", len(result.Diagnostics), result.Diagnostics)
		}
		order := result.Diagnostics[0]
		if order.Info != "Attribute is not supported" {
			t.Errorf("Expected attribute diagnostic, got: %s", order.Info)
		}
		if order.Location.Line != 12 || order.Location.File != "MixedTests.cs" {
			t.Errorf("Expected diagnostic at MixedTests.cs line 12, got %s line %d", order.Location.File, order.Location.Line)
		}
		if !strings.Contains(order.String(), "Order(1)") {
			t.Errorf("Expected diagnostic to mention the attribute, got: %s", order)
		}
		warn := result.Diagnostics[1]
		if warn.Info != "Unsupported assertion expression" || warn.Location.Line != 21 {
			t.Errorf("Expected assertion diagnostic at line 21, got: %s", warn)
		}

		output := result.Root.String()
		for _, want := range []string{
			"[TestClass]\npublic class MixedTests",
			"Assert.IsTrue(true);",
			"[TestMethod]\n    [Order(1)]\n    public void Ordered()",
			`Assert.Warn("not yet");`,
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Output should contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("comment unsupported disables affected tests", func(t *testing.T) {
		result := migrate(t, nunit.Options{CommentUnsupported: true})
		output := result.Root.String()

		for _, want := range []string{
			"/*[TestMethod]\n    [Order(1)]*/\n    public void Ordered()",
			"/*[TestMethod]*/\n    public void Warns()",
			"    [TestMethod]\n    public void Valid()",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Output should contain %q, got:\n%s", want, output)
			}
		}
		if len(result.Diagnostics) != 2 {
			t.Errorf("Expected 2 diagnostics, got %d", len(result.Diagnostics))
		}
	})
}
