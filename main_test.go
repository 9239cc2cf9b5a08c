package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
	"github.com/heshanpadmasiri/nunitMSTest/nunit"
	"github.com/heshanpadmasiri/nunitMSTest/semantic"
)

var update = flag.Bool("update", false, "update expected MSTest files")

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(m.Run())
}

func getMSTestFilePath(nunitFile string) string {
	return filepath.Join("testdata", "mstest", filepath.Base(nunitFile))
}

func updateExpectedFile(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func migrateSource(t *testing.T, path string, source []byte) nunit.Result {
	t.Helper()
	file, err := csharp.ParseFile(path, source)
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", path, err)
	}
	rewriter := nunit.NewRewriter(semantic.NewCompilation(file), nunit.Options{}, nil)
	result, err := rewriter.Rewrite(file)
	if err != nil {
		t.Fatalf("Failed to migrate %s: %v", path, err)
	}
	return result
}

func TestMigration(t *testing.T) {
	nunitDir := filepath.Join("testdata", "nunit")
	entries, err := os.ReadDir(nunitDir)
	if err != nil {
		t.Fatalf("Failed to read testdata/nunit directory: %v", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cs") {
			continue
		}

		nunitFile := filepath.Join(nunitDir, entry.Name())
		testName := strings.TrimSuffix(entry.Name(), ".cs")

		t.Run(testName, func(t *testing.T) {
			source, err := os.ReadFile(nunitFile)
			if err != nil {
				t.Fatalf("Failed to read NUnit file %s: %v", nunitFile, err)
			}

			expectedFile := getMSTestFilePath(nunitFile)
			got := migrateSource(t, nunitFile, source).Root.String()

			expected, err := os.ReadFile(expectedFile)
			if err != nil {
				if *update {
					if err := updateExpectedFile(expectedFile, got); err != nil {
						t.Fatalf("Failed to update expected file: %v", err)
					}
					t.Logf("Created expected file: %s", expectedFile)
					return
				}
				t.Fatalf("Failed to read expected MSTest file %s: %v", expectedFile, err)
			}

			// Compare output with expected (exact match, trivia included)
			if got != string(expected) {
				if *update {
					if err := updateExpectedFile(expectedFile, got); err != nil {
						t.Fatalf("Failed to update expected file: %v", err)
					}
					t.Logf("Updated expected file: %s", expectedFile)
					return
				}
				t.Errorf("Output does not match expected:\n--- Got ---\n%s\n--- Expected ---\n%s", got, string(expected))
			}
		})
	}
}

// Migrated output must be stable: running the migration again only keeps what
// could not be migrated the first time.
func TestMigrationIsIdempotent(t *testing.T) {
	nunitDir := filepath.Join("testdata", "mstest")
	entries, err := os.ReadDir(nunitDir)
	if err != nil {
		t.Fatalf("Failed to read testdata/mstest directory: %v", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cs") {
			continue
		}
		path := filepath.Join(nunitDir, entry.Name())
		t.Run(strings.TrimSuffix(entry.Name(), ".cs"), func(t *testing.T) {
			source, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("Failed to read %s: %v", path, err)
			}
			result := migrateSource(t, path, source)
			if got := result.Root.String(); got != string(source) {
				t.Errorf("Migrating MSTest output changed it:\n--- Got ---\n%s\n--- Expected ---\n%s", got, string(source))
			}
		})
	}
}
