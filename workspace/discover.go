// Package workspace selects the C# files of a project, runs the migration
// over them and persists the results.
package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
)

var skipDirs = map[string]struct{}{
	"bin":          {},
	"obj":          {},
	".git":         {},
	".vs":          {},
	".idea":        {},
	"node_modules": {},
	"packages":     {},
	"TestResults":  {},
}

// Discover returns the C# files under root in lexical order. root may also name
// a single file, which is returned as is. Paths matching .gitignore or one of
// the exclude patterns are skipped.
func Discover(root string, excludes []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if filepath.Ext(root) != ".cs" {
			return nil, fmt.Errorf("%s is not a C# file", root)
		}
		return []string{root}, nil
	}

	gitignore := loadGitignore(root)
	var excluded *ignore.GitIgnore
	if len(excludes) > 0 {
		excluded = ignore.CompileIgnoreLines(excludes...)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			if matches(gitignore, rel+"/") || matches(excluded, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 || !strings.HasSuffix(d.Name(), ".cs") {
			return nil
		}
		if matches(gitignore, rel) || matches(excluded, rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

func matches(gi *ignore.GitIgnore, path string) bool {
	return gi != nil && gi.MatchesPath(path)
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// IsEligible reports whether a file imports NUnit.Framework, directly or
// through a nested namespace
func IsEligible(file *csharp.File) bool {
	eligible := false
	file.Root.Walk(func(node *csharp.Node) bool {
		if eligible {
			return false
		}
		switch node.Kind() {
		case "using_directive":
			if node.HasToken("static") || node.HasToken("=") {
				return false
			}
			for _, child := range node.Children() {
				if child.Kind() != "qualified_name" && child.Kind() != "identifier" {
					continue
				}
				name := strings.TrimPrefix(child.CompactText(), "global::")
				if name == "NUnit.Framework" {
					eligible = true
				}
			}
			return false
		case "compilation_unit", "namespace_declaration", "file_scoped_namespace_declaration", "declaration_list":
			return true
		}
		return false
	})
	return eligible
}
