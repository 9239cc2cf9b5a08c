package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write persists the changed files. With an empty outDir files are rewritten in
// place; otherwise they are written below outDir at their path relative to root.
// It returns the paths written.
func Write(results []FileResult, root string, outDir string) ([]string, error) {
	var written []string
	for _, result := range results {
		if !result.Changed || result.Err != nil {
			continue
		}
		target := result.Path
		if outDir != "" {
			rel, err := relativeTo(root, result.Path)
			if err != nil {
				return written, err
			}
			target = filepath.Join(outDir, rel)
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return written, fmt.Errorf("creating directory for %s: %w", target, err)
			}
		}
		mode := os.FileMode(0o644)
		if info, err := os.Stat(result.Path); err == nil {
			mode = info.Mode().Perm()
		}
		if err := os.WriteFile(target, result.Output, mode); err != nil {
			return written, fmt.Errorf("writing %s: %w", target, err)
		}
		written = append(written, target)
	}
	return written, nil
}

// relativeTo returns path relative to root; a root naming a file yields its base name
func relativeTo(root string, path string) (string, error) {
	info, err := os.Stat(root)
	if err == nil && !info.IsDir() {
		return filepath.Base(path), nil
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("locating %s below %s: %w", path, root, err)
	}
	return rel, nil
}
