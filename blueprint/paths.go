package blueprint

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveFiles expands command-line arguments to blueprint files.
// Supports plain files, directories (searched recursively for *.json) and
// glob patterns with single-level (*) and recursive (**) wildcards.
//
// Examples:
//   - "blueprints/api/routes/smart-auth-routes.json" → that file
//   - "blueprints/api" → every *.json below it
//   - "blueprints/**/smart-*-routes.json" → all matching files
//
// Plain file arguments are returned even when they do not exist so the
// caller can report them.
func ResolveFiles(patterns []string) ([]string, error) {
	var resolved []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		paths, err := resolvePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}

		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				resolved = append(resolved, p)
			}
		}
	}

	return resolved, nil
}

// resolvePattern expands a single argument to blueprint files.
func resolvePattern(pattern string) ([]string, error) {
	if !containsGlob(pattern) {
		info, err := os.Stat(pattern)
		if err != nil || !info.IsDir() {
			return []string{pattern}, nil
		}
		return globJSON(pattern)
	}

	matches, err := doublestar.FilepathGlob(filepath.FromSlash(pattern))
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		if strings.HasSuffix(match, FileExt) {
			files = append(files, match)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no blueprint files match pattern: %s", pattern)
	}

	sort.Strings(files)
	return files, nil
}

// globJSON returns every *.json file below dir, sorted.
func globJSON(dir string) ([]string, error) {
	rel, err := doublestar.Glob(os.DirFS(dir), "**/*"+FileExt)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", dir, err)
	}
	files := make([]string, 0, len(rel))
	for _, r := range rel {
		files = append(files, filepath.Join(dir, filepath.FromSlash(r)))
	}
	sort.Strings(files)
	return files, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
