package solution

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsSolutionFile checks if a file path has the .sln extension
func IsSolutionFile(path string) bool {
	return path != "" && strings.EqualFold(filepath.Ext(path), ".sln")
}

// FindOwner walks up from the project's directory and returns the first
// solution that lists projectPath. Solutions in one directory are tried in
// name order; files that fail to parse are skipped. It returns nil and no
// error when no solution owns the project.
func FindOwner(projectPath string) (*Solution, error) {
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", projectPath, err)
	}

	for dir := filepath.Dir(abs); ; {
		entries, err := os.ReadDir(dir)
		if err != nil && !os.IsPermission(err) {
			return nil, fmt.Errorf("searching %s for solution files: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || !IsSolutionFile(e.Name()) {
				continue
			}
			sol, err := Parse(filepath.Join(dir, e.Name()))
			if err != nil {
				continue
			}
			if sol.Contains(abs) {
				return sol, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Contains reports whether the solution lists the project file at path.
// Paths are compared case-insensitively, as on the systems that write them.
func (s *Solution) Contains(path string) bool {
	clean := filepath.Clean(path)
	for _, p := range s.ProjectPaths() {
		if strings.EqualFold(p, clean) {
			return true
		}
	}
	return false
}
