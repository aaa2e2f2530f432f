package solution

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/maxwhale/SharpDevelop/project"
)

// ProjectLoader opens a project file. msbuild.FileStore implements it.
type ProjectLoader interface {
	Load(ctx context.Context, path string, deps project.Dependencies) (*project.Project, error)
}

// OpenProjects loads every project file of sol, raises each project's
// minimum solution version to the solution's and activates the solution's
// configuration in it. Projects that fail to load are skipped and their
// errors joined.
func OpenProjects(ctx context.Context, sol *Solution, loader ProjectLoader, deps project.Dependencies) ([]*project.Project, error) {
	var projects []*project.Project
	var errs []error
	for _, path := range sol.ProjectPaths() {
		p, err := loader.Load(ctx, path, deps)
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", path, err))
			continue
		}
		p.RaiseMinimumSolutionVersion(sol.MinimumSolutionVersion)
		sol.Activate(p)
		projects = append(projects, p)
	}
	return projects, errors.Join(errs...)
}

// Activate selects in p the first solution configuration pair p supports.
// It reports whether a pair was selected; p is unchanged otherwise.
func (s *Solution) Activate(p *project.Project) bool {
	for _, pair := range s.Configurations {
		if p.SetActiveConfiguration(pair.Configuration, pair.Platform) == nil {
			return true
		}
	}
	return false
}

// UpdateFormatVersion rewrites the header of the solution file at path to
// version when that is newer than the current one. The header is never
// lowered. It reports whether the file changed.
func UpdateFormatVersion(path string, version int) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	lines := strings.SplitAfter(string(data), "\n")
	for i, line := range lines {
		body := strings.TrimPrefix(line, "\uFEFF")
		matches := formatVersionRegex.FindStringSubmatch(strings.TrimSpace(body))
		if matches == nil {
			continue
		}
		current, err := ParseFormatVersion(matches[1])
		if err != nil {
			return false, &ParseError{FilePath: path, Line: i + 1, Message: err.Error()}
		}
		if version <= current {
			return false, nil
		}

		prefix := line[:len(line)-len(body)]
		eol := body[len(strings.TrimRight(body, "\r\n")):]
		lines[i] = prefix + FormatHeader(version) + eol
		if err := os.WriteFile(path, []byte(strings.Join(lines, "")), fi.Mode().Perm()); err != nil {
			return false, fmt.Errorf("write solution file: %w", err)
		}
		return true, nil
	}
	return false, &ParseError{FilePath: path, Message: "missing format version header"}
}
