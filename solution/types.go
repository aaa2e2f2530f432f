// Package solution reads .sln files: the format version header that fixes
// the minimum solution version of the projects it contains, the project
// entries, and the solution configuration/platform pairs.
package solution

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/maxwhale/SharpDevelop/configs"
	"github.com/maxwhale/SharpDevelop/fileutil"
)

// Solution represents a parsed .sln file
type Solution struct {
	// FilePath is the absolute path to the solution file
	FilePath string

	// SolutionDir is the directory containing the solution file
	SolutionDir string

	// FormatVersion is the header version as written ("11.00")
	FormatVersion string

	// MinimumSolutionVersion is the major part of FormatVersion. Projects
	// opened from this solution never offer compilers of an older format.
	MinimumSolutionVersion int

	// VisualStudioVersion is the IDE version that wrote the file, if recorded
	VisualStudioVersion string

	// Projects lists the project entries (solution folders excluded)
	Projects []Project

	// Configurations lists the SolutionConfigurationPlatforms pairs
	Configurations []configs.ConfigurationAndPlatform
}

// Project is a project entry of a solution
type Project struct {
	Name     string
	Path     string
	GUID     string
	TypeGUID string
}

// ParseError represents an error during solution file parsing
type ParseError struct {
	// FilePath is the path to the file being parsed
	FilePath string

	// Line is the line number where the error occurred
	Line int

	// Message describes what went wrong
	Message string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.FilePath, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Project type GUIDs
const (
	ProjectTypeCSProject      = "{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}"
	ProjectTypeVBProject      = "{F184B08F-C81C-45F6-A57F-5ABD9991F28F}"
	ProjectTypeSolutionFolder = "{2150E333-8FDC-42A3-9474-1A3956D46DE8}"
)

// IsProjectFile reports whether the entry points at a .csproj or .vbproj file.
func (p *Project) IsProjectFile() bool {
	ext := strings.ToLower(filepath.Ext(fileutil.ToSlash(p.Path)))
	return ext == ".csproj" || ext == ".vbproj"
}

// AbsolutePath resolves the entry's path against solutionDir.
func (p *Project) AbsolutePath(solutionDir string) string {
	return fileutil.Combine(solutionDir, p.Path)
}

// ProjectPaths returns the absolute paths of all project file entries.
func (s *Solution) ProjectPaths() []string {
	paths := make([]string, 0, len(s.Projects))
	for i := range s.Projects {
		if s.Projects[i].IsProjectFile() {
			paths = append(paths, s.Projects[i].AbsolutePath(s.SolutionDir))
		}
	}
	return paths
}

// ProjectByName finds a project entry by name, ignoring case.
func (s *Solution) ProjectByName(name string) (*Project, bool) {
	for i := range s.Projects {
		if strings.EqualFold(s.Projects[i].Name, name) {
			return &s.Projects[i], true
		}
	}
	return nil, false
}
