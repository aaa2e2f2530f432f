package frameworks

import "fmt"

// CompilerVersion is a build tools version. Each one corresponds to exactly
// one solution file format version.
type CompilerVersion struct {
	// Major and Minor form the MSBuild ToolsVersion ("3.5").
	Major int
	Minor int

	// Label is shown to users (e.g. "C# 3.0").
	Label string

	// SolutionVersion is the solution format version this compiler writes
	// (9 for VS2005, 10 for VS2008, 11 for VS2010).
	SolutionVersion int

	// Frameworks lists the IDs of the frameworks this compiler can target.
	Frameworks []string
}

// ToolsVersion formats the version as written to the ToolsVersion attribute.
func (c CompilerVersion) ToolsVersion() string {
	return fmt.Sprintf("%d.%d", c.Major, c.Minor)
}

// Equals compares the tools version only.
func (c CompilerVersion) Equals(other CompilerVersion) bool {
	return c.Major == other.Major && c.Minor == other.Minor
}

// Supports reports whether the compiler can target fw.
func (c CompilerVersion) Supports(fw *TargetFramework) bool {
	if fw == nil {
		return false
	}
	for _, id := range c.Frameworks {
		if id == fw.ID {
			return true
		}
	}
	return false
}

// String returns the label and tools version.
func (c CompilerVersion) String() string {
	return fmt.Sprintf("%s (ToolsVersion %s)", c.Label, c.ToolsVersion())
}

// ContainsCompilerVersion reports whether list holds a version equal to v.
func ContainsCompilerVersion(list []CompilerVersion, v CompilerVersion) bool {
	for _, c := range list {
		if c.Equals(v) {
			return true
		}
	}
	return false
}
