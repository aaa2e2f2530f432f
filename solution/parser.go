package solution

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/maxwhale/SharpDevelop/configs"
)

var (
	formatVersionRegex = regexp.MustCompile(`^Microsoft Visual Studio Solution File, Format Version (\S+)`)
	vsVersionRegex     = regexp.MustCompile(`^VisualStudioVersion = (\S+)`)

	// Project("{GUID}") = "Name", "Path", "{GUID}"
	projectRegex = regexp.MustCompile(
		`(?i)^Project\("\{([A-F0-9-]+)\}"\)\s*=\s*"([^"]+)",\s*"([^"]+)",\s*"\{([A-F0-9-]+)\}"`,
	)

	// Debug|Any CPU = Debug|Any CPU
	configurationRegex = regexp.MustCompile(`^([^=|]+\|[^=]+?)\s*=`)
)

// Parse reads and parses the .sln file at path.
func Parse(path string) (*Solution, error) {
	if strings.ToLower(filepath.Ext(path)) != ".sln" {
		return nil, &ParseError{FilePath: path, Message: "not a .sln file"}
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{FilePath: path, Message: fmt.Sprintf("cannot open file: %v", err)}
	}
	defer file.Close()

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	return ParseReader(file, absPath)
}

// ParseReader parses solution text read from r. path is used for the
// solution directory and in errors.
func ParseReader(r io.Reader, path string) (*Solution, error) {
	sol := &Solution{
		FilePath:    path,
		SolutionDir: filepath.Dir(path),
		Projects:    []Project{},
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	var current *Project
	inConfigurations := false

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if matches := formatVersionRegex.FindStringSubmatch(trimmed); matches != nil {
			version, err := ParseFormatVersion(matches[1])
			if err != nil {
				return nil, &ParseError{FilePath: path, Line: lineNum, Message: err.Error()}
			}
			sol.FormatVersion = matches[1]
			sol.MinimumSolutionVersion = version
			continue
		}
		if matches := vsVersionRegex.FindStringSubmatch(trimmed); matches != nil {
			sol.VisualStudioVersion = matches[1]
			continue
		}

		if matches := projectRegex.FindStringSubmatch(trimmed); matches != nil {
			if current != nil {
				return nil, &ParseError{FilePath: path, Line: lineNum, Message: "nested Project entry"}
			}
			current = &Project{
				TypeGUID: "{" + strings.ToUpper(matches[1]) + "}",
				Name:     matches[2],
				Path:     matches[3],
				GUID:     "{" + strings.ToUpper(matches[4]) + "}",
			}
			continue
		}
		if trimmed == "EndProject" {
			if current != nil && current.TypeGUID != ProjectTypeSolutionFolder {
				sol.Projects = append(sol.Projects, *current)
			}
			current = nil
			continue
		}

		if strings.HasPrefix(trimmed, "GlobalSection(SolutionConfigurationPlatforms)") {
			inConfigurations = true
			continue
		}
		if trimmed == "EndGlobalSection" {
			inConfigurations = false
			continue
		}
		if inConfigurations {
			if matches := configurationRegex.FindStringSubmatch(trimmed); matches != nil {
				sol.Configurations = append(sol.Configurations, configs.ParseConfigurationAndPlatform(matches[1]))
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &ParseError{FilePath: path, Message: fmt.Sprintf("error reading file: %v", err)}
	}
	if current != nil {
		return nil, &ParseError{FilePath: path, Line: lineNum, Message: "unexpected end of file: missing EndProject"}
	}
	if sol.FormatVersion == "" {
		return nil, &ParseError{FilePath: path, Message: "missing format version header"}
	}
	return sol, nil
}

// ParseFormatVersion converts a header version ("11.00") to the solution
// version ordinal (11).
func ParseFormatVersion(s string) (int, error) {
	major, _, _ := strings.Cut(s, ".")
	v, err := strconv.Atoi(major)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid format version %q", s)
	}
	return v, nil
}

// FormatHeader returns the header line written for a solution version.
func FormatHeader(version int) string {
	return fmt.Sprintf("Microsoft Visual Studio Solution File, Format Version %d.00", version)
}
