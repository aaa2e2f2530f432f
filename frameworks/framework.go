// Package frameworks provides the catalog of .NET target frameworks and
// compiler versions a project can be upgraded to.
//
// Frameworks form a based-on graph: .NET 3.5 is based on 3.0, which is based
// on 2.0. The catalog resolves the transitive closure once at load time so
// IsBasedOn is a map lookup.
//
// Example:
//
//	catalog := frameworks.Default()
//	fw, _ := catalog.Lookup("v3.5", "")
//	fmt.Println(fw.IsBasedOn(catalog.MustByID(frameworks.Net30))) // true
package frameworks

import (
	"fmt"
	"strconv"
	"strings"
)

// Well-known framework IDs used by the upgrade rules.
const (
	Net20 = "net20"
	Net30 = "net30"
	Net35 = "net35"
	Net40 = "net40"
	Net45 = "net45"
)

// TargetFramework is an immutable catalog entry.
type TargetFramework struct {
	// ID is the catalog key (e.g. "net35", "net40client").
	ID string

	// Name is the value stored in TargetFrameworkVersion (e.g. "v3.5").
	Name string

	// Profile is the value stored in TargetFrameworkProfile ("Client"), or empty.
	Profile string

	// DisplayName is shown to users (e.g. ".NET Framework 3.5").
	DisplayName string

	// Version is parsed from Name.
	Version FrameworkVersion

	basedOn []string
	closure map[string]struct{}
}

// BasedOn returns the IDs of the frameworks this one directly builds on.
func (fw *TargetFramework) BasedOn() []string {
	return append([]string(nil), fw.basedOn...)
}

// IsBasedOn reports whether fw is other or transitively builds on it.
// A nil framework is based on nothing, and nothing is based on nil.
func (fw *TargetFramework) IsBasedOn(other *TargetFramework) bool {
	if fw == nil || other == nil {
		return false
	}
	if fw.ID == other.ID {
		return true
	}
	_, ok := fw.closure[other.ID]
	return ok
}

// IsClientProfile reports whether the framework is a client profile subset.
func (fw *TargetFramework) IsClientProfile() bool {
	return strings.EqualFold(fw.Profile, "Client")
}

// Equals compares frameworks by ID.
func (fw *TargetFramework) Equals(other *TargetFramework) bool {
	if fw == nil || other == nil {
		return fw == other
	}
	return fw.ID == other.ID
}

// String returns the display name.
func (fw *TargetFramework) String() string {
	if fw == nil {
		return "<none>"
	}
	if fw.DisplayName != "" {
		return fw.DisplayName
	}
	return fw.ID
}

// FrameworkVersion represents a framework or tools version number.
type FrameworkVersion struct {
	Major    int
	Minor    int
	Build    int
	Revision int
}

// String returns the string representation of the version, trimming
// trailing zero components but always keeping the minor number:
//   - 4.7.2.0 → "4.7.2"
//   - 3.5.0.0 → "3.5"
//   - 2.0.0.0 → "2.0"
func (v FrameworkVersion) String() string {
	if v.Revision > 0 {
		return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
	}
	if v.Build > 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compare compares two versions.
// Returns -1 if v < other, 0 if v == other, 1 if v > other.
func (v FrameworkVersion) Compare(other FrameworkVersion) int {
	if v.Major != other.Major {
		if v.Major < other.Major {
			return -1
		}
		return 1
	}
	if v.Minor != other.Minor {
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	}
	if v.Build != other.Build {
		if v.Build < other.Build {
			return -1
		}
		return 1
	}
	if v.Revision != other.Revision {
		if v.Revision < other.Revision {
			return -1
		}
		return 1
	}
	return 0
}

// IsEmpty returns true if the version is 0.0.0.0.
func (v FrameworkVersion) IsEmpty() bool {
	return v.Major == 0 && v.Minor == 0 && v.Build == 0 && v.Revision == 0
}

// ParseFrameworkVersion parses "3.5", "v4.0" or "4.7.2".
// A leading "v" is optional; at most four components are accepted.
func ParseFrameworkVersion(s string) (FrameworkVersion, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")
	if s == "" {
		return FrameworkVersion{}, fmt.Errorf("empty version")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 4 {
		return FrameworkVersion{}, fmt.Errorf("invalid version: %s", s)
	}

	var nums [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return FrameworkVersion{}, fmt.Errorf("invalid version component %q in %s", p, s)
		}
		nums[i] = n
	}

	return FrameworkVersion{Major: nums[0], Minor: nums[1], Build: nums[2], Revision: nums[3]}, nil
}
