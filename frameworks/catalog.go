package frameworks

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MaxCatalogSize bounds the catalog document read by LoadCatalog (1MB).
const MaxCatalogSize = 1024 * 1024

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// ErrInvalidCatalog is returned when a catalog document fails validation.
var ErrInvalidCatalog = errors.New("frameworks: invalid catalog")

var catalogValidate = validator.New()

type catalogYAML struct {
	Frameworks []frameworkYAML `yaml:"frameworks" validate:"required,min=1,dive"`
	Compilers  []compilerYAML  `yaml:"compilers" validate:"required,min=1,dive"`
}

type frameworkYAML struct {
	ID          string   `yaml:"id" validate:"required,lowercase,alphanum"`
	Name        string   `yaml:"name" validate:"required,startswith=v"`
	Profile     string   `yaml:"profile,omitempty" validate:"omitempty,alphanum"`
	DisplayName string   `yaml:"display_name" validate:"required"`
	BasedOn     []string `yaml:"based_on,omitempty" validate:"dive,required"`
}

type compilerYAML struct {
	ToolsVersion    string   `yaml:"tools_version" validate:"required"`
	Label           string   `yaml:"label" validate:"required"`
	SolutionVersion int      `yaml:"solution_version" validate:"gt=0"`
	Frameworks      []string `yaml:"frameworks" validate:"dive,required"`
}

// Catalog is the immutable set of known frameworks and compiler versions.
// Build it once and share it by pointer; it is safe for concurrent use.
type Catalog struct {
	frameworks []*TargetFramework
	byID       map[string]*TargetFramework
	compilers  []CompilerVersion
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := ParseCatalog(defaultCatalogYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded framework catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadCatalog reads a YAML catalog document from r.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxCatalogSize+1))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if len(data) > MaxCatalogSize {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", ErrInvalidCatalog, MaxCatalogSize)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses and validates a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc catalogYAML
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := catalogValidate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{byID: make(map[string]*TargetFramework, len(doc.Frameworks))}

	for _, f := range doc.Frameworks {
		if _, dup := c.byID[f.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate framework %q", ErrInvalidCatalog, f.ID)
		}
		v, err := ParseFrameworkVersion(f.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: framework %q: %v", ErrInvalidCatalog, f.ID, err)
		}
		fw := &TargetFramework{
			ID:          f.ID,
			Name:        f.Name,
			Profile:     f.Profile,
			DisplayName: f.DisplayName,
			Version:     v,
			basedOn:     append([]string(nil), f.BasedOn...),
		}
		c.frameworks = append(c.frameworks, fw)
		c.byID[fw.ID] = fw
	}

	for _, fw := range c.frameworks {
		closure, err := c.resolve(fw.ID, map[string]bool{})
		if err != nil {
			return nil, err
		}
		delete(closure, fw.ID)
		fw.closure = closure
	}

	for _, cy := range doc.Compilers {
		v, err := ParseFrameworkVersion(cy.ToolsVersion)
		if err != nil {
			return nil, fmt.Errorf("%w: compiler %q: %v", ErrInvalidCatalog, cy.Label, err)
		}
		for _, id := range cy.Frameworks {
			if _, ok := c.byID[id]; !ok {
				return nil, fmt.Errorf("%w: compiler %q references unknown framework %q", ErrInvalidCatalog, cy.Label, id)
			}
		}
		cv := CompilerVersion{
			Major:           v.Major,
			Minor:           v.Minor,
			Label:           cy.Label,
			SolutionVersion: cy.SolutionVersion,
			Frameworks:      append([]string(nil), cy.Frameworks...),
		}
		for _, existing := range c.compilers {
			if existing.Equals(cv) || existing.SolutionVersion == cv.SolutionVersion {
				return nil, fmt.Errorf("%w: compiler %q duplicates %q", ErrInvalidCatalog, cv.Label, existing.Label)
			}
		}
		c.compilers = append(c.compilers, cv)
	}
	sort.SliceStable(c.compilers, func(i, j int) bool {
		return c.compilers[i].SolutionVersion < c.compilers[j].SolutionVersion
	})

	return c, nil
}

// resolve returns id and every framework it transitively builds on.
// visiting holds the IDs on the current path and detects cycles.
func (c *Catalog) resolve(id string, visiting map[string]bool) (map[string]struct{}, error) {
	fw, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown framework %q in based_on", ErrInvalidCatalog, id)
	}
	if visiting[id] {
		return nil, fmt.Errorf("%w: based_on cycle through %q", ErrInvalidCatalog, id)
	}
	visiting[id] = true
	defer delete(visiting, id)

	out := map[string]struct{}{id: {}}
	for _, parent := range fw.basedOn {
		sub, err := c.resolve(parent, visiting)
		if err != nil {
			return nil, err
		}
		for k := range sub {
			out[k] = struct{}{}
		}
	}
	return out, nil
}

// Frameworks returns all frameworks in catalog order.
func (c *Catalog) Frameworks() []*TargetFramework {
	return append([]*TargetFramework(nil), c.frameworks...)
}

// ByID returns the framework with the given catalog ID.
func (c *Catalog) ByID(id string) (*TargetFramework, bool) {
	fw, ok := c.byID[strings.ToLower(id)]
	return fw, ok
}

// MustByID is ByID that panics on unknown IDs. Intended for well-known IDs.
func (c *Catalog) MustByID(id string) *TargetFramework {
	fw, ok := c.ByID(id)
	if !ok {
		panic(fmt.Sprintf("frameworks: unknown framework %q", id))
	}
	return fw
}

// Lookup finds the framework stored as TargetFrameworkVersion name with the
// given TargetFrameworkProfile. Both compare case-insensitively; an empty
// profile selects the full framework.
func (c *Catalog) Lookup(name, profile string) (*TargetFramework, bool) {
	name = strings.TrimSpace(name)
	profile = strings.TrimSpace(profile)
	for _, fw := range c.frameworks {
		if strings.EqualFold(fw.Name, name) && strings.EqualFold(fw.Profile, profile) {
			return fw, true
		}
	}
	return nil, false
}

// CompilerVersions returns all compiler versions ordered by solution version.
func (c *Catalog) CompilerVersions() []CompilerVersion {
	return append([]CompilerVersion(nil), c.compilers...)
}

// CompilerVersion returns the compiler with the given ToolsVersion ("3.5").
func (c *Catalog) CompilerVersion(toolsVersion string) (CompilerVersion, bool) {
	v, err := ParseFrameworkVersion(toolsVersion)
	if err != nil {
		return CompilerVersion{}, false
	}
	for _, cv := range c.compilers {
		if cv.Major == v.Major && cv.Minor == v.Minor {
			return cv, true
		}
	}
	return CompilerVersion{}, false
}

// ForSolutionVersion returns the compiler writing the given solution format version.
func (c *Catalog) ForSolutionVersion(solutionVersion int) (CompilerVersion, bool) {
	for _, cv := range c.compilers {
		if cv.SolutionVersion == solutionVersion {
			return cv, true
		}
	}
	return CompilerVersion{}, false
}

// SupportedFrameworks returns the frameworks cv can target, in catalog order.
func (c *Catalog) SupportedFrameworks(cv CompilerVersion) []*TargetFramework {
	var out []*TargetFramework
	for _, fw := range c.frameworks {
		if cv.Supports(fw) {
			out = append(out, fw)
		}
	}
	return out
}
