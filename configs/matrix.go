// Package configs tracks the build configurations and platforms a project
// supports and keeps property storage consistent when they are renamed.
package configs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/maxwhale/SharpDevelop/properties"
)

var (
	// ErrEmptyName indicates an empty configuration or platform name.
	ErrEmptyName = errors.New("configs: name must not be empty")
	// ErrInvalidName indicates a name containing a character that cannot
	// appear in a build condition.
	ErrInvalidName = errors.New("configs: name contains invalid characters")
	// ErrUnknownName indicates a rename or removal of a name the matrix does not know.
	ErrUnknownName = errors.New("configs: unknown name")
	// ErrNameExists indicates a rename onto a name that is already in use.
	ErrNameExists = errors.New("configs: name already exists")
)

// Default names used when a project declares nothing.
const (
	DefaultConfiguration = "Debug"
	DefaultPlatform      = "AnyCPU"
)

// DefaultConfigurations are the configurations a new project starts with.
var DefaultConfigurations = []string{"Debug", "Release"}

// ConfigurationAndPlatform is one entry of the matrix.
type ConfigurationAndPlatform struct {
	Configuration string
	Platform      string
}

// String formats the pair the way build conditions spell it ("Debug|AnyCPU").
func (c ConfigurationAndPlatform) String() string {
	return c.Configuration + "|" + c.Platform
}

// ParseConfigurationAndPlatform splits "Debug|AnyCPU". A missing platform
// yields an empty Platform.
func ParseConfigurationAndPlatform(s string) ConfigurationAndPlatform {
	config, platform, _ := strings.Cut(s, "|")
	return ConfigurationAndPlatform{
		Configuration: strings.TrimSpace(config),
		Platform:      NormalizePlatform(platform),
	}
}

// NormalizePlatform trims name and maps the solution spelling "Any CPU" to
// the project spelling "AnyCPU".
func NormalizePlatform(name string) string {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "Any CPU") {
		return "AnyCPU"
	}
	return name
}

// ValidateName checks a configuration or platform name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if strings.ContainsAny(name, "|'$()\"") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Matrix derives the valid configuration and platform names from declared
// names and the names occurring in a property store.
type Matrix struct {
	store *properties.Store

	mu                     sync.RWMutex
	declaredConfigurations []string
	declaredPlatforms      []string
	configurations         []string
	platforms              []string
}

// NewMatrix creates a matrix over store and computes its initial state.
func NewMatrix(store *properties.Store) *Matrix {
	m := &Matrix{store: store}
	m.Invalidate()
	return m
}

// AddConfiguration declares a configuration name.
func (m *Matrix) AddConfiguration(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	m.mu.Lock()
	m.declaredConfigurations = appendUnique(m.declaredConfigurations, strings.TrimSpace(name))
	m.mu.Unlock()
	m.Invalidate()
	return nil
}

// AddPlatform declares a platform name. "Any CPU" is stored as "AnyCPU".
func (m *Matrix) AddPlatform(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	m.mu.Lock()
	m.declaredPlatforms = appendUnique(m.declaredPlatforms, NormalizePlatform(name))
	m.mu.Unlock()
	m.Invalidate()
	return nil
}

// Invalidate recomputes the name sets. Call it after configurations or
// platforms were added or renamed and before evaluating properties that
// depend on the new names.
func (m *Matrix) Invalidate() {
	configs := merge(m.snapshotDeclared(true), m.store.Configurations())
	platforms := merge(m.snapshotDeclared(false), m.store.Platforms())

	if len(configs) == 0 {
		configs = append(configs, DefaultConfigurations...)
	}
	if len(platforms) == 0 {
		platforms = append(platforms, DefaultPlatform)
	}

	m.mu.Lock()
	m.configurations = configs
	m.platforms = platforms
	m.mu.Unlock()
}

func (m *Matrix) snapshotDeclared(configurations bool) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if configurations {
		return append([]string(nil), m.declaredConfigurations...)
	}
	return append([]string(nil), m.declaredPlatforms...)
}

// Configurations returns the valid configuration names.
func (m *Matrix) Configurations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.configurations...)
}

// Platforms returns the valid platform names.
func (m *Matrix) Platforms() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.platforms...)
}

// Pairs returns every configuration/platform combination, ordered by
// configuration then platform.
func (m *Matrix) Pairs() []ConfigurationAndPlatform {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ConfigurationAndPlatform, 0, len(m.configurations)*len(m.platforms))
	for _, c := range m.configurations {
		for _, p := range m.platforms {
			out = append(out, ConfigurationAndPlatform{Configuration: c, Platform: p})
		}
	}
	return out
}

// IsValid reports whether the pair is part of the matrix.
func (m *Matrix) IsValid(configuration, platform string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return contains(m.configurations, configuration) && contains(m.platforms, NormalizePlatform(platform))
}

// RenameConfiguration renames a configuration and re-keys every property
// entry stored under the old name.
func (m *Matrix) RenameConfiguration(from, to string) error {
	to = strings.TrimSpace(to)
	if err := m.checkRename(m.Configurations(), from, to); err != nil {
		return err
	}
	m.store.RenameConfiguration(from, to)

	m.mu.Lock()
	m.materialize()
	m.declaredConfigurations = replace(m.declaredConfigurations, from, to)
	m.mu.Unlock()
	m.Invalidate()
	return nil
}

// RenamePlatform renames a platform and re-keys every property entry stored
// under the old name.
func (m *Matrix) RenamePlatform(from, to string) error {
	from = NormalizePlatform(from)
	to = NormalizePlatform(to)
	if err := m.checkRename(m.Platforms(), from, to); err != nil {
		return err
	}
	m.store.RenamePlatform(from, to)

	m.mu.Lock()
	m.materialize()
	m.declaredPlatforms = replace(m.declaredPlatforms, from, to)
	m.mu.Unlock()
	m.Invalidate()
	return nil
}

// RemoveConfiguration drops a configuration together with its property entries.
func (m *Matrix) RemoveConfiguration(name string) error {
	if !contains(m.Configurations(), name) {
		return fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	m.store.RemoveConfiguration(name)

	m.mu.Lock()
	m.materialize()
	m.declaredConfigurations = remove(m.declaredConfigurations, name)
	m.mu.Unlock()
	m.Invalidate()
	return nil
}

// materialize declares every currently valid name, so implicit defaults
// survive edits of their siblings. Callers hold m.mu.
func (m *Matrix) materialize() {
	for _, c := range m.configurations {
		m.declaredConfigurations = appendUnique(m.declaredConfigurations, c)
	}
	for _, p := range m.platforms {
		m.declaredPlatforms = appendUnique(m.declaredPlatforms, p)
	}
}

func (m *Matrix) checkRename(existing []string, from, to string) error {
	if err := ValidateName(to); err != nil {
		return err
	}
	if !contains(existing, from) {
		return fmt.Errorf("%w: %q", ErrUnknownName, from)
	}
	if from != to && contains(existing, to) {
		return fmt.Errorf("%w: %q", ErrNameExists, to)
	}
	return nil
}

func merge(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, n := range b {
		out = appendUnique(out, n)
	}
	sort.Strings(out)
	return out
}

func appendUnique(list []string, name string) []string {
	if contains(list, name) {
		return list
	}
	return append(list, name)
}

func contains(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

func replace(list []string, from, to string) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		if n == from {
			n = to
		}
		out = appendUnique(out, n)
	}
	return out
}

func remove(list []string, name string) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
