package project

import (
	"strings"

	"github.com/maxwhale/SharpDevelop/fileutil"
	"github.com/maxwhale/SharpDevelop/frameworks"
	"github.com/maxwhale/SharpDevelop/observability"
	"github.com/maxwhale/SharpDevelop/properties"
	"github.com/maxwhale/SharpDevelop/upgrade"
)

// Well-known property names.
const (
	PropertyOutputType             = "OutputType"
	PropertyAssemblyName           = "AssemblyName"
	PropertyRootNamespace          = "RootNamespace"
	PropertyProjectGuid            = "ProjectGuid"
	PropertyOutputPath             = "OutputPath"
	PropertyIntermediateOutputPath = "IntermediateOutputPath"
	PropertyStartAction            = "StartAction"
	PropertyStartProgram           = "StartProgram"
	PropertyStartURL               = "StartURL"
	PropertyStartArguments         = "StartArguments"
	PropertyStartWorkingDirectory  = "StartWorkingDirectory"
)

// OutputType is the kind of assembly a project builds.
type OutputType int

// Output types.
const (
	OutputTypeExe OutputType = iota
	OutputTypeWinExe
	OutputTypeLibrary
	OutputTypeModule
)

var outputTypeNames = []string{"Exe", "WinExe", "Library", "Module"}

func (t OutputType) String() string {
	if t < 0 || int(t) >= len(outputTypeNames) {
		return outputTypeNames[OutputTypeExe]
	}
	return outputTypeNames[t]
}

// Extension returns the file extension of the built assembly.
func (t OutputType) Extension() string {
	switch t {
	case OutputTypeLibrary:
		return ".dll"
	case OutputTypeModule:
		return ".netmodule"
	default:
		return ".exe"
	}
}

// ParseOutputType parses an OutputType value case-insensitively.
// Unknown values yield OutputTypeExe and false.
func ParseOutputType(s string) (OutputType, bool) {
	for i, n := range outputTypeNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return OutputType(i), true
		}
	}
	return OutputTypeExe, false
}

// StartAction selects what a debug start launches.
type StartAction int

// Start actions.
const (
	// StartActionProject launches the built output.
	StartActionProject StartAction = iota
	// StartActionProgram launches StartProgram.
	StartActionProgram
	// StartActionURL opens StartURL.
	StartActionURL
)

var startActionNames = []string{"Project", "Program", "StartURL"}

func (a StartAction) String() string {
	if a < 0 || int(a) >= len(startActionNames) {
		return startActionNames[StartActionProject]
	}
	return startActionNames[a]
}

// ParseStartAction parses a StartAction value case-insensitively.
// Unknown values yield StartActionProject and false.
func ParseStartAction(s string) (StartAction, bool) {
	for i, n := range startActionNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return StartAction(i), true
		}
	}
	return StartActionProject, false
}

// GetProperty returns the evaluated value of name for the active
// configuration and platform.
func (p *Project) GetProperty(name string) (string, bool) {
	active := p.ActiveConfiguration()
	return p.store.GetEvaluated(name, active.Configuration, active.Platform)
}

// LookupProperty is GetProperty returning the winning entry.
func (p *Project) LookupProperty(name string) (properties.Entry, bool) {
	active := p.ActiveConfiguration()
	return p.store.Lookup(name, active.Configuration, active.Platform)
}

// SetProperty writes name at location, scoped to the active configuration
// and platform as the location requires. A write that changes the store
// emits one PropertyChangedEvent and, for sensitive properties, one reparse.
func (p *Project) SetProperty(name, value string, location properties.StorageLocation) error {
	if p.ReadOnly() {
		return ErrReadOnly
	}
	active := p.ActiveConfiguration()
	key, loc := properties.KeyFor(active.Configuration, active.Platform, name, location)

	prev, _ := p.store.Get(key.Configuration, key.Platform, name)
	if !p.store.Set(key.Configuration, key.Platform, name, value, loc, false) {
		return nil
	}
	observability.PropertyWritesTotal.WithLabelValues(loc.String()).Inc()
	p.logger.Verbose("Set {Property} = {Value} at {Location}", name, value, loc.String())

	p.changed(PropertyChangedEvent{
		Name:          name,
		Configuration: key.Configuration,
		Platform:      key.Platform,
		Location:      loc,
		OldValue:      prev.Value,
		NewValue:      value,
	})
	return nil
}

// RemoveProperty deletes the entry of name at location for the active scope.
func (p *Project) RemoveProperty(name string, location properties.StorageLocation) error {
	if p.ReadOnly() {
		return ErrReadOnly
	}
	active := p.ActiveConfiguration()
	key, loc := properties.KeyFor(active.Configuration, active.Platform, name, location)

	prev, ok := p.store.Get(key.Configuration, key.Platform, name)
	if !ok || !p.store.Remove(key.Configuration, key.Platform, name) {
		return nil
	}
	p.changed(PropertyChangedEvent{
		Name:          name,
		Configuration: key.Configuration,
		Platform:      key.Platform,
		Location:      loc,
		OldValue:      prev.Value,
		Removed:       true,
	})
	return nil
}

func (p *Project) changed(ev PropertyChangedEvent) {
	p.notify(ev)
	p.reparse(p.kind.isReferenceSensitive(ev.Name), p.kind.isCodeSensitive(ev.Name))
}

func (p *Project) property(name string) string {
	v, _ := p.GetProperty(name)
	return v
}

// ProjectGuid returns the project GUID including braces.
func (p *Project) ProjectGuid() string { return p.property(PropertyProjectGuid) }

// OutputType returns the output type. Unknown values read as OutputTypeExe.
func (p *Project) OutputType() OutputType {
	t, _ := ParseOutputType(p.property(PropertyOutputType))
	return t
}

// SetOutputType writes OutputType at Base scope.
func (p *Project) SetOutputType(t OutputType) error {
	return p.SetProperty(PropertyOutputType, t.String(), properties.Base)
}

// AssemblyName returns the assembly name, defaulting to the project name.
func (p *Project) AssemblyName() string {
	if v := p.property(PropertyAssemblyName); v != "" {
		return v
	}
	return p.name
}

// SetAssemblyName writes AssemblyName at Base scope.
func (p *Project) SetAssemblyName(name string) error {
	return p.SetProperty(PropertyAssemblyName, name, properties.Base)
}

// RootNamespace returns the root namespace.
func (p *Project) RootNamespace() string { return p.property(PropertyRootNamespace) }

// SetRootNamespace writes RootNamespace at Base scope.
func (p *Project) SetRootNamespace(ns string) error {
	return p.SetProperty(PropertyRootNamespace, ns, properties.Base)
}

// StartAction returns the start action. Unknown values read as StartActionProject.
func (p *Project) StartAction() StartAction {
	a, _ := ParseStartAction(p.property(PropertyStartAction))
	return a
}

// SetStartAction writes StartAction for the active configuration.
func (p *Project) SetStartAction(a StartAction) error {
	return p.SetProperty(PropertyStartAction, a.String(), properties.ConfigurationSpecific)
}

// StartProgram returns the program launched by StartActionProgram.
func (p *Project) StartProgram() string { return p.property(PropertyStartProgram) }

// SetStartProgram writes StartProgram for the active configuration.
func (p *Project) SetStartProgram(path string) error {
	return p.SetProperty(PropertyStartProgram, path, properties.ConfigurationSpecific)
}

// StartURL returns the URL opened by StartActionURL.
func (p *Project) StartURL() string { return p.property(PropertyStartURL) }

// SetStartURL writes StartURL for the active configuration.
func (p *Project) SetStartURL(url string) error {
	return p.SetProperty(PropertyStartURL, url, properties.ConfigurationSpecific)
}

// StartArguments returns the command line arguments passed on start.
func (p *Project) StartArguments() string { return p.property(PropertyStartArguments) }

// SetStartArguments writes StartArguments for the active configuration.
func (p *Project) SetStartArguments(args string) error {
	return p.SetProperty(PropertyStartArguments, args, properties.ConfigurationSpecific)
}

// StartWorkingDirectory returns the working directory used on start.
func (p *Project) StartWorkingDirectory() string { return p.property(PropertyStartWorkingDirectory) }

// SetStartWorkingDirectory writes StartWorkingDirectory for the active configuration.
func (p *Project) SetStartWorkingDirectory(dir string) error {
	return p.SetProperty(PropertyStartWorkingDirectory, dir, properties.ConfigurationSpecific)
}

// OutputPath returns the raw OutputPath value, e.g. `bin\Debug\`.
func (p *Project) OutputPath() string { return p.property(PropertyOutputPath) }

// SetOutputPath writes OutputPath for the active configuration.
func (p *Project) SetOutputPath(path string) error {
	return p.SetProperty(PropertyOutputPath, path, properties.ConfigurationSpecific)
}

// OutputFullPath resolves OutputPath against the project directory.
func (p *Project) OutputFullPath() string {
	return fileutil.Combine(p.Directory(), p.OutputPath())
}

// IntermediateOutputFullPath resolves IntermediateOutputPath, defaulting to
// obj\<configuration>\, against the project directory.
func (p *Project) IntermediateOutputFullPath() string {
	rel := p.property(PropertyIntermediateOutputPath)
	if rel == "" {
		rel = `obj\` + p.ActiveConfiguration().Configuration + `\`
	}
	return fileutil.Combine(p.Directory(), rel)
}

// OutputAssemblyFullPath is the path of the built assembly.
func (p *Project) OutputAssemblyFullPath() string {
	return fileutil.Combine(p.OutputFullPath(), p.AssemblyName()+p.OutputType().Extension())
}

// ToolsVersion returns the stored ToolsVersion.
func (p *Project) ToolsVersion() string { return p.property(upgrade.PropertyToolsVersion) }

// CompilerVersion returns the compiler matching ToolsVersion, or the one
// for the minimum solution version when ToolsVersion is unknown.
func (p *Project) CompilerVersion() (frameworks.CompilerVersion, bool) {
	if cv, ok := p.deps.Catalog.CompilerVersion(p.ToolsVersion()); ok {
		return cv, true
	}
	return p.deps.Catalog.ForSolutionVersion(p.MinimumSolutionVersion())
}

// TargetFramework resolves TargetFrameworkVersion and TargetFrameworkProfile
// against the catalog. An unknown profile falls back to the full framework;
// an unknown version yields nil.
func (p *Project) TargetFramework() *frameworks.TargetFramework {
	name, ok := p.GetProperty(upgrade.PropertyTargetFrameworkVersion)
	if !ok {
		return nil
	}
	profile := p.property(upgrade.PropertyTargetFrameworkProfile)
	if fw, ok := p.deps.Catalog.Lookup(name, profile); ok {
		return fw
	}
	if profile != "" {
		if fw, ok := p.deps.Catalog.Lookup(name, ""); ok {
			return fw
		}
	}
	return nil
}
