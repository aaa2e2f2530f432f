package project

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/maxwhale/SharpDevelop/frameworks"
	"github.com/maxwhale/SharpDevelop/properties"
	"github.com/maxwhale/SharpDevelop/upgrade"
)

// DefaultProperty is a property seeded by the new-project flow.
// A ConfigurationSpecific default with an empty Configuration is seeded
// once per default configuration.
type DefaultProperty struct {
	Name          string
	Value         string
	Configuration string
	Location      properties.StorageLocation
}

// Kind describes the language-specific parts of a project.
type Kind struct {
	// Name is the display name ("C#").
	Name string
	// Extension is the project file extension including the dot.
	Extension string
	// TypeGUID is the project type GUID used in solution files.
	TypeGUID string

	// Defaults are seeded with isDefault=true by New.
	Defaults []DefaultProperty

	// ReferenceSensitive and CodeSensitive name the properties whose change
	// requires a reparse. The sets are disjoint.
	ReferenceSensitive []string
	CodeSensitive      []string

	// Hook runs inside every upgrade transaction. May be nil.
	Hook upgrade.ExtensionHook

	// MaxSolutionVersion caps the compiler versions offered. Zero means no cap.
	MaxSolutionVersion int
}

func (k *Kind) isReferenceSensitive(name string) bool {
	return containsFold(k.ReferenceSensitive, name)
}

func (k *Kind) isCodeSensitive(name string) bool {
	return containsFold(k.CodeSensitive, name)
}

func containsFold(list []string, name string) bool {
	for _, n := range list {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// RefMicrosoftCSharp is kept in step with .NET 4.0 targets by the C# kind.
const RefMicrosoftCSharp = "Microsoft.CSharp"

// CSharp returns the C# project kind.
func CSharp() *Kind {
	return &Kind{
		Name:      "C#",
		Extension: ".csproj",
		TypeGUID:  "{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}",
		Defaults: []DefaultProperty{
			{Name: "DefineConstants", Value: "DEBUG;TRACE", Configuration: "Debug", Location: properties.ConfigurationSpecific},
			{Name: "DefineConstants", Value: "TRACE", Configuration: "Release", Location: properties.ConfigurationSpecific},
			{Name: "WarningLevel", Value: "4", Location: properties.Base},
			{Name: "ErrorReport", Value: "prompt", Location: properties.Base},
		},
		ReferenceSensitive: []string{upgrade.PropertyTargetFrameworkVersion, upgrade.PropertyTargetFrameworkProfile},
		CodeSensitive:      []string{"DefineConstants", "AllowUnsafeBlocks", "CheckForOverflowUnderflow", "LangVersion"},
		Hook:               csharpHook,
	}
}

// VBNet returns the VB.NET project kind.
func VBNet() *Kind {
	return &Kind{
		Name:      "VB.NET",
		Extension: ".vbproj",
		TypeGUID:  "{F184B08F-C81C-45F6-A57F-5ABD9991F28F}",
		Defaults: []DefaultProperty{
			{Name: "DefineDebug", Value: "true", Configuration: "Debug", Location: properties.ConfigurationSpecific},
			{Name: "DefineDebug", Value: "false", Configuration: "Release", Location: properties.ConfigurationSpecific},
			{Name: "DefineTrace", Value: "true", Location: properties.Base},
			{Name: "OptionExplicit", Value: "On", Location: properties.Base},
			{Name: "OptionStrict", Value: "Off", Location: properties.Base},
			{Name: "OptionCompare", Value: "Binary", Location: properties.Base},
			{Name: "OptionInfer", Value: "On", Location: properties.Base},
		},
		ReferenceSensitive: []string{upgrade.PropertyTargetFrameworkVersion, upgrade.PropertyTargetFrameworkProfile},
		CodeSensitive:      []string{"DefineConstants", "DefineDebug", "DefineTrace", "OptionStrict", "OptionExplicit", "OptionCompare", "OptionInfer"},
	}
}

// KindForFile picks the kind from a project file extension.
func KindForFile(fileName string) (*Kind, bool) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csproj":
		return CSharp(), true
	case ".vbproj":
		return VBNet(), true
	default:
		return nil, false
	}
}

// csharpHook keeps Microsoft.CSharp (needed for dynamic) in step with
// whether the new framework is based on .NET 4.0.
func csharpHook(_ context.Context, subject upgrade.Subject, _ *frameworks.CompilerVersion, newFramework *frameworks.TargetFramework) error {
	if newFramework == nil {
		return nil
	}
	refs := subject.References()
	net40, ok := subject.Catalog().ByID(frameworks.Net40)
	if ok && newFramework.IsBasedOn(net40) {
		refs.AddIfAbsent(RefMicrosoftCSharp, "4.0")
	} else {
		refs.Remove(RefMicrosoftCSharp)
	}
	return nil
}
