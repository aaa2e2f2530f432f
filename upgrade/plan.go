// Package upgrade changes a project's compiler version and target framework
// and keeps its assembly references consistent with the new framework.
//
// The work is split in two: ComputePlan decides what to change from a
// snapshot without touching the project, and Engine.Upgrade applies a plan
// as one transaction under the project's lock.
package upgrade

import (
	"github.com/maxwhale/SharpDevelop/frameworks"
)

// Properties written by an upgrade.
const (
	PropertyToolsVersion           = "ToolsVersion"
	PropertyTargetFrameworkVersion = "TargetFrameworkVersion"
	PropertyTargetFrameworkProfile = "TargetFrameworkProfile"
)

// Assembly references managed by the framework rules.
const (
	RefSystemCore        = "System.Core"
	RefSystemXml         = "System.Xml"
	RefSystemXmlLinq     = "System.Xml.Linq"
	RefSystemData        = "System.Data"
	RefDataSetExtensions = "System.Data.DataSetExtensions"
	RefWindowsBase       = "WindowsBase"
	RefSystemXaml        = "System.Xaml"
)

const (
	requiredFramework35 = "3.5"
	requiredFramework40 = "4.0"
)

// ActionKind says whether a reference is added or removed.
type ActionKind int

const (
	// AddReference adds a reference unless it is already present.
	AddReference ActionKind = iota
	// RemoveReference removes a reference if present.
	RemoveReference
)

func (k ActionKind) String() string {
	if k == RemoveReference {
		return "remove"
	}
	return "add"
}

// ReferenceAction is one planned reference change.
type ReferenceAction struct {
	Kind    ActionKind
	Include string
	// RequiredFramework is recorded as RequiredTargetFramework metadata on add.
	RequiredFramework string
	// Rule names the framework rule that produced the action ("net35", "net40").
	Rule string
}

// PropertyWrite is one planned base-scope property change.
type PropertyWrite struct {
	Name  string
	Value string
	// Remove deletes the property instead of writing Value.
	Remove bool
}

// ReferenceLookup answers presence queries against the current references.
// *references.Set satisfies it.
type ReferenceLookup interface {
	Contains(include string) bool
}

// PlanInput is the snapshot a plan is computed from.
type PlanInput struct {
	// OldFramework is the project's current framework; nil when unknown.
	OldFramework *frameworks.TargetFramework
	// NewFramework is the requested framework; nil leaves it unchanged.
	NewFramework *frameworks.TargetFramework
	// NewCompilerVersion is the requested compiler; nil leaves it unchanged.
	NewCompilerVersion *frameworks.CompilerVersion
	// AvailableCompilerVersions are the versions the project may switch to.
	AvailableCompilerVersions []frameworks.CompilerVersion
	// References is queried for the conditional rules; nil means no references.
	References ReferenceLookup
	// Catalog resolves the rule frameworks; nil uses frameworks.Default().
	Catalog *frameworks.Catalog
}

// Plan is the set of changes an upgrade will make.
type Plan struct {
	// CompilerVersion is the compiler to switch to, nil when unchanged.
	CompilerVersion *frameworks.CompilerVersion
	// Properties are applied in order at base scope.
	Properties []PropertyWrite
	// References are applied in order.
	References []ReferenceAction
}

// IsEmpty reports whether the plan changes nothing.
func (p Plan) IsEmpty() bool {
	return p.CompilerVersion == nil && len(p.Properties) == 0 && len(p.References) == 0
}

type noReferences struct{}

func (noReferences) Contains(string) bool { return false }

// ComputePlan decides what an upgrade changes. It is pure: the input is only read.
//
// A compiler version that is not available is ignored. A framework change
// writes TargetFrameworkVersion and TargetFrameworkProfile and applies the
// reference rules for .NET 3.5 and .NET 4.0 independently: crossing a
// boundary upwards adds references, crossing it downwards removes them.
// An unknown old framework is based on nothing, so only add rules can fire.
func ComputePlan(in PlanInput) Plan {
	var plan Plan

	if in.NewCompilerVersion != nil && frameworks.ContainsCompilerVersion(in.AvailableCompilerVersions, *in.NewCompilerVersion) {
		cv := *in.NewCompilerVersion
		plan.CompilerVersion = &cv
		plan.Properties = append(plan.Properties, PropertyWrite{Name: PropertyToolsVersion, Value: cv.ToolsVersion()})
	}

	if in.NewFramework == nil {
		return plan
	}

	plan.Properties = append(plan.Properties, PropertyWrite{Name: PropertyTargetFrameworkVersion, Value: in.NewFramework.Name})
	if in.NewFramework.Profile != "" {
		plan.Properties = append(plan.Properties, PropertyWrite{Name: PropertyTargetFrameworkProfile, Value: in.NewFramework.Profile})
	} else {
		plan.Properties = append(plan.Properties, PropertyWrite{Name: PropertyTargetFrameworkProfile, Remove: true})
	}

	catalog := in.Catalog
	if catalog == nil {
		catalog = frameworks.Default()
	}
	refs := in.References
	if refs == nil {
		refs = noReferences{}
	}

	old, fw := in.OldFramework, in.NewFramework
	if net35, ok := catalog.ByID(frameworks.Net35); ok {
		switch {
		case !old.IsBasedOn(net35) && fw.IsBasedOn(net35):
			plan.References = append(plan.References, add35(refs)...)
		case old.IsBasedOn(net35) && !fw.IsBasedOn(net35):
			plan.References = append(plan.References, remove35()...)
		}
	}
	if net40, ok := catalog.ByID(frameworks.Net40); ok {
		switch {
		case !old.IsBasedOn(net40) && fw.IsBasedOn(net40):
			plan.References = append(plan.References, add40(refs)...)
		case old.IsBasedOn(net40) && !fw.IsBasedOn(net40):
			plan.References = append(plan.References, remove40()...)
		}
	}

	return plan
}

func add35(refs ReferenceLookup) []ReferenceAction {
	actions := []ReferenceAction{addRef(RefSystemCore, requiredFramework35, frameworks.Net35)}
	if refs.Contains(RefSystemXml) {
		actions = append(actions, addRef(RefSystemXmlLinq, requiredFramework35, frameworks.Net35))
	}
	if refs.Contains(RefSystemData) {
		actions = append(actions, addRef(RefDataSetExtensions, requiredFramework35, frameworks.Net35))
	}
	return actions
}

func remove35() []ReferenceAction {
	return []ReferenceAction{
		removeRef(RefSystemCore, frameworks.Net35),
		removeRef(RefSystemXmlLinq, frameworks.Net35),
		removeRef(RefDataSetExtensions, frameworks.Net35),
	}
}

func add40(refs ReferenceLookup) []ReferenceAction {
	if !refs.Contains(RefWindowsBase) {
		return nil
	}
	return []ReferenceAction{addRef(RefSystemXaml, requiredFramework40, frameworks.Net40)}
}

func remove40() []ReferenceAction {
	return []ReferenceAction{removeRef(RefSystemXaml, frameworks.Net40)}
}

func addRef(include, required, rule string) ReferenceAction {
	return ReferenceAction{Kind: AddReference, Include: include, RequiredFramework: required, Rule: rule}
}

func removeRef(include, rule string) ReferenceAction {
	return ReferenceAction{Kind: RemoveReference, Include: include, Rule: rule}
}
