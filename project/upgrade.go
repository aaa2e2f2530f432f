package project

import (
	"context"
	"slices"

	"github.com/maxwhale/SharpDevelop/frameworks"
	"github.com/maxwhale/SharpDevelop/properties"
	"github.com/maxwhale/SharpDevelop/upgrade"
)

// AvailableCompilerVersions returns the compiler versions the project may
// select: those whose solution version is at least the project's minimum,
// capped by the kind's maximum.
func (p *Project) AvailableCompilerVersions() []frameworks.CompilerVersion {
	minimum := p.MinimumSolutionVersion()
	var out []frameworks.CompilerVersion
	for _, cv := range p.deps.Catalog.CompilerVersions() {
		if cv.SolutionVersion < minimum {
			continue
		}
		if p.kind.MaxSolutionVersion > 0 && cv.SolutionVersion > p.kind.MaxSolutionVersion {
			continue
		}
		out = append(out, cv)
	}
	return out
}

// Upgrade changes the compiler version and/or target framework; nil leaves
// either unchanged. Change events and the reparse request are dispatched
// after the project lock is released, also when the save failed.
func (p *Project) Upgrade(ctx context.Context, newVersion *frameworks.CompilerVersion, newFramework *frameworks.TargetFramework) (*upgrade.Result, error) {
	result, err := p.engine.Upgrade(ctx, p, newVersion, newFramework)
	if result == nil {
		return nil, err
	}

	refsChanged := result.ReferencesChanged() || p.hookChangedRefs.Swap(false)
	codeChanged := false
	for _, c := range result.PropertyChanges {
		p.notify(PropertyChangedEvent{
			Name:     c.Name,
			Location: properties.Base,
			OldValue: c.OldValue,
			NewValue: c.NewValue,
			Removed:  c.Removed,
		})
		refsChanged = refsChanged || p.kind.isReferenceSensitive(c.Name)
		codeChanged = codeChanged || p.kind.isCodeSensitive(c.Name)
	}
	p.reparse(refsChanged, codeChanged)
	return result, err
}

// runKindHook is installed as the engine's extension hook. It runs with
// SyncRoot held and records whether the kind hook touched references.
func (p *Project) runKindHook(ctx context.Context, subject upgrade.Subject, newVersion *frameworks.CompilerVersion, newFramework *frameworks.TargetFramework) error {
	if p.kind.Hook == nil {
		return nil
	}
	before := subject.References().Names()
	err := p.kind.Hook(ctx, subject, newVersion, newFramework)
	if !slices.Equal(before, subject.References().Names()) {
		p.hookChangedRefs.Store(true)
	}
	return err
}
