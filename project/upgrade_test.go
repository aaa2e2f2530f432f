package project

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxwhale/SharpDevelop/frameworks"
	"github.com/maxwhale/SharpDevelop/properties"
	"github.com/maxwhale/SharpDevelop/upgrade"
)

func mustFramework(t *testing.T, id string) *frameworks.TargetFramework {
	t.Helper()
	fw, ok := frameworks.Default().ByID(id)
	require.True(t, ok)
	return fw
}

func mustCompiler(t *testing.T, tools string) *frameworks.CompilerVersion {
	t.Helper()
	cv, ok := frameworks.Default().CompilerVersion(tools)
	require.True(t, ok)
	return &cv
}

func TestUpgrade_Net20ToNet35(t *testing.T) {
	saver := &recordingSaver{}
	reparser := &recordingReparser{}
	p := newTestProject(t, frameworks.Net20, Dependencies{Saver: saver, Reparser: reparser})
	for _, r := range []string{"System", "System.Xml", "System.Data"} {
		_, err := p.AddReference(r, "")
		require.NoError(t, err)
	}
	reparser.calls = nil

	var events []PropertyChangedEvent
	p.Subscribe(func(ev PropertyChangedEvent) {
		assert.True(t, p.syncRoot.TryLock(), "events must be dispatched after the lock is released")
		p.syncRoot.Unlock()
		events = append(events, ev)
	})

	result, err := p.Upgrade(context.Background(), mustCompiler(t, "3.5"), mustFramework(t, frameworks.Net35))
	require.NoError(t, err)

	assert.Equal(t, []string{"System", "System.Xml", "System.Data", upgrade.RefSystemCore, upgrade.RefSystemXmlLinq, upgrade.RefDataSetExtensions}, p.References().Names())
	ref, _ := p.References().Get(upgrade.RefSystemCore)
	assert.Equal(t, "3.5", ref.RequiredTargetFramework())

	assert.Equal(t, "3.5", p.ToolsVersion())
	assert.Equal(t, 10, p.MinimumSolutionVersion())
	assert.Equal(t, frameworks.Net35, p.TargetFramework().ID)
	assert.Equal(t, frameworks.Net20, result.OldFramework.ID)

	require.Len(t, events, 2)
	assert.Equal(t, upgrade.PropertyToolsVersion, events[0].Name)
	assert.Equal(t, "2.0", events[0].OldValue)
	assert.Equal(t, upgrade.PropertyTargetFrameworkVersion, events[1].Name)
	assert.Equal(t, "v3.5", events[1].NewValue)

	assert.Equal(t, []reparseCall{{true, false}}, reparser.calls)
	assert.Equal(t, 1, saver.saves)
	assert.True(t, saver.lockedSave)
}

func TestUpgrade_Net35ToNet20RemovesUnconditionally(t *testing.T) {
	p := newTestProject(t, frameworks.Net35, Dependencies{})
	_, err := p.AddReference(upgrade.RefSystemCore, "3.5")
	require.NoError(t, err)
	_, err = p.AddReference("System.Xml", "")
	require.NoError(t, err)

	result, err := p.Upgrade(context.Background(), nil, mustFramework(t, frameworks.Net20))
	require.NoError(t, err)

	assert.Equal(t, []string{"System.Xml"}, p.References().Names())
	assert.Equal(t, []string{upgrade.RefSystemCore}, result.RemovedReferences)
	assert.Equal(t, "3.5", p.ToolsVersion(), "tools version is untouched without a compiler")
}

func TestUpgrade_RoundTripLeavesNoResidue(t *testing.T) {
	p := newTestProject(t, frameworks.Net20, Dependencies{})
	for _, r := range []string{"System.Xml", "System.Data", "WindowsBase"} {
		_, err := p.AddReference(r, "")
		require.NoError(t, err)
	}

	_, err := p.Upgrade(context.Background(), mustCompiler(t, "4.0"), mustFramework(t, frameworks.Net40))
	require.NoError(t, err)
	assert.True(t, p.References().Contains(upgrade.RefSystemXaml))
	assert.True(t, p.References().Contains(RefMicrosoftCSharp), "C# hook adds Microsoft.CSharp for 4.0")

	_, err = p.Upgrade(context.Background(), nil, mustFramework(t, frameworks.Net20))
	require.NoError(t, err)
	assert.Equal(t, []string{"System.Xml", "System.Data", "WindowsBase"}, p.References().Names())
	assert.Equal(t, 11, p.MinimumSolutionVersion(), "minimum solution version never decreases")
}

func TestUpgrade_HookReferenceChangeTriggersReparse(t *testing.T) {
	reparser := &recordingReparser{}
	p := newTestProject(t, frameworks.Net40, Dependencies{Reparser: reparser})

	// same framework: no rule fires, only the hook adds Microsoft.CSharp
	result, err := p.Upgrade(context.Background(), nil, mustFramework(t, "net40client"))
	require.NoError(t, err)
	assert.False(t, result.ReferencesChanged())
	assert.True(t, p.References().Contains(RefMicrosoftCSharp))
	assert.Equal(t, []reparseCall{{true, false}}, reparser.calls)
}

func TestUpgrade_UnknownFrameworkOnlyAdds(t *testing.T) {
	store := properties.NewStore()
	store.Set("", "", upgrade.PropertyTargetFrameworkVersion, "v1.1", properties.Base, false)
	p, err := Load(LoadInfo{FileName: "/src/Old/Old.csproj", Properties: store}, Dependencies{})
	require.NoError(t, err)
	require.Nil(t, p.TargetFramework())
	_, err = p.AddReference(upgrade.RefSystemCore, "")
	require.NoError(t, err)

	_, err = p.Upgrade(context.Background(), nil, mustFramework(t, frameworks.Net20))
	require.NoError(t, err)
	assert.True(t, p.References().Contains(upgrade.RefSystemCore), "no remove rule fires from an unknown framework")
}

func TestUpgrade_UnavailableCompilerIgnored(t *testing.T) {
	p := newTestProject(t, frameworks.Net40, Dependencies{})

	result, err := p.Upgrade(context.Background(), mustCompiler(t, "2.0"), nil)
	require.NoError(t, err)
	assert.Nil(t, result.CompilerVersion)
	assert.Equal(t, "4.0", p.ToolsVersion())
	assert.Equal(t, 11, p.MinimumSolutionVersion())
}

func TestUpgrade_SaveErrorStillNotifies(t *testing.T) {
	saver := &recordingSaver{err: errors.New("access denied")}
	p := newTestProject(t, frameworks.Net20, Dependencies{Saver: saver})

	events := 0
	p.Subscribe(func(PropertyChangedEvent) { events++ })

	result, err := p.Upgrade(context.Background(), nil, mustFramework(t, frameworks.Net35))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	require.NotNil(t, result)
	assert.Equal(t, frameworks.Net35, p.TargetFramework().ID)
	assert.Equal(t, 1, events)
}

const twoFrameworkCatalog = `
frameworks:
  - {id: net20, name: v2.0, display_name: Two}
  - {id: net40, name: v4.0, display_name: Four, based_on: [net20]}
compilers:
  - {tools_version: "4.0", label: "C# 4.0", solution_version: 11, frameworks: [net20, net40]}
`

func TestUpgrade_CSharpHookResolvesAgainstProjectCatalog(t *testing.T) {
	cat, err := frameworks.LoadCatalog(strings.NewReader(twoFrameworkCatalog))
	require.NoError(t, err)
	p := newTestProject(t, frameworks.Net20, Dependencies{Catalog: cat})

	_, err = p.Upgrade(context.Background(), nil, cat.MustByID(frameworks.Net40))
	require.NoError(t, err)
	assert.True(t, p.References().Contains(RefMicrosoftCSharp))

	_, err = p.Upgrade(context.Background(), nil, cat.MustByID(frameworks.Net20))
	require.NoError(t, err)
	assert.False(t, p.References().Contains(RefMicrosoftCSharp))
}
