package upgrade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxwhale/SharpDevelop/frameworks"
	"github.com/maxwhale/SharpDevelop/references"
)

func fw(t *testing.T, id string) *frameworks.TargetFramework {
	t.Helper()
	f, ok := frameworks.Default().ByID(id)
	require.True(t, ok, "unknown framework %s", id)
	return f
}

func refSet(names ...string) *references.Set {
	s := references.NewSet()
	for _, n := range names {
		s.AddIfAbsent(n, "")
	}
	return s
}

func includes(actions []ReferenceAction, kind ActionKind) []string {
	var out []string
	for _, a := range actions {
		if a.Kind == kind {
			out = append(out, a.Include)
		}
	}
	return out
}

func TestComputePlan_ReferenceRules(t *testing.T) {
	tests := []struct {
		name        string
		old, new    string
		refs        []string
		wantAdds    []string
		wantRemoves []string
	}{
		{
			name:     "2.0 to 3.5 adds System.Core only without Xml or Data",
			old:      frameworks.Net20,
			new:      frameworks.Net35,
			wantAdds: []string{RefSystemCore},
		},
		{
			name:     "2.0 to 3.5 adds Xml.Linq when System.Xml present",
			old:      frameworks.Net20,
			new:      frameworks.Net35,
			refs:     []string{RefSystemXml},
			wantAdds: []string{RefSystemCore, RefSystemXmlLinq},
		},
		{
			name:     "2.0 to 3.5 adds DataSetExtensions when System.Data present",
			old:      frameworks.Net20,
			new:      frameworks.Net35,
			refs:     []string{RefSystemXml, RefSystemData},
			wantAdds: []string{RefSystemCore, RefSystemXmlLinq, RefDataSetExtensions},
		},
		{
			name:        "3.5 to 2.0 removes all three unconditionally",
			old:         frameworks.Net35,
			new:         frameworks.Net20,
			wantRemoves: []string{RefSystemCore, RefSystemXmlLinq, RefDataSetExtensions},
		},
		{
			name:     "2.0 to 4.0 fires both add rules",
			old:      frameworks.Net20,
			new:      frameworks.Net40,
			refs:     []string{RefWindowsBase},
			wantAdds: []string{RefSystemCore, RefSystemXaml},
		},
		{
			name:     "3.5 to 4.0 without WindowsBase adds nothing",
			old:      frameworks.Net35,
			new:      frameworks.Net40,
			wantAdds: nil,
		},
		{
			name:        "4.0 to 3.5 removes System.Xaml only",
			old:         frameworks.Net40,
			new:         frameworks.Net35,
			wantRemoves: []string{RefSystemXaml},
		},
		{
			name:        "4.0 to 2.0 fires both remove rules",
			old:         frameworks.Net40,
			new:         frameworks.Net20,
			wantRemoves: []string{RefSystemCore, RefSystemXmlLinq, RefDataSetExtensions, RefSystemXaml},
		},
		{
			name: "3.5 to 3.5 client profile stays on the same side",
			old:  frameworks.Net35,
			new:  "net35client",
		},
		{
			name:     "unknown old framework to 3.5 adds",
			new:      frameworks.Net35,
			wantAdds: []string{RefSystemCore},
		},
		{
			name: "unknown old framework to 2.0 never removes",
			new:  frameworks.Net20,
			refs: []string{RefSystemCore, RefSystemXaml},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var old *frameworks.TargetFramework
			if tt.old != "" {
				old = fw(t, tt.old)
			}
			plan := ComputePlan(PlanInput{
				OldFramework: old,
				NewFramework: fw(t, tt.new),
				References:   refSet(tt.refs...),
			})

			assert.Equal(t, tt.wantAdds, includes(plan.References, AddReference))
			assert.Equal(t, tt.wantRemoves, includes(plan.References, RemoveReference))
		})
	}
}

func TestComputePlan_RequiredFrameworkMetadata(t *testing.T) {
	plan := ComputePlan(PlanInput{
		OldFramework: fw(t, frameworks.Net20),
		NewFramework: fw(t, frameworks.Net40),
		References:   refSet(RefWindowsBase),
	})

	require.Len(t, plan.References, 2)
	assert.Equal(t, "3.5", plan.References[0].RequiredFramework)
	assert.Equal(t, frameworks.Net35, plan.References[0].Rule)
	assert.Equal(t, "4.0", plan.References[1].RequiredFramework)
	assert.Equal(t, frameworks.Net40, plan.References[1].Rule)
}

func TestComputePlan_FrameworkProperties(t *testing.T) {
	plan := ComputePlan(PlanInput{NewFramework: fw(t, "net40client")})
	assert.Equal(t, []PropertyWrite{
		{Name: PropertyTargetFrameworkVersion, Value: "v4.0"},
		{Name: PropertyTargetFrameworkProfile, Value: "Client"},
	}, plan.Properties)

	plan = ComputePlan(PlanInput{NewFramework: fw(t, frameworks.Net40)})
	assert.Equal(t, []PropertyWrite{
		{Name: PropertyTargetFrameworkVersion, Value: "v4.0"},
		{Name: PropertyTargetFrameworkProfile, Remove: true},
	}, plan.Properties)
}

func TestComputePlan_CompilerVersion(t *testing.T) {
	catalog := frameworks.Default()
	cv35, _ := catalog.CompilerVersion("3.5")
	cv40, _ := catalog.CompilerVersion("4.0")

	plan := ComputePlan(PlanInput{
		NewCompilerVersion:        &cv40,
		AvailableCompilerVersions: []frameworks.CompilerVersion{cv35},
	})
	assert.True(t, plan.IsEmpty(), "unavailable compiler must be ignored")

	plan = ComputePlan(PlanInput{
		NewCompilerVersion:        &cv35,
		AvailableCompilerVersions: catalog.CompilerVersions(),
	})
	require.NotNil(t, plan.CompilerVersion)
	assert.Equal(t, []PropertyWrite{{Name: PropertyToolsVersion, Value: "3.5"}}, plan.Properties)
	assert.Empty(t, plan.References)
}

func TestComputePlan_DoesNotMutateInput(t *testing.T) {
	refs := refSet(RefSystemXml)
	ComputePlan(PlanInput{
		OldFramework: fw(t, frameworks.Net20),
		NewFramework: fw(t, frameworks.Net35),
		References:   refs,
	})
	assert.Equal(t, []string{RefSystemXml}, refs.Names())
}

func TestComputePlan_NothingRequested(t *testing.T) {
	plan := ComputePlan(PlanInput{OldFramework: fw(t, frameworks.Net35)})
	assert.True(t, plan.IsEmpty())
}
