package msbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxwhale/SharpDevelop/properties"
)

func TestCompileCondition_Evaluate(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		props     map[string]string
		want      bool
	}{
		{"config and platform match", " '$(Configuration)|$(Platform)' == 'Debug|AnyCPU' ", map[string]string{"Configuration": "Debug", "Platform": "AnyCPU"}, true},
		{"case-insensitive values", "'$(Configuration)' == 'debug'", map[string]string{"Configuration": "DEBUG"}, true},
		{"case-insensitive names", "'$(configuration)' == 'Debug'", map[string]string{"Configuration": "Debug"}, true},
		{"mismatch", "'$(Configuration)' == 'Release'", map[string]string{"Configuration": "Debug"}, false},
		{"not equal", "'$(Platform)' != 'x86'", map[string]string{"Platform": "AnyCPU"}, true},
		{"missing property is empty", " '$(Configuration)' == '' ", nil, true},
		{"and", "'$(Configuration)' == 'Debug' And '$(Platform)' == 'x86'", map[string]string{"Configuration": "Debug", "Platform": "x86"}, true},
		{"or", "'$(Configuration)' == 'Debug' or '$(Configuration)' == 'Release'", map[string]string{"Configuration": "Release"}, true},
		{"not with parens", "!('$(Platform)' == 'x86')", map[string]string{"Platform": "x64"}, true},
		{"literal true", "true", nil, true},
		{"unquoted property", "$(Configuration) == 'Debug'", map[string]string{"Configuration": "Debug"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := CompileCondition(tt.condition)
			require.NoError(t, err)
			got, err := c.Evaluate(tt.props)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileCondition_Unsupported(t *testing.T) {
	tests := []string{
		"Exists('$(SolutionDir)packages.config')",
		"'$(Configuration",
		"'unterminated",
		"",
		"'$(Foo.Bar)' == ''",
		"'a' ~ 'b'",
	}

	for _, cond := range tests {
		t.Run(cond, func(t *testing.T) {
			_, err := CompileCondition(cond)
			require.Error(t, err)
			var condErr *ConditionError
			assert.ErrorAs(t, err, &condErr)
			assert.Equal(t, cond, condErr.Condition)
		})
	}
}

func TestCondition_Literals(t *testing.T) {
	c, err := CompileCondition(" '$(Configuration)|$(Platform)' == 'Debug|x86' ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Debug", "x86"}, c.Literals())
	assert.Equal(t, " '$(Configuration)|$(Platform)' == 'Debug|x86' ", c.String())
}

func TestFormatCondition(t *testing.T) {
	assert.Equal(t, " '$(Configuration)|$(Platform)' == 'Debug|AnyCPU' ", FormatCondition("Debug", "AnyCPU"))
	assert.Equal(t, " '$(Configuration)' == 'Release' ", FormatCondition("Release", ""))
	assert.Equal(t, " '$(Platform)' == 'x86' ", FormatCondition("", "x86"))
	assert.Equal(t, "", FormatCondition("", ""))
}

func TestClassify(t *testing.T) {
	configurations := []string{"Debug", "Release"}
	platforms := []string{"AnyCPU", "x86"}

	tests := []struct {
		name      string
		condition string
		want      Scope
		ok        bool
	}{
		{"pair", " '$(Configuration)|$(Platform)' == 'Debug|x86' ", Scope{"Debug", "x86"}, true},
		{"configuration", " '$(Configuration)' == 'Release' ", Scope{Configuration: "Release"}, true},
		{"platform", " '$(Platform)' == 'AnyCPU' ", Scope{Platform: "AnyCPU"}, true},
		{"always true is base", "true", Scope{}, true},
		{"never true", "'$(Configuration)' == 'Nightly'", Scope{}, false},
		{"two configurations", "'$(Configuration)' != ''", Scope{}, true},
		{"diagonal", "('$(Configuration)' == 'Debug' and '$(Platform)' == 'AnyCPU') or ('$(Configuration)' == 'Release' and '$(Platform)' == 'x86')", Scope{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := CompileCondition(tt.condition)
			require.NoError(t, err)
			got, ok := Classify(c, configurations, platforms)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestClassify_SinglePlatform(t *testing.T) {
	// With one platform a configuration condition selects the configuration
	// scope, not the pair.
	c, err := CompileCondition(" '$(Configuration)' == 'Debug' ")
	require.NoError(t, err)
	got, ok := Classify(c, []string{"Debug", "Release"}, []string{"AnyCPU"})
	require.True(t, ok)
	assert.Equal(t, Scope{Configuration: "Debug"}, got)

	c, err = CompileCondition(" '$(Configuration)|$(Platform)' == 'Debug|AnyCPU' ")
	require.NoError(t, err)
	got, ok = Classify(c, []string{"Debug", "Release"}, []string{"AnyCPU"})
	require.True(t, ok)
	assert.Equal(t, Scope{Configuration: "Debug"}, got)
}

func TestScope_Location(t *testing.T) {
	assert.Equal(t, properties.Base, Scope{}.Location())
	assert.Equal(t, properties.ConfigurationSpecific, Scope{Configuration: "Debug"}.Location())
	assert.Equal(t, properties.PlatformSpecific, Scope{Platform: "x86"}.Location())
	assert.Equal(t, properties.ConfigurationAndPlatformSpecific, Scope{"Debug", "x86"}.Location())
}

func TestCandidates(t *testing.T) {
	c1, err := CompileCondition(" '$(Configuration)|$(Platform)' == 'debug|x86' ")
	require.NoError(t, err)
	c2, err := CompileCondition(" '$(Configuration)' == 'Checked' ")
	require.NoError(t, err)

	got := candidates([]string{"Debug", "Release"}, []*Condition{c1, c2})
	assert.Equal(t, []string{"Debug", "Release", "x86", "Checked"}, got)
}
