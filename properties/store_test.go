package properties

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEvaluated_Precedence(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *Store)
		want  string
	}{
		{
			name: "base only",
			setup: func(s *Store) {
				s.Set("", "", "P", "base", Base, false)
			},
			want: "base",
		},
		{
			name: "platform beats base",
			setup: func(s *Store) {
				s.Set("", "", "P", "base", Base, false)
				s.Set("", "x86", "P", "platform", PlatformSpecific, false)
			},
			want: "platform",
		},
		{
			name: "configuration beats platform",
			setup: func(s *Store) {
				s.Set("", "", "P", "base", Base, false)
				s.Set("", "x86", "P", "platform", PlatformSpecific, false)
				s.Set("Debug", "", "P", "config", ConfigurationSpecific, false)
			},
			want: "config",
		},
		{
			name: "configuration and platform beats everything",
			setup: func(s *Store) {
				s.Set("Debug", "x86", "P", "both", ConfigurationAndPlatformSpecific, false)
				s.Set("", "", "P", "base", Base, false)
				s.Set("", "x86", "P", "platform", PlatformSpecific, false)
				s.Set("Debug", "", "P", "config", ConfigurationSpecific, false)
			},
			want: "both",
		},
		{
			name: "other configuration is ignored",
			setup: func(s *Store) {
				s.Set("", "", "P", "base", Base, false)
				s.Set("Release", "", "P", "release", ConfigurationSpecific, false)
				s.Set("Release", "x86", "P", "release-x86", ConfigurationAndPlatformSpecific, false)
			},
			want: "base",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			tt.setup(s)

			got, ok := s.GetEvaluated("P", "Debug", "x86")
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetEvaluated_Missing(t *testing.T) {
	s := NewStore()
	s.Set("Release", "", "P", "v", ConfigurationSpecific, false)

	_, ok := s.GetEvaluated("P", "Debug", "AnyCPU")
	assert.False(t, ok)
	assert.False(t, s.Contains("P", "Debug", "AnyCPU"))
	assert.True(t, s.Contains("P", "Release", "AnyCPU"))
}

func TestGetEvaluated_CaseSensitiveKeys(t *testing.T) {
	s := NewStore()
	s.Set("", "", "OutputPath", "a", Base, false)

	_, ok := s.GetEvaluated("outputpath", "", "")
	assert.False(t, ok)
}

func TestSet_DefaultDoesNotClobber(t *testing.T) {
	s := NewStore()
	assert.True(t, s.Set("Debug", "", "OutputPath", `custom\`, ConfigurationSpecific, false))
	assert.False(t, s.Set("Debug", "", "OutputPath", `bin\Debug\`, ConfigurationSpecific, true))

	v, _ := s.GetEvaluated("OutputPath", "Debug", "")
	assert.Equal(t, `custom\`, v)

	// A default at a different scope is still written.
	assert.True(t, s.Set("", "", "OutputPath", `bin\`, Base, true))
}

func TestSet_UnchangedValueReportsNoChange(t *testing.T) {
	s := NewStore()
	assert.True(t, s.Set("", "", "A", "1", Base, false))
	assert.False(t, s.Set("", "", "A", "1", Base, false))
	assert.True(t, s.Set("", "", "A", "2", Base, false))
}

func TestSet_LocationNormalizesKey(t *testing.T) {
	s := NewStore()

	s.Set("Debug", "x86", "A", "base", Base, false)
	e, ok := s.Get("", "", "A")
	require.True(t, ok)
	assert.Equal(t, Base, e.Location)

	s.Set("Debug", "x86", "B", "config", ConfigurationSpecific, false)
	e, ok = s.Get("Debug", "", "B")
	require.True(t, ok)
	assert.Equal(t, ConfigurationSpecific, e.Location)

	s.Set("Debug", "x86", "C", "platform", PlatformSpecific, false)
	e, ok = s.Get("", "x86", "C")
	require.True(t, ok)
	assert.Equal(t, PlatformSpecific, e.Location)

	// A configuration-specific write without a configuration degrades to base.
	s.Set("", "", "D", "v", ConfigurationSpecific, false)
	e, ok = s.Get("", "", "D")
	require.True(t, ok)
	assert.Equal(t, Base, e.Location)
}

func TestLookup_ReportsWinningLocation(t *testing.T) {
	s := NewStore()
	s.Set("", "", "A", "base", Base, false)
	s.Set("Debug", "", "A", "debug", ConfigurationSpecific, false)

	e, ok := s.Lookup("A", "Debug", "AnyCPU")
	require.True(t, ok)
	assert.Equal(t, ConfigurationSpecific, e.Location)
	assert.Equal(t, "Debug", e.Configuration)

	e, ok = s.Lookup("A", "Release", "AnyCPU")
	require.True(t, ok)
	assert.Equal(t, Base, e.Location)
}

func TestRemove(t *testing.T) {
	s := NewStore()
	s.Set("", "", "A", "base", Base, false)
	s.Set("Debug", "", "A", "debug", ConfigurationSpecific, false)

	assert.True(t, s.Remove("Debug", "", "A"))
	assert.False(t, s.Remove("Debug", "", "A"))

	v, ok := s.GetEvaluated("A", "Debug", "")
	require.True(t, ok)
	assert.Equal(t, "base", v)

	assert.Equal(t, 1, s.RemoveAll("A"))
	assert.False(t, s.Contains("A", "Debug", ""))
}

func TestRenameConfiguration_RekeysEntries(t *testing.T) {
	s := NewStore()
	s.Set("Debug", "", "OutputPath", `bin\Debug\`, ConfigurationSpecific, false)
	s.Set("Debug", "x86", "PlatformTarget", "x86", ConfigurationAndPlatformSpecific, false)
	s.Set("Release", "", "OutputPath", `bin\Release\`, ConfigurationSpecific, false)

	assert.Equal(t, 2, s.RenameConfiguration("Debug", "Checked"))

	_, ok := s.Get("Debug", "", "OutputPath")
	assert.False(t, ok, "old key must not be left behind")

	v, ok := s.GetEvaluated("OutputPath", "Checked", "x86")
	require.True(t, ok)
	assert.Equal(t, `bin\Debug\`, v)

	v, ok = s.GetEvaluated("PlatformTarget", "Checked", "x86")
	require.True(t, ok)
	assert.Equal(t, "x86", v)

	assert.Equal(t, []string{"Checked", "Release"}, s.Configurations())
	assert.Equal(t, 3, s.Len())
}

func TestRenamePlatform_RekeysEntries(t *testing.T) {
	s := NewStore()
	s.Set("", "x86", "A", "1", PlatformSpecific, false)
	s.Set("Debug", "x86", "B", "2", ConfigurationAndPlatformSpecific, false)

	assert.Equal(t, 2, s.RenamePlatform("x86", "Win32"))
	assert.Equal(t, []string{"Win32"}, s.Platforms())

	e, ok := s.Get("Debug", "Win32", "B")
	require.True(t, ok)
	assert.Equal(t, ConfigurationAndPlatformSpecific, e.Location)
}

func TestRemoveConfiguration(t *testing.T) {
	s := NewStore()
	s.Set("", "", "A", "base", Base, false)
	s.Set("Debug", "", "A", "debug", ConfigurationSpecific, false)
	s.Set("Debug", "x86", "A", "debug-x86", ConfigurationAndPlatformSpecific, false)

	assert.Equal(t, 2, s.RemoveConfiguration("Debug"))
	assert.Equal(t, 0, s.RemoveConfiguration(""))
	assert.Equal(t, 1, s.Len())
}

func TestEntries_InsertionOrder(t *testing.T) {
	s := NewStore()
	names := []string{"C", "A", "B"}
	for _, n := range names {
		s.Set("", "", n, "v", Base, false)
	}
	// Overwriting keeps the original position.
	s.Set("", "", "C", "w", Base, false)

	entries := s.Entries()
	require.Len(t, entries, 3)
	for i, n := range names {
		assert.Equal(t, n, entries[i].Name)
	}
	assert.Equal(t, "w", entries[0].Value)
}

func TestStore_ConcurrentReaders(t *testing.T) {
	s := NewStore()
	s.Set("", "", "A", "v", Base, false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Set(fmt.Sprintf("C%d", i), "", "A", "x", ConfigurationSpecific, false)
				_, _ = s.GetEvaluated("A", "C0", "")
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 9, s.Len())
}

func TestParseStorageLocation(t *testing.T) {
	tests := []struct {
		in   string
		want StorageLocation
		ok   bool
	}{
		{"Base", Base, true},
		{"configurationspecific", ConfigurationSpecific, true},
		{"platform", PlatformSpecific, true},
		{"both", ConfigurationAndPlatformSpecific, true},
		{"somewhere", Base, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseStorageLocation(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "ConfigurationAndPlatformSpecific", ConfigurationAndPlatformSpecific.String())
}
