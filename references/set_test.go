package references

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddIfAbsent_Idempotent(t *testing.T) {
	s := NewSet()

	assert.True(t, s.AddIfAbsent("System.Core", "3.5"))
	assert.False(t, s.AddIfAbsent("System.Core", "4.0"))
	assert.Equal(t, 1, s.Len())

	ref, ok := s.Get("System.Core")
	require.True(t, ok)
	assert.Equal(t, "3.5", ref.RequiredTargetFramework(), "metadata from the first call is kept")
}

func TestAddIfAbsent_WithoutFramework(t *testing.T) {
	s := NewSet()
	s.AddIfAbsent("System", "")

	ref, ok := s.Get("System")
	require.True(t, ok)
	assert.Empty(t, ref.Metadata)
	assert.Empty(t, ref.RequiredTargetFramework())
}

func TestAdd_CaseInsensitiveNames(t *testing.T) {
	s := NewSet()
	s.AddIfAbsent("System.Xml", "")

	assert.False(t, s.AddIfAbsent("system.xml", ""))
	assert.True(t, s.Contains("SYSTEM.XML"))
	assert.Equal(t, []string{"System.Xml"}, s.Names())
}

func TestAdd_EmptyIncludeIgnored(t *testing.T) {
	s := NewSet()
	assert.False(t, s.Add(Reference{}))
	assert.Equal(t, 0, s.Len())
}

func TestRemove_MissingIsNoop(t *testing.T) {
	s := NewSet()
	s.AddIfAbsent("System", "")

	assert.False(t, s.Remove("System.Core"))
	assert.Equal(t, []string{"System"}, s.Names())

	assert.True(t, s.Remove("System"))
	assert.False(t, s.Remove("System"))
	assert.Equal(t, 0, s.Len())
}

func TestItems_InsertionOrderAndCopies(t *testing.T) {
	s := NewSet()
	s.Add(Reference{Include: "B", Metadata: map[string]string{"Private": "False"}})
	s.AddIfAbsent("A", "")
	s.AddIfAbsent("C", "")
	s.Remove("A")
	s.AddIfAbsent("A", "")

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "B", items[0].Include)
	assert.Equal(t, "C", items[1].Include)
	assert.Equal(t, "A", items[2].Include)

	items[0].Metadata["Private"] = "True"
	ref, _ := s.Get("B")
	assert.Equal(t, "False", ref.Metadata["Private"], "Items must return copies")
	assert.Equal(t, []string{"Private"}, ref.MetadataKeys())
}
