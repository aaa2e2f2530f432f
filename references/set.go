// Package references holds the assembly references attached to a project.
package references

import (
	"sort"
	"strings"
	"sync"
)

// MetadataRequiredTargetFramework is the metadata key recording the minimum
// framework version a reference needs (e.g. "3.5").
const MetadataRequiredTargetFramework = "RequiredTargetFramework"

// Reference is a named reference item with free-form metadata.
type Reference struct {
	Include  string
	Metadata map[string]string
}

// RequiredTargetFramework returns the RequiredTargetFramework metadata, if any.
func (r Reference) RequiredTargetFramework() string {
	return r.Metadata[MetadataRequiredTargetFramework]
}

// MetadataKeys returns the metadata names in sorted order.
func (r Reference) MetadataKeys() []string {
	keys := make([]string, 0, len(r.Metadata))
	for k := range r.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r Reference) clone() Reference {
	c := Reference{Include: r.Include}
	if len(r.Metadata) > 0 {
		c.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}

// Set is an ordered collection of references, unique by include name.
// Include names compare case-insensitively, like assembly names.
// It is safe for concurrent use.
type Set struct {
	mu    sync.RWMutex
	items []Reference
}

// NewSet creates an empty reference set.
func NewSet() *Set {
	return &Set{}
}

func (s *Set) indexOf(include string) int {
	for i := range s.items {
		if strings.EqualFold(s.items[i].Include, include) {
			return i
		}
	}
	return -1
}

// AddIfAbsent adds a reference named include. A non-empty requiredFramework
// is recorded as RequiredTargetFramework metadata. Adding a name that is
// already present is a no-op and keeps the existing metadata.
// It reports whether the reference was added.
func (s *Set) AddIfAbsent(include, requiredFramework string) bool {
	ref := Reference{Include: include}
	if requiredFramework != "" {
		ref.Metadata = map[string]string{MetadataRequiredTargetFramework: requiredFramework}
	}
	return s.Add(ref)
}

// Add adds ref unless a reference with the same include name exists.
func (s *Set) Add(ref Reference) bool {
	if ref.Include == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(ref.Include) >= 0 {
		return false
	}
	s.items = append(s.items, ref.clone())
	return true
}

// Remove deletes the reference named include. Removing a missing reference
// is a no-op. It reports whether a reference was removed.
func (s *Set) Remove(include string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(include)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// Contains reports whether a reference named include exists.
func (s *Set) Contains(include string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(include) >= 0
}

// Get returns a copy of the reference named include.
func (s *Set) Get(include string) (Reference, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(include)
	if i < 0 {
		return Reference{}, false
	}
	return s.items[i].clone(), true
}

// Items returns a copy of the references in insertion order.
func (s *Set) Items() []Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Reference, len(s.items))
	for i, r := range s.items {
		out[i] = r.clone()
	}
	return out
}

// Names returns the include names in insertion order.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.items))
	for i, r := range s.items {
		out[i] = r.Include
	}
	return out
}

// Len returns the number of references.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
