// Package properties stores project build properties at four scopes and
// resolves them to a single evaluated value per query.
//
// Storage is flat: every entry is keyed by (configuration, platform, name).
// An empty configuration or platform denotes the project-wide scope for that
// dimension, so ("", "", name) is the base entry and ("Debug", "", name) is a
// configuration-specific entry.
//
// Example:
//
//	store := properties.NewStore()
//	store.Set("", "", "OutputPath", `bin\`, properties.Base, false)
//	store.Set("Debug", "", "OutputPath", `bin\Debug\`, properties.ConfigurationSpecific, false)
//	v, _ := store.GetEvaluated("OutputPath", "Debug", "AnyCPU") // bin\Debug\
package properties

import (
	"sort"
	"sync"
)

// Key identifies one property entry. Keys are case-sensitive.
type Key struct {
	Configuration string
	Platform      string
	Name          string
}

// Entry is a stored property value together with the scope it was written to.
type Entry struct {
	Key
	Value    string
	Location StorageLocation

	seq uint64
}

// Precedence lists the scopes consulted by GetEvaluated, most specific first.
// The first scope holding an entry wins.
var Precedence = []StorageLocation{
	ConfigurationAndPlatformSpecific,
	ConfigurationSpecific,
	PlatformSpecific,
	Base,
}

// Store is a multi-scope property store.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]*Entry
	nextSeq uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[Key]*Entry)}
}

// KeyFor builds the key an entry written at location is stored under.
// Scope components the location does not cover are cleared, and a location
// whose component is empty degrades to the next broader scope.
func KeyFor(configuration, platform, name string, location StorageLocation) (Key, StorageLocation) {
	switch location {
	case ConfigurationSpecific:
		platform = ""
	case PlatformSpecific:
		configuration = ""
	case ConfigurationAndPlatformSpecific:
	default:
		configuration, platform = "", ""
	}
	return Key{Configuration: configuration, Platform: platform, Name: name}, locationOf(configuration, platform)
}

func locationOf(configuration, platform string) StorageLocation {
	switch {
	case configuration != "" && platform != "":
		return ConfigurationAndPlatformSpecific
	case configuration != "":
		return ConfigurationSpecific
	case platform != "":
		return PlatformSpecific
	default:
		return Base
	}
}

// Set stores value at the scope selected by location.
// When isDefault is true and an entry already exists at that exact scope the
// write is skipped, so defaults never clobber user-set values.
// Set reports whether the store changed.
func (s *Store) Set(configuration, platform, name, value string, location StorageLocation, isDefault bool) bool {
	key, loc := KeyFor(configuration, platform, name, location)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok {
		if isDefault || (existing.Value == value && existing.Location == loc) {
			return false
		}
		existing.Value = value
		existing.Location = loc
		return true
	}

	s.nextSeq++
	s.entries[key] = &Entry{Key: key, Value: value, Location: loc, seq: s.nextSeq}
	return true
}

// Get returns the entry stored at the exact scope, without precedence.
func (s *Store) Get(configuration, platform, name string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[Key{Configuration: configuration, Platform: platform, Name: name}]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// GetEvaluated resolves name for the active configuration and platform using
// Precedence. It returns false when no scope holds the property.
func (s *Store) GetEvaluated(name, activeConfiguration, activePlatform string) (string, bool) {
	e, ok := s.Lookup(name, activeConfiguration, activePlatform)
	return e.Value, ok
}

// Lookup is GetEvaluated returning the winning entry, so callers can tell
// where the effective value comes from.
func (s *Store) Lookup(name, activeConfiguration, activePlatform string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, loc := range Precedence {
		key, _ := KeyFor(activeConfiguration, activePlatform, name, loc)
		if e, ok := s.entries[key]; ok {
			return *e, true
		}
	}
	return Entry{}, false
}

// Contains reports whether name resolves to any value for the given scope.
func (s *Store) Contains(name, activeConfiguration, activePlatform string) bool {
	_, ok := s.Lookup(name, activeConfiguration, activePlatform)
	return ok
}

// Remove deletes the entry at the exact scope. It reports whether an entry
// was removed.
func (s *Store) Remove(configuration, platform, name string) bool {
	key := Key{Configuration: configuration, Platform: platform, Name: name}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// RemoveAll deletes name from every scope and returns the number of entries removed.
func (s *Store) RemoveAll(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if key.Name == name {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// RenameConfiguration re-keys every entry stored under configuration from to
// configuration to. Entries keep their position in Entries order.
// An entry already present under the new key is replaced.
func (s *Store) RenameConfiguration(from, to string) int {
	return s.rekey(func(k Key) (Key, bool) {
		if from == "" || k.Configuration != from {
			return k, false
		}
		k.Configuration = to
		return k, true
	})
}

// RenamePlatform re-keys every entry stored under platform from to platform to.
func (s *Store) RenamePlatform(from, to string) int {
	return s.rekey(func(k Key) (Key, bool) {
		if from == "" || k.Platform != from {
			return k, false
		}
		k.Platform = to
		return k, true
	})
}

func (s *Store) rekey(rename func(Key) (Key, bool)) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var moved []*Entry
	for key, e := range s.entries {
		if newKey, ok := rename(key); ok {
			delete(s.entries, key)
			e.Key = newKey
			moved = append(moved, e)
		}
	}
	for _, e := range moved {
		e.Location = locationOf(e.Configuration, e.Platform)
		s.entries[e.Key] = e
	}
	return len(moved)
}

// RemoveConfiguration deletes every entry specific to configuration.
func (s *Store) RemoveConfiguration(configuration string) int {
	return s.removeWhere(func(k Key) bool { return configuration != "" && k.Configuration == configuration })
}

// RemovePlatform deletes every entry specific to platform.
func (s *Store) RemovePlatform(platform string) int {
	return s.removeWhere(func(k Key) bool { return platform != "" && k.Platform == platform })
}

func (s *Store) removeWhere(match func(Key) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if match(key) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Entries returns a snapshot of all entries in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Configurations returns the sorted configuration names occurring in keys.
func (s *Store) Configurations() []string {
	return s.names(func(k Key) string { return k.Configuration })
}

// Platforms returns the sorted platform names occurring in keys.
func (s *Store) Platforms() []string {
	return s.names(func(k Key) string { return k.Platform })
}

func (s *Store) names(pick func(Key) string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for key := range s.entries {
		if n := pick(key); n != "" {
			seen[n] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
