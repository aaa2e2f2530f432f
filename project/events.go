package project

import (
	"sort"

	"github.com/maxwhale/SharpDevelop/properties"
)

// PropertyChangedEvent describes one state-changing property write.
type PropertyChangedEvent struct {
	Project       *Project
	Name          string
	Configuration string
	Platform      string
	Location      properties.StorageLocation
	OldValue      string
	NewValue      string
	// Removed is set when the entry was deleted rather than written.
	Removed bool
}

// Subscribe registers fn for property change events and returns a function
// that removes it. Handlers run synchronously in mutation order and must not
// start an upgrade on the same project.
func (p *Project) Subscribe(fn func(PropertyChangedEvent)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextListener
	p.nextListener++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Project) notify(ev PropertyChangedEvent) {
	ev.Project = p

	p.mu.RLock()
	ids := make([]int, 0, len(p.listeners))
	for id := range p.listeners {
		ids = append(ids, id)
	}
	p.mu.RUnlock()
	sort.Ints(ids)

	for _, id := range ids {
		p.mu.RLock()
		fn, ok := p.listeners[id]
		p.mu.RUnlock()
		if ok {
			fn(ev)
		}
	}
}
