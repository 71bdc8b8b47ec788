package catalogsync

import (
	"sync"

	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/differ"
)

// Hook function types for entry events
type (
	// EntryCreatedHook is called when an entry is created in the catalog
	EntryCreatedHook func(entry *catalog.Entry)

	// EntryUpdatedHook is called when an entry is overwritten in the catalog
	EntryUpdatedHook func(entry *catalog.Entry, changes []differ.FieldChange)

	// EntryDeletedHook is called when the sweep removes an entry
	EntryDeletedHook func(name string)

	// EntryFailedHook is called when an entry fails to reconcile
	EntryFailedHook func(name, stage string, err error)
)

// hooks manages event callbacks for entry changes
type hooks struct {
	mu             sync.RWMutex
	onEntryCreated []EntryCreatedHook
	onEntryUpdated []EntryUpdatedHook
	onEntryDeleted []EntryDeletedHook
	onEntryFailed  []EntryFailedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnEntryCreated registers a callback for when entries are created
func (h *hooks) OnEntryCreated(fn EntryCreatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEntryCreated = append(h.onEntryCreated, fn)
}

// OnEntryUpdated registers a callback for when entries are updated
func (h *hooks) OnEntryUpdated(fn EntryUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEntryUpdated = append(h.onEntryUpdated, fn)
}

// OnEntryDeleted registers a callback for when entries are deleted
func (h *hooks) OnEntryDeleted(fn EntryDeletedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEntryDeleted = append(h.onEntryDeleted, fn)
}

// OnEntryFailed registers a callback for when entries fail to sync
func (h *hooks) OnEntryFailed(fn EntryFailedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEntryFailed = append(h.onEntryFailed, fn)
}

func (h *hooks) triggerCreated(entry *catalog.Entry) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onEntryCreated {
		hook(entry)
	}
}

func (h *hooks) triggerUpdated(entry *catalog.Entry, changes []differ.FieldChange) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onEntryUpdated {
		hook(entry, changes)
	}
}

func (h *hooks) triggerDeleted(names []string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, name := range names {
		for _, hook := range h.onEntryDeleted {
			hook(name)
		}
	}
}

func (h *hooks) triggerFailed(name, stage string, err error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onEntryFailed {
		hook(name, stage, err)
	}
}
