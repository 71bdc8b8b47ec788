// Package differ decides whether catalog entries and tags need to be written.
//
// Entries compare on their descriptive fields only; names and timestamps are
// identity and freshness data, not content. A non-zero source update time
// that moved is treated as a change on its own.
package differ

import (
	"sort"

	"github.com/agentstation/catalogsync/pkg/catalog"
)

// EntriesEqual reports whether two entries carry the same system, type,
// display name, description and linked resource.
func EntriesEqual(a, b *catalog.Entry) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.System == b.System &&
		a.Type == b.Type &&
		a.DisplayName == b.DisplayName &&
		a.Description == b.Description &&
		a.LinkedResource == b.LinkedResource
}

// EntryChanged reports whether incoming must overwrite current.
func EntryChanged(current, incoming *catalog.Entry) bool {
	if current == nil {
		return incoming != nil
	}
	if incoming == nil {
		return false
	}
	if !incoming.UpdateTime.IsZero() && !incoming.UpdateTime.Equal(current.UpdateTime) {
		return true
	}
	return !EntriesEqual(current, incoming)
}

// TagsEqual reports whether every field of a is present in b with an equal
// value of the same variant. A field missing from b makes the tags unequal.
// Fields present only in b are not considered.
func TagsEqual(a, b *catalog.Tag) bool {
	if a == nil || b == nil {
		return a == b
	}
	for id, av := range a.Fields {
		bv, ok := b.Fields[id]
		if !ok || !av.Equal(bv) {
			return false
		}
	}
	return true
}

// EntryChanges lists the field differences between current and incoming.
func EntryChanges(current, incoming *catalog.Entry) []FieldChange {
	if current == nil || incoming == nil {
		return nil
	}

	changes := []FieldChange{}
	compare := func(path, old, updated string) {
		if old != updated {
			changes = append(changes, FieldChange{
				Path:     path,
				OldValue: truncateString(old, 50),
				NewValue: truncateString(updated, 50),
				Type:     ChangeTypeUpdate,
			})
		}
	}

	compare("system", current.System, incoming.System)
	compare("type", current.Type, incoming.Type)
	compare("display_name", current.DisplayName, incoming.DisplayName)
	compare("description", current.Description, incoming.Description)
	compare("linked_resource", current.LinkedResource, incoming.LinkedResource)

	if !incoming.UpdateTime.IsZero() && !incoming.UpdateTime.Equal(current.UpdateTime) {
		changes = append(changes, FieldChange{
			Path:     "update_time",
			OldValue: formatTime(current.UpdateTime),
			NewValue: formatTime(incoming.UpdateTime),
			Type:     ChangeTypeUpdate,
		})
	}
	return changes
}

// TagChanges lists the fields of desired that are missing from or differ in
// current, sorted by field id.
func TagChanges(current, desired *catalog.Tag) []FieldChange {
	if desired == nil {
		return nil
	}

	ids := make([]string, 0, len(desired.Fields))
	for id := range desired.Fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	changes := []FieldChange{}
	for _, id := range ids {
		dv := desired.Fields[id]
		var cv catalog.FieldValue
		var ok bool
		if current != nil {
			cv, ok = current.Fields[id]
		}
		switch {
		case !ok:
			changes = append(changes, FieldChange{Path: id, NewValue: dv.Format(), Type: ChangeTypeAdd})
		case !dv.Equal(cv):
			changes = append(changes, FieldChange{
				Path:     id,
				OldValue: cv.Format(),
				NewValue: dv.Format(),
				Type:     ChangeTypeUpdate,
			})
		}
	}
	return changes
}
