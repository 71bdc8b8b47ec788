package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/resource"
)

// ReadOnly wraps a Client so that reads reach the catalog and writes are
// only logged. Writes report success and echo their input, so a dry run
// walks the same reconciliation path a real run would.
type ReadOnly struct {
	Client

	mu        sync.Mutex
	created   map[string]bool // entries a write would have created
	remaining map[string]bool // entries left in place once the planned writes apply
}

// NewReadOnly returns a read-only view of client.
func NewReadOnly(client Client) *ReadOnly {
	return &ReadOnly{
		Client:    client,
		created:   make(map[string]bool),
		remaining: make(map[string]bool),
	}
}

func (r *ReadOnly) plan(ctx context.Context, op, name string) {
	logging.FromContext(ctx).Info().Str("operation", op).Str("name", name).Msg("Dry run: skipping write")
}

func (r *ReadOnly) isCreated(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created[name]
}

// CreateEntryGroup implements Client without writing.
func (r *ReadOnly) CreateEntryGroup(ctx context.Context, parent resource.Location, id string, group *EntryGroup) (*EntryGroup, error) {
	g := *group
	g.Name = parent.EntryGroup(id)
	r.plan(ctx, "create_entry_group", g.Name.String())
	return &g, nil
}

// DeleteEntryGroup implements Client without writing. Like the catalog, it
// refuses a group that still holds an entry the run read or created and did
// not plan to delete.
func (r *ReadOnly) DeleteEntryGroup(ctx context.Context, name resource.EntryGroupName) error {
	prefix := name.String() + "/entries/"
	r.mu.Lock()
	for entry := range r.remaining {
		if strings.HasPrefix(entry, prefix) {
			r.mu.Unlock()
			return &errors.APIError{
				Operation: "delete",
				Resource:  "entry group",
				ID:        name.String(),
				Code:      "FailedPrecondition",
				Message:   "entry group is not empty",
			}
		}
	}
	r.mu.Unlock()

	r.plan(ctx, "delete_entry_group", name.String())
	return nil
}

// GetEntry implements Client. Entries that exist are remembered as left in
// place until a delete is planned for them.
func (r *ReadOnly) GetEntry(ctx context.Context, name resource.EntryName) (*Entry, error) {
	entry, err := r.Client.GetEntry(ctx, name)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.remaining[name.String()] = true
	r.mu.Unlock()
	return entry, nil
}

// CreateTagTemplate implements Client without writing.
func (r *ReadOnly) CreateTagTemplate(ctx context.Context, parent resource.Location, id string, template *TagTemplate) (*TagTemplate, error) {
	t := *template
	t.Name = parent.TagTemplate(id)
	r.plan(ctx, "create_tag_template", t.Name.String())
	return &t, nil
}

// CreateEntry implements Client without writing.
func (r *ReadOnly) CreateEntry(ctx context.Context, parent resource.EntryGroupName, id string, entry *Entry) (*Entry, error) {
	e := *entry
	e.Name = parent.Entry(id)
	r.plan(ctx, "create_entry", e.Name.String())
	r.mu.Lock()
	r.created[e.Name.String()] = true
	r.remaining[e.Name.String()] = true
	r.mu.Unlock()
	return &e, nil
}

// UpdateEntry implements Client without writing.
func (r *ReadOnly) UpdateEntry(ctx context.Context, entry *Entry) (*Entry, error) {
	e := *entry
	r.plan(ctx, "update_entry", e.Name.String())
	return &e, nil
}

// DeleteEntry implements Client without writing.
func (r *ReadOnly) DeleteEntry(ctx context.Context, name resource.EntryName) error {
	r.plan(ctx, "delete_entry", name.String())
	r.mu.Lock()
	delete(r.remaining, name.String())
	r.mu.Unlock()
	return nil
}

// ListTags implements Client. Entries created during the dry run have no
// tags.
func (r *ReadOnly) ListTags(ctx context.Context, parent resource.EntryName) ([]*Tag, error) {
	if r.isCreated(parent.String()) {
		return []*Tag{}, nil
	}
	return r.Client.ListTags(ctx, parent)
}

// CreateTag implements Client without writing.
func (r *ReadOnly) CreateTag(ctx context.Context, parent resource.EntryName, tag *Tag) (*Tag, error) {
	t := *tag
	r.plan(ctx, "create_tag", parent.String())
	return &t, nil
}

// UpdateTag implements Client without writing.
func (r *ReadOnly) UpdateTag(ctx context.Context, tag *Tag) (*Tag, error) {
	t := *tag
	r.plan(ctx, "update_tag", t.Name)
	return &t, nil
}
