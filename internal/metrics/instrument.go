package metrics

import (
	"context"
	"time"

	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/resource"
)

// instrumented times every call of the wrapped client.
type instrumented struct {
	next      catalog.Client
	collector *Collector
}

// Instrument wraps client so that every call is recorded by c. A nil
// collector returns client unchanged.
func Instrument(client catalog.Client, c *Collector) catalog.Client {
	if c == nil {
		return client
	}
	return &instrumented{next: client, collector: c}
}

func (i *instrumented) track(op string) func(error) {
	start := time.Now()
	return func(err error) {
		i.collector.RecordCall(op, time.Since(start), err)
	}
}

func (i *instrumented) GetEntryGroup(ctx context.Context, name resource.EntryGroupName) (*catalog.EntryGroup, error) {
	done := i.track("get_entry_group")
	g, err := i.next.GetEntryGroup(ctx, name)
	done(err)
	return g, err
}

func (i *instrumented) CreateEntryGroup(ctx context.Context, parent resource.Location, id string, group *catalog.EntryGroup) (*catalog.EntryGroup, error) {
	done := i.track("create_entry_group")
	g, err := i.next.CreateEntryGroup(ctx, parent, id, group)
	done(err)
	return g, err
}

func (i *instrumented) DeleteEntryGroup(ctx context.Context, name resource.EntryGroupName) error {
	done := i.track("delete_entry_group")
	err := i.next.DeleteEntryGroup(ctx, name)
	done(err)
	return err
}

func (i *instrumented) GetTagTemplate(ctx context.Context, name resource.TagTemplateName) (*catalog.TagTemplate, error) {
	done := i.track("get_tag_template")
	t, err := i.next.GetTagTemplate(ctx, name)
	done(err)
	return t, err
}

func (i *instrumented) CreateTagTemplate(ctx context.Context, parent resource.Location, id string, template *catalog.TagTemplate) (*catalog.TagTemplate, error) {
	done := i.track("create_tag_template")
	t, err := i.next.CreateTagTemplate(ctx, parent, id, template)
	done(err)
	return t, err
}

func (i *instrumented) GetEntry(ctx context.Context, name resource.EntryName) (*catalog.Entry, error) {
	done := i.track("get_entry")
	e, err := i.next.GetEntry(ctx, name)
	done(err)
	return e, err
}

func (i *instrumented) CreateEntry(ctx context.Context, parent resource.EntryGroupName, id string, entry *catalog.Entry) (*catalog.Entry, error) {
	done := i.track("create_entry")
	e, err := i.next.CreateEntry(ctx, parent, id, entry)
	done(err)
	return e, err
}

func (i *instrumented) UpdateEntry(ctx context.Context, entry *catalog.Entry) (*catalog.Entry, error) {
	done := i.track("update_entry")
	e, err := i.next.UpdateEntry(ctx, entry)
	done(err)
	return e, err
}

func (i *instrumented) DeleteEntry(ctx context.Context, name resource.EntryName) error {
	done := i.track("delete_entry")
	err := i.next.DeleteEntry(ctx, name)
	done(err)
	return err
}

func (i *instrumented) ListTags(ctx context.Context, parent resource.EntryName) ([]*catalog.Tag, error) {
	done := i.track("list_tags")
	tags, err := i.next.ListTags(ctx, parent)
	done(err)
	return tags, err
}

func (i *instrumented) CreateTag(ctx context.Context, parent resource.EntryName, tag *catalog.Tag) (*catalog.Tag, error) {
	done := i.track("create_tag")
	t, err := i.next.CreateTag(ctx, parent, tag)
	done(err)
	return t, err
}

func (i *instrumented) UpdateTag(ctx context.Context, tag *catalog.Tag) (*catalog.Tag, error) {
	done := i.track("update_tag")
	t, err := i.next.UpdateTag(ctx, tag)
	done(err)
	return t, err
}

func (i *instrumented) SearchCatalog(ctx context.Context, req catalog.SearchRequest) (*catalog.SearchPage, error) {
	done := i.track("search_catalog")
	page, err := i.next.SearchCatalog(ctx, req)
	done(err)
	return page, err
}
