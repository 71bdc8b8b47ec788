// Package datacatalog implements catalog.Client over the Google Cloud Data
// Catalog API.
//
// Every error is classified with errors.FromStatus so callers branch on
// not-found, permission-denied and already-exists without looking at gRPC
// codes.
package datacatalog

import (
	"context"
	"errors"

	dc "cloud.google.com/go/datacatalog/apiv1"
	"cloud.google.com/go/datacatalog/apiv1/datacatalogpb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/agentstation/catalogsync/pkg/catalog"
	pkgerrors "github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/resource"
)

// Client is a catalog.Client backed by the Data Catalog gRPC client.
type Client struct {
	api *dc.Client
}

var _ catalog.Client = (*Client)(nil)

// New dials Data Catalog with the given client options.
func New(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	api, err := dc.NewClient(ctx, opts...)
	if err != nil {
		return nil, pkgerrors.WrapResource("create", "data catalog client", "", err)
	}
	return &Client{api: api}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.api.Close()
}

// GetEntryGroup implements catalog.Client.
func (c *Client) GetEntryGroup(ctx context.Context, name resource.EntryGroupName) (*catalog.EntryGroup, error) {
	pb, err := c.api.GetEntryGroup(ctx, &datacatalogpb.GetEntryGroupRequest{Name: name.String()})
	if err != nil {
		return nil, pkgerrors.FromStatus("get", "entry group", name.String(), err)
	}
	return entryGroupFromPB(pb)
}

// CreateEntryGroup implements catalog.Client.
func (c *Client) CreateEntryGroup(ctx context.Context, parent resource.Location, id string, group *catalog.EntryGroup) (*catalog.EntryGroup, error) {
	pb, err := c.api.CreateEntryGroup(ctx, &datacatalogpb.CreateEntryGroupRequest{
		Parent:       parent.String(),
		EntryGroupId: id,
		EntryGroup:   entryGroupToPB(group),
	})
	if err != nil {
		return nil, pkgerrors.FromStatus("create", "entry group", parent.EntryGroup(id).String(), err)
	}
	return entryGroupFromPB(pb)
}

// DeleteEntryGroup implements catalog.Client. Non-empty groups are refused
// by the service.
func (c *Client) DeleteEntryGroup(ctx context.Context, name resource.EntryGroupName) error {
	err := c.api.DeleteEntryGroup(ctx, &datacatalogpb.DeleteEntryGroupRequest{Name: name.String()})
	return pkgerrors.FromStatus("delete", "entry group", name.String(), err)
}

// GetTagTemplate implements catalog.Client.
func (c *Client) GetTagTemplate(ctx context.Context, name resource.TagTemplateName) (*catalog.TagTemplate, error) {
	pb, err := c.api.GetTagTemplate(ctx, &datacatalogpb.GetTagTemplateRequest{Name: name.String()})
	if err != nil {
		return nil, pkgerrors.FromStatus("get", "tag template", name.String(), err)
	}
	return tagTemplateFromPB(pb)
}

// CreateTagTemplate implements catalog.Client.
func (c *Client) CreateTagTemplate(ctx context.Context, parent resource.Location, id string, template *catalog.TagTemplate) (*catalog.TagTemplate, error) {
	pb, err := c.api.CreateTagTemplate(ctx, &datacatalogpb.CreateTagTemplateRequest{
		Parent:        parent.String(),
		TagTemplateId: id,
		TagTemplate:   tagTemplateToPB(template),
	})
	if err != nil {
		return nil, pkgerrors.FromStatus("create", "tag template", parent.TagTemplate(id).String(), err)
	}
	return tagTemplateFromPB(pb)
}

// GetEntry implements catalog.Client.
func (c *Client) GetEntry(ctx context.Context, name resource.EntryName) (*catalog.Entry, error) {
	pb, err := c.api.GetEntry(ctx, &datacatalogpb.GetEntryRequest{Name: name.String()})
	if err != nil {
		return nil, pkgerrors.FromStatus("get", "entry", name.String(), err)
	}
	return entryFromPB(pb)
}

// CreateEntry implements catalog.Client.
func (c *Client) CreateEntry(ctx context.Context, parent resource.EntryGroupName, id string, entry *catalog.Entry) (*catalog.Entry, error) {
	pb, err := c.api.CreateEntry(ctx, &datacatalogpb.CreateEntryRequest{
		Parent:  parent.String(),
		EntryId: id,
		Entry:   entryToPB(entry, false),
	})
	if err != nil {
		return nil, pkgerrors.FromStatus("create", "entry", parent.Entry(id).String(), err)
	}
	return entryFromPB(pb)
}

// UpdateEntry implements catalog.Client. No update mask is sent, so the
// service overwrites every modifiable field.
func (c *Client) UpdateEntry(ctx context.Context, entry *catalog.Entry) (*catalog.Entry, error) {
	pb, err := c.api.UpdateEntry(ctx, &datacatalogpb.UpdateEntryRequest{Entry: entryToPB(entry, true)})
	if err != nil {
		return nil, pkgerrors.FromStatus("update", "entry", entry.Name.String(), err)
	}
	return entryFromPB(pb)
}

// DeleteEntry implements catalog.Client.
func (c *Client) DeleteEntry(ctx context.Context, name resource.EntryName) error {
	err := c.api.DeleteEntry(ctx, &datacatalogpb.DeleteEntryRequest{Name: name.String()})
	return pkgerrors.FromStatus("delete", "entry", name.String(), err)
}

// ListTags implements catalog.Client and drains every page.
func (c *Client) ListTags(ctx context.Context, parent resource.EntryName) ([]*catalog.Tag, error) {
	it := c.api.ListTags(ctx, &datacatalogpb.ListTagsRequest{Parent: parent.String()})
	var tags []*catalog.Tag
	for {
		pb, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return tags, nil
		}
		if err != nil {
			return nil, pkgerrors.FromStatus("list", "tags", parent.String(), err)
		}
		tags = append(tags, tagFromPB(pb))
	}
}

// CreateTag implements catalog.Client.
func (c *Client) CreateTag(ctx context.Context, parent resource.EntryName, tag *catalog.Tag) (*catalog.Tag, error) {
	pb, err := c.api.CreateTag(ctx, &datacatalogpb.CreateTagRequest{Parent: parent.String(), Tag: tagToPB(tag)})
	if err != nil {
		return nil, pkgerrors.FromStatus("create", "tag", parent.String(), err)
	}
	return tagFromPB(pb), nil
}

// UpdateTag implements catalog.Client.
func (c *Client) UpdateTag(ctx context.Context, tag *catalog.Tag) (*catalog.Tag, error) {
	pb, err := c.api.UpdateTag(ctx, &datacatalogpb.UpdateTagRequest{Tag: tagToPB(tag)})
	if err != nil {
		return nil, pkgerrors.FromStatus("update", "tag", tag.Name, err)
	}
	return tagFromPB(pb), nil
}

// SearchCatalog implements catalog.Client, returning exactly one page.
func (c *Client) SearchCatalog(ctx context.Context, req catalog.SearchRequest) (*catalog.SearchPage, error) {
	it := c.api.SearchCatalog(ctx, &datacatalogpb.SearchCatalogRequest{
		Scope:     &datacatalogpb.SearchCatalogRequest_Scope{IncludeProjectIds: req.ProjectIDs},
		Query:     req.Query,
		OrderBy:   req.OrderBy,
		PageSize:  int32(req.PageSize),
		PageToken: req.PageToken,
	})

	var results []*datacatalogpb.SearchCatalogResult
	next, err := iterator.NewPager(it, req.PageSize, req.PageToken).NextPage(&results)
	if err != nil {
		return nil, pkgerrors.FromStatus("search", "entries", req.Query, err)
	}

	page := &catalog.SearchPage{
		Results:       make([]catalog.SearchResult, 0, len(results)),
		NextPageToken: next,
	}
	for _, r := range results {
		page.Results = append(page.Results, catalog.SearchResult{
			RelativeResourceName: r.GetRelativeResourceName(),
			LinkedResource:       r.GetLinkedResource(),
		})
	}
	return page, nil
}
