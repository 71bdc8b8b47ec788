// Package catalog defines the value types exchanged with the remote data
// catalog and the Client interface the reconciliation core depends on.
//
// Values in this package are transient copies of remote state. The remote
// catalog owns entries, tags, templates and groups; nothing here is persisted
// between runs.
package catalog

import (
	"context"
	"time"

	"github.com/agentstation/catalogsync/pkg/resource"
)

// EntryGroup is a container of entries.
type EntryGroup struct {
	Name        resource.EntryGroupName
	DisplayName string
	Description string
}

// Entry is the catalog record for one storage object.
type Entry struct {
	Name           resource.EntryName
	System         string
	Type           string
	DisplayName    string
	Description    string
	LinkedResource string
	CreateTime     time.Time // source system create time
	UpdateTime     time.Time // source system update time
}

// FieldType is the primitive type of a tag template field.
type FieldType int

// Primitive field types supported by tag templates.
const (
	FieldTypeUnspecified FieldType = iota
	FieldTypeDouble
	FieldTypeString
	FieldTypeBool
	FieldTypeTimestamp
	FieldTypeEnum
)

// String returns the field type name.
func (t FieldType) String() string {
	switch t {
	case FieldTypeDouble:
		return "DOUBLE"
	case FieldTypeString:
		return "STRING"
	case FieldTypeBool:
		return "BOOL"
	case FieldTypeTimestamp:
		return "TIMESTAMP"
	case FieldTypeEnum:
		return "ENUM"
	default:
		return "UNSPECIFIED"
	}
}

// TemplateField describes one field of a tag template.
type TemplateField struct {
	DisplayName string
	Type        FieldType
	Order       int32
}

// TagTemplate is the schema a tag is instantiated from.
type TagTemplate struct {
	Name        resource.TagTemplateName
	DisplayName string
	Fields      map[string]TemplateField
}

// Tag is structured metadata attached to an entry. Name is assigned by the
// catalog on creation and is empty for locally built tags.
type Tag struct {
	Name     string
	Template string
	Fields   map[string]FieldValue
}

// Client is the remote catalog surface consumed by the reconciliation core.
// Implementations classify failures with the pkg/errors taxonomy so callers
// can use errors.IsNotFound, errors.IsPermissionDenied and
// errors.IsAlreadyExists.
type Client interface {
	GetEntryGroup(ctx context.Context, name resource.EntryGroupName) (*EntryGroup, error)
	CreateEntryGroup(ctx context.Context, parent resource.Location, id string, group *EntryGroup) (*EntryGroup, error)
	DeleteEntryGroup(ctx context.Context, name resource.EntryGroupName) error

	GetTagTemplate(ctx context.Context, name resource.TagTemplateName) (*TagTemplate, error)
	CreateTagTemplate(ctx context.Context, parent resource.Location, id string, template *TagTemplate) (*TagTemplate, error)

	GetEntry(ctx context.Context, name resource.EntryName) (*Entry, error)
	CreateEntry(ctx context.Context, parent resource.EntryGroupName, id string, entry *Entry) (*Entry, error)
	// UpdateEntry overwrites every mutable field of the entry.
	UpdateEntry(ctx context.Context, entry *Entry) (*Entry, error)
	DeleteEntry(ctx context.Context, name resource.EntryName) error

	ListTags(ctx context.Context, parent resource.EntryName) ([]*Tag, error)
	CreateTag(ctx context.Context, parent resource.EntryName, tag *Tag) (*Tag, error)
	// UpdateTag overwrites the tag identified by tag.Name.
	UpdateTag(ctx context.Context, tag *Tag) (*Tag, error)

	// SearchCatalog returns one page of search results.
	SearchCatalog(ctx context.Context, req SearchRequest) (*SearchPage, error)
}

// SearchRequest is a single page request against the catalog search index.
type SearchRequest struct {
	ProjectIDs []string
	Query      string
	OrderBy    string
	PageSize   int
	PageToken  string
}

// SearchPage is one page of search results. An empty NextPageToken marks
// the last page. Result order carries no meaning.
type SearchPage struct {
	Results       []SearchResult
	NextPageToken string
}

// SearchResult is one hit from the catalog search index.
type SearchResult struct {
	RelativeResourceName string
	LinkedResource       string
}
