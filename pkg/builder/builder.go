// Package builder turns storage observations into catalog value objects.
//
// Every function here is pure: the same object, entry group and execution
// time always produce the same entry and tag.
package builder

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/resource"
	"github.com/agentstation/catalogsync/pkg/storage"
)

// Tag template field ids.
const (
	FieldExecutionTime = "execution_time"
	FieldBucketName    = "bucket_name"
	FieldFileURL       = "file_url"
	FieldFileName      = "file_name"
	FieldFileSize      = "file_size"
)

const (
	entryGroupDisplayName = "Container for object storage entries"
	entryGroupDescription = "This Entry Group is used as a container for object storage entries"
)

const tagTemplateDisplayName = "Tag Template with details of ingested object storage entries" +
	" - all entries are a snapshot of the execution time"

// NormalizeID derives the entry id from a file name: the text before the
// first '.', with '-' replaced by '_'. Collisions are not detected.
func NormalizeID(fileName string) string {
	id, _, _ := strings.Cut(fileName, ".")
	return strings.ReplaceAll(id, "-", "_")
}

// EntryName returns the deterministic entry name of obj inside group.
func EntryName(group resource.EntryGroupName, obj storage.Object) resource.EntryName {
	return group.Entry(NormalizeID(obj.FileName))
}

// BuildEntry returns the catalog entry describing obj.
func BuildEntry(group resource.EntryGroupName, obj storage.Object) *catalog.Entry {
	id := NormalizeID(obj.FileName)
	return &catalog.Entry{
		Name:           group.Entry(id),
		System:         obj.System,
		Type:           obj.FileType,
		DisplayName:    id,
		Description:    fmt.Sprintf("This Entry represents the file %s on system %s", obj.FileName, obj.System),
		LinkedResource: obj.LinkedResource,
		CreateTime:     seconds(obj.TimeCreated),
		UpdateTime:     seconds(obj.TimeUpdated),
	}
}

// BuildTag returns the sync details tag for obj, stamped with the run's
// execution time.
func BuildTag(obj storage.Object, template resource.TagTemplateName, executionTime time.Time) *catalog.Tag {
	return &catalog.Tag{
		Template: template.String(),
		Fields: map[string]catalog.FieldValue{
			FieldBucketName:    catalog.StringValue(obj.BucketName),
			FieldFileURL:       catalog.StringValue(obj.PublicURL),
			FieldFileName:      catalog.StringValue(obj.FileName),
			FieldFileSize:      catalog.DoubleValue(float64(obj.Size)),
			FieldExecutionTime: catalog.TimestampValue(seconds(executionTime)),
		},
	}
}

// EntryGroupDefinition returns the entry group created when the target
// group is missing.
func EntryGroupDefinition(name resource.EntryGroupName) *catalog.EntryGroup {
	return &catalog.EntryGroup{
		Name:        name,
		DisplayName: entryGroupDisplayName,
		Description: entryGroupDescription,
	}
}

// TagTemplateDefinition returns the fixed template every synced tag is
// instantiated from.
func TagTemplateDefinition(name resource.TagTemplateName) *catalog.TagTemplate {
	return &catalog.TagTemplate{
		Name:        name,
		DisplayName: tagTemplateDisplayName,
		Fields: map[string]catalog.TemplateField{
			FieldExecutionTime: {DisplayName: "Sync Execution time", Type: catalog.FieldTypeTimestamp, Order: 5},
			FieldBucketName:    {DisplayName: "Bucket Name", Type: catalog.FieldTypeString, Order: 4},
			FieldFileURL:       {DisplayName: "File URL", Type: catalog.FieldTypeString, Order: 3},
			FieldFileName:      {DisplayName: "File Name", Type: catalog.FieldTypeString, Order: 2},
			FieldFileSize:      {DisplayName: "File Size", Type: catalog.FieldTypeDouble, Order: 1},
		},
	}
}

// seconds truncates t to whole seconds in UTC. The zero time stays zero.
func seconds(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.Truncate(time.Second).UTC()
}
