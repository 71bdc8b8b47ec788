package resource_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/resource"
)

func TestParseEntryGroupName(t *testing.T) {
	name, err := resource.ParseEntryGroupName("projects/my-project/locations/us-central1/entryGroups/my_group")
	require.NoError(t, err)

	assert.Equal(t, "my-project", name.Project)
	assert.Equal(t, "us-central1", name.Location.Location)
	assert.Equal(t, "my_group", name.ID)
	assert.Equal(t, "projects/my-project/locations/us-central1/entryGroups/my_group", name.String())
	assert.Equal(t, "projects/my-project/locations/us-central1", name.Location.String())
}

func TestParseEntryGroupNameRejects(t *testing.T) {
	tests := []string{
		"",
		"projects/p/locations/l",
		"projects/p/locations/l/tagTemplates/t",
		"project/p/locations/l/entryGroups/g",
		"projects/p/locations/us_central1/entryGroups/g",
		"projects/p/locations/l/entryGroups/",
		"projects/p/locations/l/entryGroups/g/extra",
		"projects/p!/locations/l/entryGroups/g",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := resource.ParseEntryGroupName(input)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestParseTagTemplateName(t *testing.T) {
	name, err := resource.ParseTagTemplateName("projects/p/locations/us-central1/tagTemplates/object_storage_entries_sync_details")
	require.NoError(t, err)
	assert.Equal(t, "object_storage_entries_sync_details", name.ID)

	_, err = resource.ParseTagTemplateName("projects/p/locations/us-central1/entryGroups/g")
	assert.Error(t, err)
}

func TestParseEntryName(t *testing.T) {
	s := "projects/p/locations/us-central1/entryGroups/g/entries/report_1"
	name, err := resource.ParseEntryName(s)
	require.NoError(t, err)

	assert.Equal(t, "report_1", name.ID)
	assert.Equal(t, s, name.String())
	assert.Equal(t, "projects/p/locations/us-central1/entryGroups/g", name.Parent().String())

	_, err = resource.ParseEntryName("projects/p/locations/us-central1/entryGroups/g")
	assert.Error(t, err)
}

func TestNameRoundTrip(t *testing.T) {
	loc := resource.Location{Project: "p", Location: "europe-west1"}
	entry := loc.EntryGroup("g").Entry("e")

	parsed, err := resource.ParseEntryName(entry.String())
	require.NoError(t, err)
	assert.Equal(t, entry, parsed)

	tpl := loc.TagTemplate("t")
	parsedTpl, err := resource.ParseTagTemplateName(tpl.String())
	require.NoError(t, err)
	assert.Equal(t, tpl, parsedTpl)
}
