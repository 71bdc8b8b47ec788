package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/catalog/memory"
	pkgerrors "github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/resource"
)

var loc = resource.Location{Project: "p", Location: "us-central1"}

func seed(t *testing.T, c *memory.Catalog, group string, n int, system string) {
	t.Helper()
	ctx := context.Background()
	g := loc.EntryGroup(group)
	if !c.HasEntryGroup(g.String()) {
		_, err := c.CreateEntryGroup(ctx, loc, group, &catalog.EntryGroup{})
		require.NoError(t, err)
	}
	for i := range n {
		_, err := c.CreateEntry(ctx, g, fmt.Sprintf("e%d", i), &catalog.Entry{
			System:         system,
			LinkedResource: fmt.Sprintf("gs://b/%s/%d", group, i),
		})
		require.NoError(t, err)
	}
}

func TestEntryLifecycle(t *testing.T) {
	ctx := context.Background()
	c := memory.New()
	name := loc.EntryGroup("g").Entry("a")

	_, err := c.GetEntry(ctx, name)
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = c.CreateEntry(ctx, loc.EntryGroup("g"), "a", &catalog.Entry{})
	assert.True(t, pkgerrors.IsNotFound(err), "group must exist")

	seed(t, c, "g", 0, "cloud_storage")
	created, err := c.CreateEntry(ctx, loc.EntryGroup("g"), "a", &catalog.Entry{Type: "csv"})
	require.NoError(t, err)
	assert.Equal(t, name, created.Name)

	_, err = c.CreateEntry(ctx, loc.EntryGroup("g"), "a", &catalog.Entry{})
	assert.True(t, pkgerrors.IsAlreadyExists(err))

	created.Type = "json"
	_, err = c.UpdateEntry(ctx, created)
	require.NoError(t, err)
	got, err := c.GetEntry(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "json", got.Type)

	tag, err := c.CreateTag(ctx, name, &catalog.Tag{Template: "tpl", Fields: map[string]catalog.FieldValue{"x": catalog.StringValue("1")}})
	require.NoError(t, err)
	assert.NotEmpty(t, tag.Name)

	tag.Fields["x"] = catalog.StringValue("2")
	_, err = c.UpdateTag(ctx, tag)
	require.NoError(t, err)
	tags, err := c.ListTags(ctx, name)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.True(t, tags[0].Fields["x"].Equal(catalog.StringValue("2")))

	err = c.DeleteEntryGroup(ctx, loc.EntryGroup("g"))
	require.Error(t, err, "non-empty group")

	require.NoError(t, c.DeleteEntry(ctx, name))
	assert.Empty(t, c.Tags(name.String()))
	require.NoError(t, c.DeleteEntryGroup(ctx, loc.EntryGroup("g")))
}

func TestDenyMissing(t *testing.T) {
	c := memory.New()
	c.DenyMissing = true

	_, err := c.GetEntryGroup(context.Background(), loc.EntryGroup("g"))
	assert.True(t, pkgerrors.IsPermissionDenied(err))
}

func TestSearchPagination(t *testing.T) {
	c := memory.New()
	seed(t, c, "g", 5, "cloud_storage")
	seed(t, c, "other", 2, "cloud_storage")
	seed(t, c, "g2", 2, "bigquery")

	var names []string
	token := ""
	pages := 0
	for {
		page, err := c.SearchCatalog(context.Background(), catalog.SearchRequest{
			ProjectIDs: []string{"p"},
			Query:      "system=cloud_storage",
			PageSize:   2,
			PageToken:  token,
		})
		require.NoError(t, err)
		pages++
		for _, r := range page.Results {
			names = append(names, r.RelativeResourceName)
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}

	assert.Len(t, names, 7)
	assert.Equal(t, 4, pages)
	assert.Equal(t, pages, c.Calls(memory.OpSearchCatalog))
}

func TestSearchTermsAndScope(t *testing.T) {
	c := memory.New()
	seed(t, c, "g", 2, "cloud_storage")

	page, err := c.SearchCatalog(context.Background(), catalog.SearchRequest{Query: "system=cloud_storage g", PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page.Results, 2)

	page, err = c.SearchCatalog(context.Background(), catalog.SearchRequest{ProjectIDs: []string{"elsewhere"}, Query: "system=cloud_storage"})
	require.NoError(t, err)
	assert.Empty(t, page.Results)

	c.HideFromSearch(loc.EntryGroup("g").Entry("e0").String(), true)
	page, err = c.SearchCatalog(context.Background(), catalog.SearchRequest{Query: "system=cloud_storage"})
	require.NoError(t, err)
	assert.Len(t, page.Results, 1)
}

func TestFailureInjection(t *testing.T) {
	ctx := context.Background()
	c := memory.New()
	seed(t, c, "g", 0, "cloud_storage")
	boom := errors.New("boom")

	target := loc.EntryGroup("g").Entry("bad")
	c.Fail(memory.OpCreateEntry, target.String(), boom)

	_, err := c.CreateEntry(ctx, loc.EntryGroup("g"), "bad", &catalog.Entry{})
	assert.ErrorIs(t, err, boom)
	_, err = c.CreateEntry(ctx, loc.EntryGroup("g"), "good", &catalog.Entry{})
	require.NoError(t, err)

	c.Fail(memory.OpCreateEntry, target.String(), nil)
	_, err = c.CreateEntry(ctx, loc.EntryGroup("g"), "bad", &catalog.Entry{})
	require.NoError(t, err)

	assert.Equal(t, 3, c.Calls(memory.OpCreateEntry))
	assert.Equal(t, 4, c.Writes())
	c.ResetCalls()
	assert.Zero(t, c.Writes())
}
