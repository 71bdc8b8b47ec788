//go:build integration

package datacatalog_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogsync"
	"github.com/agentstation/catalogsync/internal/auth"
	"github.com/agentstation/catalogsync/pkg/catalog/datacatalog"
	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/storage"
	pkgsync "github.com/agentstation/catalogsync/pkg/sync"
)

// TestSyncAgainstDataCatalog runs a full sync and delete against a real
// project. Set CATALOGSYNC_IT_PROJECT to enable it.
func TestSyncAgainstDataCatalog(t *testing.T) {
	project := os.Getenv("CATALOGSYNC_IT_PROJECT")
	if project == "" {
		t.Skip("CATALOGSYNC_IT_PROJECT not set")
	}
	ctx := context.Background()

	opts, err := auth.ClientOptions(ctx, constants.CredentialsTimeout)
	require.NoError(t, err)
	client, err := datacatalog.New(ctx, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	group := fmt.Sprintf("projects/%s/locations/%s/entryGroups/catalogsync_it_%d",
		project, constants.DefaultLocation, time.Now().Unix())
	runOpts := []pkgsync.Option{
		pkgsync.WithProjectID(project),
		pkgsync.WithEntryGroupName(group),
	}

	lister := storage.Static(storage.Object{
		LinkedResource: "gs://catalogsync-it/report-1.csv",
		BucketName:     "catalogsync-it",
		FileName:       "report-1.csv",
		FileType:       "csv",
		PublicURL:      "https://storage.googleapis.com/catalogsync-it/report-1.csv",
		Size:           42,
		TimeCreated:    time.Now().Add(-time.Hour),
		TimeUpdated:    time.Now().Add(-time.Hour),
		System:         storage.SystemCloudStorage,
	})

	s, err := catalogsync.New(client, lister)
	require.NoError(t, err)

	result, err := s.Sync(ctx, runOpts...)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.TagsCreated)

	result, err = s.Sync(ctx, runOpts...)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Unchanged)

	result, err = s.Delete(ctx, runOpts...)
	require.NoError(t, err)
	// Search indexing lags, so the entry may survive until a later run.
	assert.LessOrEqual(t, result.Deleted, 1)
}
