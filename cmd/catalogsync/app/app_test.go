package app

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogsync/pkg/catalog/memory"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/storage/gcs"
	pkgsync "github.com/agentstation/catalogsync/pkg/sync"
)

const testGroup = "projects/p/locations/us-central1/entryGroups/files"

type fakeBackend map[string][]gcs.Blob

func (f fakeBackend) ListBuckets(_ context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for bucket := range f {
			if strings.HasPrefix(bucket, prefix) && !yield(bucket, nil) {
				return
			}
		}
	}
}

func (f fakeBackend) ListBlobs(_ context.Context, bucket string) iter.Seq2[gcs.Blob, error] {
	return func(yield func(gcs.Blob, error) bool) {
		for _, b := range f[bucket] {
			if !yield(b, nil) {
				return
			}
		}
	}
}

type harness struct {
	app     *App
	catalog *memory.Catalog
	out     *bytes.Buffer
	opened  int
}

func newHarness(t *testing.T, backend fakeBackend) *harness {
	t.Helper()
	t.Setenv("LOG_OUTPUT", "discard")
	t.Setenv("CLOUDSDK_CONFIG", t.TempDir())
	t.Chdir(t.TempDir())

	h := &harness{catalog: memory.New(), out: &bytes.Buffer{}}
	factory := func(_ context.Context, _ string) (*Clients, error) {
		h.opened++
		return &Clients{Catalog: h.catalog, Storage: backend}, nil
	}

	app, err := New("1.0.0", "abc123", "2024-01-01", "test", WithClientFactory(factory), WithOutput(h.out))
	require.NoError(t, err)
	h.app = app
	return h
}

func (h *harness) execute(t *testing.T, args ...string) error {
	t.Helper()
	h.out.Reset()
	return h.app.Execute(context.Background(), args)
}

func (h *harness) result(t *testing.T) pkgsync.Result {
	t.Helper()
	var result pkgsync.Result
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &result))
	return result
}

func targetArgs(extra ...string) []string {
	return append([]string{
		"--type", "cloud_storage",
		"--project-id", "p",
		"--entry-group-name", testGroup,
		"-o", "json",
	}, extra...)
}

func sampleBackend() fakeBackend {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return fakeBackend{
		"raw-bucket": {
			{Name: "report-1.csv", Size: 42, Created: created, Updated: created},
			{Name: "events.json", Size: 7, Created: created, Updated: created},
		},
		"curated": {
			{Name: "summary.parquet", Size: 9, Created: created, Updated: created},
		},
	}
}

func TestApp_New(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, "1.0.0", h.app.Version())
	assert.Equal(t, "abc123", h.app.Commit())
	assert.Equal(t, "2024-01-01", h.app.Date())
	assert.Equal(t, "test", h.app.BuiltBy())
	assert.NotNil(t, h.app.Logger())
	assert.NotNil(t, h.app.Config())
}

func TestExecuteSync(t *testing.T) {
	h := newHarness(t, sampleBackend())

	require.NoError(t, h.execute(t, append([]string{"sync"}, targetArgs()...)...))
	result := h.result(t)
	assert.Equal(t, pkgsync.ModeSync, result.Mode)
	assert.Equal(t, 3, result.Created)
	assert.Len(t, h.catalog.EntryNames(), 3)

	require.NoError(t, h.execute(t, append([]string{"sync-entries"}, targetArgs()...)...))
	assert.Equal(t, 3, h.result(t).Unchanged)
}

func TestExecuteSyncTemplateLocation(t *testing.T) {
	const templateID = "/tagTemplates/object_storage_entries_sync_details"

	gcloud := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(gcloud, "configurations"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(gcloud, "configurations", "config_default"),
		[]byte("[compute]\nregion = europe-west1\n"), 0o600))

	h := newHarness(t, sampleBackend())
	t.Setenv("CLOUDSDK_CONFIG", gcloud)
	t.Setenv("DATACATALOG_LOCATION", "europe-west1")

	require.NoError(t, h.execute(t, append([]string{"sync"}, targetArgs()...)...))
	assert.True(t, h.catalog.HasTagTemplate("projects/p/locations/us-central1"+templateID))
	assert.False(t, h.catalog.HasTagTemplate("projects/p/locations/europe-west1"+templateID))

	require.NoError(t, h.execute(t, append([]string{"sync"}, targetArgs("--location", "asia-east1")...)...))
	assert.True(t, h.catalog.HasTagTemplate("projects/p/locations/asia-east1"+templateID))
}

func TestExecuteSyncBucketPrefix(t *testing.T) {
	h := newHarness(t, sampleBackend())

	require.NoError(t, h.execute(t, append([]string{"sync"}, targetArgs("--bucket-prefix", "raw")...)...))
	assert.Equal(t, 2, h.result(t).Found)
}

func TestExecuteSyncInclude(t *testing.T) {
	h := newHarness(t, sampleBackend())

	require.NoError(t, h.execute(t, append([]string{"sync"}, targetArgs("--include", "*.csv,*.json")...)...))
	assert.Equal(t, 2, h.result(t).Found)
}

func TestExecuteObjectStorageGroup(t *testing.T) {
	h := newHarness(t, sampleBackend())

	require.NoError(t, h.execute(t, append([]string{"object-storage", "sync-entries"}, targetArgs()...)...))
	assert.Len(t, h.catalog.EntryNames(), 3)

	require.NoError(t, h.execute(t, append([]string{"object-storage", "delete-entries"}, targetArgs()...)...))
	result := h.result(t)
	assert.Equal(t, pkgsync.ModeDelete, result.Mode)
	assert.Equal(t, 3, result.Deleted)
	assert.Empty(t, h.catalog.EntryNames())
}

func TestExecuteDryRun(t *testing.T) {
	h := newHarness(t, sampleBackend())

	require.NoError(t, h.execute(t, append([]string{"sync"}, targetArgs("--dry-run")...)...))
	result := h.result(t)
	assert.True(t, result.DryRun)
	assert.Equal(t, 3, result.Created)
	assert.Zero(t, h.catalog.Writes())
}

func TestExecuteValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing type", []string{"sync", "--project-id", "p", "--entry-group-name", testGroup}},
		{"unsupported type", []string{"sync", "--type", "s3", "--project-id", "p", "--entry-group-name", testGroup}},
		{"missing project", []string{"sync", "--type", "cloud_storage", "--entry-group-name", testGroup}},
		{"bad entry group", []string{"delete", "--type", "cloud_storage", "--project-id", "p", "--entry-group-name", "files"}},
		{"bad format", append([]string{"sync"}, targetArgs("-o", "xml")...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, sampleBackend())
			err := h.execute(t, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err), err)
			assert.Zero(t, h.opened)
		})
	}
}

func TestExecutePartialFailureSucceeds(t *testing.T) {
	h := newHarness(t, sampleBackend())
	h.catalog.Fail(memory.OpCreateEntry, testGroup+"/entries/events", errors.New("boom"))

	require.NoError(t, h.execute(t, append([]string{"sync"}, targetArgs()...)...))
	result := h.result(t)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, result.Created)
}

func TestExecuteStructuralFailure(t *testing.T) {
	h := newHarness(t, sampleBackend())
	h.catalog.Fail(memory.OpCreateEntryGroup, "", errors.New("boom"))

	err := h.execute(t, append([]string{"sync"}, targetArgs()...)...)
	require.Error(t, err)
	var syncErr *errors.SyncError
	assert.True(t, errors.As(err, &syncErr))
}

func TestExecuteMetricsFile(t *testing.T) {
	h := newHarness(t, sampleBackend())
	path := filepath.Join(t.TempDir(), "catalogsync.prom")

	require.NoError(t, h.execute(t, append([]string{"sync"}, targetArgs("--metrics-file", path)...)...))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "catalogsync_catalog_calls_total")
	assert.Contains(t, string(data), `catalogsync_entries{mode="sync",outcome="created"} 3`)
}

func TestExecuteConfigFile(t *testing.T) {
	h := newHarness(t, sampleBackend())
	path := filepath.Join(t.TempDir(), "catalogsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"project_id: p\nentry_group_name: "+testGroup+"\nstorage_type: cloud_storage\nformat: json\n"), 0o600))

	require.NoError(t, h.execute(t, "sync", "--config", path))
	assert.Equal(t, 3, h.result(t).Created)
	assert.Equal(t, path, h.app.Config().ConfigFile)
}

func TestExecuteEnvironment(t *testing.T) {
	h := newHarness(t, sampleBackend())
	t.Setenv("PROJECT_ID", "p")
	t.Setenv("ENTRY_GROUP_NAME", testGroup)
	t.Setenv("STORAGE_TYPE", "cloud-storage")

	require.NoError(t, h.execute(t, "sync", "-o", "json"))
	assert.Equal(t, 3, h.result(t).Created)

	// Flags win over the environment
	err := h.execute(t, "sync", "-o", "json", "--entry-group-name", "invalid")
	assert.True(t, errors.IsValidationError(err))
}

func TestExecuteTableOutput(t *testing.T) {
	h := newHarness(t, sampleBackend())

	require.NoError(t, h.execute(t, append([]string{"sync"}, targetArgs("-o", "table")...)...))
	assert.Contains(t, h.out.String(), "sync "+testGroup)
}

func TestExecuteVersion(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.execute(t, "version"))
	assert.Equal(t, "catalogsync 1.0.0 (commit abc123, built 2024-01-01 by test)\n", h.out.String())
}

func TestExecuteAuthStatus(t *testing.T) {
	h := newHarness(t, nil)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("CLOUDSDK_CONFIG", t.TempDir())
	t.Setenv("GOOGLE_CLOUD_PROJECT", "p")
	t.Setenv("DATACATALOG_LOCATION", "")

	require.NoError(t, h.execute(t, "auth", "status", "-o", "json"))

	var details map[string]any
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &details))
	assert.Equal(t, "p", details["project"])
	assert.Equal(t, "us-central1", details["location"])
}
