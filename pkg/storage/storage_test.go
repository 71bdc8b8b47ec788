package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogsync/pkg/storage"
)

func TestFileType(t *testing.T) {
	tests := map[string]string{
		"report-1.csv":     "csv",
		"archive.tar.gz":   "gz",
		"dir/data.parquet": "parquet",
		"README":           storage.UnknownFileType,
		"trailing.":        "",
	}
	for name, want := range tests {
		assert.Equal(t, want, storage.FileType(name), name)
	}
}

func TestStatic(t *testing.T) {
	lister := storage.Static(
		storage.Object{FileName: "a.csv"},
		storage.Object{FileName: "b.csv"},
	)

	var names []string
	for obj, err := range lister.Objects(context.Background()) {
		require.NoError(t, err)
		names = append(names, obj.FileName)
	}
	assert.Equal(t, []string{"a.csv", "b.csv"}, names)
}

func TestStaticCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var gotErr error
	for _, err := range storage.Static(storage.Object{FileName: "a.csv"}).Objects(ctx) {
		gotErr = err
	}
	assert.ErrorIs(t, gotErr, context.Canceled)
}
