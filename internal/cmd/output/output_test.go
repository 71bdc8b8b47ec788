package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgsync "github.com/agentstation/catalogsync/pkg/sync"
)

func sampleResult() *pkgsync.Result {
	r := pkgsync.NewResult(pkgsync.ModeSync, "projects/p/locations/l/entryGroups/g", "cloud_storage", time.Unix(1700000000, 0), false)
	r.Found, r.Created, r.Unchanged = 3, 1, 1
	r.AddFailure("projects/p/locations/l/entryGroups/g/entries/b", "create", errors.New("permission denied"))
	r.Synced = []string{"a", "c"}
	return r
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"table", "JSON", "yaml", ""} {
		_, err := ParseFormat(in)
		require.NoError(t, err, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestJSONReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, ForFormat(FormatJSON, sampleResult())))

	out := buf.String()
	assert.Contains(t, out, `"created": 1`)
	assert.Contains(t, out, `"stage": "create"`)
}

func TestYAMLReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, ForFormat(FormatYAML, sampleResult())))

	out := buf.String()
	assert.Contains(t, out, "mode: sync")
	assert.Contains(t, out, "failed: 1")
}

func TestTableReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, ForFormat(FormatTable, sampleResult())))

	out := buf.String()
	assert.Contains(t, out, "sync projects/p/locations/l/entryGroups/g")
	assert.Contains(t, out, "Failures")
	assert.Contains(t, out, "permission denied")
	assert.True(t, strings.Contains(out, "UNCHANGED") || strings.Contains(out, "Unchanged"))
}

func TestTableStructFallback(t *testing.T) {
	type details struct {
		Project      string `json:"project"`
		DeleteFailed int    `json:"delete_failed"`
		Hidden       string `json:"-"`
	}

	table := structToData(&details{Project: "p", DeleteFailed: 2, Hidden: "x"})
	require.NotNil(t, table)
	assert.Equal(t, [][]string{{"Project", "p"}, {"Delete Failed", "2"}}, table.Rows)
}
