package adc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CLOUDSDK_CONFIG", dir)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("DATACATALOG_LOCATION", "")
	t.Setenv("CLOUDSDK_ACTIVE_CONFIG_NAME", "")
	return dir
}

func TestParseINIValue(t *testing.T) {
	content := "[core]\naccount = me@example.com\nproject = my-project\n\n[compute]\n# comment\nregion=europe-west1\n"

	assert.Equal(t, "my-project", parseINIValue(content, "core", "project"))
	assert.Equal(t, "europe-west1", parseINIValue(content, "compute", "region"))
	assert.Empty(t, parseINIValue(content, "compute", "project"))
}

func TestReadConfigActiveConfiguration(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "active_config"), "work\n")
	writeFile(t, filepath.Join(dir, "configurations", "config_work"), "[core]\nproject = work-project\n")

	assert.Equal(t, "work-project", ReadConfig("core/project"))
	assert.Empty(t, ReadConfig("project"))
}

func TestBuildDetailsMissing(t *testing.T) {
	isolate(t)

	details := BuildDetails()
	assert.Equal(t, StateMissing, details.State)
	assert.Equal(t, "us-central1", details.Location)
	assert.Equal(t, "not set", details.ProjectSource)
	assert.Equal(t, "Credentials missing, No project set, Location: us-central1", FormatBrief(details))
}

func TestBuildDetailsServiceAccount(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "application_default_credentials.json")
	writeFile(t, path, `{"type":"service_account","project_id":"sa-project","client_email":"sync@sa-project.iam.gserviceaccount.com"}`)

	details := BuildDetails()
	require.Equal(t, StateConfigured, details.State, details.ErrorMessage)
	assert.Equal(t, "Service Account", details.Type)
	assert.Equal(t, "sync@sa-project.iam.gserviceaccount.com", details.Account)
	assert.Equal(t, "sa-project", details.Project)
	assert.Equal(t, "ADC (project_id)", details.ProjectSource)
	assert.Equal(t, path, details.ADCPath)
}

func TestBuildDetailsInvalid(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "application_default_credentials.json"), `{"type":"mystery"}`)

	details := BuildDetails()
	assert.Equal(t, StateInvalid, details.State)
	assert.Contains(t, details.ErrorMessage, "unknown type")
}

func TestResolveProjectEnvWins(t *testing.T) {
	isolate(t)
	t.Setenv("GOOGLE_CLOUD_PROJECT", "env-project")

	project, source := ResolveProject(&File{ProjectID: "file-project"})
	assert.Equal(t, "env-project", project)
	assert.Equal(t, "env (GOOGLE_CLOUD_PROJECT)", source)
}
