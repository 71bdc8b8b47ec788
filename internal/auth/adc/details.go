package adc

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/agentstation/catalogsync/pkg/constants"
)

// State represents the local credential state.
type State int

const (
	// StateConfigured means credentials are configured.
	StateConfigured State = iota
	// StateMissing means no credentials were found.
	StateMissing
	// StateInvalid means credentials are found but malformed.
	StateInvalid
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConfigured:
		return "configured"
	case StateMissing:
		return "missing"
	default:
		return "invalid"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Details describes the Google Cloud credentials and defaults visible to
// catalogsync.
type Details struct {
	State          State     `json:"state" yaml:"state"`
	Type           string    `json:"type,omitempty" yaml:"type,omitempty"`
	Account        string    `json:"account,omitempty" yaml:"account,omitempty"`
	Project        string    `json:"project,omitempty" yaml:"project,omitempty"`
	ProjectSource  string    `json:"project_source" yaml:"project_source"`
	Location       string    `json:"location" yaml:"location"`
	LocationSource string    `json:"location_source" yaml:"location_source"`
	UniverseDomain string    `json:"universe_domain,omitempty" yaml:"universe_domain,omitempty"`
	ADCPath        string    `json:"adc_path,omitempty" yaml:"adc_path,omitempty"`
	LastAuth       time.Time `json:"last_auth,omitzero" yaml:"last_auth,omitempty"`
	ErrorMessage   string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// BuildDetails inspects the local credentials. No network calls are made.
func BuildDetails() *Details {
	details := &Details{State: StateMissing}
	details.Location, details.LocationSource = ResolveLocation()

	path := FindFile()
	if path == "" {
		details.Project, details.ProjectSource = ResolveProject(nil)
		details.ErrorMessage = "No ADC found. Run: gcloud auth application-default login"
		return details
	}
	details.ADCPath = path

	file, err := ParseFile(path)
	if err != nil {
		details.State = StateInvalid
		details.Project, details.ProjectSource = ResolveProject(nil)
		details.ErrorMessage = fmt.Sprintf("ADC file invalid: %v", err)
		return details
	}

	details.State = StateConfigured
	details.Type = credentialType(file.Type)
	details.Account = accountIdentifier(file)
	details.UniverseDomain = universeDomain(file.UniverseDomain)
	details.LastAuth = fileModTime(path)
	details.Project, details.ProjectSource = ResolveProject(file)
	return details
}

// credentialType converts ADC type to human-readable string.
func credentialType(adcType string) string {
	switch adcType {
	case TypeServiceAccount:
		return "Service Account"
	case TypeExternalAccount:
		return "Workload Identity"
	default:
		return "User Credentials"
	}
}

// accountIdentifier prefers an email address, falling back to client ID.
func accountIdentifier(file *File) string {
	switch {
	case file.Account != "":
		return file.Account
	case file.ClientEmail != "":
		return file.ClientEmail
	case file.ClientID != "":
		return "(client ID: " + file.ClientID + ")"
	}
	return ""
}

func universeDomain(domain string) string {
	if domain == "" {
		return "googleapis.com"
	}
	return domain
}

func fileModTime(path string) time.Time {
	if stat, err := os.Stat(path); err == nil {
		return stat.ModTime()
	}
	return time.Time{}
}

// ResolveProject determines the default project id.
//
// Priority order:
//  1. GOOGLE_CLOUD_PROJECT environment variable
//  2. ADC quota_project_id, then project_id (file may be nil)
//  3. gcloud config (core/project)
//
// Returns empty string and "not set" if no project found.
func ResolveProject(file *File) (project, source string) {
	if env := os.Getenv("GOOGLE_CLOUD_PROJECT"); env != "" {
		return env, "env (GOOGLE_CLOUD_PROJECT)"
	}
	if file != nil && file.QuotaProjectID != "" {
		return file.QuotaProjectID, "ADC (quota_project_id)"
	}
	if file != nil && file.ProjectID != "" {
		return file.ProjectID, "ADC (project_id)"
	}
	if p := ReadConfig("core/project"); p != "" {
		return p, "gcloud config"
	}
	return "", "not set"
}

// ResolveLocation determines the default catalog location.
//
// Priority order:
//  1. DATACATALOG_LOCATION environment variable
//  2. gcloud config (compute/region)
//  3. constants.DefaultLocation
func ResolveLocation() (location, source string) {
	if env := os.Getenv("DATACATALOG_LOCATION"); env != "" {
		return env, "env (DATACATALOG_LOCATION)"
	}
	if region := ReadConfig("compute/region"); region != "" {
		return region, "gcloud config"
	}
	return constants.DefaultLocation, "default"
}

// FormatBrief creates a one-line summary of the credential state.
//
// Example: "User Credentials, Project: my-project, Location: us-central1".
func FormatBrief(details *Details) string {
	var parts []string
	if details.State == StateConfigured {
		parts = append(parts, details.Type)
	} else {
		parts = append(parts, "Credentials "+details.State.String())
	}

	if details.Project != "" {
		parts = append(parts, fmt.Sprintf("Project: %s", details.Project))
	} else {
		parts = append(parts, "No project set")
	}
	parts = append(parts, fmt.Sprintf("Location: %s", details.Location))
	return strings.Join(parts, ", ")
}
