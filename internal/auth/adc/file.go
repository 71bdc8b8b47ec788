// Package adc inspects Google Application Default Credentials and gcloud
// configuration without making network calls.
package adc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// TypeAuthorizedUser represents user credentials from gcloud auth.
	TypeAuthorizedUser = "authorized_user"
	// TypeServiceAccount represents service account credentials.
	TypeServiceAccount = "service_account"
	// TypeExternalAccount represents workload identity federation credentials.
	TypeExternalAccount = "external_account"
)

// File represents an Application Default Credentials JSON file.
type File struct {
	Type           string `json:"type"`
	QuotaProjectID string `json:"quota_project_id"`
	ProjectID      string `json:"project_id"`
	Account        string `json:"account"`
	ClientEmail    string `json:"client_email"`
	ClientID       string `json:"client_id"`
	UniverseDomain string `json:"universe_domain"`
}

// configDir returns the gcloud configuration directory, honoring
// CLOUDSDK_CONFIG.
func configDir() string {
	if dir := os.Getenv("CLOUDSDK_CONFIG"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gcloud")
}

// FindFile locates the ADC file using Google's standard search order.
// Returns empty string if not found.
//
// Search order:
//  1. GOOGLE_APPLICATION_CREDENTIALS environment variable
//  2. application_default_credentials.json in the gcloud config directory
func FindFile() string {
	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	dir := configDir()
	if dir == "" {
		return ""
	}
	path := filepath.Join(dir, "application_default_credentials.json")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// ParseFile reads and validates an ADC JSON file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- Reading well-known ADC credential file
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch file.Type {
	case "":
		return nil, fmt.Errorf("missing 'type' field")
	case TypeAuthorizedUser, TypeServiceAccount, TypeExternalAccount:
		return &file, nil
	default:
		return nil, fmt.Errorf("unknown type: %s", file.Type)
	}
}
