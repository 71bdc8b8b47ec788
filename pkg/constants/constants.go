// Package constants provides shared constants used throughout the catalogsync
// codebase. This includes catalog identifiers, timeouts, limits and file
// permissions that should be consistent across the application.
package constants

import "time"

// Catalog identifiers
const (
	// DefaultLocation is the catalog region used when none is configured
	DefaultLocation = "us-central1"

	// TagTemplateID is the id of the tag template describing synced objects
	TagTemplateID = "object_storage_entries_sync_details"

	// CloudStorageType is the canonical storage type name
	CloudStorageType = "cloud_storage"
)

// Timeout constants define various timeout durations used in the application
const (
	// StructuralTimeout bounds entry group creation and entry updates
	StructuralTimeout = 20 * time.Minute

	// CredentialsTimeout bounds application default credential discovery
	CredentialsTimeout = 30 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 6 * time.Hour
)

// Search constants control the catalog search used by the sweeper
const (
	// SearchPageSize is the number of results requested per search page
	SearchPageSize = 1000

	// SearchOrderBy is the ordering requested from the search index
	SearchOrderBy = "relevance"
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)
