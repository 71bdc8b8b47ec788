// Package sync provides the options and result types of a catalog sync run.
package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/catalogsync/internal/matcher"
	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/resource"
)

// Options controls a single sync or delete run.
type Options struct {
	// Target
	ProjectID        string // Project used for search scope and the tag template
	EntryGroupName   string // Full entry group resource name
	StorageType      string // Observed storage system (cloud_storage)
	TemplateLocation string // Location of the tag template

	// Source selection
	BucketPrefix string   // Only buckets whose name starts with this prefix
	Include      []string // Object name patterns to sync; empty means all
	Exclude      []string // Object name patterns to skip

	// Orchestration control
	DryRun        bool          // Read the catalog but skip every write
	ExecutionTime time.Time     // Timestamp stamped into tags; zero means now
	Timeout       time.Duration // Timeout for the entire run; zero means none
}

// Option is a function that configures sync Options.
type Option func(*Options)

// Defaults returns the default sync options.
func Defaults() *Options {
	return &Options{
		StorageType:      constants.CloudStorageType,
		TemplateLocation: constants.DefaultLocation,
	}
}

// Apply applies the given options to the sync options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks that the options describe a runnable sync.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.ProjectID) == "" {
		return &errors.ValidationError{
			Field:   "ProjectID",
			Value:   o.ProjectID,
			Message: "project id is required",
		}
	}

	if o.EntryGroupName == "" {
		return &errors.ValidationError{
			Field:   "EntryGroupName",
			Value:   o.EntryGroupName,
			Message: "entry group name is required",
		}
	}
	if _, err := resource.ParseEntryGroupName(o.EntryGroupName); err != nil {
		return err
	}

	if _, err := NormalizeStorageType(o.StorageType); err != nil {
		return err
	}

	if o.TemplateLocation == "" {
		return &errors.ValidationError{
			Field:   "TemplateLocation",
			Value:   o.TemplateLocation,
			Message: "tag template location is required",
		}
	}

	if _, err := o.Filter(); err != nil {
		return err
	}

	if o.Timeout < 0 {
		return &errors.ValidationError{
			Field:   "Timeout",
			Value:   o.Timeout,
			Message: "timeout must be non-negative",
		}
	}

	return nil
}

// EntryGroup returns the parsed entry group name.
func (o *Options) EntryGroup() (resource.EntryGroupName, error) {
	return resource.ParseEntryGroupName(o.EntryGroupName)
}

// System returns the source system tag written on entries.
func (o *Options) System() string {
	system, err := NormalizeStorageType(o.StorageType)
	if err != nil {
		return o.StorageType
	}
	return system
}

// TagTemplate returns the name of the tag template used for this run.
func (o *Options) TagTemplate() resource.TagTemplateName {
	return resource.Location{Project: o.ProjectID, Location: o.TemplateLocation}.TagTemplate(constants.TagTemplateID)
}

// Filter compiles the include and exclude patterns.
func (o *Options) Filter() (*matcher.Filter, error) {
	filter, err := matcher.NewFilter(o.Include, o.Exclude)
	if err != nil {
		return nil, errors.WrapValidation("Include", err)
	}
	return filter, nil
}

// NormalizeStorageType maps accepted storage type spellings to the system
// tag. cloud_storage and cloud-storage are accepted.
func NormalizeStorageType(storageType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(storageType)) {
	case "cloud_storage", "cloud-storage":
		return constants.CloudStorageType, nil
	default:
		return "", &errors.ValidationError{
			Field:   "StorageType",
			Value:   storageType,
			Message: fmt.Sprintf("unsupported storage type %q, only cloud_storage is supported", storageType),
		}
	}
}

// WithProjectID configures the project id.
func WithProjectID(projectID string) Option {
	return func(opts *Options) {
		opts.ProjectID = projectID
	}
}

// WithEntryGroupName configures the full entry group resource name.
func WithEntryGroupName(name string) Option {
	return func(opts *Options) {
		opts.EntryGroupName = name
	}
}

// WithStorageType configures the observed storage type.
func WithStorageType(storageType string) Option {
	return func(opts *Options) {
		opts.StorageType = storageType
	}
}

// WithSystem is an alias of WithStorageType.
func WithSystem(system string) Option {
	return WithStorageType(system)
}

// WithTemplateLocation configures the tag template location. An empty
// location keeps the current one.
func WithTemplateLocation(location string) Option {
	return func(opts *Options) {
		if location != "" {
			opts.TemplateLocation = location
		}
	}
}

// WithBucketPrefix configures the bucket name prefix filter.
func WithBucketPrefix(prefix string) Option {
	return func(opts *Options) {
		opts.BucketPrefix = prefix
	}
}

// WithInclude adds object name patterns to sync. Patterns are globs unless
// they contain regex metacharacters.
func WithInclude(patterns ...string) Option {
	return func(opts *Options) {
		opts.Include = append(opts.Include, patterns...)
	}
}

// WithExclude adds object name patterns to skip.
func WithExclude(patterns ...string) Option {
	return func(opts *Options) {
		opts.Exclude = append(opts.Exclude, patterns...)
	}
}

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(opts *Options) {
		opts.DryRun = dryRun
	}
}

// WithExecutionTime fixes the execution time stamped into tags.
func WithExecutionTime(t time.Time) Option {
	return func(opts *Options) {
		opts.ExecutionTime = t
	}
}

// WithTimeout configures the run timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}
