package sync

import (
	"fmt"
	"strings"
	"time"
)

// Mode identifies what a run did.
type Mode string

const (
	// ModeSync reconciles the catalog against a storage listing.
	ModeSync Mode = "sync"
	// ModeDelete removes every entry of the system from the entry group.
	ModeDelete Mode = "delete"
)

// Result represents the complete result of a run.
type Result struct {
	Mode          Mode      `json:"mode" yaml:"mode"`
	EntryGroup    string    `json:"entry_group" yaml:"entry_group"`
	System        string    `json:"system" yaml:"system"`
	ExecutionTime time.Time `json:"execution_time" yaml:"execution_time"`
	DryRun        bool      `json:"dry_run" yaml:"dry_run"`

	// Reconciliation counts
	Found     int `json:"found" yaml:"found"`
	Created   int `json:"created" yaml:"created"`
	Updated   int `json:"updated" yaml:"updated"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Failed    int `json:"failed" yaml:"failed"`

	// Tag counts
	TagsCreated   int `json:"tags_created" yaml:"tags_created"`
	TagsUpdated   int `json:"tags_updated" yaml:"tags_updated"`
	TagsUnchanged int `json:"tags_unchanged" yaml:"tags_unchanged"`

	// Sweep counts
	Existing          int  `json:"existing" yaml:"existing"`
	Deleted           int  `json:"deleted" yaml:"deleted"`
	DeleteFailed      int  `json:"delete_failed" yaml:"delete_failed"`
	EntryGroupDeleted bool `json:"entry_group_deleted" yaml:"entry_group_deleted"`

	// Synced holds the names of every entry that reconciled successfully,
	// in processing order.
	Synced   []string  `json:"synced" yaml:"synced"`
	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`

	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Failure records one isolated per-entry failure.
type Failure struct {
	Name  string `json:"name" yaml:"name"`
	Stage string `json:"stage" yaml:"stage"`
	Error string `json:"error" yaml:"error"`
}

// NewResult returns an empty result for a run.
func NewResult(mode Mode, entryGroup, system string, executionTime time.Time, dryRun bool) *Result {
	return &Result{
		Mode:          mode,
		EntryGroup:    entryGroup,
		System:        system,
		ExecutionTime: executionTime,
		DryRun:        dryRun,
		Synced:        []string{},
	}
}

// AddFailure records a per-entry failure.
func (r *Result) AddFailure(name, stage string, err error) {
	r.Failed++
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.Failures = append(r.Failures, Failure{Name: name, Stage: stage, Error: msg})
}

// HasChanges returns true if the run wrote anything to the catalog.
func (r *Result) HasChanges() bool {
	return r.Created > 0 || r.Updated > 0 || r.Deleted > 0 ||
		r.TagsCreated > 0 || r.TagsUpdated > 0 || r.EntryGroupDeleted
}

// Complete reports whether every entry and deletion succeeded.
func (r *Result) Complete() bool {
	return r.Failed == 0 && r.DeleteFailed == 0
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	var parts []string
	if r.DryRun {
		parts = append(parts, "(Dry run)")
	}
	if !r.Complete() {
		parts = append(parts, "(Incomplete)")
	}

	var summary string
	switch {
	case r.Mode == ModeDelete:
		summary = fmt.Sprintf("%d entries deleted, %d delete failures", r.Deleted, r.DeleteFailed)
	case !r.HasChanges() && r.Complete():
		summary = fmt.Sprintf("No changes detected across %d entries", r.Found)
	default:
		summary = fmt.Sprintf("%d found: %d created, %d updated, %d unchanged, %d failed, %d deleted",
			r.Found, r.Created, r.Updated, r.Unchanged, r.Failed, r.Deleted)
	}

	if len(parts) > 0 {
		summary += " " + strings.Join(parts, " ")
	}
	return summary
}
