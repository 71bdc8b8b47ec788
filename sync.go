package catalogsync

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/catalogsync/pkg/builder"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/reconciler"
	"github.com/agentstation/catalogsync/pkg/resource"
	"github.com/agentstation/catalogsync/pkg/sweeper"
	pkgsync "github.com/agentstation/catalogsync/pkg/sync"
)

// Sync reconciles the entry group against the storage listing.
func (s *syncer) Sync(ctx context.Context, opts ...pkgsync.Option) (*pkgsync.Result, error) {
	start := s.config.now()

	// Step 1: Parse and validate options
	ctx, cancel, options, err := s.prepare(ctx, opts)
	defer cancel()
	if err != nil {
		return nil, err
	}
	if s.lister == nil {
		return nil, &errors.ValidationError{Field: "lister", Message: "sync requires a storage lister"}
	}
	group, err := options.EntryGroup()
	if err != nil {
		return nil, err
	}
	filter, err := options.Filter()
	if err != nil {
		return nil, err
	}

	// Step 2: Scope the run logger
	ctx, logger := runLogger(ctx, group, options)
	client := s.catalogFor(options)
	result := pkgsync.NewResult(pkgsync.ModeSync, group.String(), options.System(), options.ExecutionTime, options.DryRun)
	logger.Info().Time("execution_time", options.ExecutionTime).Bool("dry_run", options.DryRun).Msg("Starting sync")

	// Step 3: Provision the entry group and tag template
	if err := s.ensureEntryGroup(ctx, client, group); err != nil {
		return nil, err
	}
	template := options.TagTemplate()
	if err := s.ensureTagTemplate(ctx, client, group, template); err != nil {
		return nil, err
	}

	// Step 4: Reconcile one entry per listed object
	rec, err := reconciler.New(client,
		reconciler.WithUpdateTimeout(s.config.updateTimeout),
		reconciler.WithClock(s.config.now),
	)
	if err != nil {
		return nil, err
	}

	for obj, err := range s.lister.Objects(ctx) {
		if err != nil {
			return nil, errors.NewSyncError("listing", group.String(), err)
		}
		if options.BucketPrefix != "" && !strings.HasPrefix(obj.BucketName, options.BucketPrefix) {
			continue
		}
		if !filter.Match(obj.FileName) {
			logger.Debug().Str("linked_resource", obj.LinkedResource).Msg("Object filtered out")
			continue
		}

		result.Found++
		entry := builder.BuildEntry(group, obj)
		tag := builder.BuildTag(obj, template, options.ExecutionTime)
		s.record(result, rec.Reconcile(ctx, entry, tag))
	}

	// Step 5: Sweep entries whose object is gone
	sweep, err := sweeper.New(client, options.ProjectID).
		WithPageSize(s.config.searchPageSize).
		Sweep(ctx, result.Synced, options.System(), group)
	if err != nil {
		return nil, errors.NewSyncError("sweep", group.String(), err)
	}
	s.recordSweep(result, sweep)

	// Step 6: Report
	result.Elapsed = s.elapsed(start)
	logSummary(logger, result)
	return result, nil
}

// record folds one reconciliation outcome into the run result.
func (s *syncer) record(result *pkgsync.Result, out *reconciler.Outcome) {
	name := out.Name.String()

	switch out.Action {
	case reconciler.StateFailed:
		result.AddFailure(name, out.FailedAt.String(), out.Err)
		s.triggerFailed(name, out.FailedAt.String(), out.Err)
		return
	case reconciler.StateCreate:
		result.Created++
		s.triggerCreated(out.Entry)
	case reconciler.StateUpdate:
		result.Updated++
		s.triggerUpdated(out.Entry, out.Changes)
	case reconciler.StateNoOp:
		result.Unchanged++
	}

	switch out.TagAction {
	case reconciler.TagCreated:
		result.TagsCreated++
	case reconciler.TagUpdated:
		result.TagsUpdated++
	case reconciler.TagUnchanged:
		result.TagsUnchanged++
	}
	result.Synced = append(result.Synced, name)
}

func (s *syncer) recordSweep(result *pkgsync.Result, sweep *sweeper.Result) {
	result.Existing = len(sweep.Existing)
	result.Deleted = len(sweep.Deleted)
	result.DeleteFailed = len(sweep.DeleteFailed)
	result.EntryGroupDeleted = sweep.EntryGroupDeleted
	for _, name := range sweep.DeleteFailed {
		result.Failures = append(result.Failures, pkgsync.Failure{Name: name, Stage: "delete", Error: "entry delete failed"})
	}
	s.triggerDeleted(sweep.Deleted)
}

// runLogger attaches the run's target to the context logger.
func runLogger(ctx context.Context, group resource.EntryGroupName, options *pkgsync.Options) (context.Context, *zerolog.Logger) {
	logger := logging.FromContext(ctx).With().
		Str("project", options.ProjectID).
		Str("location", group.Location.Location).
		Str("entry_group", group.String()).
		Str("system", options.System()).
		Logger()
	return logging.WithLogger(ctx, &logger), &logger
}

// logSummary writes the one line summary of a run.
func logSummary(logger *zerolog.Logger, result *pkgsync.Result) {
	event := logger.Info()
	if !result.Complete() {
		event = logger.Warn()
	}
	if result.Mode == pkgsync.ModeSync {
		event = event.
			Int("found", result.Found).
			Int("created", result.Created).
			Int("updated", result.Updated).
			Int("unchanged", result.Unchanged).
			Int("failed", result.Failed).
			Int("tags_created", result.TagsCreated).
			Int("tags_updated", result.TagsUpdated).
			Int("tags_unchanged", result.TagsUnchanged)
	}
	event.
		Int("existing", result.Existing).
		Int("deleted", result.Deleted).
		Int("delete_failed", result.DeleteFailed).
		Bool("entry_group_deleted", result.EntryGroupDeleted).
		Bool("dry_run", result.DryRun).
		Dur("elapsed", result.Elapsed).
		Msg(result.Summary())
}
