package catalogsync

import (
	"context"

	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/sweeper"
	pkgsync "github.com/agentstation/catalogsync/pkg/sync"
)

// Delete sweeps the entry group with an empty synced set, removing every
// entry of the system and then the group. Nothing is provisioned.
func (s *syncer) Delete(ctx context.Context, opts ...pkgsync.Option) (*pkgsync.Result, error) {
	start := s.config.now()

	// Step 1: Parse and validate options
	ctx, cancel, options, err := s.prepare(ctx, opts)
	defer cancel()
	if err != nil {
		return nil, err
	}
	group, err := options.EntryGroup()
	if err != nil {
		return nil, err
	}

	// Step 2: Scope the run logger
	ctx, logger := runLogger(ctx, group, options)
	result := pkgsync.NewResult(pkgsync.ModeDelete, group.String(), options.System(), options.ExecutionTime, options.DryRun)
	logger.Info().Bool("dry_run", options.DryRun).Msg("Starting delete")

	// Step 3: Sweep everything
	sweep, err := sweeper.New(s.catalogFor(options), options.ProjectID).
		WithPageSize(s.config.searchPageSize).
		Sweep(ctx, nil, options.System(), group)
	if err != nil {
		return nil, errors.NewSyncError("sweep", group.String(), err)
	}
	s.recordSweep(result, sweep)

	// Step 4: Report
	result.Elapsed = s.elapsed(start)
	logSummary(logger, result)
	return result, nil
}
