package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/catalogsync"
	"github.com/agentstation/catalogsync/internal/cmd/output"
	"github.com/agentstation/catalogsync/internal/metrics"
	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/storage"
	"github.com/agentstation/catalogsync/pkg/storage/gcs"
	pkgsync "github.com/agentstation/catalogsync/pkg/sync"
)

// syncOptions converts the configuration into run options.
func (a *App) syncOptions(mode pkgsync.Mode) []pkgsync.Option {
	opts := []pkgsync.Option{
		pkgsync.WithProjectID(a.config.ProjectID),
		pkgsync.WithEntryGroupName(a.config.EntryGroupName),
		pkgsync.WithStorageType(a.config.StorageType),
		pkgsync.WithTemplateLocation(a.config.Location),
		pkgsync.WithDryRun(a.config.DryRun),
		pkgsync.WithTimeout(a.config.Timeout),
	}
	if mode == pkgsync.ModeSync {
		opts = append(opts,
			pkgsync.WithBucketPrefix(a.config.BucketPrefix),
			pkgsync.WithInclude(a.config.Include...),
			pkgsync.WithExclude(a.config.Exclude...),
		)
	}
	return opts
}

// run executes one sync or delete run and prints its report.
func (a *App) run(ctx context.Context, mode pkgsync.Mode) error {
	logger := logging.FromContext(ctx)

	// Step 1: Validate before opening any client
	if a.config.StorageType == "" {
		return &errors.ValidationError{Field: "type", Message: "storage type is required (--type cloud_storage)"}
	}
	opts := a.syncOptions(mode)
	if err := pkgsync.Defaults().Apply(opts...).Validate(); err != nil {
		return err
	}

	// Step 2: Open remote clients
	clients, err := a.clients(ctx, a.config.ProjectID)
	if err != nil {
		return err
	}
	defer func() {
		if err := clients.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close clients")
		}
	}()

	// Step 3: Instrument the catalog when metrics are requested
	var collector *metrics.Collector
	client := clients.Catalog
	if a.config.MetricsFile != "" {
		if collector, err = metrics.NewCollector(); err != nil {
			return err
		}
		client = metrics.Instrument(client, collector)
	}

	// Step 4: Run
	result, runErr := a.execute(ctx, mode, client, clients.Storage, opts)

	// Step 5: Export metrics even when the run failed
	if collector != nil {
		if result != nil {
			collector.ObserveResult(result)
		}
		if err := collector.WriteTextfile(a.config.MetricsFile); err != nil {
			logger.Warn().Err(err).Str("path", a.config.MetricsFile).Msg("Failed to write metrics")
		}
	}
	if runErr != nil {
		return runErr
	}

	// Step 6: Print the report
	format := output.DetectFormat(a.config.Format)
	return output.NewFormatter(format).Format(a.stdout, output.ForFormat(format, result))
}

func (a *App) execute(ctx context.Context, mode pkgsync.Mode, client catalog.Client, backend gcs.Backend, opts []pkgsync.Option) (*pkgsync.Result, error) {
	var lister storage.Lister
	if mode == pkgsync.ModeSync {
		lister = gcs.NewLister(backend, a.config.BucketPrefix)
	}

	syncer, err := catalogsync.New(client, lister)
	if err != nil {
		return nil, err
	}
	if mode == pkgsync.ModeDelete {
		return syncer.Delete(ctx, opts...)
	}
	return syncer.Sync(ctx, opts...)
}

// print writes data in the configured output format.
func (a *App) print(cmd *cobra.Command, data any) error {
	format := output.DetectFormat(a.config.Format)
	return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
}

func parseFormat(s string) (output.Format, error) {
	format, err := output.ParseFormat(s)
	if err != nil {
		return "", errors.WrapValidation("format", err)
	}
	return format, nil
}
