// Package catalogsync keeps a data catalog in step with an object store.
//
// A Syncer provisions the target entry group and the sync details tag
// template, upserts one entry and one tag per stored object, then sweeps
// entries whose object is gone. Every write is idempotent, so a failed or
// partial run is repaired by the next one.
package catalogsync

import (
	"context"
	"fmt"
	"time"

	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/storage"
	pkgsync "github.com/agentstation/catalogsync/pkg/sync"
)

// Syncer reconciles a catalog entry group against an object store listing.
type Syncer interface {
	// Sync provisions the entry group and tag template, reconciles one
	// entry per listed object and deletes entries without an object.
	Sync(ctx context.Context, opts ...pkgsync.Option) (*pkgsync.Result, error)

	// Delete removes every entry of the system from the entry group and
	// then the group itself.
	Delete(ctx context.Context, opts ...pkgsync.Option) (*pkgsync.Result, error)

	// OnEntryCreated registers a callback for created entries
	OnEntryCreated(EntryCreatedHook)

	// OnEntryUpdated registers a callback for updated entries
	OnEntryUpdated(EntryUpdatedHook)

	// OnEntryDeleted registers a callback for swept entries
	OnEntryDeleted(EntryDeletedHook)

	// OnEntryFailed registers a callback for entries that failed to sync
	OnEntryFailed(EntryFailedHook)
}

// syncer is the internal implementation of the Syncer interface
type syncer struct {
	client catalog.Client
	lister storage.Lister
	config *config

	// Event hooks
	*hooks
}

// New creates a Syncer over client. lister may be nil when only Delete is
// used.
func New(client catalog.Client, lister storage.Lister, opts ...Option) (Syncer, error) {
	if client == nil {
		return nil, &errors.ValidationError{Field: "client", Message: "cannot be nil"}
	}

	cfg, err := defaultConfig().apply(opts...)
	if err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	return &syncer{
		client: client,
		lister: lister,
		config: cfg,
		hooks:  newHooks(),
	}, nil
}

// prepare parses and validates run options and bounds ctx by the run
// timeout. The returned cancel func must always be called.
func (s *syncer) prepare(ctx context.Context, opts []pkgsync.Option) (context.Context, context.CancelFunc, *pkgsync.Options, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	options := pkgsync.Defaults().Apply(opts...)
	if err := options.Validate(); err != nil {
		return ctx, func() {}, nil, err
	}
	if options.ExecutionTime.IsZero() {
		options.ExecutionTime = s.config.now().UTC()
	}

	if options.Timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, options.Timeout)
		return ctx, cancel, options, nil
	}
	return ctx, func() {}, options, nil
}

// catalogFor returns the client a run writes through.
func (s *syncer) catalogFor(options *pkgsync.Options) catalog.Client {
	if options.DryRun {
		return catalog.NewReadOnly(s.client)
	}
	return s.client
}

func (s *syncer) elapsed(start time.Time) time.Duration {
	return s.config.now().Sub(start)
}
