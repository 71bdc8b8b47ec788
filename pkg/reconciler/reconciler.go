// Package reconciler upserts one catalog entry and its sync details tag.
//
// Each call walks a small state machine: resolve the entry by its
// deterministic name, create, update or leave it, then bring its tag in
// line. Failures end the walk for that entry only and are reported in the
// Outcome, never returned as errors.
package reconciler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/differ"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/resource"
)

// Outcome is the result of reconciling one entry.
type Outcome struct {
	Name resource.EntryName
	// Action is the entry step taken: StateCreate, StateUpdate, StateNoOp,
	// or StateFailed.
	Action State
	// FailedAt is the state that failed when Action is StateFailed.
	FailedAt  State
	TagAction TagAction
	Entry     *catalog.Entry // persisted entry, nil on failure before a write
	Changes   []differ.FieldChange
	Err       error
	Elapsed   time.Duration
}

// Synced reports whether the entry and its tag both reconciled.
func (o *Outcome) Synced() bool {
	return o.Action != StateFailed
}

// Reconciler reconciles entries against a catalog.
type Reconciler struct {
	client        catalog.Client
	updateTimeout time.Duration
	now           func() time.Time
}

// New creates a new Reconciler with options.
func New(client catalog.Client, opts ...Option) (*Reconciler, error) {
	if client == nil {
		return nil, &errors.ValidationError{Field: "client", Message: "cannot be nil"}
	}
	options, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &Reconciler{
		client:        client,
		updateTimeout: options.updateTimeout,
		now:           options.now,
	}, nil
}

// Reconcile makes the catalog hold desired and, when tag is non-nil, exactly
// one tag of tag.Template whose fields match tag.
func (r *Reconciler) Reconcile(ctx context.Context, desired *catalog.Entry, tag *catalog.Tag) *Outcome {
	start := r.now()
	logger := logging.FromContext(ctx).With().Str("entry", desired.Name.String()).Logger()

	out := &Outcome{Name: desired.Name}
	var current *catalog.Entry
	fail := func(at State, err error) State {
		out.FailedAt = at
		out.Err = err
		return StateFailed
	}

	state := StateResolve
	for {
		switch state {
		case StateResolve:
			lookup, err := catalog.Resolve(r.client.GetEntry(ctx, desired.Name))
			if err != nil {
				state = fail(StateResolve, err)
				continue
			}
			switch lookup.Status {
			case catalog.Denied:
				logger.Warn().Err(lookup.Detail).Msg("Entry lookup denied, treating as absent")
				state = StateCreate
			case catalog.NotFound:
				state = StateCreate
			default:
				current = lookup.Value
				if differ.EntryChanged(current, desired) {
					out.Changes = differ.EntryChanges(current, desired)
					state = StateUpdate
				} else {
					state = StateNoOp
				}
			}

		case StateCreate:
			created, err := r.client.CreateEntry(ctx, desired.Name.Parent(), desired.Name.ID, desired)
			if err != nil {
				state = fail(StateCreate, err)
				continue
			}
			out.Action, out.Entry = StateCreate, created
			logEntry(logger.Info(), "create", desired).Msg("Entry created")
			state = StateTagSync

		case StateUpdate:
			updated, err := r.update(ctx, desired)
			if err != nil {
				state = fail(StateUpdate, err)
				continue
			}
			out.Action, out.Entry = StateUpdate, updated
			logEntry(logger.Info(), "update", desired).Msg("Entry updated")
			if len(out.Changes) > 0 {
				logger.Debug().Str("changes", differ.Summarize(out.Changes)).Msg("Entry changes")
			}
			state = StateTagSync

		case StateNoOp:
			out.Action, out.Entry = StateNoOp, current
			logEntry(logger.Debug(), "noop", desired).Msg("Entry unchanged")
			state = StateTagSync

		case StateTagSync:
			if tag != nil {
				action, err := r.syncTag(ctx, &logger, out.Entry.Name, tag)
				if err != nil {
					state = fail(StateTagSync, err)
					continue
				}
				out.TagAction = action
			}
			out.Elapsed = r.now().Sub(start)
			logger.Debug().Dur("elapsed", out.Elapsed).Msg("Entry synced")
			return out

		case StateFailed:
			out.Action = StateFailed
			out.Elapsed = r.now().Sub(start)
			logFailure(&logger, out)
			return out
		}
	}
}

func (r *Reconciler) update(ctx context.Context, entry *catalog.Entry) (*catalog.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, r.updateTimeout)
	defer cancel()
	return r.client.UpdateEntry(ctx, entry)
}

// syncTag creates or overwrites the single tag bound to desired.Template.
func (r *Reconciler) syncTag(ctx context.Context, logger *zerolog.Logger, entry resource.EntryName, desired *catalog.Tag) (TagAction, error) {
	tags, err := r.client.ListTags(ctx, entry)
	if err != nil {
		return TagSkipped, err
	}

	var existing *catalog.Tag
	for _, t := range tags {
		if t.Template == desired.Template {
			existing = t
			break
		}
	}

	if existing == nil {
		if _, err := r.client.CreateTag(ctx, entry, desired); err != nil {
			return TagSkipped, err
		}
		logger.Info().Str("template", desired.Template).Msg("Tag created")
		return TagCreated, nil
	}

	if differ.TagsEqual(desired, existing) {
		logger.Debug().Str("tag", existing.Name).Msg("Tag unchanged")
		return TagUnchanged, nil
	}

	changes := differ.TagChanges(existing, desired)
	update := *desired
	update.Name = existing.Name
	if _, err := r.client.UpdateTag(ctx, &update); err != nil {
		return TagSkipped, err
	}
	logger.Info().Str("tag", existing.Name).Str("changes", differ.Summarize(changes)).Msg("Tag updated")
	return TagUpdated, nil
}

func logEntry(e *zerolog.Event, operation string, entry *catalog.Entry) *zerolog.Event {
	return e.Str("operation", operation).
		Str("type", entry.Type).
		Str("linked_resource", entry.LinkedResource)
}

func logFailure(logger *zerolog.Logger, out *Outcome) {
	event := logger.Error()
	switch {
	case errors.IsAlreadyExists(out.Err):
		event = logger.Warn().Str("reason", "already_exists")
	case errors.IsPermissionDenied(out.Err):
		event = logger.Warn().Str("reason", "permission_denied")
	}
	event.Err(out.Err).
		Str("stage", out.FailedAt.String()).
		Dur("elapsed", out.Elapsed).
		Msg("Entry sync failed")
}
