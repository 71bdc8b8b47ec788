package catalogsync

import (
	"context"

	"github.com/agentstation/catalogsync/pkg/builder"
	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/resource"
)

// ensureEntryGroup gets or creates the target entry group. Any failure
// other than an absent group is fatal to the run.
func (s *syncer) ensureEntryGroup(ctx context.Context, client catalog.Client, name resource.EntryGroupName) error {
	logger := logging.FromContext(ctx)

	lookup, err := catalog.Resolve(client.GetEntryGroup(ctx, name))
	if err != nil {
		return errors.NewSyncError("entry group", name.String(), err)
	}
	switch lookup.Status {
	case catalog.Found:
		logger.Debug().Msg("Entry group exists")
		return nil
	case catalog.Denied:
		logger.Warn().Err(lookup.Detail).Msg("Entry group lookup denied, attempting to create it")
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.structuralTimeout)
	defer cancel()

	if _, err := client.CreateEntryGroup(ctx, name.Location, name.ID, builder.EntryGroupDefinition(name)); err != nil {
		return errors.NewSyncError("entry group", name.String(), err)
	}
	logger.Info().Msg("Entry group created")
	return nil
}

// ensureTagTemplate gets or creates the sync details tag template. A
// template created concurrently by another run is accepted.
func (s *syncer) ensureTagTemplate(ctx context.Context, client catalog.Client, group resource.EntryGroupName, name resource.TagTemplateName) error {
	logger := logging.FromContext(ctx).With().Str("tag_template", name.String()).Logger()

	lookup, err := catalog.Resolve(client.GetTagTemplate(ctx, name))
	if err != nil {
		return errors.NewSyncError("tag template", group.String(), err)
	}
	switch lookup.Status {
	case catalog.Found:
		logger.Debug().Msg("Tag template exists")
		return nil
	case catalog.Denied:
		logger.Warn().Err(lookup.Detail).Msg("Tag template lookup denied, attempting to create it")
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.structuralTimeout)
	defer cancel()

	_, err = client.CreateTagTemplate(ctx, name.Location, name.ID, builder.TagTemplateDefinition(name))
	switch {
	case err == nil:
		logger.Info().Msg("Tag template created")
	case errors.IsAlreadyExists(err):
		logger.Debug().Msg("Tag template already exists")
	default:
		return errors.NewSyncError("tag template", group.String(), err)
	}
	return nil
}
