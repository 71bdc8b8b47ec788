// Package sweeper deletes catalog entries that are no longer backed by a
// storage object.
//
// The catalog has no notion of the set of entries a sync expects, so stale
// entries are found by searching for the system's entries and diffing the
// results against the names just synced. Search is eventually consistent:
// an entry the index has not caught up with survives until a later run.
package sweeper

import (
	"context"
	"sort"

	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/resource"
)

// Result reports what a sweep found and removed.
type Result struct {
	Existing          []string // entries of the group found by search
	Deleted           []string
	DeleteFailed      []string
	EntryGroupDeleted bool
}

// Sweeper removes obsolete entries from one project's catalog.
type Sweeper struct {
	client    catalog.Client
	projectID string
	pageSize  int
}

// New returns a sweeper searching within projectID.
func New(client catalog.Client, projectID string) *Sweeper {
	return &Sweeper{client: client, projectID: projectID, pageSize: constants.SearchPageSize}
}

// WithPageSize returns a copy of the sweeper requesting pageSize results
// per search page.
func (s *Sweeper) WithPageSize(pageSize int) *Sweeper {
	cp := *s
	if pageSize > 0 && pageSize <= constants.SearchPageSize {
		cp.pageSize = pageSize
	}
	return &cp
}

// Sweep deletes every entry of system inside group whose name is not in
// synced, then tries to delete the group itself. Only a failed search is
// returned as an error; individual deletions are best-effort.
func (s *Sweeper) Sweep(ctx context.Context, synced []string, system string, group resource.EntryGroupName) (*Result, error) {
	logger := logging.FromContext(ctx)

	// Step 1: Find the entries the catalog holds for this system and group
	existing, err := s.Existing(ctx, system, group)
	if err != nil {
		return nil, err
	}
	result := &Result{Existing: existing}

	// Step 2: Diff against the names just synced
	candidates := Obsolete(existing, synced)
	logger.Info().
		Int("existing", len(existing)).
		Int("synced", len(synced)).
		Int("obsolete", len(candidates)).
		Msg("Computed obsolete entries")

	// Step 3: Delete each candidate without stopping on failures
	for _, name := range candidates {
		entry, err := resource.ParseEntryName(name)
		if err != nil {
			result.DeleteFailed = append(result.DeleteFailed, name)
			logger.Warn().Err(err).Str("entry", name).Msg("Skipping unparseable entry name")
			continue
		}
		if err := s.client.DeleteEntry(ctx, entry); err != nil {
			result.DeleteFailed = append(result.DeleteFailed, name)
			logger.Error().Err(err).Str("entry", name).Msg("Entry delete failed")
			continue
		}
		result.Deleted = append(result.Deleted, name)
		logger.Info().Str("entry", name).Str("operation", "delete").Msg("Entry deleted")
	}

	// Step 4: Remove the group if nothing is left in it
	if err := s.client.DeleteEntryGroup(ctx, group); err != nil {
		logger.Info().Err(err).Msg("Entry group not deleted")
	} else {
		result.EntryGroupDeleted = true
		logger.Info().Msg("Entry group deleted")
	}

	return result, nil
}

// Existing drains every search page for system-tagged entries and keeps the
// ones whose parent is exactly group. The result is sorted.
func (s *Sweeper) Existing(ctx context.Context, system string, group resource.EntryGroupName) ([]string, error) {
	logger := logging.FromContext(ctx)
	query := "system=" + system + " " + group.ID

	seen := make(map[string]bool)
	token := ""
	pages := 0
	for {
		page, err := s.client.SearchCatalog(ctx, catalog.SearchRequest{
			ProjectIDs: []string{s.projectID},
			Query:      query,
			OrderBy:    constants.SearchOrderBy,
			PageSize:   s.pageSize,
			PageToken:  token,
		})
		if err != nil {
			return nil, errors.WrapResource("search", "entries", query, err)
		}
		pages++

		for _, r := range page.Results {
			name, err := resource.ParseEntryName(r.RelativeResourceName)
			if err != nil {
				logger.Debug().Str("name", r.RelativeResourceName).Msg("Ignoring non-entry search result")
				continue
			}
			if name.Parent() != group {
				continue
			}
			seen[name.String()] = true
		}

		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	logger.Debug().Int("pages", pages).Int("entries", len(names)).Str("query", query).Msg("Search drained")
	return names, nil
}

// Obsolete returns the names in existing that are not in synced, in the
// order they appear in existing.
func Obsolete(existing, synced []string) []string {
	keep := make(map[string]bool, len(synced))
	for _, name := range synced {
		keep[name] = true
	}
	out := []string{}
	for _, name := range existing {
		if !keep[name] {
			out = append(out, name)
		}
	}
	return out
}
