// Package memory provides an in-memory catalog.Client.
//
// It mimics the remote catalog closely enough for reconciliation tests:
// lookups of absent resources return not-found (or permission-denied when
// DenyMissing is set), search is paginated and matches across entry groups
// that share a system, and any call can be made to fail.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/resource"
)

// Op names a catalog.Client method for call counting and failure injection.
type Op string

// Client operations.
const (
	OpGetEntryGroup     Op = "GetEntryGroup"
	OpCreateEntryGroup  Op = "CreateEntryGroup"
	OpDeleteEntryGroup  Op = "DeleteEntryGroup"
	OpGetTagTemplate    Op = "GetTagTemplate"
	OpCreateTagTemplate Op = "CreateTagTemplate"
	OpGetEntry          Op = "GetEntry"
	OpCreateEntry       Op = "CreateEntry"
	OpUpdateEntry       Op = "UpdateEntry"
	OpDeleteEntry       Op = "DeleteEntry"
	OpListTags          Op = "ListTags"
	OpCreateTag         Op = "CreateTag"
	OpUpdateTag         Op = "UpdateTag"
	OpSearchCatalog     Op = "SearchCatalog"
)

// Catalog is an in-memory catalog.Client. The zero value is not usable;
// call New.
type Catalog struct {
	mu sync.Mutex

	groups    map[string]*catalog.EntryGroup
	templates map[string]*catalog.TagTemplate
	entries   map[string]*catalog.Entry
	tags      map[string][]*catalog.Tag // by entry name
	tagSeq    int

	failures map[failureKey]error
	calls    map[Op]int
	hidden   map[string]bool // entries not yet visible to search

	// DenyMissing makes lookups of absent resources return permission
	// denied instead of not found, as the remote catalog does for callers
	// without list permission.
	DenyMissing bool
}

type failureKey struct {
	op   Op
	name string
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		groups:    make(map[string]*catalog.EntryGroup),
		templates: make(map[string]*catalog.TagTemplate),
		entries:   make(map[string]*catalog.Entry),
		tags:      make(map[string][]*catalog.Tag),
		failures:  make(map[failureKey]error),
		calls:     make(map[Op]int),
		hidden:    make(map[string]bool),
	}
}

var _ catalog.Client = (*Catalog)(nil)

// Fail makes op fail with err when called for name. An empty name matches
// every call of op. A nil err clears the failure.
func (c *Catalog) Fail(op Op, name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := failureKey{op: op, name: name}
	if err == nil {
		delete(c.failures, key)
		return
	}
	c.failures[key] = err
}

// Calls returns how many times op was called.
func (c *Catalog) Calls(op Op) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

// Writes returns the number of mutating calls made so far.
func (c *Catalog) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, op := range []Op{
		OpCreateEntryGroup, OpDeleteEntryGroup, OpCreateTagTemplate,
		OpCreateEntry, OpUpdateEntry, OpDeleteEntry, OpCreateTag, OpUpdateTag,
	} {
		n += c.calls[op]
	}
	return n
}

// ResetCalls clears the call counters.
func (c *Catalog) ResetCalls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = make(map[Op]int)
}

// HideFromSearch keeps an entry out of search results, simulating an index
// that has not caught up yet.
func (c *Catalog) HideFromSearch(name string, hidden bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hidden {
		c.hidden[name] = true
	} else {
		delete(c.hidden, name)
	}
}

// PutEntryGroup stores a group without going through CreateEntryGroup.
func (c *Catalog) PutEntryGroup(group *catalog.EntryGroup) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := *group
	c.groups[group.Name.String()] = &g
}

// PutEntry stores an entry without going through CreateEntry.
func (c *Catalog) PutEntry(entry *catalog.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := *entry
	c.entries[entry.Name.String()] = &e
}

// PutTag attaches a tag to an entry without going through CreateTag.
func (c *Catalog) PutTag(parent resource.EntryName, tag *catalog.Tag) *catalog.Tag {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attachTag(parent.String(), tag)
}

// Entry returns a stored entry by name.
func (c *Catalog) Entry(name string) (*catalog.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[name]
	if !ok {
		return nil, false
	}
	cp := *e
	return &cp, true
}

// EntryNames returns the sorted names of every stored entry.
func (c *Catalog) EntryNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tags returns copies of the tags attached to an entry.
func (c *Catalog) Tags(entryName string) []*catalog.Tag {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyTags(c.tags[entryName])
}

// HasEntryGroup reports whether a group is stored.
func (c *Catalog) HasEntryGroup(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.groups[name]
	return ok
}

// HasTagTemplate reports whether a template is stored.
func (c *Catalog) HasTagTemplate(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.templates[name]
	return ok
}

// GetEntryGroup implements catalog.Client.
func (c *Catalog) GetEntryGroup(_ context.Context, name resource.EntryGroupName) (*catalog.EntryGroup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call(OpGetEntryGroup, name.String()); err != nil {
		return nil, err
	}
	g, ok := c.groups[name.String()]
	if !ok {
		return nil, c.missing("entry group", name.String())
	}
	cp := *g
	return &cp, nil
}

// CreateEntryGroup implements catalog.Client.
func (c *Catalog) CreateEntryGroup(_ context.Context, parent resource.Location, id string, group *catalog.EntryGroup) (*catalog.EntryGroup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := parent.EntryGroup(id)
	if err := c.call(OpCreateEntryGroup, name.String()); err != nil {
		return nil, err
	}
	if _, ok := c.groups[name.String()]; ok {
		return nil, errors.NewAlreadyExistsError("entry group", name.String())
	}
	g := *group
	g.Name = name
	c.groups[name.String()] = &g
	cp := g
	return &cp, nil
}

// DeleteEntryGroup implements catalog.Client. Groups that still hold
// entries are refused.
func (c *Catalog) DeleteEntryGroup(_ context.Context, name resource.EntryGroupName) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call(OpDeleteEntryGroup, name.String()); err != nil {
		return err
	}
	if _, ok := c.groups[name.String()]; !ok {
		return c.missing("entry group", name.String())
	}
	prefix := name.String() + "/entries/"
	for entryName := range c.entries {
		if strings.HasPrefix(entryName, prefix) {
			return &errors.APIError{
				Operation: "delete",
				Resource:  "entry group",
				ID:        name.String(),
				Code:      "FailedPrecondition",
				Message:   "entry group is not empty",
			}
		}
	}
	delete(c.groups, name.String())
	return nil
}

// GetTagTemplate implements catalog.Client.
func (c *Catalog) GetTagTemplate(_ context.Context, name resource.TagTemplateName) (*catalog.TagTemplate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call(OpGetTagTemplate, name.String()); err != nil {
		return nil, err
	}
	t, ok := c.templates[name.String()]
	if !ok {
		return nil, c.missing("tag template", name.String())
	}
	cp := *t
	return &cp, nil
}

// CreateTagTemplate implements catalog.Client.
func (c *Catalog) CreateTagTemplate(_ context.Context, parent resource.Location, id string, template *catalog.TagTemplate) (*catalog.TagTemplate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := parent.TagTemplate(id)
	if err := c.call(OpCreateTagTemplate, name.String()); err != nil {
		return nil, err
	}
	if _, ok := c.templates[name.String()]; ok {
		return nil, errors.NewAlreadyExistsError("tag template", name.String())
	}
	t := *template
	t.Name = name
	c.templates[name.String()] = &t
	cp := t
	return &cp, nil
}

// GetEntry implements catalog.Client.
func (c *Catalog) GetEntry(_ context.Context, name resource.EntryName) (*catalog.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call(OpGetEntry, name.String()); err != nil {
		return nil, err
	}
	e, ok := c.entries[name.String()]
	if !ok {
		return nil, c.missing("entry", name.String())
	}
	cp := *e
	return &cp, nil
}

// CreateEntry implements catalog.Client.
func (c *Catalog) CreateEntry(_ context.Context, parent resource.EntryGroupName, id string, entry *catalog.Entry) (*catalog.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := parent.Entry(id)
	if err := c.call(OpCreateEntry, name.String()); err != nil {
		return nil, err
	}
	if _, ok := c.groups[parent.String()]; !ok {
		return nil, errors.NewNotFoundError("entry group", parent.String())
	}
	if _, ok := c.entries[name.String()]; ok {
		return nil, errors.NewAlreadyExistsError("entry", name.String())
	}
	e := *entry
	e.Name = name
	c.entries[name.String()] = &e
	cp := e
	return &cp, nil
}

// UpdateEntry implements catalog.Client.
func (c *Catalog) UpdateEntry(_ context.Context, entry *catalog.Entry) (*catalog.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := entry.Name.String()
	if err := c.call(OpUpdateEntry, name); err != nil {
		return nil, err
	}
	if _, ok := c.entries[name]; !ok {
		return nil, c.missing("entry", name)
	}
	e := *entry
	c.entries[name] = &e
	cp := e
	return &cp, nil
}

// DeleteEntry implements catalog.Client. Tags attached to the entry are
// removed with it.
func (c *Catalog) DeleteEntry(_ context.Context, name resource.EntryName) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call(OpDeleteEntry, name.String()); err != nil {
		return err
	}
	if _, ok := c.entries[name.String()]; !ok {
		return c.missing("entry", name.String())
	}
	delete(c.entries, name.String())
	delete(c.tags, name.String())
	delete(c.hidden, name.String())
	return nil
}

// ListTags implements catalog.Client.
func (c *Catalog) ListTags(_ context.Context, parent resource.EntryName) ([]*catalog.Tag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call(OpListTags, parent.String()); err != nil {
		return nil, err
	}
	if _, ok := c.entries[parent.String()]; !ok {
		return nil, c.missing("entry", parent.String())
	}
	return copyTags(c.tags[parent.String()]), nil
}

// CreateTag implements catalog.Client.
func (c *Catalog) CreateTag(_ context.Context, parent resource.EntryName, tag *catalog.Tag) (*catalog.Tag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call(OpCreateTag, parent.String()); err != nil {
		return nil, err
	}
	if _, ok := c.entries[parent.String()]; !ok {
		return nil, c.missing("entry", parent.String())
	}
	for _, existing := range c.tags[parent.String()] {
		if existing.Template == tag.Template {
			return nil, errors.NewAlreadyExistsError("tag", parent.String())
		}
	}
	return c.attachTag(parent.String(), tag), nil
}

// UpdateTag implements catalog.Client.
func (c *Catalog) UpdateTag(_ context.Context, tag *catalog.Tag) (*catalog.Tag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call(OpUpdateTag, tag.Name); err != nil {
		return nil, err
	}
	for entryName, tags := range c.tags {
		for i, existing := range tags {
			if existing.Name == tag.Name {
				updated := copyTag(tag)
				c.tags[entryName][i] = updated
				return copyTag(updated), nil
			}
		}
	}
	return nil, c.missing("tag", tag.Name)
}

// SearchCatalog implements catalog.Client. The query supports system=<name>
// qualifiers and free terms; a free term matches when it appears in the
// entry name, display name or linked resource. Results are ordered by name
// and paged with an offset token.
func (c *Catalog) SearchCatalog(_ context.Context, req catalog.SearchRequest) (*catalog.SearchPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call(OpSearchCatalog, req.Query); err != nil {
		return nil, err
	}

	var systems, terms []string
	for _, token := range strings.Fields(strings.ToLower(req.Query)) {
		if v, ok := strings.CutPrefix(token, "system="); ok {
			systems = append(systems, v)
			continue
		}
		terms = append(terms, token)
	}

	projects := make(map[string]bool, len(req.ProjectIDs))
	for _, p := range req.ProjectIDs {
		projects[p] = true
	}

	var matches []string
	for name, e := range c.entries {
		if c.hidden[name] {
			continue
		}
		if len(projects) > 0 && !projects[e.Name.Group.Project] {
			continue
		}
		if !matchesSearch(e, systems, terms) {
			continue
		}
		matches = append(matches, name)
	}
	sort.Strings(matches)

	offset := 0
	if req.PageToken != "" {
		n, err := strconv.Atoi(req.PageToken)
		if err != nil || n < 0 || n > len(matches) {
			return nil, errors.NewValidationError("page_token", req.PageToken, "invalid page token")
		}
		offset = n
	}
	size := req.PageSize
	if size <= 0 {
		size = len(matches)
	}
	end := min(offset+size, len(matches))

	page := &catalog.SearchPage{Results: make([]catalog.SearchResult, 0, end-offset)}
	for _, name := range matches[offset:end] {
		page.Results = append(page.Results, catalog.SearchResult{
			RelativeResourceName: name,
			LinkedResource:       c.entries[name].LinkedResource,
		})
	}
	if end < len(matches) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}

func matchesSearch(e *catalog.Entry, systems, terms []string) bool {
	for _, s := range systems {
		if strings.ToLower(e.System) != s {
			return false
		}
	}
	haystack := strings.ToLower(e.Name.String() + " " + e.DisplayName + " " + e.LinkedResource)
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

// call counts op and returns any injected failure. Callers hold c.mu.
func (c *Catalog) call(op Op, name string) error {
	c.calls[op]++
	if err, ok := c.failures[failureKey{op: op, name: name}]; ok {
		return err
	}
	return c.failures[failureKey{op: op}]
}

// missing returns the error reported for an absent resource.
func (c *Catalog) missing(kind, name string) error {
	if c.DenyMissing {
		return errors.NewPermissionDeniedError(kind, name, "permission denied or resource does not exist")
	}
	return errors.NewNotFoundError(kind, name)
}

// attachTag names and stores a tag. Callers hold c.mu.
func (c *Catalog) attachTag(entryName string, tag *catalog.Tag) *catalog.Tag {
	c.tagSeq++
	t := copyTag(tag)
	t.Name = fmt.Sprintf("%s/tags/t%d", entryName, c.tagSeq)
	c.tags[entryName] = append(c.tags[entryName], t)
	return copyTag(t)
}

func copyTag(t *catalog.Tag) *catalog.Tag {
	cp := &catalog.Tag{Name: t.Name, Template: t.Template, Fields: make(map[string]catalog.FieldValue, len(t.Fields))}
	for k, v := range t.Fields {
		cp.Fields[k] = v
	}
	return cp
}

func copyTags(tags []*catalog.Tag) []*catalog.Tag {
	out := make([]*catalog.Tag, len(tags))
	for i, t := range tags {
		out[i] = copyTag(t)
	}
	return out
}
