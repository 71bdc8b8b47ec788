// Package resource provides typed catalog resource names.
//
// Names are validated once, where they enter the system (flags, config,
// search results), and passed around as values afterwards:
//
//	projects/{project}/locations/{location}
//	projects/{project}/locations/{location}/entryGroups/{entry_group}
//	projects/{project}/locations/{location}/tagTemplates/{tag_template}
//	projects/{project}/locations/{location}/entryGroups/{entry_group}/entries/{entry}
package resource

import (
	"fmt"
	"strings"

	"github.com/agentstation/catalogsync/pkg/errors"
)

// Collection identifiers used in resource names.
const (
	collectionProjects     = "projects"
	collectionLocations    = "locations"
	collectionEntryGroups  = "entryGroups"
	collectionTagTemplates = "tagTemplates"
	collectionEntries      = "entries"
)

// Location identifies a project and region pair.
type Location struct {
	Project  string
	Location string
}

// String returns projects/{project}/locations/{location}.
func (l Location) String() string {
	return collectionProjects + "/" + l.Project + "/" + collectionLocations + "/" + l.Location
}

// EntryGroup returns the entry group with the given id in this location.
func (l Location) EntryGroup(id string) EntryGroupName {
	return EntryGroupName{Location: l, ID: id}
}

// TagTemplate returns the tag template with the given id in this location.
func (l Location) TagTemplate(id string) TagTemplateName {
	return TagTemplateName{Location: l, ID: id}
}

// EntryGroupName is the name of an entry group.
type EntryGroupName struct {
	Location
	ID string
}

// String returns the full relative resource name.
func (n EntryGroupName) String() string {
	return n.Location.String() + "/" + collectionEntryGroups + "/" + n.ID
}

// Entry returns the entry with the given id in this group.
func (n EntryGroupName) Entry(id string) EntryName {
	return EntryName{Group: n, ID: id}
}

// IsZero reports whether the name is unset.
func (n EntryGroupName) IsZero() bool {
	return n == EntryGroupName{}
}

// TagTemplateName is the name of a tag template.
type TagTemplateName struct {
	Location
	ID string
}

// String returns the full relative resource name.
func (n TagTemplateName) String() string {
	return n.Location.String() + "/" + collectionTagTemplates + "/" + n.ID
}

// EntryName is the name of an entry within an entry group.
type EntryName struct {
	Group EntryGroupName
	ID    string
}

// String returns the full relative resource name.
func (n EntryName) String() string {
	return n.Group.String() + "/" + collectionEntries + "/" + n.ID
}

// Parent returns the entry group that holds the entry.
func (n EntryName) Parent() EntryGroupName {
	return n.Group
}

// ParseEntryGroupName parses projects/{p}/locations/{l}/entryGroups/{id}.
func ParseEntryGroupName(s string) (EntryGroupName, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 6 || parts[4] != collectionEntryGroups {
		return EntryGroupName{}, invalid("entry_group_name", s, "expected projects/{project}/locations/{location}/entryGroups/{id}")
	}
	loc, err := parseLocation("entry_group_name", s, parts[:4])
	if err != nil {
		return EntryGroupName{}, err
	}
	if !validID(parts[5], true) {
		return EntryGroupName{}, invalid("entry_group_name", s, fmt.Sprintf("invalid entry group id %q", parts[5]))
	}
	return loc.EntryGroup(parts[5]), nil
}

// ParseTagTemplateName parses projects/{p}/locations/{l}/tagTemplates/{id}.
func ParseTagTemplateName(s string) (TagTemplateName, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 6 || parts[4] != collectionTagTemplates {
		return TagTemplateName{}, invalid("tag_template_name", s, "expected projects/{project}/locations/{location}/tagTemplates/{id}")
	}
	loc, err := parseLocation("tag_template_name", s, parts[:4])
	if err != nil {
		return TagTemplateName{}, err
	}
	if !validID(parts[5], true) {
		return TagTemplateName{}, invalid("tag_template_name", s, fmt.Sprintf("invalid tag template id %q", parts[5]))
	}
	return loc.TagTemplate(parts[5]), nil
}

// ParseEntryName parses {entry_group_name}/entries/{id}.
func ParseEntryName(s string) (EntryName, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 8 || parts[6] != collectionEntries {
		return EntryName{}, invalid("entry_name", s, "expected {entry_group_name}/entries/{id}")
	}
	group, err := ParseEntryGroupName(strings.Join(parts[:6], "/"))
	if err != nil {
		return EntryName{}, err
	}
	if parts[7] == "" {
		return EntryName{}, invalid("entry_name", s, "empty entry id")
	}
	return group.Entry(parts[7]), nil
}

func parseLocation(field, s string, parts []string) (Location, error) {
	if parts[0] != collectionProjects || parts[2] != collectionLocations {
		return Location{}, invalid(field, s, "expected projects/{project}/locations/{location} prefix")
	}
	if !validID(parts[1], true) {
		return Location{}, invalid(field, s, fmt.Sprintf("invalid project %q", parts[1]))
	}
	if !validID(parts[3], false) {
		return Location{}, invalid(field, s, fmt.Sprintf("invalid location %q", parts[3]))
	}
	return Location{Project: parts[1], Location: parts[3]}, nil
}

// validID accepts letters, digits and '-', plus '_' and '@' when extended.
func validID(s string, extended bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
		case extended && (r == '_' || r == '@'):
		default:
			return false
		}
	}
	return true
}

func invalid(field, value, msg string) error {
	return &errors.ValidationError{Field: field, Value: value, Message: msg}
}
