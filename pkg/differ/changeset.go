package differ

import (
	"fmt"
	"strings"
	"time"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates a field was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates a field was updated.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates a field was removed.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Path     string     // Field path (e.g., "display_name" or a tag field id)
	OldValue string     // Previous value (string representation)
	NewValue string     // New value (string representation)
	Type     ChangeType // Type of change
}

// String renders the change for log output.
func (c FieldChange) String() string {
	switch c.Type {
	case ChangeTypeAdd:
		return fmt.Sprintf("+ %s: %s", c.Path, c.NewValue)
	case ChangeTypeRemove:
		return fmt.Sprintf("- %s: %s", c.Path, c.OldValue)
	default:
		return fmt.Sprintf("~ %s: %s -> %s", c.Path, c.OldValue, c.NewValue)
	}
}

// Summarize joins changes into a single log-friendly line.
func Summarize(changes []FieldChange) string {
	parts := make([]string, len(changes))
	for i, c := range changes {
		parts[i] = c.String()
	}
	return strings.Join(parts, "; ")
}

// truncateString truncates a string to maxLen characters.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "<none>"
	}
	return t.UTC().Format(time.RFC3339)
}
