package output

import (
	"strconv"
	"time"

	pkgsync "github.com/agentstation/catalogsync/pkg/sync"
)

// Report wraps a run result for table output. JSON and YAML output encode
// the result itself.
type Report struct {
	*pkgsync.Result
}

// Table implements Tabular: a counts table, then failures if any.
func (r Report) Table() []Data {
	res := r.Result
	title := string(res.Mode) + " " + res.EntryGroup
	if res.DryRun {
		title += " (dry run)"
	}

	counts := Data{
		Title:           title,
		Headers:         []string{"Outcome", "Entries"},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
	add := func(label string, n int) {
		counts.Rows = append(counts.Rows, []string{label, strconv.Itoa(n)})
	}
	if res.Mode == pkgsync.ModeSync {
		add("Found", res.Found)
		add("Created", res.Created)
		add("Updated", res.Updated)
		add("Unchanged", res.Unchanged)
		add("Failed", res.Failed)
		add("Tags Created", res.TagsCreated)
		add("Tags Updated", res.TagsUpdated)
		add("Tags Unchanged", res.TagsUnchanged)
	}
	add("Existing", res.Existing)
	add("Deleted", res.Deleted)
	add("Delete Failed", res.DeleteFailed)

	group := "kept"
	if res.EntryGroupDeleted {
		group = "deleted"
	}
	counts.Rows = append(counts.Rows,
		[]string{"Entry Group", group},
		[]string{"Elapsed", res.Elapsed.Round(time.Millisecond).String()},
	)

	tables := []Data{counts}
	if len(res.Failures) > 0 {
		failures := Data{
			Title:   "Failures",
			Headers: []string{"Entry", "Stage", "Error"},
		}
		for _, f := range res.Failures {
			failures.Rows = append(failures.Rows, []string{f.Name, f.Stage, f.Error})
		}
		tables = append(tables, failures)
	}
	return tables
}

// ForFormat returns the value to hand to the formatter for format.
func ForFormat(format Format, result *pkgsync.Result) any {
	if format == FormatTable || format == "" {
		return Report{Result: result}
	}
	return result
}
