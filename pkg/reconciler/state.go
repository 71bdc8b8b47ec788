package reconciler

// State is a step of the per-entry reconciliation state machine.
type State int

// Reconciliation states. Resolve is the entry state; Failed and the end of
// TagSync are terminal.
const (
	StateResolve State = iota
	StateCreate
	StateUpdate
	StateNoOp
	StateTagSync
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateResolve:
		return "resolve"
	case StateCreate:
		return "create"
	case StateUpdate:
		return "update"
	case StateNoOp:
		return "noop"
	case StateTagSync:
		return "tag_sync"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TagAction is what tag sync did for an entry.
type TagAction int

const (
	// TagSkipped means tag sync did not run.
	TagSkipped TagAction = iota
	// TagCreated means no tag of the template existed and one was created.
	TagCreated
	// TagUpdated means the existing tag differed and was overwritten.
	TagUpdated
	// TagUnchanged means the existing tag already matched.
	TagUnchanged
)

// String returns the action name.
func (a TagAction) String() string {
	switch a {
	case TagCreated:
		return "created"
	case TagUpdated:
		return "updated"
	case TagUnchanged:
		return "unchanged"
	default:
		return "skipped"
	}
}
