package catalog

import (
	"github.com/agentstation/catalogsync/pkg/errors"
)

// LookupStatus is the outcome of fetching a resource by name.
type LookupStatus int

const (
	// Found means the resource exists and Value is set.
	Found LookupStatus = iota
	// NotFound means the catalog reported the resource as absent.
	NotFound
	// Denied means the catalog refused the read. The catalog answers reads
	// of absent resources this way too, so callers usually treat Denied as
	// "absent, but creation may fail".
	Denied
)

// String returns the status name.
func (s LookupStatus) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Lookup is the explicit result of a get call.
type Lookup[T any] struct {
	Status LookupStatus
	Value  *T
	// Detail carries the denial reason when Status is Denied.
	Detail error
}

// Resolve turns the (value, error) pair of a get call into a Lookup.
// Only errors that are neither not-found nor permission-denied are returned
// as errors.
func Resolve[T any](value *T, err error) (Lookup[T], error) {
	switch {
	case err == nil:
		return Lookup[T]{Status: Found, Value: value}, nil
	case errors.IsNotFound(err):
		return Lookup[T]{Status: NotFound}, nil
	case errors.IsPermissionDenied(err):
		return Lookup[T]{Status: Denied, Detail: err}, nil
	default:
		return Lookup[T]{}, err
	}
}
