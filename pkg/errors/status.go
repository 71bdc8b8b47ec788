package errors

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FromStatus classifies an error returned by a gRPC-backed client into the
// catalogsync taxonomy. The operation and resource describe the call that
// failed; id is the resource name the call targeted.
func FromStatus(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &APIError{Operation: operation, Resource: resource, ID: id, Code: codes.DeadlineExceeded.String(), Message: err.Error(), Err: err}
	case errors.Is(err, context.Canceled):
		return &APIError{Operation: operation, Resource: resource, ID: id, Code: codes.Canceled.String(), Message: err.Error(), Err: err}
	}

	st, ok := status.FromError(err)
	if !ok {
		return &APIError{Operation: operation, Resource: resource, ID: id, Message: err.Error(), Err: err}
	}

	switch st.Code() {
	case codes.NotFound:
		return NewNotFoundError(resource, id)
	case codes.AlreadyExists:
		return NewAlreadyExistsError(resource, id)
	case codes.PermissionDenied:
		return NewPermissionDeniedError(resource, id, st.Message())
	default:
		return &APIError{
			Operation: operation,
			Resource:  resource,
			ID:        id,
			Code:      st.Code().String(),
			Message:   st.Message(),
			Err:       err,
		}
	}
}
