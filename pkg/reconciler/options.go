package reconciler

import (
	"time"

	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/errors"
)

// options configures a reconciler.
type options struct {
	updateTimeout time.Duration
	now           func() time.Time
}

func defaultOptions() *options {
	return &options{
		updateTimeout: constants.StructuralTimeout,
		now:           time.Now,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithUpdateTimeout bounds each entry update call.
func WithUpdateTimeout(timeout time.Duration) Option {
	return func(o *options) error {
		if timeout <= 0 {
			return &errors.ValidationError{
				Field:   "updateTimeout",
				Value:   timeout,
				Message: "must be positive",
			}
		}
		o.updateTimeout = timeout
		return nil
	}
}

// WithClock sets the clock used to time each reconciliation.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return &errors.ValidationError{
				Field:   "clock",
				Message: "cannot be nil",
			}
		}
		o.now = now
		return nil
	}
}
