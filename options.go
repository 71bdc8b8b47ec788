package catalogsync

import (
	"time"

	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/errors"
)

// Option is a function that configures a Syncer instance
type Option func(*config) error

// config holds the Syncer configuration
type config struct {
	now               func() time.Time
	structuralTimeout time.Duration
	updateTimeout     time.Duration
	searchPageSize    int
}

func defaultConfig() *config {
	return &config{
		now:               time.Now,
		structuralTimeout: constants.StructuralTimeout,
		updateTimeout:     constants.StructuralTimeout,
		searchPageSize:    constants.SearchPageSize,
	}
}

func (c *config) apply(opts ...Option) (*config, error) {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithClock configures the clock used for execution times and timing.
func WithClock(now func() time.Time) Option {
	return func(c *config) error {
		if now == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		c.now = now
		return nil
	}
}

// WithStructuralTimeout bounds entry group and tag template creation.
func WithStructuralTimeout(timeout time.Duration) Option {
	return func(c *config) error {
		if timeout <= 0 {
			return &errors.ValidationError{Field: "structuralTimeout", Value: timeout, Message: "must be positive"}
		}
		c.structuralTimeout = timeout
		return nil
	}
}

// WithUpdateTimeout bounds each entry update.
func WithUpdateTimeout(timeout time.Duration) Option {
	return func(c *config) error {
		if timeout <= 0 {
			return &errors.ValidationError{Field: "updateTimeout", Value: timeout, Message: "must be positive"}
		}
		c.updateTimeout = timeout
		return nil
	}
}

// WithSearchPageSize configures the page size of the obsolete entry search.
func WithSearchPageSize(size int) Option {
	return func(c *config) error {
		if size <= 0 || size > constants.SearchPageSize {
			return &errors.ValidationError{
				Field:   "searchPageSize",
				Value:   size,
				Message: "must be between 1 and 1000",
			}
		}
		c.searchPageSize = size
		return nil
	}
}
