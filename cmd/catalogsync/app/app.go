// Package app provides the application context and dependency management
// for the catalogsync CLI. It centralizes configuration, logging and the
// construction of remote clients.
package app

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// App represents the catalogsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	viper  *viper.Viper
	config *Config

	// Logger
	logger *zerolog.Logger

	// Remote clients, replaceable in tests
	clients ClientFactory

	// Command output
	stdout io.Writer
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		clients: GoogleClients,
		stdout:  os.Stdout,
	}

	// Load configuration
	app.viper = newViper()
	config, err := LoadConfig(app.viper, "")
	if err != nil {
		return nil, err
	}
	app.config = config

	// Initialize logger
	logger := NewLogger(config)
	app.logger = &logger

	// Apply any custom options
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithClientFactory replaces the Google Cloud clients (useful for testing).
func WithClientFactory(factory ClientFactory) Option {
	return func(a *App) error {
		a.clients = factory
		return nil
	}
}

// WithOutput sets the writer command results are printed to.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.stdout = w
		return nil
	}
}
