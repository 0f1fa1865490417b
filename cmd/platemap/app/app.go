// Package app provides the application context and dependency management
// for the platemap CLI: configuration, logging and the lazily created
// platemap instance shared by all commands.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/platemap"
	"github.com/agentstation/platemap/cmd/application"
	"github.com/agentstation/platemap/pkg/catalogs"
	"github.com/agentstation/platemap/pkg/coverage"
	"github.com/agentstation/platemap/pkg/errors"
)

// App represents the platemap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Platemap instance (lazy-initialized, singleton)
	mu       sync.RWMutex
	platemap platemap.Platemap
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "loading config", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

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

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Platemap returns the platemap instance. Without options the shared
// instance is created on first use; with options a new instance is built
// from the configured options followed by opts.
func (a *App) Platemap(opts ...platemap.Option) (platemap.Platemap, error) {
	if len(opts) > 0 {
		pm, err := platemap.New(append(a.platemapOptions(), opts...)...)
		if err != nil {
			return nil, errors.NewConfigError("platemap", "creating instance with custom options", err)
		}
		return pm, nil
	}

	a.mu.RLock()
	if a.platemap != nil {
		pm := a.platemap
		a.mu.RUnlock()
		return pm, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.platemap != nil {
		return a.platemap, nil
	}

	pm, err := platemap.New(a.platemapOptions()...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().
		Str("catalog", a.config.CatalogPath).
		Int("entries", pm.Catalog().Len()).
		Msg("Catalog loaded")

	a.platemap = pm
	return pm, nil
}

// Catalog returns the catalog of the shared platemap instance.
func (a *App) Catalog() (*catalogs.Catalog, error) {
	pm, err := a.Platemap()
	if err != nil {
		return nil, err
	}
	return pm.Catalog(), nil
}

// platemapOptions constructs platemap options from the app configuration.
func (a *App) platemapOptions() []platemap.Option {
	opts := []platemap.Option{platemap.WithLogger(a.logger)}

	if a.config.CatalogPath != "" {
		opts = append(opts, platemap.WithCatalogPath(a.config.CatalogPath))
	}

	if filenames := a.config.SchemaFilenames(); len(filenames) > 0 {
		opts = append(opts, platemap.WithSchemaResolver(coverage.NewSchemaResolver(filenames)))
	}

	return opts
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithPlatemap sets a custom platemap instance (useful for testing).
func WithPlatemap(pm platemap.Platemap) Option {
	return func(a *App) error {
		a.platemap = pm
		return nil
	}
}
